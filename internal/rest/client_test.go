package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmynk/billsync/internal/auth"
	"github.com/mmynk/billsync/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	identity := &auth.StaticProvider{UserToken: "test-token", User: "u1"}
	return NewClient(server.URL, 2*time.Second, identity)
}

func respond(t *testing.T, w http.ResponseWriter, success bool, data any) {
	t.Helper()
	payload := map[string]any{"success": success}
	if data != nil {
		payload["data"] = data
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestGetExpense(t *testing.T) {
	var gotPath, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		respond(t, w, true, models.Expense{ID: "exp-1", Name: "Dinner"})
	})

	expense, err := client.GetExpense(context.Background(), "exp-1")
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if expense.ID != "exp-1" || expense.Name != "Dinner" {
		t.Errorf("expense = %+v", expense)
	}
	if gotPath != "/expense/exp-1" {
		t.Errorf("path = %q, want /expense/exp-1", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
}

func TestGetExpenseFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"http error status",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			"unsuccessful envelope",
			func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "nope"})
			},
		},
		{
			"malformed body",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			if _, err := client.GetExpense(context.Background(), "exp-1"); err == nil {
				t.Error("GetExpense() error = nil, want error")
			}
		})
	}
}

func TestGetAllExpensesDegradesToEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if got := client.GetAllExpenses(context.Background()); got != nil {
		t.Errorf("GetAllExpenses() = %+v, want nil on failure", got)
	}
}

func TestConnectionToken(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		respond(t, w, true, map[string]string{"token": "conn-token"})
	})

	token, err := client.ConnectionToken(context.Background(), "exp-1")
	if err != nil {
		t.Fatalf("ConnectionToken() error = %v", err)
	}
	if token != "conn-token" {
		t.Errorf("token = %q, want conn-token", token)
	}
	if gotMethod != http.MethodPost || gotPath != "/expense/exp-1/connections/tokens" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

func TestConnectionTokenRejectsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, true, map[string]string{"token": ""})
	})
	if _, err := client.ConnectionToken(context.Background(), "exp-1"); err == nil {
		t.Error("ConnectionToken() error = nil for empty token")
	}
}

func TestGetUsers(t *testing.T) {
	var gotIDs string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("ids")
		respond(t, w, true, []models.UserDetails{{ID: "u1"}, {ID: "u2"}})
	})

	users, err := client.GetUsers(context.Background(), []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("GetUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d, want 2", len(users))
	}
	if gotIDs != "u1,u2" {
		t.Errorf("ids = %q, want u1,u2", gotIDs)
	}

	// No network call for an empty batch.
	users, err = client.GetUsers(context.Background(), nil)
	if err != nil || users != nil {
		t.Errorf("GetUsers(nil) = %+v, %v, want nil, nil", users, err)
	}
}

func TestSetPayerSettled(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		respond(t, w, true, nil)
	})

	if err := client.SetPayerSettled(context.Background(), "exp-1", "u2", true); err != nil {
		t.Fatalf("SetPayerSettled() error = %v", err)
	}
	if gotBody["userId"] != "u2" || gotBody["settled"] != true {
		t.Errorf("body = %+v", gotBody)
	}
}
