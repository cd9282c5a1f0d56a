package sessiond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/billsync/internal/auth"
	"github.com/mmynk/billsync/internal/models"
)

// Server bundles the REST handlers and the session hub behind one router.
type Server struct {
	store  *Store
	minter *TokenMinter
	hub    *Hub
}

// NewServer creates the development backend server.
func NewServer(store *Store, minter *TokenMinter) *Server {
	return &Server{
		store:  store,
		minter: minter,
		hub:    NewHub(store, minter),
	}
}

// Router builds the HTTP routes: the expense resources, the session
// websocket and the metrics endpoint.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/expenses", s.handleListExpenses)
	r.Post("/expenses", s.handleCreateExpense)
	r.Get("/expense/{expenseID}", s.handleGetExpense)
	r.Post("/expense/{expenseID}/connections/tokens", s.handleConnectionToken)
	r.Post("/expense/{expenseID}/invites", s.handleInviteUser)
	r.Post("/expense/{expenseID}/payer-statuses", s.handlePayerStatus)
	r.Get("/users", s.handleGetUsers)

	r.Get("/session", s.hub.HandleSocket)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// response is the envelope every REST endpoint answers with.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: true, Data: data}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response{Success: false, Error: message})
}

// identityFromRequest extracts a user id from the Authorization header.
// sessiond does not verify identity tokens; a JWT's user_id or subject
// claim wins, and any other bearer string is treated as a literal user id
// so local tooling can authenticate with plain ids.
func identityFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return ""
	}
	claims := &auth.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if claims.UserID != "" {
			return claims.UserID
		}
		if claims.Subject != "" {
			return claims.Subject
		}
	}
	return token
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "expenseID")
	expense, err := s.store.GetExpense(r.Context(), expenseID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		slog.Error("Failed to load expense", "expense_id", expenseID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		slog.Error("Failed to list expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var expense models.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense")
		return
	}
	if err := s.store.CreateExpense(r.Context(), &expense); err != nil {
		slog.Error("Failed to create expense", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}
	slog.Info("Created expense", "expense_id", expense.ID, "name", expense.Name)
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleConnectionToken(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "expenseID")
	userID := identityFromRequest(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "identity required")
		return
	}
	if _, err := s.store.GetExpense(r.Context(), expenseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.Error("Failed to load expense", "expense_id", expenseID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}

	token, err := s.minter.Mint(expenseID, userID)
	if err != nil {
		slog.Error("Failed to mint connection token", "expense_id", expenseID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mint token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	var userIDs []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			userIDs = append(userIDs, id)
		}
	}
	users, err := s.store.GetUsers(r.Context(), userIDs)
	if err != nil {
		slog.Error("Failed to load users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	if users == nil {
		users = []models.UserDetails{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleInviteUser(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "expenseID")
	var body struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone required")
		return
	}
	user, err := s.store.InviteUser(r.Context(), expenseID, body.Phone)
	if err != nil {
		slog.Error("Failed to invite user", "expense_id", expenseID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to invite user")
		return
	}
	s.hub.broadcastSnapshot(r.Context(), expenseID)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handlePayerStatus(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "expenseID")
	var body struct {
		UserID  string `json:"userId"`
		Settled bool   `json:"settled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}
	if err := s.store.SetPayerSettled(r.Context(), expenseID, body.UserID, body.Settled); err != nil {
		slog.Error("Failed to update payer status", "expense_id", expenseID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update payer status")
		return
	}
	s.hub.broadcastSnapshot(r.Context(), expenseID)
	writeJSON(w, http.StatusOK, nil)
}
