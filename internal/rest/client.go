// Package rest is the HTTP client for the expense resource endpoints.
//
// Every endpoint answers a {success, data} envelope. Failures on read paths
// are logged and surface as empty defaults so callers degrade gracefully;
// the session handshake paths (GetExpense, ConnectionToken) return errors
// so the connect attempt can fail loudly.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmynk/billsync/internal/auth"
	"github.com/mmynk/billsync/internal/models"
)

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the expense REST API.
type Client struct {
	baseURL  string
	http     *http.Client
	identity auth.Provider
}

// NewClient creates a REST client rooted at baseURL, authenticating every
// request with the given identity.
func NewClient(baseURL string, timeout time.Duration, identity auth.Provider) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		identity: identity,
	}
}

// GetExpense fetches the full current snapshot of one expense.
func (c *Client) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := c.do(ctx, http.MethodGet, "/expense/"+url.PathEscape(expenseID), nil, &expense); err != nil {
		return nil, fmt.Errorf("get expense %s: %w", expenseID, err)
	}
	return &expense, nil
}

// GetAllExpenses lists the caller's expenses. Failures degrade to an empty
// list so callers can render an empty state instead of crashing.
func (c *Client) GetAllExpenses(ctx context.Context) []models.Expense {
	var expenses []models.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, &expenses); err != nil {
		slog.Error("Failed to list expenses", "error", err)
		return nil
	}
	return expenses
}

// connectionTokenData is the payload of a connection-token mint.
type connectionTokenData struct {
	Token string `json:"token"`
}

// ConnectionToken mints a short-lived token authorizing one session
// connection to the given expense.
func (c *Client) ConnectionToken(ctx context.Context, expenseID string) (string, error) {
	var data connectionTokenData
	path := "/expense/" + url.PathEscape(expenseID) + "/connections/tokens"
	if err := c.do(ctx, http.MethodPost, path, nil, &data); err != nil {
		return "", fmt.Errorf("connection token for %s: %w", expenseID, err)
	}
	if data.Token == "" {
		return "", fmt.Errorf("connection token for %s: empty token", expenseID)
	}
	return data.Token, nil
}

// GetUsers looks up user details for a batch of ids.
func (c *Client) GetUsers(ctx context.Context, userIDs []string) ([]models.UserDetails, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var users []models.UserDetails
	path := "/users?ids=" + url.QueryEscape(strings.Join(userIDs, ","))
	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

// InviteUser invites a phone number to an expense. Write failures are
// logged; any optimistic local state is the caller's to reconcile.
func (c *Client) InviteUser(ctx context.Context, expenseID, phone string) error {
	body := map[string]string{"phone": phone}
	path := "/expense/" + url.PathEscape(expenseID) + "/invites"
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		slog.Error("Failed to invite user", "expense_id", expenseID, "error", err)
		return err
	}
	return nil
}

// SetPayerSettled marks whether a participant has reimbursed the payer.
func (c *Client) SetPayerSettled(ctx context.Context, expenseID, userID string, settled bool) error {
	body := map[string]any{"userId": userID, "settled": settled}
	path := "/expense/" + url.PathEscape(expenseID) + "/payer-statuses"
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		slog.Error("Failed to update payer status", "expense_id", expenseID, "user_id", userID, "error", err)
		return err
	}
	return nil
}

// do performs one request and decodes the envelope into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.identity != nil {
		name, value := c.identity.Header()
		req.Header.Set(name, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("request not successful")
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
