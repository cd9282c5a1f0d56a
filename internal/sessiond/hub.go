package sessiond

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mmynk/billsync/internal/models"
)

const writeTimeout = 10 * time.Second

// commandFrame is the inbound wire shape of a mutation command. Params is
// left raw so each method can decode its own payload.
type commandFrame struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// client is one connected session participant.
type client struct {
	conn    *websocket.Conn
	userID  string
	writeMu sync.Mutex
}

func (c *client) writeEvent(event models.Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(event)
}

// Hub accepts session connections, applies the mutation commands they
// send, and fans the resulting events out to every participant connected
// to the same expense.
type Hub struct {
	store    *Store
	minter   *TokenMinter
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]map[*client]struct{}
}

// NewHub creates a hub backed by the given store and token minter.
func NewHub(store *Store, minter *TokenMinter) *Hub {
	return &Hub{
		store:  store,
		minter: minter,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]map[*client]struct{}),
	}
}

// HandleSocket upgrades an HTTP request into a session connection. The
// expenseId, userId and connectionToken query parameters identify and
// authorize the connection; ping=true requests a reachability probe that
// upgrades and immediately tears down without joining a session.
func (h *Hub) HandleSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("ping") == "true" {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
		return
	}

	expenseID := query.Get("expenseId")
	userID := query.Get("userId")
	token := query.Get("connectionToken")
	if expenseID == "" || userID == "" || token == "" {
		http.Error(w, "missing connection parameters", http.StatusBadRequest)
		return
	}

	tokenUser, err := h.minter.Verify(token, expenseID)
	if err != nil {
		slog.Warn("Rejected session connection", "expense_id", expenseID, "error", err)
		http.Error(w, "invalid connection token", http.StatusUnauthorized)
		return
	}
	if tokenUser != userID {
		slog.Warn("Connection token user mismatch", "expense_id", expenseID, "user_id", userID)
		http.Error(w, "invalid connection token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade session connection", "expense_id", expenseID, "error", err)
		return
	}

	c := &client{conn: conn, userID: userID}
	h.register(expenseID, c)
	defer h.unregister(expenseID, c)

	slog.Info("Session connected", "expense_id", expenseID, "user_id", userID)
	if err := c.writeEvent(models.Event{
		Type:               models.EventConnectionAck,
		ConnectedExpenseID: expenseID,
	}); err != nil {
		slog.Error("Failed to ack session connection", "expense_id", expenseID, "error", err)
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			slog.Info("Session disconnected", "expense_id", expenseID, "user_id", userID)
			return
		}
		var frame commandFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			slog.Warn("Discarding malformed command frame", "expense_id", expenseID, "error", err)
			continue
		}
		h.applyCommand(r.Context(), expenseID, c, frame)
	}
}

func (h *Hub) register(expenseID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[expenseID] == nil {
		h.sessions[expenseID] = make(map[*client]struct{})
	}
	h.sessions[expenseID][c] = struct{}{}
}

func (h *Hub) unregister(expenseID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions[expenseID], c)
	if len(h.sessions[expenseID]) == 0 {
		delete(h.sessions, expenseID)
	}
	c.conn.Close()
}

// applyCommand persists one mutation and broadcasts the resulting event.
// Mutations that change a single selection or an item's details produce
// targeted events; everything else falls back to a full snapshot so
// participants cannot drift.
//
// A command may target the session expense or one of its child scopes, but
// never an expense outside the connected session: the target's root must
// resolve to the session id or the command is discarded.
func (h *Hub) applyCommand(ctx context.Context, expenseID string, c *client, frame commandFrame) {
	if frame.Method == models.MethodPing {
		return
	}

	root, err := h.store.RootExpenseID(ctx, frame.ID)
	if err != nil || root != expenseID {
		slog.Warn("Discarding command outside the connected session",
			"method", frame.Method, "target_id", frame.ID, "session_id", expenseID, "user_id", c.userID)
		return
	}

	switch frame.Method {
	case models.MethodUpdateSingleItemSelected:
		var params models.UpdateSingleItemSelectedParams
		if !decodeParams(frame, &params) {
			return
		}
		if err := h.store.SetItemSelected(ctx, params.ItemID, params.UserID, params.Selected); err != nil {
			slog.Error("Failed to update selection", "item_id", params.ItemID, "error", err)
			return
		}
		scope, err := h.store.ItemScope(ctx, params.ItemID)
		if err != nil {
			scope = expenseID
		}
		h.broadcast(expenseID, models.Event{
			Type:               models.EventItemSelectionChanged,
			ConnectedExpenseID: expenseID,
			ExpenseID:          scope,
			ItemID:             params.ItemID,
			UserID:             params.UserID,
			Selected:           params.Selected,
		})

	case models.MethodUpdateItemDetails:
		var params models.UpdateItemDetailsParams
		if !decodeParams(frame, &params) {
			return
		}
		if err := h.store.UpdateItemDetails(ctx, params.Item); err != nil {
			slog.Error("Failed to update item details", "item_id", params.Item.ID, "error", err)
			return
		}
		scope, err := h.store.ItemScope(ctx, params.Item.ID)
		if err != nil {
			scope = expenseID
		}
		item := params.Item
		h.broadcast(expenseID, models.Event{
			Type:               models.EventItemDetailsChanged,
			ConnectedExpenseID: expenseID,
			ExpenseID:          scope,
			ItemID:             item.ID,
			Item:               &item,
		})

	case models.MethodAddItem:
		var params models.AddItemParams
		if !decodeParams(frame, &params) {
			return
		}
		if _, err := h.store.AddItem(ctx, frame.ID, params); err != nil {
			slog.Error("Failed to add item", "expense_id", frame.ID, "error", err)
			return
		}
		h.broadcastSnapshot(ctx, expenseID)

	case models.MethodRemoveItem:
		var params models.RemoveItemParams
		if !decodeParams(frame, &params) {
			return
		}
		if err := h.store.RemoveItem(ctx, params.ItemID); err != nil {
			slog.Error("Failed to remove item", "item_id", params.ItemID, "error", err)
			return
		}
		h.broadcastSnapshot(ctx, expenseID)

	case models.MethodUpdateItemSelections:
		var params models.UpdateItemSelectionsParams
		if !decodeParams(frame, &params) {
			return
		}
		before, err := h.store.UserSelections(ctx, frame.ID, params.UserID)
		if err != nil {
			slog.Error("Failed to read selections", "expense_id", frame.ID, "error", err)
			return
		}
		if err := h.store.SetUserSelections(ctx, frame.ID, params.UserID, params.ItemIDs); err != nil {
			slog.Error("Failed to update selections", "expense_id", frame.ID, "error", err)
			return
		}
		for _, change := range selectionDiff(before, params.ItemIDs) {
			h.broadcast(expenseID, models.Event{
				Type:               models.EventItemSelectionChanged,
				ConnectedExpenseID: expenseID,
				ExpenseID:          frame.ID,
				ItemID:             change.id,
				UserID:             params.UserID,
				Selected:           change.selected,
			})
		}

	case models.MethodUpdateExpenseName:
		var params models.UpdateExpenseNameParams
		if !decodeParams(frame, &params) {
			return
		}
		if err := h.store.RenameExpense(ctx, frame.ID, params.Name); err != nil {
			slog.Error("Failed to rename expense", "expense_id", frame.ID, "error", err)
			return
		}
		h.broadcastSnapshot(ctx, expenseID)

	case models.MethodUpdateTransactionDate:
		var params models.UpdateTransactionDateParams
		if !decodeParams(frame, &params) {
			return
		}
		if err := h.store.SetTransactionDate(ctx, frame.ID, params.TransactionDate); err != nil {
			slog.Error("Failed to update transaction date", "expense_id", frame.ID, "error", err)
			return
		}
		h.broadcastSnapshot(ctx, expenseID)

	default:
		slog.Warn("Discarding unknown command", "method", frame.Method, "user_id", c.userID)
	}
}

// selectionChange is one item entering or leaving a user's selection set.
type selectionChange struct {
	id       string
	selected bool
}

// selectionDiff computes the per-item events a selection replacement
// implies: deselects for items only in the old set, selects for items only
// in the new one.
func selectionDiff(before, after []string) []selectionChange {
	inBefore := make(map[string]bool, len(before))
	for _, id := range before {
		inBefore[id] = true
	}
	inAfter := make(map[string]bool, len(after))
	for _, id := range after {
		inAfter[id] = true
	}

	var changes []selectionChange
	for _, id := range before {
		if !inAfter[id] {
			changes = append(changes, selectionChange{id: id, selected: false})
		}
	}
	for _, id := range after {
		if !inBefore[id] {
			changes = append(changes, selectionChange{id: id, selected: true})
		}
	}
	return changes
}

func decodeParams(frame commandFrame, out any) bool {
	if err := json.Unmarshal(frame.Params, out); err != nil {
		slog.Warn("Discarding command with malformed params", "method", frame.Method, "error", err)
		return false
	}
	return true
}

// broadcastSnapshot reloads the session expense and fans it out to every
// connected participant.
func (h *Hub) broadcastSnapshot(ctx context.Context, expenseID string) {
	expense, err := h.store.GetExpense(ctx, expenseID)
	if err != nil {
		slog.Error("Failed to load snapshot for broadcast", "expense_id", expenseID, "error", err)
		return
	}
	h.broadcast(expenseID, models.Event{
		Type:               models.EventFullSnapshot,
		ConnectedExpenseID: expenseID,
		Expense:            expense,
	})
}

func (h *Hub) broadcast(expenseID string, event models.Event) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.sessions[expenseID]))
	for c := range h.sessions[expenseID] {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.writeEvent(event); err != nil {
			slog.Warn("Dropping unreachable participant", "expense_id", expenseID, "user_id", c.userID)
			c.conn.Close()
		}
	}
}
