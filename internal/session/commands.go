package session

import (
	"log/slog"

	"github.com/mmynk/billsync/internal/models"
)

// Mutation methods. Each one is fire-and-forget: the outcome is reported
// only through the session stream once the backend fans the change back,
// never via a return value. Every method runs the same guard: if the
// connection is not Ready the command is queued and this exact call is
// re-invoked once it is, so at most one send happens per call.

// AddItem creates a new item on the session expense.
func (s *Session) AddItem(name string, price float64, isProportional bool) {
	s.mutate(models.MethodAddItem, models.AddItemParams{
		Name:           name,
		Price:          price,
		IsProportional: isProportional,
	}, func() { s.AddItem(name, price, isProportional) })
}

// RemoveItem deletes an item from the session expense.
func (s *Session) RemoveItem(itemID string) {
	s.mutate(models.MethodRemoveItem, models.RemoveItemParams{
		ItemID: itemID,
	}, func() { s.RemoveItem(itemID) })
}

// UpdateItemSelections replaces the set of items a user has selected.
func (s *Session) UpdateItemSelections(userID string, itemIDs []string) {
	s.mutate(models.MethodUpdateItemSelections, models.UpdateItemSelectionsParams{
		UserID:  userID,
		ItemIDs: itemIDs,
	}, func() { s.UpdateItemSelections(userID, itemIDs) })
}

// UpdateItemDetails replaces an item's name, price and proportional flag.
// The item's owner list is preserved server-side.
func (s *Session) UpdateItemDetails(item models.Item) {
	s.mutate(models.MethodUpdateItemDetails, models.UpdateItemDetailsParams{
		Item: item,
	}, func() { s.UpdateItemDetails(item) })
}

// UpdateExpenseName renames the session expense.
func (s *Session) UpdateExpenseName(name string) {
	s.mutate(models.MethodUpdateExpenseName, models.UpdateExpenseNameParams{
		Name: name,
	}, func() { s.UpdateExpenseName(name) })
}

// UpdateExpenseTransactionDate changes the expense's transaction date.
func (s *Session) UpdateExpenseTransactionDate(transactionDate int64) {
	s.mutate(models.MethodUpdateTransactionDate, models.UpdateTransactionDateParams{
		TransactionDate: transactionDate,
	}, func() { s.UpdateExpenseTransactionDate(transactionDate) })
}

// UpdateSingleItemSelected toggles one user's ownership of one item.
func (s *Session) UpdateSingleItemSelected(itemID, userID string, selected bool) {
	s.mutate(models.MethodUpdateSingleItemSelected, models.UpdateSingleItemSelectedParams{
		ItemID:   itemID,
		UserID:   userID,
		Selected: selected,
	}, func() { s.UpdateSingleItemSelected(itemID, userID, selected) })
}

// mutate runs the command queue guard and, when clear, sends the command.
func (s *Session) mutate(method string, params any, retry func()) {
	expenseID := s.sessionExpenseID()
	if expenseID == "" {
		slog.Warn("Mutation issued with no session expense", "method", method)
		return
	}
	if s.deferUntilReady(expenseID, retry) {
		return
	}
	s.send(models.Command{ID: expenseID, Method: method, Params: params})
}

// sessionExpenseID is the expense a mutation targets: the currently allowed
// id, falling back to the last successfully connected one.
func (s *Session) sessionExpenseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.allowedExpenseID != "" {
		return s.allowedExpenseID
	}
	return s.lastExpenseID
}

// send writes one command to the open channel. Failures are logged; the
// snapshot stream is the only success signal callers observe.
func (s *Session) send(command models.Command) {
	s.mu.Lock()
	ws := s.conn
	s.mu.Unlock()
	if ws == nil {
		slog.Warn("Dropping command, connection lost", "method", command.Method)
		return
	}

	if err := s.writeFrame(ws, command); err != nil {
		slog.Error("Failed to send command", "method", command.Method, "error", err)
		return
	}
	commandsSentTotal.WithLabelValues(command.Method).Inc()
}
