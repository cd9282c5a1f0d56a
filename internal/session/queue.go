package session

import (
	"context"
	"log/slog"
	"time"
)

// deferUntilReady is the mutation command queue guard. Given the target
// expense id and a retry closure representing "re-invoke this exact call",
// it reports whether the caller must stop: false means the connection is
// Ready and the caller should send immediately; true means the command was
// queued and the retry will re-invoke the call once the connection is
// writable.
//
// A dead connection triggers a reconnect and replays the retry after it
// resolves; a connection mid-handshake waits (bounded, soft timeout) for
// Ready. Reconnection itself is the retry mechanism - there is no separate
// retry count or backoff.
//
// The retry is pinned to the expense id it was issued against: if the
// session has moved to a different expense by the time the connection is
// writable, the queued command is dropped instead of replayed against the
// new expense.
func (s *Session) deferUntilReady(expenseID string, retry func()) bool {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	switch state {
	case StateReady:
		return false

	case StateConnecting, StateHandshakePending:
		commandsQueuedTotal.Inc()
		go func() {
			s.waitForConnection()
			if !s.allows(expenseID) {
				slog.Warn("Dropping queued command, session moved to another expense",
					"expense_id", expenseID)
				return
			}
			retry()
		}()
		return true

	default: // Idle, Closing, Closed
		commandsQueuedTotal.Inc()
		go func() {
			if err := s.Connect(context.Background(), expenseID); err != nil {
				slog.Error("Reconnect for queued command failed",
					"expense_id", expenseID, "error", err)
				return
			}
			if !s.allows(expenseID) {
				slog.Warn("Dropping queued command, session moved to another expense",
					"expense_id", expenseID)
				return
			}
			retry()
		}()
		return true
	}
}

// allows reports whether the session is still bound to the given expense.
func (s *Session) allows(expenseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowedExpenseID == expenseID
}

// waitForConnection polls until the connection is Ready, bounded by the
// configured connection timeout. The bound expiring does not error: the
// waiter proceeds optimistically and the re-invoked call re-checks state.
func (s *Session) waitForConnection() {
	deadline := time.Now().Add(s.settings.ConnectionTimeout)
	for time.Now().Before(deadline) {
		if s.State() == StateReady {
			return
		}
		time.Sleep(s.settings.ConnectionCheckInterval)
	}
	slog.Warn("Timed out waiting for connection readiness, proceeding")
}

// waitForConnectionClose polls until the previous connection has fully
// closed, with the same soft-timeout behavior as waitForConnection.
func (s *Session) waitForConnectionClose() {
	deadline := time.Now().Add(s.settings.ConnectionTimeout)
	for time.Now().Before(deadline) {
		switch s.State() {
		case StateClosed, StateIdle:
			return
		}
		time.Sleep(s.settings.ConnectionCheckInterval)
	}
	slog.Warn("Timed out waiting for connection close, proceeding")
}
