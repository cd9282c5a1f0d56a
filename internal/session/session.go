// Package session manages the live connection to one expense session: the
// socket lifecycle, the inbound event stream folding onto the session
// snapshot, and the outbound mutation commands.
//
// A Session owns at most one logical connection, bound to a single expense
// id at a time. Connecting to a new expense id supersedes the previous
// connection; inbound frames and handshakes for a superseded id are
// discarded (the "allowed expense id" guard), which is expected behavior
// under rapid navigation rather than an error.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mmynk/billsync/internal/auth"
	"github.com/mmynk/billsync/internal/config"
	"github.com/mmynk/billsync/internal/models"
	"github.com/mmynk/billsync/internal/reducer"
)

// State is the connection lifecycle state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateHandshakePending
	StateReady
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateHandshakePending:
		return "handshake_pending"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// API is the slice of the REST client the session needs: the connection
// token mint and the full-snapshot fetch used during the handshake.
type API interface {
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	ConnectionToken(ctx context.Context, expenseID string) (string, error)
}

// Settings carries the transport tuning knobs.
type Settings struct {
	// SocketURL is the expense session channel endpoint.
	SocketURL string

	// ConnectionTimeout bounds waitForConnection/waitForConnectionClose.
	// The bound expiring does not fail the wait: the waiter stops polling
	// and the caller proceeds optimistically.
	ConnectionTimeout time.Duration

	// ConnectionCheckInterval is the polling interval for those waits.
	ConnectionCheckInterval time.Duration

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each outbound frame write.
	WriteTimeout time.Duration
}

// DefaultSettings returns the tuning used when no configuration is loaded.
func DefaultSettings() *Settings {
	return &Settings{
		SocketURL:               "ws://localhost:8080/session",
		ConnectionTimeout:       5 * time.Second,
		ConnectionCheckInterval: 50 * time.Millisecond,
		HandshakeTimeout:        5 * time.Second,
		WriteTimeout:            5 * time.Second,
	}
}

// SettingsFromConfig maps the environment configuration onto Settings.
func SettingsFromConfig(cfg *config.Config) *Settings {
	return &Settings{
		SocketURL:               cfg.API.SocketURL,
		ConnectionTimeout:       cfg.Session.ConnectionTimeout,
		ConnectionCheckInterval: cfg.Session.ConnectionCheckInterval,
		HandshakeTimeout:        cfg.Session.HandshakeTimeout,
		WriteTimeout:            cfg.Session.WriteTimeout,
	}
}

// connectAttempt tracks one in-flight Connect so concurrent callers can
// await its outcome.
type connectAttempt struct {
	done chan struct{}
	err  error
}

// Session is the expense-session synchronization core: connection
// transport, mutation command queue, and session state holder in one
// single-owner component.
type Session struct {
	settings *Settings
	api      API
	identity auth.Provider
	users    reducer.Resolver
	holder   *Holder
	dialer   *websocket.Dialer

	mu               sync.Mutex
	state            State
	conn             *websocket.Conn
	allowedExpenseID string
	lastExpenseID    string
	attempt          *connectAttempt

	writeMu sync.Mutex
}

// New creates a session client. users may be nil when no out-of-snapshot
// user resolution is wanted.
func New(settings *Settings, api API, identity auth.Provider, users reducer.Resolver) *Session {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Session{
		settings: settings,
		api:      api,
		identity: identity,
		users:    users,
		holder:   NewHolder(),
		dialer:   &websocket.Dialer{HandshakeTimeout: settings.HandshakeTimeout},
		state:    StateIdle,
	}
}

// Holder returns the session state holder publishing the current snapshot.
func (s *Session) Holder() *Holder {
	return s.holder
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// setStateLocked updates the state and the state gauge. Callers hold s.mu.
func (s *Session) setStateLocked(state State) {
	s.state = state
	connectionState.Set(float64(state))
}

// Connect binds the session to an expense id: it supersedes and closes any
// existing connection, mints a connection token, dials the channel, and
// completes the application handshake (ping command + full snapshot fetch
// + publish). It returns once the session is Ready, or with the first
// transport or handshake error. Retry policy is the caller's.
func (s *Session) Connect(ctx context.Context, expenseID string) error {
	attempt := &connectAttempt{done: make(chan struct{})}

	s.mu.Lock()
	s.allowedExpenseID = expenseID
	s.attempt = attempt
	prev := s.conn
	if prev != nil && s.state != StateClosing && s.state != StateClosed {
		s.setStateLocked(StateClosing)
	}
	s.mu.Unlock()

	err := s.connect(ctx, expenseID, prev)

	s.mu.Lock()
	if s.attempt == attempt {
		s.attempt = nil
	}
	s.mu.Unlock()
	attempt.err = err
	close(attempt.done)
	return err
}

func (s *Session) connect(ctx context.Context, expenseID string, prev *websocket.Conn) error {
	if prev != nil {
		prev.Close()
		s.waitForConnectionClose()
	}

	s.mu.Lock()
	if s.allowedExpenseID != expenseID {
		s.mu.Unlock()
		connectsTotal.WithLabelValues("lost_race").Inc()
		return fmt.Errorf("connect to %s superseded", expenseID)
	}
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	token, err := s.api.ConnectionToken(ctx, expenseID)
	if err != nil {
		s.abandonAttempt(expenseID)
		connectsTotal.WithLabelValues("token_error").Inc()
		return fmt.Errorf("connect: %w", err)
	}

	target, err := s.socketURL(url.Values{
		"expenseId":       {expenseID},
		"userId":          {s.identity.UserID()},
		"connectionToken": {token},
	})
	if err != nil {
		s.abandonAttempt(expenseID)
		connectsTotal.WithLabelValues("dial_error").Inc()
		return fmt.Errorf("connect: %w", err)
	}

	header := http.Header{}
	name, value := s.identity.Header()
	header.Set(name, value)
	ws, _, err := s.dialer.DialContext(ctx, target, header)
	if err != nil {
		s.abandonAttempt(expenseID)
		connectsTotal.WithLabelValues("dial_error").Inc()
		return fmt.Errorf("connect: dial: %w", err)
	}

	s.mu.Lock()
	if s.allowedExpenseID != expenseID {
		s.mu.Unlock()
		ws.Close()
		connectsTotal.WithLabelValues("lost_race").Inc()
		return fmt.Errorf("connect to %s superseded", expenseID)
	}
	s.conn = ws
	s.setStateLocked(StateHandshakePending)
	s.mu.Unlock()

	go s.readLoop(ws)

	if err := s.handshake(ctx, ws, expenseID); err != nil {
		ws.Close()
		return err
	}

	connectsTotal.WithLabelValues("ok").Inc()
	return nil
}

// handshake performs the application-level handshake: emit a ping command
// carrying the expense id, fetch the full expense snapshot, and publish it.
// A rapid disconnect/reconnect can supersede this attempt while the fetch
// is in flight; that is a lost race, not an error against shared state.
func (s *Session) handshake(ctx context.Context, ws *websocket.Conn, expenseID string) error {
	if err := s.writeFrame(ws, models.Command{ID: expenseID, Method: models.MethodPing}); err != nil {
		connectsTotal.WithLabelValues("handshake_error").Inc()
		return fmt.Errorf("handshake ping: %w", err)
	}

	expense, err := s.api.GetExpense(ctx, expenseID)
	if err != nil {
		connectsTotal.WithLabelValues("handshake_error").Inc()
		return fmt.Errorf("handshake fetch: %w", err)
	}

	s.mu.Lock()
	lost := s.allowedExpenseID != expenseID || s.conn != ws || s.state != StateHandshakePending
	if !lost {
		s.setStateLocked(StateReady)
		s.lastExpenseID = expenseID
	}
	s.mu.Unlock()

	if lost {
		connectsTotal.WithLabelValues("lost_race").Inc()
		return fmt.Errorf("handshake for %s superseded", expenseID)
	}

	s.holder.Update(expense)
	slog.Info("Session ready", "expense_id", expenseID)
	return nil
}

// abandonAttempt closes out a failed attempt, unless a newer Connect has
// already taken over.
func (s *Session) abandonAttempt(expenseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.allowedExpenseID == expenseID && s.conn == nil {
		s.setStateLocked(StateClosed)
	}
}

// Disconnect tears the session down intentionally: the channel is closed if
// it isn't already closing, and nil is published as the current snapshot.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.allowedExpenseID = ""
	conn := s.conn
	s.conn = nil
	s.setStateLocked(StateClosed)
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.holder.Update(nil)
	slog.Info("Session disconnected")
}

// EnsureConnection restores the session after a suspected drop: a pending
// connect is awaited, a closed socket triggers a reconnect to the last
// known expense id, and an open socket is left alone.
func (s *Session) EnsureConnection(ctx context.Context) error {
	s.mu.Lock()
	attempt := s.attempt
	state := s.state
	last := s.lastExpenseID
	s.mu.Unlock()

	if attempt != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-attempt.done:
			return attempt.err
		}
	}

	switch state {
	case StateIdle, StateClosing, StateClosed:
		if last == "" {
			return fmt.Errorf("no session to restore")
		}
		return s.Connect(ctx, last)
	default:
		return nil
	}
}

// PingPreflight opens a throwaway ping connection to pre-warm the backend,
// without touching the primary connection.
func (s *Session) PingPreflight(ctx context.Context) error {
	target, err := s.socketURL(url.Values{"ping": {"true"}})
	if err != nil {
		return fmt.Errorf("ping preflight: %w", err)
	}
	ws, _, err := s.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("ping preflight: %w", err)
	}
	return ws.Close()
}

// readLoop consumes inbound frames until the socket closes, applying each
// event in arrival order. Running in a single goroutine serializes reducer
// invocations for this connection.
func (s *Session) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var event models.Event
		if err := json.Unmarshal(data, &event); err != nil {
			slog.Warn("Undecodable session frame", "error", err)
			continue
		}
		s.handleEvent(event, ws)
	}
	s.teardown(ws)
}

// handleEvent applies one inbound event to the session snapshot.
func (s *Session) handleEvent(event models.Event, ws *websocket.Conn) {
	s.mu.Lock()
	allowed := s.allowedExpenseID
	s.mu.Unlock()

	if event.ConnectedExpenseID != allowed {
		slog.Warn("Discarding frame for superseded session",
			"connected_expense_id", event.ConnectedExpenseID,
			"allowed_expense_id", allowed,
		)
		eventsTotal.WithLabelValues("stale_discard").Inc()
		if event.ConnectedExpenseID != "" {
			ws.Close()
		}
		return
	}

	if event.Type == models.EventConnectionAck {
		eventsTotal.WithLabelValues("ignored").Inc()
		return
	}

	current := s.holder.Current()
	if current == nil && event.Type != models.EventFullSnapshot {
		// No session state to mutate; only a full snapshot can establish it.
		eventsTotal.WithLabelValues("ignored").Inc()
		return
	}

	next, changed := reducer.Apply(context.Background(), event, current, s.users)
	if !changed {
		eventsTotal.WithLabelValues("ignored").Inc()
		return
	}
	s.holder.Update(next)
	eventsTotal.WithLabelValues("applied").Inc()
}

// teardown runs when a socket closes, locally or remotely. A superseded
// socket must not clobber the state of its replacement, so only the
// authoritative connection publishes the disconnect.
func (s *Session) teardown(ws *websocket.Conn) {
	s.mu.Lock()
	if s.conn != ws {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.setStateLocked(StateClosed)
	s.mu.Unlock()

	s.holder.Update(nil)
	slog.Info("Session connection closed")
}

// writeFrame serializes and writes one outbound frame.
func (s *Session) writeFrame(ws *websocket.Conn, command models.Command) error {
	data, err := json.Marshal(command)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	ws.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout))
	return ws.WriteMessage(websocket.TextMessage, data)
}

// socketURL builds the channel endpoint with the given query parameters.
func (s *Session) socketURL(params url.Values) (string, error) {
	u, err := url.Parse(s.settings.SocketURL)
	if err != nil {
		return "", fmt.Errorf("socket url: %w", err)
	}
	query := u.Query()
	for key, values := range params {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
