package models

// Event types delivered over the live session channel.
const (
	// EventFullSnapshot replaces the whole expense snapshot.
	EventFullSnapshot = "fullSnapshot"

	// EventItemSelectionChanged toggles one user's ownership of one item.
	EventItemSelectionChanged = "itemSelectionChanged"

	// EventItemDetailsChanged replaces an item's details (name, price,
	// proportional flag), preserving its owner list.
	EventItemDetailsChanged = "itemDetailsChanged"

	// EventConnectionAck is the server's handshake/ping acknowledgement.
	// It carries no state change.
	EventConnectionAck = "connectionAck"
)

// Event is an inbound frame from the session channel: a tagged variant
// carrying the payload fields for its Type. Every event carries the expense
// ID the server believes is active for the connection, used to discard
// frames from a superseded session.
type Event struct {
	// Type is one of the Event* constants. Unknown types are ignored by
	// the reducer so newer servers can add variants.
	Type string `json:"type"`

	// ConnectedExpenseID is the expense the server has this connection
	// bound to.
	ConnectedExpenseID string `json:"connectedExpenseId"`

	// ExpenseID addresses the expense scope (root or child) a selection
	// or details change applies to. Unset for full snapshots.
	ExpenseID string `json:"expenseId,omitempty"`

	// ItemID, UserID and Selected carry an itemSelectionChanged payload.
	ItemID   string `json:"itemId,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Selected bool   `json:"selected,omitempty"`

	// Item carries an itemDetailsChanged payload.
	Item *Item `json:"item,omitempty"`

	// Expense carries a fullSnapshot payload.
	Expense *Expense `json:"expense,omitempty"`
}
