package models

// Expense represents a bill being split among participants.
// It is the aggregate root for the live session: every mutation event
// produces a new Expense snapshot rather than editing one in place.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// Name is the display name of the expense (e.g., "Team Dinner").
	Name string `json:"name"`

	// TransactionDate is the Unix timestamp of when the bill was incurred.
	TransactionDate int64 `json:"transactionDate"`

	// Items are the line items on the bill, in creation order.
	Items []Item `json:"items"`

	// Users is the list of participants splitting this expense.
	// Every item's owners must be a subset of this list.
	Users []UserDetails `json:"users"`

	// Payers records who fronted money for the bill and how much.
	// Most call sites only consult the first entry.
	Payers []PayerShare `json:"payers"`

	// PayerStatuses records, per participant, whether they have reimbursed
	// the payer. Tracked independently of Payers so that "who paid" and
	// "who has settled up" are decoupled.
	PayerStatuses []PayerStatus `json:"payerStatuses"`

	// Expenses are the child expenses when this is a group expense.
	// Each child is independently split; an expense with children is
	// "groupable" and its own item list is typically empty.
	Expenses []Expense `json:"expenses,omitempty"`
}

// Subtotal returns the sum of prices of all non-proportional items.
func (e *Expense) Subtotal() float64 {
	var sum float64
	for _, item := range e.Items {
		if !item.IsProportional {
			sum += item.Price
		}
	}
	return sum
}

// Total returns the sum of prices of all items, proportional and not.
func (e *Expense) Total() float64 {
	var sum float64
	for _, item := range e.Items {
		sum += item.Price
	}
	return sum
}

// GroupTotal returns the sum of every child expense's total.
// Returns 0 for a non-group expense.
func (e *Expense) GroupTotal() float64 {
	var sum float64
	for i := range e.Expenses {
		sum += e.Expenses[i].Total()
	}
	return sum
}

// Groupable reports whether this expense contains child expenses.
func (e *Expense) Groupable() bool {
	return len(e.Expenses) > 0
}

// FindUser looks up a participant by ID in this expense's user list.
func (e *Expense) FindUser(userID string) (UserDetails, bool) {
	for _, u := range e.Users {
		if u.ID == userID {
			return u, true
		}
	}
	return UserDetails{}, false
}

// FindItem locates an item by ID, searching the root item list first and
// then each child expense's items. The second return value is the ID of the
// expense scope the item belongs to (this expense or a child).
func (e *Expense) FindItem(itemID string) (*Item, string, bool) {
	for i := range e.Items {
		if e.Items[i].ID == itemID {
			return &e.Items[i], e.ID, true
		}
	}
	for c := range e.Expenses {
		child := &e.Expenses[c]
		for i := range child.Items {
			if child.Items[i].ID == itemID {
				return &child.Items[i], child.ID, true
			}
		}
	}
	return nil, "", false
}

// FirstPayer returns the primary payer share, if any payer is recorded.
func (e *Expense) FirstPayer() (PayerShare, bool) {
	if len(e.Payers) == 0 {
		return PayerShare{}, false
	}
	return e.Payers[0], true
}

// IsSettled reports whether the given participant has been marked settled.
func (e *Expense) IsSettled(userID string) bool {
	for _, ps := range e.PayerStatuses {
		if ps.UserID == userID {
			return ps.Settled
		}
	}
	return false
}
