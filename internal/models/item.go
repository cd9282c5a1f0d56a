package models

// Item represents a single line item on an expense.
// Items can be shared among multiple participants.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// ExpenseID is the expense this item belongs to (the root expense or
	// one of its children).
	ExpenseID string `json:"expenseId"`

	// Name is the description of the item (e.g., "Pizza", "Tip").
	Name string `json:"name"`

	// Price is the signed amount in currency units (2 decimal semantics).
	Price float64 `json:"price"`

	// Owners are the participants this item is allocated to.
	// A non-proportional item is split evenly among them; an item with no
	// owners contributes to nobody's personal total but still counts
	// toward the expense subtotal/total.
	Owners []UserDetails `json:"owners"`

	// IsProportional marks tax/tip style charges: allocated to each
	// participant in proportion to their share of the non-proportional
	// subtotal, not split evenly among explicit owners.
	IsProportional bool `json:"isProportional"`

	// CreatedAt is the Unix timestamp when the item was added.
	CreatedAt int64 `json:"createdAt"`
}

// HasOwner reports whether the given participant is among the item's owners.
func (i *Item) HasOwner(userID string) bool {
	for _, o := range i.Owners {
		if o.ID == userID {
			return true
		}
	}
	return false
}
