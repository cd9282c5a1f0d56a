package models

// Command methods accepted by the session channel.
const (
	MethodAddItem                  = "addItem"
	MethodRemoveItem               = "removeItem"
	MethodUpdateItemSelections     = "updateItemSelections"
	MethodUpdateItemDetails        = "updateItemDetails"
	MethodUpdateExpenseName        = "updateExpenseName"
	MethodUpdateTransactionDate    = "updateTransactionDate"
	MethodUpdateSingleItemSelected = "updateSingleItemSelected"
	MethodPing                     = "ping"
)

// Command is an outbound frame on the session channel.
type Command struct {
	// ID is the expense the command targets.
	ID string `json:"id"`

	// Method is one of the Method* constants.
	Method string `json:"method"`

	// Params is the method-specific payload, one of the *Params types.
	Params any `json:"params,omitempty"`
}

// AddItemParams creates a new item on the session expense.
type AddItemParams struct {
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	IsProportional bool    `json:"isProportional"`
}

// RemoveItemParams deletes an item from the session expense.
type RemoveItemParams struct {
	ItemID string `json:"itemId"`
}

// UpdateItemSelectionsParams replaces the set of items one user has
// selected across the expense.
type UpdateItemSelectionsParams struct {
	UserID  string   `json:"userId"`
	ItemIDs []string `json:"itemIds"`
}

// UpdateItemDetailsParams replaces an item's details. The server preserves
// the item's owner list; only name, price and the proportional flag apply.
type UpdateItemDetailsParams struct {
	Item Item `json:"item"`
}

// UpdateExpenseNameParams renames the session expense.
type UpdateExpenseNameParams struct {
	Name string `json:"name"`
}

// UpdateTransactionDateParams changes the expense's transaction date.
type UpdateTransactionDateParams struct {
	TransactionDate int64 `json:"transactionDate"`
}

// UpdateSingleItemSelectedParams toggles one user's ownership of one item.
type UpdateSingleItemSelectedParams struct {
	ItemID   string `json:"itemId"`
	UserID   string `json:"userId"`
	Selected bool   `json:"selected"`
}
