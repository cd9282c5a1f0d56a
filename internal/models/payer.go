package models

// PayerShare records that a participant fronted a portion of the total.
// An expense supports multiple payers, though most call sites treat the
// first entry as the primary payer.
type PayerShare struct {
	// UserID is the participant who paid.
	UserID string `json:"userId"`

	// Amount is the portion of the total they fronted.
	Amount float64 `json:"amount"`
}

// PayerStatus records whether a participant has reimbursed the payer.
type PayerStatus struct {
	// UserID is the participant this status applies to.
	UserID string `json:"userId"`

	// Settled is true once this participant has paid the payer back.
	Settled bool `json:"settled"`
}
