package models

// UserDetails represents a participant in an expense.
type UserDetails struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// FirstName is the participant's given name.
	FirstName string `json:"firstName"`

	// LastName is the participant's family name.
	LastName string `json:"lastName"`

	// Phone is the participant's phone number. Empty for guests added to
	// a bill without an account.
	Phone string `json:"phone,omitempty"`

	// Registered reports whether the participant has a registered account.
	Registered bool `json:"registered"`
}

// Guest reports whether this participant is an unregistered guest.
func (u *UserDetails) Guest() bool {
	return u.Phone == ""
}

// FullName returns "First Last", or whichever part is present.
func (u *UserDetails) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
