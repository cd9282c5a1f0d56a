package calculator

import "github.com/mmynk/billsync/internal/models"

// BalanceResult is one participant's standing against an expense's payer.
type BalanceResult struct {
	// Meaningful is false when the expense has no payer recorded, in
	// which case Amount is zero and carries no information.
	Meaningful bool

	// Amount is the balance. Positive = this participant is owed money;
	// negative = this participant owes money.
	Amount float64

	// PayerName is the display name of the primary payer, when known.
	PayerName string
}

// Balance computes a participant's balance against the expense's primary
// payer.
//
// If the participant is the payer, the balance is the sum of every other
// participant's personal total that has not been marked settled. Otherwise
// it is the negative of the participant's own personal total, or zero once
// they are settled.
func Balance(expense *models.Expense, userID string) BalanceResult {
	payer, ok := expense.FirstPayer()
	if !ok {
		return BalanceResult{}
	}

	result := BalanceResult{Meaningful: true}
	if payerUser, found := expense.FindUser(payer.UserID); found {
		result.PayerName = payerUser.FullName()
	}

	if userID == payer.UserID {
		for _, u := range expense.Users {
			if u.ID == payer.UserID || expense.IsSettled(u.ID) {
				continue
			}
			personal := PersonalExpense(u.ID, expense)
			result.Amount += personal.Total()
		}
		return result
	}

	if expense.IsSettled(userID) {
		return result
	}
	personal := PersonalExpense(userID, expense)
	result.Amount = -personal.Total()
	return result
}
