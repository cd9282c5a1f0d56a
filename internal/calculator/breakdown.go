package calculator

import "github.com/mmynk/billsync/internal/models"

// PersonBreakdown rolls a group expense up into one pairwise balance per
// counterpart of the given participant.
//
// For every child expense paid by the participant, each other unsettled
// participant's personal total accrues as money owed to them (positive).
// For every child paid by someone else, the participant's own unsettled
// personal total accrues as money they owe that payer (negative). Children
// with no payer recorded are skipped.
//
// Only the first payer entry of each child is consulted, matching Balance.
func PersonBreakdown(group *models.Expense, personID string) map[string]float64 {
	breakdown := make(map[string]float64)

	for i := range group.Expenses {
		child := &group.Expenses[i]
		payer, ok := child.FirstPayer()
		if !ok {
			continue
		}

		if payer.UserID == personID {
			for _, u := range child.Users {
				if u.ID == personID || child.IsSettled(u.ID) {
					continue
				}
				personal := PersonalExpense(u.ID, child)
				breakdown[u.ID] += personal.Total()
			}
			continue
		}

		balance := Balance(child, personID)
		if balance.Meaningful && balance.Amount != 0 {
			breakdown[payer.UserID] += balance.Amount
		}
	}

	return breakdown
}
