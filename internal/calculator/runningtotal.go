package calculator

import "github.com/mmynk/billsync/internal/models"

// RunningTotal returns how much of the expense has been claimed by
// participants, as a percentage in [0, 100].
//
// For a plain expense, each participant's personal total is rounded to 2
// decimal places, summed, and expressed as a percentage of the expense
// total (0 when the total is 0). For a group expense, each child's own
// percentage is averaged across all children, unweighted by amount.
func RunningTotal(expense *models.Expense) float64 {
	if expense.Groupable() {
		var sum float64
		for i := range expense.Expenses {
			sum += RunningTotal(&expense.Expenses[i])
		}
		return sum / float64(len(expense.Expenses))
	}

	total := expense.Total()
	if total == 0 {
		return 0
	}

	var claimed float64
	for _, u := range expense.Users {
		personal := PersonalExpense(u.ID, expense)
		claimed += Round2(personal.Total())
	}

	percent := claimed / total * 100
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
