// Package calculator computes derived financial views of an expense
// snapshot: per-person allocations, pairwise balances, and the running
// selection-completion percentage.
//
// Every function is pure: it reads a snapshot and returns a value, so the
// results stay consistent with the snapshot they were computed from. Callers
// recompute whenever the snapshot reference changes.
package calculator

import (
	"math"

	"github.com/mmynk/billsync/internal/models"
)

// Round2 rounds an amount to 2 decimal places (cent precision).
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// PersonalExpense computes one participant's allocated share of an expense
// as a synthetic expense carrying only their items.
//
// Non-proportional items the user owns are split evenly among the item's
// owners. Proportional items (tax/tip) are then allocated by the user's
// share of the non-proportional subtotal:
//
//	personal_share = item_price × (personal_subtotal / expense_subtotal)
//
// If the expense subtotal is zero the ratio's denominator is treated as 1,
// so proportional items contribute nothing when there is no non-proportional
// spend.
func PersonalExpense(userID string, expense *models.Expense) models.Expense {
	personal := models.Expense{
		ID:              expense.ID,
		Name:            expense.Name,
		TransactionDate: expense.TransactionDate,
	}
	if user, ok := expense.FindUser(userID); ok {
		personal.Users = []models.UserDetails{user}
	}

	var personalSubtotal float64
	for _, item := range expense.Items {
		if item.IsProportional || !item.HasOwner(userID) {
			continue
		}
		share := item.Price / float64(len(item.Owners))
		personal.Items = append(personal.Items, models.Item{
			ID:        item.ID,
			ExpenseID: item.ExpenseID,
			Name:      item.Name,
			Price:     share,
			Owners:    personal.Users,
			CreatedAt: item.CreatedAt,
		})
		personalSubtotal += share
	}

	denominator := expense.Subtotal()
	if denominator == 0 {
		denominator = 1
	}
	ratio := personalSubtotal / denominator
	for _, item := range expense.Items {
		if !item.IsProportional {
			continue
		}
		personal.Items = append(personal.Items, models.Item{
			ID:             item.ID,
			ExpenseID:      item.ExpenseID,
			Name:           item.Name,
			Price:          item.Price * ratio,
			Owners:         personal.Users,
			IsProportional: true,
			CreatedAt:      item.CreatedAt,
		})
	}

	return personal
}
