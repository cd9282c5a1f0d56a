package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/billsync/internal/models"
)

var (
	alice = models.UserDetails{ID: "u-alice", FirstName: "Alice", Phone: "+111", Registered: true}
	bob   = models.UserDetails{ID: "u-bob", FirstName: "Bob", Phone: "+222", Registered: true}
	carol = models.UserDetails{ID: "u-carol", FirstName: "Carol"}
)

func TestPersonalExpense(t *testing.T) {
	tests := []struct {
		name         string
		expense      models.Expense
		userID       string
		wantSubtotal float64
		wantTotal    float64
	}{
		{
			name: "even split between two owners",
			expense: models.Expense{
				ID:    "e1",
				Users: []models.UserDetails{alice, bob},
				Items: []models.Item{
					{ID: "i1", Price: 10.0, Owners: []models.UserDetails{alice, bob}},
				},
			},
			userID:       alice.ID,
			wantSubtotal: 5.0,
			wantTotal:    5.0,
		},
		{
			name: "proportional tax follows share of subtotal",
			expense: models.Expense{
				ID:    "e2",
				Users: []models.UserDetails{alice, bob},
				Items: []models.Item{
					{ID: "i1", Price: 20.0, Owners: []models.UserDetails{alice}},
					{ID: "i2", Price: 2.0, IsProportional: true},
				},
			},
			userID:       alice.ID,
			wantSubtotal: 20.0,
			wantTotal:    22.0,
		},
		{
			name: "proportional split across uneven shares",
			expense: models.Expense{
				ID:    "e3",
				Users: []models.UserDetails{alice, bob},
				Items: []models.Item{
					{ID: "i1", Price: 30.0, Owners: []models.UserDetails{alice}},
					{ID: "i2", Price: 10.0, Owners: []models.UserDetails{bob}},
					{ID: "i3", Price: 4.0, IsProportional: true},
				},
			},
			userID: bob.ID,
			// Bob holds 10/40 of the subtotal, so 25% of the $4 tax.
			wantSubtotal: 10.0,
			wantTotal:    11.0,
		},
		{
			name: "zero subtotal suppresses proportional items",
			expense: models.Expense{
				ID:    "e4",
				Users: []models.UserDetails{alice},
				Items: []models.Item{
					{ID: "i1", Price: 3.0, IsProportional: true},
				},
			},
			userID:       alice.ID,
			wantSubtotal: 0.0,
			wantTotal:    0.0,
		},
		{
			name: "non-owner gets nothing",
			expense: models.Expense{
				ID:    "e5",
				Users: []models.UserDetails{alice, bob},
				Items: []models.Item{
					{ID: "i1", Price: 15.0, Owners: []models.UserDetails{alice}},
				},
			},
			userID:       bob.ID,
			wantSubtotal: 0.0,
			wantTotal:    0.0,
		},
		{
			name: "unowned item counts toward nobody",
			expense: models.Expense{
				ID:    "e6",
				Users: []models.UserDetails{alice},
				Items: []models.Item{
					{ID: "i1", Price: 8.0, Owners: []models.UserDetails{alice}},
					{ID: "i2", Price: 4.0},
				},
			},
			userID:       alice.ID,
			wantSubtotal: 8.0,
			wantTotal:    8.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			personal := PersonalExpense(tt.userID, &tt.expense)
			if got := personal.Subtotal(); math.Abs(got-tt.wantSubtotal) > 0.01 {
				t.Errorf("Subtotal() = %v, want %v", got, tt.wantSubtotal)
			}
			if got := personal.Total(); math.Abs(got-tt.wantTotal) > 0.01 {
				t.Errorf("Total() = %v, want %v", got, tt.wantTotal)
			}
		})
	}
}

func TestPersonalExpenseConservation(t *testing.T) {
	// When every item is owned by every participant, the personal totals
	// must add back up to the expense total.
	everyone := []models.UserDetails{alice, bob, carol}
	expense := models.Expense{
		ID:    "e-conserve",
		Users: everyone,
		Items: []models.Item{
			{ID: "i1", Price: 19.99, Owners: everyone},
			{ID: "i2", Price: 7.35, Owners: everyone},
			{ID: "i3", Price: 3.10, IsProportional: true},
		},
	}

	var sum float64
	for _, u := range everyone {
		personal := PersonalExpense(u.ID, &expense)
		sum += personal.Total()
	}

	if math.Abs(sum-expense.Total()) > 0.01 {
		t.Errorf("sum of personal totals = %v, want %v", sum, expense.Total())
	}
}

func TestSubtotalTotalInvariant(t *testing.T) {
	expense := models.Expense{
		ID:    "e-inv",
		Users: []models.UserDetails{alice, bob},
		Items: []models.Item{
			{ID: "i1", Price: 12.50, Owners: []models.UserDetails{alice}},
			{ID: "i2", Price: -2.00, Owners: []models.UserDetails{bob}},
			{ID: "i3", Price: 1.25, IsProportional: true},
			{ID: "i4", Price: 0.75, IsProportional: true},
		},
	}

	var proportional float64
	for _, item := range expense.Items {
		if item.IsProportional {
			proportional += item.Price
		}
	}

	if got, want := expense.Subtotal(), 10.50; math.Abs(got-want) > 0.01 {
		t.Errorf("Subtotal() = %v, want %v", got, want)
	}
	if got, want := expense.Total(), expense.Subtotal()+proportional; math.Abs(got-want) > 0.01 {
		t.Errorf("Total() = %v, want subtotal+proportional = %v", got, want)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.004, 1.0},
		{2.346, 2.35},
		{-1.234, -1.23},
		{10.0, 10.0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
