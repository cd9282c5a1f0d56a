package sessiond

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/mmynk/billsync/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedExpense(t *testing.T, store *Store) *models.Expense {
	t.Helper()
	alice := models.UserDetails{ID: "alice", FirstName: "Alice", Phone: "+15550001", Registered: true}
	bob := models.UserDetails{ID: "bob", FirstName: "Bob", Phone: "+15550002", Registered: true}

	expense := &models.Expense{
		Name:            "Dinner",
		TransactionDate: 1700000000,
		Users:           []models.UserDetails{alice, bob},
		Items: []models.Item{
			{Name: "Pizza", Price: 20.0, Owners: []models.UserDetails{alice, bob}, CreatedAt: 1},
			{Name: "Tax", Price: 2.0, IsProportional: true, CreatedAt: 2},
		},
		Payers:        []models.PayerShare{{UserID: "alice", Amount: 22.0}},
		PayerStatuses: []models.PayerStatus{{UserID: "bob", Settled: false}},
		Expenses: []models.Expense{
			{
				Name:            "Drinks",
				TransactionDate: 1700000100,
				Users:           []models.UserDetails{alice, bob},
				Items: []models.Item{
					{Name: "Beer", Price: 6.0, Owners: []models.UserDetails{bob}, CreatedAt: 1},
				},
				Payers: []models.PayerShare{{UserID: "bob", Amount: 6.0}},
			},
		},
	}
	if err := store.CreateExpense(context.Background(), expense); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	return expense
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	seeded := seedExpense(t, store)

	got, err := store.GetExpense(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}

	if got.Name != "Dinner" {
		t.Errorf("Name = %q, want Dinner", got.Name)
	}
	if len(got.Users) != 2 {
		t.Fatalf("len(Users) = %d, want 2", len(got.Users))
	}
	if len(got.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(got.Items))
	}
	if math.Abs(got.Subtotal()-20.0) > 0.01 {
		t.Errorf("Subtotal() = %.2f, want 20.00", got.Subtotal())
	}
	if math.Abs(got.Total()-22.0) > 0.01 {
		t.Errorf("Total() = %.2f, want 22.00", got.Total())
	}
	if len(got.Items[0].Owners) != 2 {
		t.Errorf("len(Items[0].Owners) = %d, want 2", len(got.Items[0].Owners))
	}
	if !got.Items[1].IsProportional {
		t.Error("Items[1].IsProportional = false, want true")
	}
	if len(got.Payers) != 1 || got.Payers[0].UserID != "alice" {
		t.Errorf("Payers = %+v, want alice", got.Payers)
	}
	if len(got.Expenses) != 1 {
		t.Fatalf("len(Expenses) = %d, want 1", len(got.Expenses))
	}
	child := got.Expenses[0]
	if child.Name != "Drinks" || len(child.Items) != 1 {
		t.Errorf("child = %+v, want Drinks with one item", child)
	}
	if len(child.Items[0].Owners) != 1 || child.Items[0].Owners[0].ID != "bob" {
		t.Errorf("child item owners = %+v, want [bob]", child.Items[0].Owners)
	}
}

func TestStoreGetExpenseNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetExpense(context.Background(), "no-such"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExpense() error = %v, want ErrNotFound", err)
	}
}

func TestStoreListExpensesRootsOnly(t *testing.T) {
	store := newTestStore(t)
	seeded := seedExpense(t, store)

	expenses, err := store.ListExpenses(context.Background())
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("len(expenses) = %d, want 1 (children are not roots)", len(expenses))
	}
	if expenses[0].ID != seeded.ID {
		t.Errorf("expenses[0].ID = %q, want %q", expenses[0].ID, seeded.ID)
	}
}

func TestStoreItemMutations(t *testing.T) {
	store := newTestStore(t)
	seeded := seedExpense(t, store)
	ctx := context.Background()

	item, err := store.AddItem(ctx, seeded.ID, models.AddItemParams{Name: "Salad", Price: 8.5})
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if item.ID == "" {
		t.Fatal("AddItem() returned item without id")
	}

	if err := store.SetItemSelected(ctx, item.ID, "alice", true); err != nil {
		t.Fatalf("SetItemSelected(add) error = %v", err)
	}
	// Adding the same owner twice stays a single row.
	if err := store.SetItemSelected(ctx, item.ID, "alice", true); err != nil {
		t.Fatalf("SetItemSelected(repeat) error = %v", err)
	}

	got, err := store.GetExpense(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	added, _, ok := got.FindItem(item.ID)
	if !ok {
		t.Fatal("added item not found in snapshot")
	}
	if len(added.Owners) != 1 || added.Owners[0].ID != "alice" {
		t.Fatalf("Owners = %+v, want [alice]", added.Owners)
	}

	if err := store.UpdateItemDetails(ctx, models.Item{ID: item.ID, Name: "Caesar Salad", Price: 9.5}); err != nil {
		t.Fatalf("UpdateItemDetails() error = %v", err)
	}
	got, _ = store.GetExpense(ctx, seeded.ID)
	added, _, _ = got.FindItem(item.ID)
	if added.Name != "Caesar Salad" || math.Abs(added.Price-9.5) > 0.01 {
		t.Errorf("after details update: %+v", added)
	}
	if len(added.Owners) != 1 {
		t.Errorf("details update dropped owners: %+v", added.Owners)
	}

	if err := store.SetItemSelected(ctx, item.ID, "alice", false); err != nil {
		t.Fatalf("SetItemSelected(remove) error = %v", err)
	}
	got, _ = store.GetExpense(ctx, seeded.ID)
	added, _, _ = got.FindItem(item.ID)
	if len(added.Owners) != 0 {
		t.Errorf("Owners = %+v, want empty", added.Owners)
	}

	if err := store.RemoveItem(ctx, item.ID); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if err := store.RemoveItem(ctx, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveItem(again) error = %v, want ErrNotFound", err)
	}
}

func TestStoreSetUserSelections(t *testing.T) {
	store := newTestStore(t)
	seeded := seedExpense(t, store)
	ctx := context.Background()

	pizzaID := seeded.Items[0].ID
	taxID := seeded.Items[1].ID

	if err := store.SetUserSelections(ctx, seeded.ID, "bob", []string{taxID}); err != nil {
		t.Fatalf("SetUserSelections() error = %v", err)
	}

	got, err := store.GetExpense(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	pizza, _, _ := got.FindItem(pizzaID)
	if pizza.HasOwner("bob") {
		t.Error("bob still owns pizza after selections were replaced")
	}
	tax, _, _ := got.FindItem(taxID)
	if !tax.HasOwner("bob") {
		t.Error("bob does not own tax after selecting it")
	}
	if !pizza.HasOwner("alice") {
		t.Error("replacing bob's selections must not touch alice's")
	}
}

func TestStoreExpenseMutations(t *testing.T) {
	store := newTestStore(t)
	seeded := seedExpense(t, store)
	ctx := context.Background()

	if err := store.RenameExpense(ctx, seeded.ID, "Team Dinner"); err != nil {
		t.Fatalf("RenameExpense() error = %v", err)
	}
	if err := store.SetTransactionDate(ctx, seeded.ID, 1800000000); err != nil {
		t.Fatalf("SetTransactionDate() error = %v", err)
	}
	if err := store.SetPayerSettled(ctx, seeded.ID, "bob", true); err != nil {
		t.Fatalf("SetPayerSettled() error = %v", err)
	}

	got, err := store.GetExpense(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if got.Name != "Team Dinner" {
		t.Errorf("Name = %q, want Team Dinner", got.Name)
	}
	if got.TransactionDate != 1800000000 {
		t.Errorf("TransactionDate = %d, want 1800000000", got.TransactionDate)
	}
	if !got.IsSettled("bob") {
		t.Error("IsSettled(bob) = false after settling")
	}

	if err := store.RenameExpense(ctx, "no-such", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RenameExpense(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStoreRootExpenseID(t *testing.T) {
	store := newTestStore(t)
	seeded := seedExpense(t, store)
	ctx := context.Background()

	root, err := store.RootExpenseID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("RootExpenseID(root) error = %v", err)
	}
	if root != seeded.ID {
		t.Errorf("RootExpenseID(root) = %q, want %q", root, seeded.ID)
	}

	childID := seeded.Expenses[0].ID
	root, err = store.RootExpenseID(ctx, childID)
	if err != nil {
		t.Fatalf("RootExpenseID(child) error = %v", err)
	}
	if root != seeded.ID {
		t.Errorf("RootExpenseID(child) = %q, want %q", root, seeded.ID)
	}
}

func TestStoreInviteUser(t *testing.T) {
	store := newTestStore(t)
	seeded := seedExpense(t, store)
	ctx := context.Background()

	user, err := store.InviteUser(ctx, seeded.ID, "+15550099")
	if err != nil {
		t.Fatalf("InviteUser() error = %v", err)
	}
	if user.ID == "" || user.Registered {
		t.Errorf("invited user = %+v, want fresh unregistered user", user)
	}

	// Inviting a known phone links the existing user instead of minting a
	// duplicate.
	again, err := store.InviteUser(ctx, seeded.ID, "+15550002")
	if err != nil {
		t.Fatalf("InviteUser(existing) error = %v", err)
	}
	if again.ID != "bob" {
		t.Errorf("invited existing phone resolved to %q, want bob", again.ID)
	}

	got, _ := store.GetExpense(ctx, seeded.ID)
	if len(got.Users) != 3 {
		t.Errorf("len(Users) = %d, want 3", len(got.Users))
	}
}

func TestStoreGetUsers(t *testing.T) {
	store := newTestStore(t)
	seedExpense(t, store)

	users, err := store.GetUsers(context.Background(), []string{"alice", "no-such"})
	if err != nil {
		t.Fatalf("GetUsers() error = %v", err)
	}
	if len(users) != 1 || users[0].ID != "alice" {
		t.Errorf("users = %+v, want [alice]", users)
	}

	users, err = store.GetUsers(context.Background(), nil)
	if err != nil || users != nil {
		t.Errorf("GetUsers(nil) = %+v, %v, want nil, nil", users, err)
	}
}
