// Package sessiond is the local development backend for billsync: it
// serves the expense REST resources and the live session channel with the
// same wire contract as the production service, so the client core can be
// exercised end to end on a laptop.
package sessiond

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billsync/internal/models"
)

// ErrNotFound is returned for lookups of unknown expenses or items.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    registered INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    transaction_date INTEGER NOT NULL,
    parent_id TEXT,
    FOREIGN KEY (parent_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expense_users (
    expense_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (expense_id, user_id),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    expense_id TEXT NOT NULL,
    name TEXT NOT NULL,
    price REAL NOT NULL,
    is_proportional INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_owners (
    item_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (item_id, user_id),
    FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS payers (
    expense_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount REAL NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (expense_id, user_id),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payer_statuses (
    expense_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    settled INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (expense_id, user_id),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_items_expense_id ON items(expense_id);
CREATE INDEX IF NOT EXISTS idx_item_owners_item_id ON item_owners(item_id);
CREATE INDEX IF NOT EXISTS idx_expenses_parent_id ON expenses(parent_id);
`

// Store is the sqlite-backed expense store for the development backend.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database at dbPath and ensures
// the schema exists.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateExpense persists an expense with its users, items, payers and
// children, generating ids where missing.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertExpense(ctx, tx, expense, ""); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) insertExpense(ctx context.Context, tx *sql.Tx, expense *models.Expense, parentID string) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.TransactionDate == 0 {
		expense.TransactionDate = time.Now().Unix()
	}

	var parent any
	if parentID != "" {
		parent = parentID
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, name, transaction_date, parent_id) VALUES (?, ?, ?, ?)`,
		expense.ID, expense.Name, expense.TransactionDate, parent,
	); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, user := range expense.Users {
		if err := upsertUser(ctx, tx, user); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO expense_users (expense_id, user_id) VALUES (?, ?)`,
			expense.ID, user.ID,
		); err != nil {
			return fmt.Errorf("failed to link participant: %w", err)
		}
	}

	for i := range expense.Items {
		item := &expense.Items[i]
		item.ExpenseID = expense.ID
		if err := insertItem(ctx, tx, item); err != nil {
			return err
		}
	}

	for i, payer := range expense.Payers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payers (expense_id, user_id, amount, position) VALUES (?, ?, ?, ?)`,
			expense.ID, payer.UserID, payer.Amount, i,
		); err != nil {
			return fmt.Errorf("failed to insert payer: %w", err)
		}
	}
	for _, status := range expense.PayerStatuses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payer_statuses (expense_id, user_id, settled) VALUES (?, ?, ?)`,
			expense.ID, status.UserID, boolToInt(status.Settled),
		); err != nil {
			return fmt.Errorf("failed to insert payer status: %w", err)
		}
	}

	for i := range expense.Expenses {
		if err := s.insertExpense(ctx, tx, &expense.Expenses[i], expense.ID); err != nil {
			return err
		}
	}
	return nil
}

func upsertUser(ctx context.Context, tx *sql.Tx, user models.UserDetails) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, phone, registered) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET first_name=excluded.first_name, last_name=excluded.last_name,
		 phone=excluded.phone, registered=excluded.registered`,
		user.ID, user.FirstName, user.LastName, user.Phone, boolToInt(user.Registered),
	); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func insertItem(ctx context.Context, tx *sql.Tx, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO items (id, expense_id, name, price, is_proportional, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.ExpenseID, item.Name, item.Price, boolToInt(item.IsProportional), item.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	for i, owner := range item.Owners {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO item_owners (item_id, user_id, position) VALUES (?, ?, ?)`,
			item.ID, owner.ID, i,
		); err != nil {
			return fmt.Errorf("failed to insert item owner: %w", err)
		}
	}
	return nil
}

// GetExpense loads an expense with its items, participants, payers and
// child expenses.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM expenses WHERE parent_id = ? ORDER BY transaction_date`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var childIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan child id: %w", err)
		}
		childIDs = append(childIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range childIDs {
		child, err := s.loadExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		expense.Expenses = append(expense.Expenses, *child)
	}
	return expense, nil
}

// loadExpense loads a single expense scope without recursing into children.
func (s *Store) loadExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, transaction_date FROM expenses WHERE id = ?`, expenseID,
	).Scan(&expense.ID, &expense.Name, &expense.TransactionDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}

	users, err := s.expenseUsers(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	expense.Users = users
	byID := make(map[string]models.UserDetails, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expense_id, name, price, is_proportional, created_at FROM items
		 WHERE expense_id = ? ORDER BY created_at, id`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.Item
		var proportional int
		if err := rows.Scan(&item.ID, &item.ExpenseID, &item.Name, &item.Price, &proportional, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.IsProportional = proportional != 0
		expense.Items = append(expense.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range expense.Items {
		owners, err := s.itemOwners(ctx, expense.Items[i].ID, byID)
		if err != nil {
			return nil, err
		}
		expense.Items[i].Owners = owners
	}

	if err := s.loadPayers(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *Store) expenseUsers(ctx context.Context, expenseID string) ([]models.UserDetails, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.first_name, u.last_name, u.phone, u.registered FROM users u
		 JOIN expense_users eu ON eu.user_id = u.id WHERE eu.expense_id = ? ORDER BY u.id`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var users []models.UserDetails
	for rows.Next() {
		var u models.UserDetails
		var registered int
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Phone, &registered); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		u.Registered = registered != 0
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) itemOwners(ctx context.Context, itemID string, known map[string]models.UserDetails) ([]models.UserDetails, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM item_owners WHERE item_id = ? ORDER BY position`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	var owners []models.UserDetails
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		if u, ok := known[userID]; ok {
			owners = append(owners, u)
		} else {
			owners = append(owners, models.UserDetails{ID: userID})
		}
	}
	return owners, rows.Err()
}

func (s *Store) loadPayers(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, amount FROM payers WHERE expense_id = ? ORDER BY position`, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to query payers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p models.PayerShare
		if err := rows.Scan(&p.UserID, &p.Amount); err != nil {
			return fmt.Errorf("failed to scan payer: %w", err)
		}
		expense.Payers = append(expense.Payers, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	statusRows, err := s.db.QueryContext(ctx,
		`SELECT user_id, settled FROM payer_statuses WHERE expense_id = ? ORDER BY user_id`, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to query payer statuses: %w", err)
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status models.PayerStatus
		var settled int
		if err := statusRows.Scan(&status.UserID, &settled); err != nil {
			return fmt.Errorf("failed to scan payer status: %w", err)
		}
		status.Settled = settled != 0
		expense.PayerStatuses = append(expense.PayerStatuses, status)
	}
	return statusRows.Err()
}

// ListExpenses returns all root expenses (no parent), fully loaded.
func (s *Store) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM expenses WHERE parent_id IS NULL ORDER BY transaction_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expense id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var expenses []models.Expense
	for _, id := range ids {
		expense, err := s.GetExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *expense)
	}
	return expenses, nil
}

// GetUsers loads user details for a batch of ids, skipping unknown ids.
func (s *Store) GetUsers(ctx context.Context, userIDs []string) ([]models.UserDetails, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(userIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, phone, registered FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.UserDetails
	for rows.Next() {
		var u models.UserDetails
		var registered int
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Phone, &registered); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Registered = registered != 0
		users = append(users, u)
	}
	return users, rows.Err()
}

// AddItem inserts a new item on an expense and returns it.
func (s *Store) AddItem(ctx context.Context, expenseID string, params models.AddItemParams) (*models.Item, error) {
	item := &models.Item{
		ExpenseID:      expenseID,
		Name:           params.Name,
		Price:          params.Price,
		IsProportional: params.IsProportional,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := insertItem(ctx, tx, item); err != nil {
		return nil, err
	}
	return item, tx.Commit()
}

// RemoveItem deletes an item.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// SetItemSelected adds or removes one owner on one item.
func (s *Store) SetItemSelected(ctx context.Context, itemID, userID string, selected bool) error {
	if selected {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO item_owners (item_id, user_id, position)
			 VALUES (?, ?, (SELECT COALESCE(MAX(position)+1, 0) FROM item_owners WHERE item_id = ?))`,
			itemID, userID, itemID)
		if err != nil {
			return fmt.Errorf("failed to add owner: %w", err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM item_owners WHERE item_id = ? AND user_id = ?`, itemID, userID); err != nil {
		return fmt.Errorf("failed to remove owner: %w", err)
	}
	return nil
}

// SetUserSelections replaces the set of items a user owns across an
// expense scope.
func (s *Store) SetUserSelections(ctx context.Context, expenseID, userID string, itemIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM item_owners WHERE user_id = ?
		 AND item_id IN (SELECT id FROM items WHERE expense_id = ?)`, userID, expenseID); err != nil {
		return fmt.Errorf("failed to clear selections: %w", err)
	}
	for _, itemID := range itemIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO item_owners (item_id, user_id, position)
			 VALUES (?, ?, (SELECT COALESCE(MAX(position)+1, 0) FROM item_owners WHERE item_id = ?))`,
			itemID, userID, itemID); err != nil {
			return fmt.Errorf("failed to add selection: %w", err)
		}
	}
	return tx.Commit()
}

// UserSelections returns the ids of the items a user currently owns within
// one expense scope.
func (s *Store) UserSelections(ctx context.Context, expenseID, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT io.item_id FROM item_owners io
		 JOIN items i ON i.id = io.item_id
		 WHERE io.user_id = ? AND i.expense_id = ? ORDER BY i.created_at, i.id`, userID, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer rows.Close()

	var itemIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		itemIDs = append(itemIDs, id)
	}
	return itemIDs, rows.Err()
}

// UpdateItemDetails replaces an item's name, price and proportional flag,
// leaving its owners untouched.
func (s *Store) UpdateItemDetails(ctx context.Context, item models.Item) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET name = ?, price = ?, is_proportional = ? WHERE id = ?`,
		item.Name, item.Price, boolToInt(item.IsProportional), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s: %w", item.ID, ErrNotFound)
	}
	return nil
}

// RenameExpense updates an expense's display name.
func (s *Store) RenameExpense(ctx context.Context, expenseID, name string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE expenses SET name = ? WHERE id = ?`, name, expenseID)
	if err != nil {
		return fmt.Errorf("failed to rename expense: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
	}
	return nil
}

// SetTransactionDate updates an expense's transaction date.
func (s *Store) SetTransactionDate(ctx context.Context, expenseID string, transactionDate int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET transaction_date = ? WHERE id = ?`, transactionDate, expenseID)
	if err != nil {
		return fmt.Errorf("failed to update transaction date: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
	}
	return nil
}

// ItemScope returns the id of the expense scope an item belongs to, which
// may be a child of the session expense.
func (s *Store) ItemScope(ctx context.Context, itemID string) (string, error) {
	var expenseID string
	err := s.db.QueryRowContext(ctx, `SELECT expense_id FROM items WHERE id = ?`, itemID).Scan(&expenseID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve item scope: %w", err)
	}
	return expenseID, nil
}

// SetPayerSettled upserts the settled flag for one participant on an
// expense.
func (s *Store) SetPayerSettled(ctx context.Context, expenseID, userID string, settled bool) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO payer_statuses (expense_id, user_id, settled) VALUES (?, ?, ?)
		 ON CONFLICT(expense_id, user_id) DO UPDATE SET settled=excluded.settled`,
		expenseID, userID, boolToInt(settled)); err != nil {
		return fmt.Errorf("failed to update payer status: %w", err)
	}
	return nil
}

// InviteUser adds a participant to an expense by phone number, creating an
// unregistered user record if the phone is unknown.
func (s *Store) InviteUser(ctx context.Context, expenseID, phone string) (*models.UserDetails, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var user models.UserDetails
	var registered int
	err = tx.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, phone, registered FROM users WHERE phone = ?`, phone,
	).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Phone, &registered)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		user = models.UserDetails{ID: uuid.New().String(), Phone: phone}
		if err := upsertUser(ctx, tx, user); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up phone: %w", err)
	default:
		user.Registered = registered != 0
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO expense_users (expense_id, user_id) VALUES (?, ?)`,
		expenseID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to link participant: %w", err)
	}
	return &user, tx.Commit()
}

// RootExpenseID resolves the root session expense an item mutation belongs
// to: the expense itself when it has no parent, otherwise its parent.
func (s *Store) RootExpenseID(ctx context.Context, expenseID string) (string, error) {
	var parent sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT parent_id FROM expenses WHERE id = ?`, expenseID).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	if parent.Valid {
		return parent.String, nil
	}
	return expenseID, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
