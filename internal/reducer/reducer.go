// Package reducer folds inbound session events onto an expense snapshot.
//
// Apply is a functional transform: it never mutates the snapshot it is
// given. A changed scope (the root expense or one child) is shallow-copied
// with the one affected item replaced, so every other item, child, and the
// input snapshot itself stay untouched. Callers holding the old reference
// keep a consistent view.
//
// Events that reference an item, user, or expense scope missing from the
// snapshot are treated as stale or already superseded and applied as no-ops,
// never as errors.
package reducer

import (
	"context"
	"log/slog"

	"github.com/mmynk/billsync/internal/models"
)

// Resolver resolves a user id that is not among the snapshot's participants,
// typically via a cache backed by a REST lookup. The boolean reports whether
// the user could be resolved.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (models.UserDetails, bool)
}

// Apply computes the next snapshot from the current one and a single event.
// It returns the input snapshot unchanged (and false) when the event cannot
// be applied.
//
// Callers must serialize Apply invocations for the same session: the
// resolver lookup is the one suspension point, and overlapping applications
// of events against the same snapshot would race.
func Apply(ctx context.Context, event models.Event, current *models.Expense, users Resolver) (*models.Expense, bool) {
	switch event.Type {
	case models.EventFullSnapshot:
		if event.Expense == nil {
			return current, false
		}
		return event.Expense, true

	case models.EventItemSelectionChanged:
		return applySelection(ctx, event, current, users)

	case models.EventItemDetailsChanged:
		return applyDetails(event, current)

	case models.EventConnectionAck:
		return current, false

	default:
		slog.Debug("Ignoring unknown event type", "type", event.Type)
		return current, false
	}
}

// applySelection toggles one user's membership in an item's owner list.
func applySelection(ctx context.Context, event models.Event, current *models.Expense, users Resolver) (*models.Expense, bool) {
	if current == nil {
		return nil, false
	}

	item, _, found := current.FindItem(event.ItemID)
	if !found {
		slog.Debug("Selection for unknown item", "item_id", event.ItemID)
		return current, false
	}

	user, ok := resolveUser(ctx, event.UserID, current, users)
	if !ok {
		slog.Debug("Selection by unknown user", "user_id", event.UserID)
		return current, false
	}

	next := *item
	if event.Selected {
		if item.HasOwner(user.ID) {
			return current, false
		}
		next.Owners = append(append([]models.UserDetails{}, item.Owners...), user)
	} else {
		if !item.HasOwner(user.ID) {
			return current, false
		}
		next.Owners = make([]models.UserDetails, 0, len(item.Owners)-1)
		for _, o := range item.Owners {
			if o.ID != user.ID {
				next.Owners = append(next.Owners, o)
			}
		}
	}

	return replaceItem(current, event.ExpenseID, next)
}

// applyDetails replaces an item's details while preserving its owner list,
// so detail edits never clobber concurrently-applied selection edits.
func applyDetails(event models.Event, current *models.Expense) (*models.Expense, bool) {
	if current == nil || event.Item == nil {
		return current, false
	}

	item, _, found := current.FindItem(event.Item.ID)
	if !found {
		slog.Debug("Details for unknown item", "item_id", event.Item.ID)
		return current, false
	}

	next := *event.Item
	next.Owners = item.Owners

	return replaceItem(current, event.ExpenseID, next)
}

// resolveUser looks the user up in the snapshot's participant lists first
// (root, then each child), falling back to the resolver.
func resolveUser(ctx context.Context, userID string, current *models.Expense, users Resolver) (models.UserDetails, bool) {
	if user, ok := current.FindUser(userID); ok {
		return user, true
	}
	for i := range current.Expenses {
		if user, ok := current.Expenses[i].FindUser(userID); ok {
			return user, true
		}
	}
	if users == nil {
		return models.UserDetails{}, false
	}
	return users.Resolve(ctx, userID)
}

// replaceItem builds a new snapshot with one item replaced in the addressed
// scope (the root expense or the child matching scopeID). Returns the input
// unchanged when the scope or the item's slot cannot be found.
func replaceItem(current *models.Expense, scopeID string, item models.Item) (*models.Expense, bool) {
	if current.ID == scopeID {
		items, ok := spliceItem(current.Items, item)
		if !ok {
			return current, false
		}
		next := *current
		next.Items = items
		return &next, true
	}

	for i := range current.Expenses {
		if current.Expenses[i].ID != scopeID {
			continue
		}
		items, ok := spliceItem(current.Expenses[i].Items, item)
		if !ok {
			return current, false
		}
		child := current.Expenses[i]
		child.Items = items

		children := append([]models.Expense{}, current.Expenses...)
		children[i] = child
		next := *current
		next.Expenses = children
		return &next, true
	}

	slog.Debug("Event addressed to unknown expense scope", "expense_id", scopeID)
	return current, false
}

// spliceItem copies the item slice with the slot matching item.ID replaced.
func spliceItem(items []models.Item, item models.Item) ([]models.Item, bool) {
	for i := range items {
		if items[i].ID == item.ID {
			next := append([]models.Item{}, items...)
			next[i] = item
			return next, true
		}
	}
	return nil, false
}
