// Package models defines the core domain models for billsync.
//
// # Models
//
//   - Expense: a bill being split, with items, participants, payers, and
//     optionally child expenses (a "group expense" contains sub-expenses,
//     each independently split)
//   - Item: a single line item, split evenly among its owners or, when
//     proportional, allocated by each owner's share of the non-proportional
//     subtotal (tax/tip style charges)
//   - UserDetails: a participant; an empty phone number marks a guest
//   - PayerShare / PayerStatus: who fronted money and who has reimbursed
//     them, tracked independently
//   - Event / Command: the wire messages exchanged over the live session
//     channel
//
// # Design Principles
//
//  1. **Snapshot semantics**: an Expense value is a point-in-time snapshot;
//     the reducer never mutates one in place, it builds a replacement
//  2. **Derived totals**: Subtotal/Total are computed from items, never
//     stored, so they cannot drift from the item list
//  3. **Avoid circular references**: items carry their owning expense ID
//     instead of a pointer back to the expense
package models
