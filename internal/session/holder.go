package session

import (
	"sync"

	"github.com/mmynk/billsync/internal/models"
)

// subscriberBuffer bounds each subscriber channel. A slow subscriber loses
// intermediate snapshots, never the latest one.
const subscriberBuffer = 8

// Holder is the single authoritative reference to the expense currently
// being viewed. It publishes snapshots as a stream that replays the current
// value to every new subscriber and then delivers live updates.
//
// A nil snapshot means no session is established: disconnecting always
// resets the holder to nil, and from nil only a full snapshot can
// re-establish state.
type Holder struct {
	mu      sync.Mutex
	current *models.Expense
	subs    map[int]chan *models.Expense
	nextID  int
}

// NewHolder creates an empty holder.
func NewHolder() *Holder {
	return &Holder{subs: make(map[int]chan *models.Expense)}
}

// Current returns the last published snapshot, or nil when no session is
// established.
func (h *Holder) Current() *models.Expense {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Update replaces the held snapshot wholesale and publishes it to every
// subscriber. Passing nil clears the session.
func (h *Holder) Update(snapshot *models.Expense) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = snapshot
	for _, sub := range h.subs {
		// Latest-wins: make room by dropping the oldest buffered snapshot.
		for {
			select {
			case sub <- snapshot:
			default:
				select {
				case <-sub:
				default:
				}
				continue
			}
			break
		}
	}
}

// Subscribe returns a channel that immediately carries the current snapshot
// and then every subsequent update, plus a cancel function that must be
// called to release the subscription.
func (h *Holder) Subscribe() (<-chan *models.Expense, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan *models.Expense, subscriberBuffer)
	ch <- h.current

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
