package session

import (
	"testing"
	"time"

	"github.com/mmynk/billsync/internal/models"
)

func recvSnapshot(t *testing.T, ch <-chan *models.Expense) *models.Expense {
	t.Helper()
	select {
	case snapshot := <-ch:
		return snapshot
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestHolderReplaysCurrentToNewSubscriber(t *testing.T) {
	holder := NewHolder()
	expense := &models.Expense{ID: "e1"}
	holder.Update(expense)

	ch, cancel := holder.Subscribe()
	defer cancel()

	if got := recvSnapshot(t, ch); got != expense {
		t.Errorf("replayed snapshot = %v, want %v", got, expense)
	}
}

func TestHolderPublishesLiveUpdates(t *testing.T) {
	holder := NewHolder()
	ch, cancel := holder.Subscribe()
	defer cancel()

	if got := recvSnapshot(t, ch); got != nil {
		t.Fatalf("initial replay = %v, want nil", got)
	}

	first := &models.Expense{ID: "e1"}
	second := &models.Expense{ID: "e2"}
	holder.Update(first)
	holder.Update(second)

	if got := recvSnapshot(t, ch); got != first {
		t.Errorf("first update = %v, want %v", got, first)
	}
	if got := recvSnapshot(t, ch); got != second {
		t.Errorf("second update = %v, want %v", got, second)
	}
	if holder.Current() != second {
		t.Errorf("Current() = %v, want %v", holder.Current(), second)
	}
}

func TestHolderCancelStopsDelivery(t *testing.T) {
	holder := NewHolder()
	ch, cancel := holder.Subscribe()
	recvSnapshot(t, ch)

	cancel()
	cancel() // idempotent

	// The channel is closed; updates must not panic.
	holder.Update(&models.Expense{ID: "e1"})
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}
}

func TestHolderSlowSubscriberKeepsLatest(t *testing.T) {
	holder := NewHolder()
	ch, cancel := holder.Subscribe()
	defer cancel()

	// Overrun the buffer without reading.
	for i := 0; i < subscriberBuffer*3; i++ {
		holder.Update(&models.Expense{ID: "spam"})
	}
	final := &models.Expense{ID: "final"}
	holder.Update(final)

	// Drain: the last delivered value must be the final snapshot.
	var last *models.Expense
	for {
		select {
		case snapshot := <-ch:
			last = snapshot
			continue
		default:
		}
		break
	}
	if last != final {
		t.Errorf("last buffered snapshot = %v, want %v", last, final)
	}
}
