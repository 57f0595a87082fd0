package services

import (
	"context"
	"slices"
	"sync"

	"github.com/sibintb/submanager/internal/models"
)

// hub fans snapshots out to live subscribers. Each subscriber has a one slot
// buffer that always holds the newest snapshot. Snapshots of an older
// generation than the last published one are dropped.
type hub struct {
	mu   sync.Mutex
	subs map[chan []models.Subscription]struct{}
	last uint64
}

func newHub() *hub {
	return &hub{subs: make(map[chan []models.Subscription]struct{})}
}

func (h *hub) subscribe(ctx context.Context) chan []models.Subscription {
	ch := make(chan []models.Subscription, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		close(ch)
		h.mu.Unlock()
	}()
	return ch
}

func (h *hub) active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs) > 0
}

func (h *hub) publish(gen uint64, list []models.Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen < h.last {
		return
	}
	h.last = gen
	for ch := range h.subs {
		replace(ch, slices.Clone(list))
	}
}

// offer sends the first snapshot to a new subscriber. A snapshot already
// published to ch is newer and is kept.
func (h *hub) offer(ch chan []models.Subscription, list []models.Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return
	}
	select {
	case ch <- slices.Clone(list):
	default:
	}
}

// replace puts list in the buffer of ch, dropping an unread older snapshot.
// Callers hold h.mu, and only the hub sends on ch.
func replace(ch chan []models.Subscription, list []models.Subscription) {
	select {
	case ch <- list:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- list
}
