package webui

import (
	"sync"
)

// hub fans state snapshots out to websocket subscribers. Each subscriber
// holds at most one pending snapshot; a newer one replaces it so a slow
// client never blocks the orchestrator.
type hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	ch chan StateView
}

func newHub() *hub {
	return &hub{subs: make(map[*subscriber]struct{})}
}

func (h *hub) subscribe() *subscriber {
	sub := &subscriber{ch: make(chan StateView, 1)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *hub) broadcast(view StateView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- view:
			continue
		default:
		}
		// Drop the stale pending snapshot, then retry once.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- view:
		default:
		}
	}
}
