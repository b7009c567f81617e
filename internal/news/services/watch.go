package services

import "sync"

// changeHub fans out table-change signals to live query subscribers.
type changeHub struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func newChangeHub() *changeHub {
	return &changeHub{subs: make(map[int]chan struct{})}
}

func (h *changeHub) subscribe() (int, chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++

	// Capacity one so repeated writes coalesce into a single pending signal
	// and a slow subscriber never blocks a writer.
	ch := make(chan struct{}, 1)
	h.subs[id] = ch
	return id, ch
}

func (h *changeHub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// broadcast signals every subscriber that the articles table changed.
func (h *changeHub) broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
