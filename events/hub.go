// Package events holds the in-process registry of connected clients and
// fans status-change and catalog-change signals out to them. Delivery is
// fire-and-forget: a subscriber that is absent, slow or full simply misses
// the event.
package events

import (
	"sync"
	"time"
)

const (
	EventCatalogChanged = "catalogChanged"
	EventOrderStatus    = "orderStatusUpdate"
	EventPing           = "ping"
	EventConnected      = "connected"
)

type Event struct {
	Type        string `json:"type"`
	OrderID     string `json:"order_id,omitempty"`
	OrderNumber int64  `json:"order_number,omitempty"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// subscriberBuffer bounds how far a slow consumer can lag before events are
// dropped for it.
const subscriberBuffer = 8

// Hub is owned by the server instance: created in main, closed on shutdown.
type Hub struct {
	mu      sync.Mutex
	closed  bool
	catalog map[chan Event]struct{}
	orders  map[string]map[chan Event]struct{}

	keepAlive time.Duration
	stop      chan struct{}
	wg        sync.WaitGroup
}

func NewHub() *Hub {
	return &Hub{
		catalog:   make(map[chan Event]struct{}),
		orders:    make(map[string]map[chan Event]struct{}),
		keepAlive: 30 * time.Second,
		stop:      make(chan struct{}),
	}
}

// Run emits keep-alive pings to every subscriber until the hub is closed.
// Pings double as opportunistic pruning: handlers whose client went away
// observe the write failure and unsubscribe.
func (h *Hub) Run() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				h.broadcast(Event{Type: EventPing, Timestamp: time.Now().UnixMilli()})
			}
		}
	}()
}

// SubscribeCatalog registers a catalog-change subscriber. The returned cancel
// func is idempotent and must be called on disconnect.
func (h *Hub) SubscribeCatalog() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.catalog[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.catalog[ch]; ok {
				delete(h.catalog, ch)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// SubscribeOrders registers a subscriber for one user's order events.
func (h *Hub) SubscribeOrders(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if h.orders[userID] == nil {
		h.orders[userID] = make(map[chan Event]struct{})
	}
	h.orders[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.orders[userID]; ok {
				if _, ok := subs[ch]; ok {
					delete(subs, ch)
					close(ch)
				}
				if len(subs) == 0 {
					delete(h.orders, userID)
				}
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// BroadcastCatalog signals every connected client that the catalog changed.
// The signal carries no payload; clients re-fetch.
func (h *Hub) BroadcastCatalog() {
	h.mu.Lock()
	defer h.mu.Unlock()
	ev := Event{Type: EventCatalogChanged, Timestamp: time.Now().UnixMilli()}
	for ch := range h.catalog {
		send(ch, ev)
	}
}

// NotifyUser pushes an order event to the given user's connections and
// returns how many subscribers received it. Zero is not an error.
func (h *Hub) NotifyUser(userID string, ev Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	delivered := 0
	for ch := range h.orders[userID] {
		if send(ch, ev) {
			delivered++
		}
	}
	return delivered
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.catalog {
		send(ch, ev)
	}
	for _, subs := range h.orders {
		for ch := range subs {
			send(ch, ev)
		}
	}
}

// send never blocks; a full buffer drops the event.
func send(ch chan Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	default:
		return false
	}
}

// Close tears the registry down. All subscriber channels are closed so
// connected handlers unwind.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.stop)
	for ch := range h.catalog {
		close(ch)
	}
	h.catalog = make(map[chan Event]struct{})
	for _, subs := range h.orders {
		for ch := range subs {
			close(ch)
		}
	}
	h.orders = make(map[string]map[chan Event]struct{})
	h.mu.Unlock()
	h.wg.Wait()
}
