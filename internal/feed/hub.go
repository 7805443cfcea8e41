package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AllTables subscribes to changes of every table.
const AllTables = "*"

// Change is one confirmed write on a backing table.
type Change struct {
	Table  string    `json:"table"`
	Action Action    `json:"action"`
	ID     uint      `json:"id"`
	Origin string    `json:"origin"` // hub instance that produced the write
	At     time.Time `json:"at"`
}

// Handle identifies one subscription.
type Handle struct {
	id    string
	table string
}

func (h Handle) Table() string { return h.table }

// Publisher is implemented by anything that accepts change notifications.
type Publisher interface {
	Publish(Change)
}

// Subscriber is the subscribe side of the feed.
type Subscriber interface {
	Subscribe(table string, fn func(Change)) Handle
	Unsubscribe(Handle)
}

// Hub is an in-process change feed keyed by table name. Delivery is
// synchronous and in publish order; callbacks must not block.
type Hub struct {
	mu     sync.RWMutex
	origin string
	subs   map[string]map[string]func(Change)
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		origin: uuid.NewString(),
		subs:   make(map[string]map[string]func(Change)),
		logger: logger,
	}
}

// Origin is the id stamped on changes published by this process.
func (h *Hub) Origin() string { return h.origin }

func (h *Hub) Subscribe(table string, fn func(Change)) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle := Handle{id: uuid.NewString(), table: table}
	if h.subs[table] == nil {
		h.subs[table] = make(map[string]func(Change))
	}
	h.subs[table][handle.id] = fn
	h.logger.Debug("feed subscribe", zap.String("table", table), zap.String("handle", handle.id))
	return handle
}

// Unsubscribe is idempotent.
func (h *Hub) Unsubscribe(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[handle.table]; ok {
		delete(subs, handle.id)
		if len(subs) == 0 {
			delete(h.subs, handle.table)
		}
		h.logger.Debug("feed unsubscribe", zap.String("table", handle.table), zap.String("handle", handle.id))
	}
}

// Publish stamps the change with this hub's origin when it has none and
// delivers it to the table's subscribers and to AllTables subscribers.
func (h *Hub) Publish(change Change) {
	if change.Origin == "" {
		change.Origin = h.origin
	}
	if change.At.IsZero() {
		change.At = time.Now()
	}

	h.mu.RLock()
	targets := make([]func(Change), 0, len(h.subs[change.Table])+len(h.subs[AllTables]))
	for _, fn := range h.subs[change.Table] {
		targets = append(targets, fn)
	}
	if change.Table != AllTables {
		for _, fn := range h.subs[AllTables] {
			targets = append(targets, fn)
		}
	}
	h.mu.RUnlock()

	h.logger.Debug("feed publish",
		zap.String("table", change.Table),
		zap.String("action", string(change.Action)),
		zap.Uint("id", change.ID),
		zap.Int("subscribers", len(targets)),
	)

	// callbacks run outside the lock so they may subscribe or unsubscribe
	for _, fn := range targets {
		fn(change)
	}
}

// Subscribers returns the number of live subscriptions for table.
func (h *Hub) Subscribers(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}
