// Package live fans clock events out to Server-Sent Events subscribers.
//
// Each subscriber is tied to the requester that opened the stream and only
// receives events the access policy would let that requester read: managers
// see every toggle, employees only their own.
package live

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/policy"
)

// bufferSize is how many events a slow subscriber may lag behind before
// new events are dropped for it.
const bufferSize = 32

// Event is one SSE frame.
type Event struct {
	ID   string
	Name string
	Data []byte
}

type subscriber struct {
	requester domain.Requester
	events    chan Event
}

// Hub keeps the set of open streams.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*subscriber
	log  *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{subs: make(map[string]*subscriber), log: log}
}

// Subscribe registers a stream for requester. The channel is closed by
// Unsubscribe.
func (h *Hub) Subscribe(requester domain.Requester) (string, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	sub := &subscriber{requester: requester, events: make(chan Event, bufferSize)}
	h.subs[id] = sub
	h.log.Debug("live subscriber added", zap.String("id", id), zap.Int64("user_id", requester.ID))
	return id, sub.events
}

// Unsubscribe removes the stream and closes its channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[id]; ok {
		close(sub.events)
		delete(h.subs, id)
		h.log.Debug("live subscriber removed", zap.String("id", id))
	}
}

// Len returns the number of open streams.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// PublishClock delivers e to every subscriber allowed to read the event's
// user. Sends never block: a full buffer drops the event for that subscriber.
func (h *Hub) PublishClock(e domain.ClockEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		h.log.Error("encode clock event", zap.Error(err))
		return
	}
	frame := Event{ID: uuid.NewString(), Name: "clock", Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, sub := range h.subs {
		if !policy.CanActOn(sub.requester, e.UserID) {
			continue
		}
		select {
		case sub.events <- frame:
		default:
			h.log.Warn("live subscriber lagging, event dropped", zap.String("id", id))
		}
	}
}
