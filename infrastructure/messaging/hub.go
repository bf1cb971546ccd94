// Package messaging fans session events out to every subscribed renderer.
package messaging

import (
	"context"
	"sync"

	"brainbrowser/application/ports"
	"brainbrowser/domain/events"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBufferSize is the per-subscriber queue length
const DefaultBufferSize = 256

// Message is one event as delivered to renderers
type Message struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Gauge receives the live subscriber count; prometheus.Gauge fits
type Gauge interface {
	Set(float64)
}

// Hub is an in-process EventPublisher. Publish never blocks: a subscriber
// whose queue is full misses the message.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscription
	gauge       Gauge
	logger      *zap.Logger
	closed      bool
}

var _ ports.EventPublisher = (*Hub)(nil)

// NewHub creates a hub. gauge may be nil.
func NewHub(gauge Gauge, logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscription),
		gauge:       gauge,
		logger:      logger,
	}
}

// Subscription is one renderer's event feed
type Subscription struct {
	id      string
	hub     *Hub
	ch      chan Message
	filter  map[string]struct{}
	dropped int
	once    sync.Once
}

// ID identifies the subscription in logs
func (s *Subscription) ID() string { return s.id }

// C delivers messages until the subscription or hub closes
func (s *Subscription) C() <-chan Message { return s.ch }

// Close unsubscribes and closes C
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

func (s *Subscription) wants(eventType string) bool {
	if len(s.filter) == 0 {
		return true
	}
	_, ok := s.filter[eventType]
	return ok
}

// Subscribe registers a feed. With types given, only those event types
// are delivered.
func (h *Hub) Subscribe(buffer int, types ...string) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	sub := &Subscription{
		id:  uuid.New().String(),
		hub: h,
		ch:  make(chan Message, buffer),
	}
	if len(types) > 0 {
		sub.filter = make(map[string]struct{}, len(types))
		for _, t := range types {
			sub.filter[t] = struct{}{}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subscribers[sub.id] = sub
	h.updateGauge()

	h.logger.Debug("Renderer subscribed",
		zap.String("subscriptionID", sub.id),
		zap.Int("subscribers", len(h.subscribers)),
	)
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub.id]; !ok {
		return
	}
	delete(h.subscribers, sub.id)
	sub.once.Do(func() { close(sub.ch) })
	h.updateGauge()

	h.logger.Debug("Renderer unsubscribed",
		zap.String("subscriptionID", sub.id),
		zap.Int("dropped", sub.dropped),
	)
}

// Publish implements ports.EventPublisher
func (h *Hub) Publish(ctx context.Context, evts ...events.DomainEvent) {
	if len(evts) == 0 {
		return
	}

	msgs := make([]Message, 0, len(evts))
	for _, evt := range evts {
		data, err := json.Marshal(evt)
		if err != nil {
			h.logger.Error("Failed to encode event", zap.String("type", evt.GetEventType()), zap.Error(err))
			continue
		}
		msgs = append(msgs, Message{
			Type:      evt.GetEventType(),
			Timestamp: evt.GetTimestamp().UnixMilli(),
			Data:      data,
		})
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subscribers {
		for _, msg := range msgs {
			if !sub.wants(msg.Type) {
				continue
			}
			select {
			case sub.ch <- msg:
			default:
				sub.dropped++
				h.logger.Warn("Renderer queue full, message dropped",
					zap.String("subscriptionID", sub.id),
					zap.String("type", msg.Type),
				)
			}
		}
	}
}

// Count reports the live subscriber count
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close ends every subscription; later subscriptions start closed
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, sub := range h.subscribers {
		sub.once.Do(func() { close(sub.ch) })
		delete(h.subscribers, id)
	}
	h.updateGauge()
	h.logger.Info("Event hub closed")
}

func (h *Hub) updateGauge() {
	if h.gauge != nil {
		h.gauge.Set(float64(len(h.subscribers)))
	}
}
