package streaming

import (
	"context"
	"strconv"
	"sync"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// EventBus distributes decision events to local subscribers and,
// when available, relays them to NATS. Publishing is fire-and-forget
// from the caller's point of view.
type EventBus struct {
	nats   *NATSPublisher
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers map[string]chan *DecisionEvent
	nextID      int
}

// NewEventBus creates a new event bus. nats may be nil.
func NewEventBus(nats *NATSPublisher, log *logger.Logger) *EventBus {
	return &EventBus{
		nats:        nats,
		logger:      log.WithComponent("event-bus"),
		subscribers: make(map[string]chan *DecisionEvent),
	}
}

// PublishDecision builds and distributes the event for a finished turn
func (eb *EventBus) PublishDecision(ctx context.Context, result *models.TurnResult) {
	eb.publish(ctx, NewDecisionEvent(result))
}

func (eb *EventBus) publish(ctx context.Context, event *DecisionEvent) {
	if eb.nats != nil && eb.nats.IsConnected() {
		if err := eb.nats.PublishEvent(ctx, event); err != nil {
			eb.logger.Warn().Err(err).Msg("failed to publish to NATS, using local broadcast only")
		}
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			eb.logger.Debug().Str("subscriber", id).Msg("subscriber channel full, dropping event")
		}
	}
}

// Subscribe registers a local subscriber and returns its channel plus
// an unsubscribe function
func (eb *EventBus) Subscribe() (<-chan *DecisionEvent, func()) {
	eb.mu.Lock()
	eb.nextID++
	id := strconv.Itoa(eb.nextID)
	ch := make(chan *DecisionEvent, 100)
	eb.subscribers[id] = ch
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("new subscriber")

	unsubscribe := func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		if _, ok := eb.subscribers[id]; ok {
			close(ch)
			delete(eb.subscribers, id)
		}
	}
	return ch, unsubscribe
}

// Close shuts down all subscriber channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for id, ch := range eb.subscribers {
		close(ch)
		delete(eb.subscribers, id)
	}
}
