package memory

import (
	"context"
	"sync"

	"cinescore/pkg/model"
)

// Publisher defines an in-memory rating-event publisher, used in
// tests and when no broker is configured.
type Publisher struct {
	mu     sync.Mutex
	events []model.RatingEvent
}

// NewPublisher creates a new in-memory publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish records the event.
func (p *Publisher) Publish(_ context.Context, event *model.RatingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

// Events returns a copy of all published events.
func (p *Publisher) Events() []model.RatingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.RatingEvent(nil), p.events...)
}
