package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types published by the CRM
const (
	OpportunityStageChanged = "opportunity.stage_changed"
	LeadConverted           = "lead.converted"
	QuotationStatusChanged  = "quotation.status_changed"
	QuotationSent           = "quotation.sent"
	QuotationConverted      = "quotation.converted"
	QuotationExpired        = "quotation.expired"
	BookingCreated          = "booking.created"
	BookingCancelled        = "booking.cancelled"
)

// Event is a domain fact published after it has been persisted
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	TenantID    uuid.UUID      `json:"tenant_id"`
	AggregateID uuid.UUID      `json:"aggregate_id"`
	ActorID     *uuid.UUID     `json:"actor_id,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Data        map[string]any `json:"data,omitempty"`
}

// New builds an event with a fresh id and timestamp
func New(eventType string, tenantID, aggregateID uuid.UUID, data map[string]any) Event {
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		TenantID:    tenantID,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Data:        data,
	}
}

// Publisher delivers domain events to subscribers
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NoopPublisher drops events. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, e Event) error {
	slog.Debug("event dropped, no broker configured", "type", e.Type, "aggregate_id", e.AggregateID)
	return nil
}

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
	// Err, when set, is returned from every Publish call
	Err error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events with the given type
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
