// Package events publishes order lifecycle notifications to downstream
// consumers. Publishing is best effort and never fails the caller.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bazaar/internal/domain"
)

type Type string

const (
	OrderPlaced        Type = "order.placed"
	OrderStatusChanged Type = "order.status_changed"
	OrderRated         Type = "order.rated"
)

type Event struct {
	Type       Type               `json:"type"`
	OrderID    string             `json:"order_id"`
	BuyerID    string             `json:"buyer_id"`
	Status     domain.OrderStatus `json:"status"`
	Total      decimal.Decimal    `json:"total"`
	Rating     int                `json:"rating,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// FromOrder builds an event of type t describing o as it is now.
func FromOrder(t Type, o domain.Order) Event {
	return Event{
		Type:       t,
		OrderID:    o.ID,
		BuyerID:    o.BuyerID,
		Status:     o.Status,
		Total:      o.TotalPrice,
		Rating:     o.Rating,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) MarshalBinary() ([]byte, error) { return json.Marshal(e) }

func (e *Event) UnmarshalBinary(data []byte) error {
	if err := json.Unmarshal(data, e); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
	Close()
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
func (Nop) Close()                         {}

// Recorder keeps published events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Close() {}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists recorded event types in publish order.
func (r *Recorder) Types() []Type {
	var out []Type
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}
