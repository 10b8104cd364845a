// Package notification delivers fulfillment events to the warehouse side after
// the originating transaction has committed.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/guttosm/casebreak-service/internal/domain/model"
)

// EventType names an event on the wire.
type EventType string

const (
	EventPurchaseCompleted  EventType = "purchase.completed"
	EventCaseBreakProcessed EventType = "case_break.processed"
	EventCaseBreakDigest    EventType = "case_break.digest"
)

// ErrSinkClosed is returned by sinks after Close.
var ErrSinkClosed = errors.New("notification: sink closed")

// Event is the payload handed to every sink.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	Purchase          *model.PurchaseRecord    `json:"purchase,omitempty"`
	HasUnits          bool                     `json:"has_units,omitempty"`
	InventoryItems    []model.PurchaseItem     `json:"inventory_items,omitempty"`
	BreakCaseRequests []model.BreakCaseRequest `json:"break_case_requests,omitempty"`
	UpdatedStock      *model.UpdatedStock      `json:"updated_stock,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(t EventType) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: time.Now().UTC()}
}

// PurchaseCompleted builds the event sent after a checkout commits. fromStock
// lists the unit items shipped from existing inventory, each carrying only the
// quantity reserved from stock; created lists the break-case requests raised
// for the rest.
func PurchaseCompleted(p *model.PurchaseRecord, fromStock []model.PurchaseItem, created []model.BreakCaseRequest) Event {
	e := NewEvent(EventPurchaseCompleted)
	e.Purchase = p
	e.HasUnits = p.HasUnits()
	e.InventoryItems = fromStock
	e.BreakCaseRequests = created
	return e
}

// CaseBreakProcessed builds the event sent after a request is fulfilled.
func CaseBreakProcessed(stock *model.UpdatedStock) Event {
	e := NewEvent(EventCaseBreakProcessed)
	e.UpdatedStock = stock
	return e
}

// CaseBreakDigest builds the periodic summary of open requests.
func CaseBreakDigest(open []model.BreakCaseRequest) Event {
	e := NewEvent(EventCaseBreakDigest)
	e.BreakCaseRequests = open
	return e
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Notify(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop discards every event.
var Nop Sink = SinkFunc(func(context.Context, Event) error { return nil })
