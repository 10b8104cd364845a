package notification

import (
	"context"
	"errors"

	"github.com/guttosm/casebreak-service/internal/circuitbreaker"
	"github.com/guttosm/casebreak-service/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogSink writes one structured line per event.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink uses the global logger when logger is nil.
func NewLogSink(logger *zerolog.Logger) *LogSink {
	if logger == nil {
		return &LogSink{logger: log.Logger}
	}
	return &LogSink{logger: *logger}
}

// Notify logs the event.
func (s *LogSink) Notify(_ context.Context, e Event) error {
	ev := s.logger.Info().
		Str("event_id", e.ID).
		Str("event_type", string(e.Type))

	if e.Purchase != nil {
		ev = ev.Str("purchase_id", e.Purchase.ID).
			Str("user_id", e.Purchase.UserID).
			Str("grand_total", e.Purchase.GrandTotal.StringFixed(2)).
			Bool("has_units", e.HasUnits).
			Int("inventory_items", len(e.InventoryItems))
	}
	if e.UpdatedStock != nil {
		ev = ev.Str("break_case_request_id", e.UpdatedStock.RequestID).
			Str("product_id", e.UpdatedStock.ProductID).
			Int("added_quantity", e.UpdatedStock.AddedQuantity).
			Int("new_total_stock", e.UpdatedStock.NewTotalStock)
	}
	ev.Int("break_case_requests", len(e.BreakCaseRequests)).Msg("notification")
	return nil
}

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []Sink

// Notify delivers to all sinks even when one fails.
func (m MultiSink) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BreakerSink stops calling next while its circuit is open.
type BreakerSink struct {
	next Sink
	cb   *circuitbreaker.CircuitBreaker
}

// NewBreakerSink wraps next with cb.
func NewBreakerSink(next Sink, cb *circuitbreaker.CircuitBreaker) *BreakerSink {
	return &BreakerSink{next: next, cb: cb}
}

// Notify forwards through the breaker and records the outcome.
func (b *BreakerSink) Notify(ctx context.Context, e Event) error {
	err := b.cb.Execute(ctx, func() error { return b.next.Notify(ctx, e) })
	switch {
	case err == nil:
		metrics.RecordNotification(string(e.Type), "success")
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		metrics.RecordNotification(string(e.Type), "rejected")
	default:
		metrics.RecordNotification(string(e.Type), "error")
	}
	return err
}

// CircuitBreaker exposes the breaker for health reporting.
func (b *BreakerSink) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return b.cb
}
