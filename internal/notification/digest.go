package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/rs/zerolog/log"
)

// OpenRequestLister supplies the requests a digest reports.
type OpenRequestLister interface {
	OpenRequests(ctx context.Context) ([]model.BreakCaseRequest, error)
}

// Digest periodically sends every OPEN break-case request to a sink.
type Digest struct {
	source   OpenRequestLister
	sink     Sink
	interval time.Duration
	timeout  time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDigest creates a scheduler. Start must be called to begin ticking.
func NewDigest(source OpenRequestLister, sink Sink, interval time.Duration) *Digest {
	return &Digest{
		source:   source,
		sink:     sink,
		interval: interval,
		timeout:  30 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the ticker goroutine. A non-positive interval disables it.
func (d *Digest) Start() {
	if d.interval <= 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
				if err := d.RunOnce(ctx); err != nil {
					log.Error().Err(err).Msg("case-break digest failed")
				}
				cancel()
			case <-d.stopCh:
				return
			}
		}
	}()
}

// Stop halts the ticker and waits for an in-flight run.
func (d *Digest) Stop() {
	d.once.Do(func() { close(d.stopCh) })
	d.wg.Wait()
}

// RunOnce sends one digest. Nothing is sent when no request is open.
func (d *Digest) RunOnce(ctx context.Context) error {
	open, err := d.source.OpenRequests(ctx)
	if err != nil {
		return fmt.Errorf("list open requests: %w", err)
	}
	if len(open) == 0 {
		log.Debug().Msg("case-break digest skipped, no open requests")
		return nil
	}
	return d.sink.Notify(ctx, CaseBreakDigest(open))
}
