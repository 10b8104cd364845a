package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/logger"
	"github.com/guttosm/casebreak-service/internal/service"
)

// AsyncLoggerConfig sizes the background log writer.
type AsyncLoggerConfig struct {
	// BufferSize is how many entries may wait before Log starts dropping.
	BufferSize int
	NumWorkers int
	// BatchSize caps the entries sent in one CreateLogs call.
	BatchSize int
	// FlushInterval bounds how long a partial batch waits for company.
	FlushInterval time.Duration
	// WriteTimeout bounds a single CreateLogs call.
	WriteTimeout time.Duration
}

// DefaultAsyncLoggerConfig returns the defaults used by the application.
func DefaultAsyncLoggerConfig() AsyncLoggerConfig {
	return AsyncLoggerConfig{
		BufferSize:    1000,
		NumWorkers:    2,
		BatchSize:     50,
		FlushInterval: 500 * time.Millisecond,
		WriteTimeout:  5 * time.Second,
	}
}

// AsyncLoggerStats counts entries by outcome.
type AsyncLoggerStats struct {
	Enqueued int64
	Dropped  int64
	Written  int64
	Errors   int64
	Batches  int64
}

// AsyncLogger batches request and audit entries into bulk writes on a small
// worker pool, off the request path.
type AsyncLogger struct {
	sink          service.LoggingService
	queue         chan *model.LogEntry
	stop          chan struct{}
	stopOnce      sync.Once
	workers       sync.WaitGroup
	batchSize     int
	flushInterval time.Duration
	writeTimeout  time.Duration

	enqueued, dropped, written, failed, batches atomic.Int64
}

// NewAsyncLogger starts the workers. It returns nil when sink is nil.
func NewAsyncLogger(sink service.LoggingService, cfg AsyncLoggerConfig) *AsyncLogger {
	if sink == nil {
		return nil
	}
	def := DefaultAsyncLoggerConfig()
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	al := &AsyncLogger{
		sink:          sink,
		queue:         make(chan *model.LogEntry, cfg.BufferSize),
		stop:          make(chan struct{}),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		writeTimeout:  cfg.WriteTimeout,
	}
	al.workers.Add(cfg.NumWorkers)
	for range cfg.NumWorkers {
		go al.run()
	}
	return al
}

func (al *AsyncLogger) run() {
	defer al.workers.Done()

	ticker := time.NewTicker(al.flushInterval)
	defer ticker.Stop()

	batch := al.newBatch()
	add := func(entry *model.LogEntry) {
		batch = append(batch, entry)
		if len(batch) >= al.batchSize {
			al.flush(batch)
			batch = al.newBatch()
		}
	}

	for {
		select {
		case entry := <-al.queue:
			add(entry)
		case <-ticker.C:
			if len(batch) > 0 {
				al.flush(batch)
				batch = al.newBatch()
			}
		case <-al.stop:
			for {
				select {
				case entry := <-al.queue:
					add(entry)
				default:
					if len(batch) > 0 {
						al.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (al *AsyncLogger) newBatch() []*model.LogEntry {
	return make([]*model.LogEntry, 0, al.batchSize)
}

func (al *AsyncLogger) flush(batch []*model.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), al.writeTimeout)
	defer cancel()

	al.batches.Add(1)
	n := int64(len(batch))
	if err := al.sink.CreateLogs(ctx, batch); err != nil {
		al.failed.Add(n)
		logger.FromContext(ctx).Warn().Err(err).
			Int("entries", len(batch)).
			Str("first_request_id", batch[0].RequestID).
			Msg("Dropped log batch")
		return
	}
	al.written.Add(n)
}

// Log queues entry and reports whether it was accepted. A full queue drops
// the entry rather than block the caller.
func (al *AsyncLogger) Log(entry *model.LogEntry) bool {
	select {
	case al.queue <- entry:
		al.enqueued.Add(1)
		return true
	default:
		al.dropped.Add(1)
		return false
	}
}

// Stop flushes whatever is queued and waits for the workers. Repeated calls are no-ops.
func (al *AsyncLogger) Stop() {
	al.stopOnce.Do(func() {
		close(al.stop)
		al.workers.Wait()
	})
}

// Stats returns a snapshot of the counters.
func (al *AsyncLogger) Stats() AsyncLoggerStats {
	return AsyncLoggerStats{
		Enqueued: al.enqueued.Load(),
		Dropped:  al.dropped.Load(),
		Written:  al.written.Load(),
		Errors:   al.failed.Load(),
		Batches:  al.batches.Load(),
	}
}

var (
	globalAsyncLogger   *AsyncLogger
	globalAsyncLoggerMu sync.RWMutex
)

// InitAsyncLogger installs the process-wide async logger, stopping any previous one.
func InitAsyncLogger(sink service.LoggingService, cfg AsyncLoggerConfig) {
	globalAsyncLoggerMu.Lock()
	defer globalAsyncLoggerMu.Unlock()

	if globalAsyncLogger != nil {
		globalAsyncLogger.Stop()
	}
	globalAsyncLogger = NewAsyncLogger(sink, cfg)
}

// GetAsyncLogger returns the process-wide async logger, or nil.
func GetAsyncLogger() *AsyncLogger {
	globalAsyncLoggerMu.RLock()
	defer globalAsyncLoggerMu.RUnlock()
	return globalAsyncLogger
}

// StopAsyncLogger flushes and removes the process-wide async logger.
func StopAsyncLogger() {
	globalAsyncLoggerMu.Lock()
	defer globalAsyncLoggerMu.Unlock()

	if globalAsyncLogger != nil {
		globalAsyncLogger.Stop()
		globalAsyncLogger = nil
	}
}
