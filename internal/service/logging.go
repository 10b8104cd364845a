package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/repository"
)

// Audit trail paging bounds.
const (
	DefaultAuditPageSize = 50
	MaxAuditPageSize     = 500
)

// LoggingService persists request and audit log entries and serves them back
// as an audit trail.
type LoggingService interface {
	// CreateLog stores a single log entry. The entry's ID and Timestamp are
	// filled in when missing.
	CreateLog(ctx context.Context, entry *model.LogEntry) error

	// CreateLogs stores entries in one bulk write.
	CreateLogs(ctx context.Context, entries []*model.LogEntry) error

	// AuditTrail returns one page of entries matching q, newest first.
	AuditTrail(ctx context.Context, q model.LogQueryOptions) (*model.AuditPage, error)
}

// LoggingServiceImpl implements LoggingService on a logs repository.
type LoggingServiceImpl struct {
	repo repository.LogsRepositoryInterface
}

// NewLoggingService creates a logging service backed by repo.
func NewLoggingService(repo repository.LogsRepositoryInterface) LoggingService {
	return &LoggingServiceImpl{repo: repo}
}

func (s *LoggingServiceImpl) CreateLog(ctx context.Context, entry *model.LogEntry) error {
	return s.repo.Create(ctx, repository.NewLogEntryDocument(entry))
}

func (s *LoggingServiceImpl) CreateLogs(ctx context.Context, entries []*model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]*repository.LogEntryDocument, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, repository.NewLogEntryDocument(entry))
	}
	return s.repo.CreateMany(ctx, docs)
}

func (s *LoggingServiceImpl) AuditTrail(ctx context.Context, q model.LogQueryOptions) (*model.AuditPage, error) {
	q, err := normalizeLogQuery(q)
	if err != nil {
		return nil, err
	}

	docs, err := s.repo.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count audit trail: %w", err)
	}

	page := &model.AuditPage{
		Entries: make([]model.LogEntry, 0, len(docs)),
		Total:   total,
		Limit:   q.Limit,
		Skip:    q.Skip,
	}
	for _, doc := range docs {
		page.Entries = append(page.Entries, doc.Entry())
	}
	return page, nil
}

// normalizeLogQuery rejects negative paging and inverted time ranges, and
// clamps the page size to (0, MaxAuditPageSize].
func normalizeLogQuery(q model.LogQueryOptions) (model.LogQueryOptions, error) {
	if q.Limit < 0 || q.Skip < 0 {
		return q, fmt.Errorf("%w: limit and skip must not be negative", ErrInvalidLogQuery)
	}
	if q.StartTime != nil && q.EndTime != nil && q.EndTime.Before(*q.StartTime) {
		return q, fmt.Errorf("%w: end time is before start time", ErrInvalidLogQuery)
	}

	switch {
	case q.Limit == 0:
		q.Limit = DefaultAuditPageSize
	case q.Limit > MaxAuditPageSize:
		q.Limit = MaxAuditPageSize
	}
	q.Level = strings.ToLower(strings.TrimSpace(q.Level))
	return q, nil
}
