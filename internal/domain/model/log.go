package model

import "time"

// LogEntry is an audit or request log record kept by the logging service.
// Context-specific data goes into Fields.
type LogEntry struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	RequestID  string                 `json:"request_id,omitempty"`
	Method     string                 `json:"method,omitempty"`
	Path       string                 `json:"path,omitempty"`
	StatusCode int                    `json:"status_code,omitempty"`
	Duration   int64                  `json:"duration_ms,omitempty"`
	IP         string                 `json:"ip,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	Error      string                 `json:"error,omitempty"`
	UserID     string                 `json:"user_id,omitempty"`
	ActionType string                 `json:"action_type,omitempty"` // e.g. "checkout", "process_case_break"
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// WithField adds a field to the entry, initialising Fields when nil.
func (e *LogEntry) WithField(key string, value interface{}) *LogEntry {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields merges fields into the entry.
func (e *LogEntry) WithFields(fields map[string]interface{}) *LogEntry {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// LogQueryOptions filters a log query.
type LogQueryOptions struct {
	RequestID  string
	Level      string
	ActionType string
	UserID     string
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
	Skip       int
}

// AuditPage is one page of an audit trail query. Total counts every match,
// not just the entries returned.
type AuditPage struct {
	Entries []LogEntry `json:"entries"`
	Total   int64      `json:"total"`
	Limit   int        `json:"limit"`
	Skip    int        `json:"skip"`
}
