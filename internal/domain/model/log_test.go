package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogEntry_WithField(t *testing.T) {
	tests := []struct {
		name     string
		entry    *LogEntry
		key      string
		value    interface{}
		expected map[string]interface{}
	}{
		{
			name:     "nil fields are initialised",
			entry:    &LogEntry{},
			key:      "purchase_id",
			value:    "p-1",
			expected: map[string]interface{}{"purchase_id": "p-1"},
		},
		{
			name:     "existing fields are kept",
			entry:    &LogEntry{Fields: map[string]interface{}{"product_id": "x"}},
			key:      "quantity",
			value:    6,
			expected: map[string]interface{}{"product_id": "x", "quantity": 6},
		},
		{
			name:     "same key is overwritten",
			entry:    &LogEntry{Fields: map[string]interface{}{"status": "OPEN"}},
			key:      "status",
			value:    "COMPLETED",
			expected: map[string]interface{}{"status": "COMPLETED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.entry.WithField(tt.key, tt.value)
			assert.Same(t, tt.entry, result)
			assert.Equal(t, tt.expected, result.Fields)
		})
	}
}

func TestLogEntry_WithFields(t *testing.T) {
	entry := &LogEntry{Fields: map[string]interface{}{"action": "checkout"}}

	entry.WithFields(map[string]interface{}{"items": 3, "has_units": true})

	assert.Equal(t, map[string]interface{}{
		"action":    "checkout",
		"items":     3,
		"has_units": true,
	}, entry.Fields)

	empty := (&LogEntry{}).WithFields(nil)
	assert.NotNil(t, empty.Fields)
	assert.Empty(t, empty.Fields)
}
