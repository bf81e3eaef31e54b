package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturingAudit(t *testing.T) (*AuditLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	al.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return al, &buf
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestLogAuthAttempt_Failure(t *testing.T) {
	al, buf := newCapturingAudit(t)

	al.LogAuthAttempt(context.Background(), AuditEvent{
		EventType:     EventLogin,
		Username:      "alice",
		IPAddress:     "203.0.113.10",
		Success:       false,
		FailureReason: "invalid_credentials",
	})

	record := decodeRecord(t, buf)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "audit", record["msg"])
	assert.Equal(t, "login", record["event_type"])
	assert.Equal(t, "alice", record["username"])
	assert.Equal(t, "invalid_credentials", record["failure_reason"])
	assert.Equal(t, "2026-01-02T03:04:05Z", record["timestamp"])
	assert.NotContains(t, record, "user_id")
}

func TestLogAuthAttempt_Success(t *testing.T) {
	al, buf := newCapturingAudit(t)

	al.LogAuthAttempt(context.Background(), AuditEvent{EventType: EventLogin, UserID: "u1", Success: true})

	record := decodeRecord(t, buf)
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, true, record["success"])
	assert.Equal(t, "u1", record["user_id"])
}

func TestLogResourceAction(t *testing.T) {
	al, buf := newCapturingAudit(t)

	al.LogResourceAction(context.Background(), EventResourceDelete, "u1", "schedule", "s1")

	record := decodeRecord(t, buf)
	assert.Equal(t, "account", record["audit_type"])
	assert.Equal(t, "resource_delete", record["event_type"])
	assert.Equal(t, "schedule", record["resource"])
	assert.Equal(t, "s1", record["resource_id"])
}

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice@x.com", "a****@*.com"},
		{"a@example.org", "a@*******.org"},
		{"not-an-email", "[invalid-email]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizedEmail(tt.in), tt.in)
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("username=alice&password=x"))
	assert.True(t, SanitizeQueryString("access_TOKEN=abc"))
	assert.False(t, SanitizeQueryString("skip=0&limit=10"))
}
