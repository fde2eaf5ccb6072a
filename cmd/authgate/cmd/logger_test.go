package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/goliatone/go-authgate"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsOf(t *testing.T) {
	fields := fieldsOf([]any{"principal_id", "42", "enabled", false, "dangling"})

	assert.Equal(t, "42", fields["principal_id"])
	assert.Equal(t, false, fields["enabled"])
	assert.Equal(t, "dangling", fields["extra"])
}

func TestAdaptLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger("debug", "json")
	base.SetOutput(&buf)

	adaptLogger(base, "resolver").Info("principal resolved", "principal_id", "42")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "principal resolved", line["msg"])
	assert.Equal(t, "resolver", line["component"])
	assert.Equal(t, "42", line["principal_id"])
	assert.Equal(t, "info", line["level"])
}

func TestNewLoggerLevelFallback(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, newLogger("chatty", "text").GetLevel())
	assert.Equal(t, logrus.DebugLevel, newLogger("debug", "text").GetLevel())
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger("info", "json")
	base.SetOutput(&buf)

	adaptLogger(base, "token").Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestAuditSinkWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger("info", "json")
	base.SetOutput(&buf)

	err := newAuditSink(base).Record(context.Background(), authgate.ActivityEvent{
		EventType: authgate.ActivityEventAccountRoleChanged,
		ActorID:   "1",
		AccountID: "2",
		Metadata:  map[string]any{"role": "ADMIN"},
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["component"])
	assert.Equal(t, "account.role.changed", line["verb"])
	assert.Equal(t, "1", line["actor_id"])
	assert.Equal(t, "2", line["object_id"])
	assert.Equal(t, "admin", line["actor_type"])
	assert.Equal(t, "ADMIN", line["role"])
}
