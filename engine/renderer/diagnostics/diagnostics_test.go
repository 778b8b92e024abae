package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
)

func msg(text string) diagnostics.Message {
	return diagnostics.Message{Severity: diagnostics.SeverityError, Source: "test", Text: text}
}

func TestLogReturnsMessagesSinceCheckpointOnce(t *testing.T) {
	q := diagnostics.NewQueue(16)
	q.Push(msg("before"))

	l := diagnostics.NewLog(q)
	l.Set()
	assert.True(t, l.Armed())

	q.Push(msg("first"))
	q.Push(msg("second"))

	got := l.Messages()
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.False(t, l.Armed())

	assert.Empty(t, l.Messages())
}

func TestLogIgnoresMessagesBeforeCheckpoint(t *testing.T) {
	q := diagnostics.NewQueue(16)
	l := diagnostics.NewLog(q)

	q.Push(msg("stale"))
	l.Set()
	assert.Empty(t, l.Strings())

	q.Push(msg("fresh"))
	assert.Equal(t, []string{"ERROR [test] #0: fresh"}, l.Strings())
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	q := diagnostics.NewQueue(2)
	l := diagnostics.NewLog(q)
	l.Set()

	q.Push(msg("a"))
	q.Push(msg("b"))
	q.Push(msg("c"))

	assert.Equal(t, uint64(3), q.Total())
	assert.Equal(t, uint64(1), q.Dropped())

	got := l.Messages()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Text)
	assert.Equal(t, "c", got[1].Text)

	assert.Empty(t, q.Since(3))
	assert.Len(t, q.Since(0), 2)
}

func TestMessageString(t *testing.T) {
	m := diagnostics.Message{Severity: diagnostics.SeverityWarning, ID: 7, Text: "careful"}
	assert.Equal(t, "WARNING #7: careful", m.String())
}
