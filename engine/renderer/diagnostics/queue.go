// Package diagnostics collects the messages a device emits on the side of
// its API calls and lets callers scope them to a single call.
package diagnostics

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/orrery/engine/containers"
)

type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCorruption
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCorruption:
		return "CORRUPTION"
	}
	return fmt.Sprintf("SEVERITY(%d)", uint8(s))
}

// Message is one entry of the device message queue.
type Message struct {
	Severity Severity
	// Source names the layer or subsystem that produced the message.
	Source string
	ID     int32
	Text   string
}

func (m Message) String() string {
	if m.Source == "" {
		return fmt.Sprintf("%s #%d: %s", m.Severity, m.ID, m.Text)
	}
	return fmt.Sprintf("%s [%s] #%d: %s", m.Severity, m.Source, m.ID, m.Text)
}

// Queue is a bounded, thread-safe message store. Validation layers may call
// Push from driver threads. When full the oldest message is dropped, but the
// running total keeps counting so cursors stay monotonic.
type Queue struct {
	mu      sync.Mutex
	ring    *containers.RingQueue[Message]
	total   uint64
	dropped uint64
}

func NewQueue(capacity int) *Queue {
	return &Queue{
		ring: containers.NewRingQueue[Message](capacity),
	}
}

func (q *Queue) Push(m Message) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ring.Push(m) {
		q.dropped++
	}
	q.total++
}

// Total returns the number of messages ever pushed.
func (q *Queue) Total() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}

// Dropped returns the number of messages evicted by overflow.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Since returns the retained messages with index in [cursor, Total()).
// Messages older than the oldest retained one are gone and silently skipped.
func (q *Queue) Since(cursor uint64) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	oldest := q.total - uint64(q.ring.Len())
	if cursor < oldest {
		cursor = oldest
	}
	if cursor >= q.total {
		return nil
	}

	out := make([]Message, 0, q.total-cursor)
	for i := cursor; i < q.total; i++ {
		out = append(out, q.ring.At(int(i-oldest)))
	}
	return out
}
