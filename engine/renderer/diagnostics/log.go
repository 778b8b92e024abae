package diagnostics

// Log scopes queue messages to a window of calls. Set arms a checkpoint at
// the current end of the queue; Messages returns what arrived since and moves
// the checkpoint forward, so a second query without new messages is empty.
type Log struct {
	queue  *Queue
	cursor uint64
	armed  bool
}

func NewLog(queue *Queue) *Log {
	return &Log{
		queue:  queue,
		cursor: queue.Total(),
	}
}

// Set records the current message count as the checkpoint.
func (l *Log) Set() {
	l.cursor = l.queue.Total()
	l.armed = true
}

// Armed reports whether a checkpoint was set and not yet queried.
func (l *Log) Armed() bool {
	return l.armed
}

// Messages returns the messages emitted since the checkpoint.
func (l *Log) Messages() []Message {
	total := l.queue.Total()
	msgs := l.queue.Since(l.cursor)
	l.cursor = total
	l.armed = false
	return msgs
}

// Strings is Messages formatted for error reports.
func (l *Log) Strings() []string {
	msgs := l.Messages()
	if len(msgs) == 0 {
		return nil
	}
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.String()
	}
	return out
}

// Queue returns the underlying message queue.
func (l *Log) Queue() *Queue {
	return l.queue
}
