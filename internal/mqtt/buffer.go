package mqtt

import "log/slog"

// bufferedMsg stores a serialized message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue is a bounded FIFO holding messages while the broker is
// unreachable. When full, the oldest message is dropped.
// Not safe for concurrent use; caller must synchronize.
type offlineQueue struct {
	msgs    []bufferedMsg
	max     int
	dropped int
}

func newOfflineQueue(max int) *offlineQueue {
	return &offlineQueue{max: max}
}

func (q *offlineQueue) push(msg bufferedMsg) {
	if len(q.msgs) == q.max {
		if q.dropped == 0 {
			slog.Warn("mqtt offline queue full, dropping oldest", "max", q.max)
		}
		q.dropped++
		copy(q.msgs, q.msgs[1:])
		q.msgs = q.msgs[:len(q.msgs)-1]
	}
	q.msgs = append(q.msgs, msg)
}

// drain returns all queued messages oldest-first and empties the queue.
func (q *offlineQueue) drain() []bufferedMsg {
	if len(q.msgs) == 0 {
		return nil
	}
	out := q.msgs
	q.msgs = nil
	q.dropped = 0
	return out
}

func (q *offlineQueue) len() int { return len(q.msgs) }
