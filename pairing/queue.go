package pairing

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-errors/errors"
)

const (
	// maxFragmentSize is the largest chunk moved by a single characteristic
	// read or write. A shorter write ends an inbound message.
	maxFragmentSize = 180

	maxMessageSize     = 4096
	maxPendingMessages = 32

	// idleTimeout is how long a central counts as connected after its last
	// read or write.
	idleTimeout = 30 * time.Second
)

// messageQueue sits between the GATT callbacks, which run on the D-Bus
// goroutine, and the provisioning session polling the link.
type messageQueue struct {
	mu           sync.Mutex
	now          func() time.Time
	partial      []byte
	inbound      [][]byte
	outbound     [][]byte
	lastActivity time.Time
}

func newMessageQueue() *messageQueue {
	return &messageQueue{now: time.Now}
}

// receive takes one written chunk. A message is complete once the collected
// bytes are valid JSON or the chunk was shorter than a full fragment.
func (q *messageQueue) receive(chunk []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.lastActivity = q.now()
	q.partial = append(q.partial, chunk...)

	if len(q.partial) > maxMessageSize {
		q.partial = nil
		return errors.Errorf("message exceeds %d bytes", maxMessageSize)
	}

	if !json.Valid(q.partial) && len(chunk) >= maxFragmentSize {
		return nil
	}

	msg := bytes.TrimSpace(q.partial)
	q.partial = nil

	if len(q.inbound) >= maxPendingMessages {
		return errors.New("too many pending messages")
	}

	q.inbound = append(q.inbound, msg)

	return nil
}

// next hands out the next outbound fragment, or nothing when none is queued.
func (q *messageQueue) next() []byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.lastActivity = q.now()

	if len(q.outbound) == 0 {
		return []byte{}
	}

	fragment := q.outbound[0]
	q.outbound = q.outbound[1:]

	return fragment
}

func (q *messageQueue) push(msg []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(msg) > maxFragmentSize {
		q.outbound = append(q.outbound, append([]byte(nil), msg[:maxFragmentSize]...))
		msg = msg[maxFragmentSize:]
	}

	q.outbound = append(q.outbound, append([]byte(nil), msg...))
}

func (q *messageQueue) pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.inbound) == 0 {
		return nil, false
	}

	msg := q.inbound[0]
	q.inbound = q.inbound[1:]

	return msg, true
}

func (q *messageQueue) available() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.inbound) > 0
}

func (q *messageQueue) active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return !q.lastActivity.IsZero() && q.now().Sub(q.lastActivity) < idleTimeout
}

func (q *messageQueue) reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.partial = nil
	q.inbound = nil
	q.outbound = nil
	q.lastActivity = time.Time{}
}
