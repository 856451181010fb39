package pairing

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageQueue_SingleWrite(t *testing.T) {
	q := newMessageQueue()

	require.NoError(t, q.receive([]byte(`{"t":"info"}`)))
	require.True(t, q.available())

	msg, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, `{"t":"info"}`, string(msg))
	assert.False(t, q.available())
}

func TestMessageQueue_FragmentedWrite(t *testing.T) {
	q := newMessageQueue()
	msg := `{"t":"set","ssid":"` + strings.Repeat("a", 2*maxFragmentSize) + `"}`

	for i := 0; i < len(msg); i += maxFragmentSize {
		end := i + maxFragmentSize
		if end > len(msg) {
			end = len(msg)
		}

		assert.False(t, q.available())
		require.NoError(t, q.receive([]byte(msg[i:end])))
	}

	got, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, msg, string(got))
}

func TestMessageQueue_ShortInvalidWriteEndsMessage(t *testing.T) {
	q := newMessageQueue()

	require.NoError(t, q.receive([]byte(`{"t":"inf`)))

	msg, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, `{"t":"inf`, string(msg))
}

func TestMessageQueue_OversizedMessage(t *testing.T) {
	q := newMessageQueue()
	chunk := bytes.Repeat([]byte("x"), maxFragmentSize)

	var err error
	for i := 0; i <= maxMessageSize/maxFragmentSize && err == nil; i++ {
		err = q.receive(chunk)
	}

	assert.Error(t, err)
	assert.False(t, q.available())
}

func TestMessageQueue_OutboundFragments(t *testing.T) {
	q := newMessageQueue()
	msg := bytes.Repeat([]byte("y"), maxFragmentSize+10)

	q.push(msg)
	q.push([]byte(`{"t":"scan_end"}`))

	assert.Len(t, q.next(), maxFragmentSize)
	assert.Len(t, q.next(), 10)
	assert.Equal(t, `{"t":"scan_end"}`, string(q.next()))
	assert.Empty(t, q.next())
}

func TestMessageQueue_Activity(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	q := newMessageQueue()
	q.now = func() time.Time { return now }

	assert.False(t, q.active())

	q.next()
	assert.True(t, q.active())

	now = now.Add(idleTimeout)
	assert.False(t, q.active())

	require.NoError(t, q.receive([]byte(`{}`)))
	assert.True(t, q.active())

	q.reset()
	assert.False(t, q.active())
	assert.False(t, q.available())
}
