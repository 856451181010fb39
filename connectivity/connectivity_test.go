package connectivity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReporter_CurrentState(t *testing.T) {
	source := &fakeOnline{}
	reporter := NewReporter(source)

	assert.Equal(t, Offline, reporter.CurrentState())

	source.online = true
	assert.Equal(t, Online, reporter.CurrentState())
}

func TestReporter_WaitReturnsImmediatelyOnDifferentState(t *testing.T) {
	reporter := NewReporter(&fakeOnline{online: true})

	assert.True(t, reporter.WaitForStateChange(context.Background(), Offline))
}

func TestReporter_WaitHonoursContext(t *testing.T) {
	reporter := NewReporter(&fakeOnline{})
	reporter.interval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.False(t, reporter.WaitForStateChange(ctx, Offline))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ONLINE", Online.String())
	assert.Equal(t, "OFFLINE", Offline.String())
	assert.Equal(t, "INVALID STATE", State(9).String())
}
