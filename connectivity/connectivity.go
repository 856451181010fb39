package connectivity

import (
	"context"
	"time"
)

type State int

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	switch s {
	case Offline:
		return "OFFLINE"
	case Online:
		return "ONLINE"
	default:
		return "INVALID STATE"
	}
}

type Reporter interface {
	CurrentState() State
	WaitForStateChange(context.Context, State) bool
}

// OnlineSource tells whether any transport currently has a connection. It
// must be safe to call from any goroutine.
type OnlineSource interface {
	IsOnline() bool
}

const defaultReportInterval = 500 * time.Millisecond

type PollingReporter struct {
	source   OnlineSource
	interval time.Duration
}

var _ Reporter = (*PollingReporter)(nil)

func NewReporter(source OnlineSource) *PollingReporter {
	return &PollingReporter{
		source:   source,
		interval: defaultReportInterval,
	}
}

func (r *PollingReporter) CurrentState() State {
	if r.source.IsOnline() {
		return Online
	}

	return Offline
}

// WaitForStateChange blocks until the state differs from state. It returns
// false when ctx is done first.
func (r *PollingReporter) WaitForStateChange(ctx context.Context, state State) bool {
	if r.CurrentState() != state {
		return true
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if r.CurrentState() != state {
				return true
			}
		}
	}
}
