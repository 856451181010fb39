package network

import (
	"sort"

	"github.com/go-errors/errors"
)

const (
	// MaxScanResults is the number of networks a scan keeps.
	MaxScanResults = 15

	// MinScanRSSI is the weakest signal, in dBm, a scan keeps.
	MinScanRSSI = -90
)

var (
	ErrScanInProgress  = errors.New("a scan is already in progress")
	ErrScanReleased    = errors.New("scan results were released")
	ErrScanNotReady    = errors.New("scan has not completed")
	ErrIndexOutOfRange = errors.New("scan result index out of range")
)

type Security int

const (
	SecurityUnknown Security = iota
	SecurityOpen
	SecurityWEP
	SecurityWPA
	SecurityWPA2
	SecurityWPAEnterprise
	SecurityWPA2Enterprise
)

func (s Security) String() string {
	switch s {
	case SecurityOpen:
		return "OPEN"
	case SecurityWEP:
		return "WEP"
	case SecurityWPA:
		return "WPA"
	case SecurityWPA2:
		return "WPA2"
	case SecurityWPAEnterprise:
		return "WPA-EAP"
	case SecurityWPA2Enterprise:
		return "WPA2-EAP"
	default:
		return "unknown"
	}
}

type ScanResult struct {
	Ssid     string
	Bssid    string
	Rssi     int
	Security Security
	Channel  int
}

// Qualifies reports whether the result is strong enough and not hidden.
func (r ScanResult) Qualifies() bool {
	return r.Rssi >= MinScanRSSI && r.Ssid != ""
}

// ScanSource is the hardware side of a scan.
type ScanSource interface {
	TriggerScan() error
	ScanComplete() (bool, error)
	ScanResults() ([]ScanResult, error)
}

type ScanState int

const (
	ScanIdle ScanState = iota
	ScanScanning
	ScanReady
	ScanReleased
)

func (s ScanState) String() string {
	switch s {
	case ScanIdle:
		return "IDLE"
	case ScanScanning:
		return "SCANNING"
	case ScanReady:
		return "READY"
	case ScanReleased:
		return "RELEASED"
	default:
		return "INVALID STATE"
	}
}

// ScanSession holds the results of one scan. It is advanced with Poll and
// must be released with End.
type ScanSession struct {
	source    ScanSource
	state     ScanState
	results   []ScanResult
	err       error
	onRelease func()
}

func newScanSession(source ScanSource, onRelease func()) *ScanSession {
	return &ScanSession{
		source:    source,
		state:     ScanIdle,
		onRelease: onRelease,
	}
}

func (s *ScanSession) start() error {
	err := s.source.TriggerScan()
	if err != nil {
		return errors.Errorf("could not trigger scan: %v", err)
	}

	s.state = ScanScanning

	return nil
}

// Poll checks once whether the scan has completed and collects the results
// when it has. It never blocks waiting for the hardware.
func (s *ScanSession) Poll() ScanState {
	if s.state != ScanScanning {
		return s.state
	}

	done, err := s.source.ScanComplete()
	if err != nil {
		s.finish(nil, errors.Errorf("could not check scan completion: %v", err))
		return s.state
	}

	if !done {
		return s.state
	}

	results, err := s.source.ScanResults()
	if err != nil {
		s.finish(nil, errors.Errorf("could not read scan results: %v", err))
		return s.state
	}

	s.finish(results, nil)

	return s.state
}

func (s *ScanSession) finish(results []ScanResult, err error) {
	s.results = selectResults(results)
	s.err = err
	s.state = ScanReady
}

// selectResults keeps the strongest qualifying networks.
func selectResults(results []ScanResult) []ScanResult {
	kept := make([]ScanResult, 0, len(results))
	for _, r := range results {
		if r.Qualifies() {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Rssi > kept[j].Rssi
	})

	if len(kept) > MaxScanResults {
		kept = kept[:MaxScanResults]
	}

	return kept
}

func (s *ScanSession) State() ScanState {
	return s.state
}

// Err returns the error that ended the scan early, if any.
func (s *ScanSession) Err() error {
	return s.err
}

func (s *ScanSession) ResultCount() int {
	if s.state != ScanReady {
		return 0
	}

	return len(s.results)
}

func (s *ScanSession) ResultAt(i int) (ScanResult, error) {
	switch s.state {
	case ScanReleased:
		return ScanResult{}, ErrScanReleased
	case ScanReady:
	default:
		return ScanResult{}, ErrScanNotReady
	}

	if i < 0 || i >= len(s.results) {
		return ScanResult{}, ErrIndexOutOfRange
	}

	return s.results[i], nil
}

// End releases the results. Calling it more than once is harmless.
func (s *ScanSession) End() {
	if s.state == ScanReleased {
		return
	}

	s.state = ScanReleased
	s.results = nil

	if s.onRelease != nil {
		s.onRelease()
	}
}

// ScanSlot tracks the single active scan of a transport. Scan capable
// transports embed it.
type ScanSlot struct {
	active *ScanSession
}

// Start begins a new scan on source. It fails with ErrScanInProgress while a
// previous session has not been released.
func (s *ScanSlot) Start(source ScanSource) (*ScanSession, error) {
	if s.active != nil {
		return nil, ErrScanInProgress
	}

	session := newScanSession(source, nil)
	session.onRelease = func() {
		if s.active == session {
			s.active = nil
		}
	}

	err := session.start()
	if err != nil {
		return nil, err
	}

	s.active = session

	return session, nil
}

// Active returns the unreleased scan session, if any.
func (s *ScanSlot) Active() *ScanSession {
	return s.active
}

// End releases the active scan session, if any.
func (s *ScanSlot) End() {
	if s.active != nil {
		s.active.End()
	}
}
