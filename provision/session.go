package provision

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/the-lightning-land/provisiond/network"
)

const (
	// MaxDeviceNameLength is the longest advertised name the link carries.
	MaxDeviceNameLength = 29

	DefaultPacingDelay = 10 * time.Millisecond
	DefaultScanTimeout = 15 * time.Second
)

// Identity describes the device to the companion app.
type Identity struct {
	DeviceName      string
	Vendor          string
	TemplateID      string
	FirmwareType    string
	FirmwareVersion string
}

type Config struct {
	Link     Link
	Registry *network.Registry
	Rebooter Rebooter
	Store    NetworkStore
	Logger   Logger

	// PacingDelay separates consecutive parts of a streamed response.
	PacingDelay time.Duration
	// ScanTimeout bounds how long a scan may stay pending.
	ScanTimeout time.Duration
}

// Session runs the provisioning conversation with the companion app. All of
// its methods are meant to be called from a single polling goroutine.
type Session struct {
	log         Logger
	link        Link
	registry    *network.Registry
	rebooter    Rebooter
	store       NetworkStore
	pacing      time.Duration
	scanTimeout time.Duration
	sleep       func(time.Duration)
	now         func() time.Time

	id              string
	active          bool
	userConfiguring bool
	lastError       ErrorCode
	identity        Identity
	settings        Settings
	onProvision     func()
	scan            *pendingScan
}

type pendingScan struct {
	session  *network.ScanSession
	deadline time.Time
}

func NewSession(config *Config) (*Session, error) {
	if config.Link == nil {
		return nil, errors.New("link is required")
	}

	if config.Registry == nil {
		return nil, errors.New("network registry is required")
	}

	s := &Session{
		link:        config.Link,
		registry:    config.Registry,
		rebooter:    config.Rebooter,
		store:       config.Store,
		pacing:      config.PacingDelay,
		scanTimeout: config.ScanTimeout,
		sleep:       time.Sleep,
		now:         time.Now,
	}

	if config.Logger != nil {
		s.log = config.Logger
	} else {
		s.log = noopLogger{}
	}

	if s.pacing == 0 {
		s.pacing = DefaultPacingDelay
	}

	if s.scanTimeout == 0 {
		s.scanTimeout = DefaultScanTimeout
	}

	return s, nil
}

// Start opens the link and puts every transport into configuring mode. The
// pending settings from any previous session are discarded.
func (s *Session) Start(identity Identity) error {
	if s.active {
		return nil
	}

	identity.DeviceName = truncate(identity.DeviceName, MaxDeviceNameLength)

	s.identity = identity
	s.settings = Settings{}
	s.userConfiguring = false

	s.registry.StartConfig()

	err := s.link.Open(identity.DeviceName)
	if err != nil {
		return errors.Errorf("could not open link: %v", err)
	}

	s.id = uuid.New().String()
	s.active = true

	s.log.Infof("Started provisioning session %v as %v", s.id, identity.DeviceName)

	return nil
}

// Stop releases a pending scan and closes the link.
func (s *Session) Stop() error {
	if !s.active {
		return nil
	}

	s.releaseScan()
	s.active = false

	s.log.Infof("Stopped provisioning session %v", s.id)

	err := s.link.Close()
	if err != nil {
		return errors.Errorf("could not close link: %v", err)
	}

	return nil
}

// Poll performs one step of work. While a scan is pending only the scan is
// advanced, otherwise at most one inbound message is handled.
func (s *Session) Poll() {
	if !s.active {
		return
	}

	if s.scan != nil {
		s.pollScan()
		return
	}

	if !s.link.Available() {
		return
	}

	data, err := s.link.Read()
	if err != nil {
		s.log.Warnf("Could not read from link: %v", err)
		return
	}

	s.handle(data)
}

func (s *Session) Active() bool {
	return s.active
}

func (s *Session) ID() string {
	return s.id
}

// IsUserConfiguring reports whether the app has asked for device info and is
// still connected.
func (s *Session) IsUserConfiguring() bool {
	return s.userConfiguring && s.link.IsConnected()
}

func (s *Session) SetLastError(code ErrorCode) {
	s.lastError = code
}

func (s *Session) LastError() ErrorCode {
	return s.lastError
}

// SetProvisionCallback sets the function called once a connect command was
// accepted.
func (s *Session) SetProvisionCallback(fn func()) {
	s.onProvision = fn
}

// Settings returns a copy of the pending configuration.
func (s *Session) Settings() Settings {
	return s.settings
}

func (s *Session) handle(data []byte) {
	req, err := decodeRequest(data)
	if err != nil {
		s.log.Warnf("Received malformed message: %v", err)
		s.sendError(errWrongFormat)
		return
	}

	s.log.Debugf("Received %q command", req.verb)

	switch req.verb {
	case verbSet:
		s.handleSet(req)
	case verbConnect:
		s.handleConnect()
	case verbInfo:
		s.handleInfo()
	case verbIfs:
		s.handleIfs()
	case verbScan:
		s.handleScan()
	case verbReset:
		s.handleReset()
	case verbReboot:
		s.handleReboot()
	default:
		s.sendError(errInvalidCommand)
	}
}

// handleSet merges every field, even when some are unknown, and answers
// set_fail if any of them was.
func (s *Session) handleSet(req *request) {
	valid := true

	for key, raw := range req.fields {
		if key == fieldType {
			continue
		}

		if !s.settings.apply(key, raw) {
			s.log.Warnf("Unknown setting %q", key)
			valid = false
		}
	}

	if valid {
		s.send(typedMessage{Type: typeSetOk})
	} else {
		s.send(typedMessage{Type: typeSetFail})
	}
}

func (s *Session) handleConnect() {
	reason := s.settings.validate()
	if reason != "" {
		s.log.Warnf("Refusing to connect: %v", reason)
		s.send(errorMessage{Type: typeConnectFail, Message: reason})
		return
	}

	s.log.Infof("Connecting over %v", s.settings.Interface)
	s.send(typedMessage{Type: typeConnecting})

	if s.onProvision != nil {
		s.onProvision()
	}
}

func (s *Session) handleInfo() {
	s.userConfiguring = true

	s.send(infoMessage{
		Type:            typeInfo,
		Vendor:          s.identity.Vendor,
		TemplateID:      s.identity.TemplateID,
		FirmwareType:    s.identity.FirmwareType,
		FirmwareVersion: s.identity.FirmwareVersion,
		Name:            s.identity.DeviceName,
		LastError:       int(s.lastError),
	})
}

func (s *Session) handleIfs() {
	s.send(typedMessage{Type: typeIfsStart})
	s.pace()

	for _, t := range s.registry.Transports() {
		if !t.IsHardwareAvailable() {
			continue
		}

		s.send(interfaceMessage(t))
		s.pace()
	}

	s.send(typedMessage{Type: typeIfsEnd})
}

func interfaceMessage(t network.Transport) interface{} {
	info := t.Info()
	caps := t.Capabilities()

	switch t.Kind() {
	case network.KindCellular:
		return cellIfMessage{
			Type:  typeIf,
			Name:  t.Kind().WireName(),
			IMEI:  info.IMEI,
			IMSI:  info.IMSI,
			ICCID: info.ICCID,
			Scan:  boolFlag(caps.Has(network.CapScan)),
			Pin:   boolFlag(caps.Has(network.CapSimPin)),
			APN:   boolFlag(caps.Has(network.CapAPN)),
		}
	case network.KindEthernet:
		return ethIfMessage{
			Type:     typeIf,
			Name:     t.Kind().WireName(),
			Mac:      info.Mac,
			Status:   info.Status,
			IP:       info.IP,
			StaticIP: boolFlag(caps.Has(network.CapStaticIP)),
		}
	default:
		return wifiIfMessage{
			Type:     typeIf,
			Name:     t.Kind().WireName(),
			Mac:      info.Mac,
			Scan:     boolFlag(caps.Has(network.CapScan)),
			FiveGHz:  boolFlag(caps.Has(network.Cap5GHz)),
			StaticIP: boolFlag(caps.Has(network.CapStaticIP)),
		}
	}
}

func (s *Session) handleScan() {
	scanner, ok := s.registry.Scanner()
	if !ok {
		s.sendError(errNoWifi)
		return
	}

	s.send(typedMessage{Type: typeScanStart})

	session, err := scanner.StartScan()
	if err != nil {
		s.log.Errorf("Could not start scan: %v", err)
		s.send(typedMessage{Type: typeScanEnd})
		return
	}

	s.scan = &pendingScan{
		session:  session,
		deadline: s.now().Add(s.scanTimeout),
	}
}

func (s *Session) pollScan() {
	scan := s.scan

	if scan.session.Poll() == network.ScanScanning {
		if s.now().Before(scan.deadline) {
			return
		}

		s.log.Warnf("Scan timed out after %v", s.scanTimeout)
		s.releaseScan()
		s.send(typedMessage{Type: typeScanEnd})
		return
	}

	if err := scan.session.Err(); err != nil {
		s.log.Errorf("Scan failed: %v", err)
	}

	count := scan.session.ResultCount()
	s.log.Infof("Found %d networks", count)

	sent := 0
	for i := 0; i < count && sent < network.MaxScanResults; i++ {
		result, err := scan.session.ResultAt(i)
		if err != nil {
			s.log.Warnf("Could not read scan result %d: %v", i, err)
			break
		}

		if !result.Qualifies() {
			continue
		}

		s.send(scanMessage{
			Type:     typeScan,
			Ssid:     result.Ssid,
			Bssid:    result.Bssid,
			Rssi:     result.Rssi,
			Security: result.Security.String(),
			Channel:  result.Channel,
		})
		s.pace()
		sent++
	}

	s.releaseScan()
	s.send(typedMessage{Type: typeScanEnd})
}

func (s *Session) releaseScan() {
	if s.scan == nil {
		return
	}

	s.scan.session.End()
	s.scan = nil
}

func (s *Session) handleReset() {
	err := s.registry.ClearNetworks()
	if err != nil {
		s.log.Errorf("Could not clear all networks: %v", err)
	}

	if s.store != nil {
		err := s.store.ClearNetwork()
		if err != nil {
			s.log.Errorf("Could not forget saved network: %v", err)
		}
	}

	s.send(typedMessage{Type: typeResetOk})
}

func (s *Session) handleReboot() {
	s.log.Infof("Rebooting on request")

	if s.rebooter == nil {
		s.log.Errorf("Reboot is not supported")
		return
	}

	err := s.rebooter.Reboot()
	if err != nil {
		s.log.Errorf("Could not reboot: %v", err)
	}
}

func (s *Session) sendError(msg string) {
	s.send(errorMessage{Type: typeError, Message: msg})
}

func (s *Session) send(v interface{}) {
	data, err := encodeMessage(v)
	if err != nil {
		s.log.Errorf("Could not send message: %v", err)
		return
	}

	err = s.link.Write(data)
	if err != nil {
		s.log.Warnf("Could not write to link: %v", err)
	}
}

func (s *Session) pace() {
	if s.pacing > 0 {
		s.sleep(s.pacing)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max])
}
