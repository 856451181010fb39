package network

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSession_Lifecycle(t *testing.T) {
	source := &staticSource{
		results: []ScanResult{
			{Ssid: "Home", Rssi: -40},
		},
	}

	var slot ScanSlot

	scan, err := slot.Start(source)
	require.NoError(t, err)
	assert.Equal(t, ScanScanning, scan.State())
	assert.Equal(t, 0, scan.ResultCount())

	_, err = scan.ResultAt(0)
	assert.ErrorIs(t, err, ErrScanNotReady)

	assert.Equal(t, ScanScanning, scan.Poll())

	source.complete = true
	assert.Equal(t, ScanReady, scan.Poll())
	assert.Equal(t, 1, scan.ResultCount())

	result, err := scan.ResultAt(0)
	require.NoError(t, err)
	assert.Equal(t, "Home", result.Ssid)

	scan.End()
	assert.Equal(t, ScanReleased, scan.State())
	assert.Nil(t, slot.Active())

	_, err = scan.ResultAt(0)
	assert.ErrorIs(t, err, ErrScanReleased)
}

func TestScanSession_FiltersWeakAndHidden(t *testing.T) {
	source := &staticSource{
		complete: true,
		results: []ScanResult{
			{Ssid: "Weak", Rssi: -91},
			{Ssid: "", Rssi: -30},
			{Ssid: "Edge", Rssi: -90},
			{Ssid: "Strong", Rssi: -20},
		},
	}

	var slot ScanSlot
	scan, err := slot.Start(source)
	require.NoError(t, err)
	require.Equal(t, ScanReady, scan.Poll())

	require.Equal(t, 2, scan.ResultCount())

	first, _ := scan.ResultAt(0)
	second, _ := scan.ResultAt(1)
	assert.Equal(t, "Strong", first.Ssid)
	assert.Equal(t, "Edge", second.Ssid)
}

func TestScanSession_KeepsFifteenStrongest(t *testing.T) {
	var results []ScanResult
	for i := 0; i < 30; i++ {
		results = append(results, ScanResult{
			Ssid: fmt.Sprintf("net-%02d", i),
			Rssi: -80 + i,
		})
	}

	var slot ScanSlot
	scan, err := slot.Start(&staticSource{complete: true, results: results})
	require.NoError(t, err)
	scan.Poll()

	require.Equal(t, MaxScanResults, scan.ResultCount())

	strongest, _ := scan.ResultAt(0)
	weakest, _ := scan.ResultAt(MaxScanResults - 1)
	assert.Equal(t, "net-29", strongest.Ssid)
	assert.Equal(t, "net-15", weakest.Ssid)

	_, err = scan.ResultAt(MaxScanResults)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = scan.ResultAt(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestScanSlot_RejectsSecondScan(t *testing.T) {
	var slot ScanSlot

	first, err := slot.Start(&staticSource{})
	require.NoError(t, err)

	_, err = slot.Start(&staticSource{})
	assert.ErrorIs(t, err, ErrScanInProgress)

	first.End()

	_, err = slot.Start(&staticSource{})
	assert.NoError(t, err)
}

func TestScanSlot_TriggerFailureLeavesSlotFree(t *testing.T) {
	var slot ScanSlot

	_, err := slot.Start(&staticSource{triggerErr: errFake})
	require.Error(t, err)
	assert.Nil(t, slot.Active())

	_, err = slot.Start(&staticSource{})
	assert.NoError(t, err)
}

func TestScanSession_ResultsErrorEndsEmpty(t *testing.T) {
	var slot ScanSlot

	scan, err := slot.Start(&staticSource{complete: true, resultsErr: errFake})
	require.NoError(t, err)

	assert.Equal(t, ScanReady, scan.Poll())
	assert.Equal(t, 0, scan.ResultCount())
	assert.Error(t, scan.Err())
}

func TestScanSession_EndTwice(t *testing.T) {
	var slot ScanSlot

	scan, err := slot.Start(&staticSource{})
	require.NoError(t, err)

	scan.End()
	scan.End()

	assert.Equal(t, ScanReleased, scan.Poll())
}

func TestSecurityString(t *testing.T) {
	tests := map[Security]string{
		SecurityOpen:           "OPEN",
		SecurityWEP:            "WEP",
		SecurityWPA:            "WPA",
		SecurityWPA2:           "WPA2",
		SecurityWPAEnterprise:  "WPA-EAP",
		SecurityWPA2Enterprise: "WPA2-EAP",
		SecurityUnknown:        "unknown",
	}

	for sec, want := range tests {
		assert.Equal(t, want, sec.String())
	}
}
