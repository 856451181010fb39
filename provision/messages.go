package provision

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/go-errors/errors"
)

const (
	fieldType = "t"

	fieldInterface  = "if"
	fieldSsid       = "ssid"
	fieldPassphrase = "pass"
	fieldAuthToken  = "blynk"
	fieldHost       = "host"
	fieldPort       = "port"
	fieldStaticIP   = "ip"
	fieldNetmask    = "mask"
	fieldGateway    = "gw"
	fieldDns1       = "dns"
	fieldDns2       = "dns2"
	fieldSave       = "save"
)

const (
	verbSet     = "set"
	verbConnect = "connect"
	verbInfo    = "info"
	verbIfs     = "ifs"
	verbScan    = "scan"
	verbReset   = "reset"
	verbReboot  = "reboot"
)

const (
	typeSetOk       = "set_ok"
	typeSetFail     = "set_fail"
	typeConnecting  = "connecting"
	typeConnectFail = "connect_fail"
	typeInfo        = "info"
	typeIfsStart    = "ifs_start"
	typeIf          = "if"
	typeIfsEnd      = "ifs_end"
	typeScanStart   = "scan_start"
	typeScan        = "scan"
	typeScanEnd     = "scan_end"
	typeResetOk     = "reset_ok"
	typeError       = "error"
)

const (
	errWrongFormat    = "wrong format"
	errInvalidCommand = "invalid command"
	errNoWifi         = "no wifi"

	reasonInvalidToken     = "invalid auth token"
	reasonNoSsid           = "no ssid"
	reasonUnknownInterface = "unknown interface"
)

// request is a decoded inbound message.
type request struct {
	verb   string
	fields map[string]json.RawMessage
}

func decodeRequest(data []byte) (*request, error) {
	var fields map[string]json.RawMessage

	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Errorf("could not decode message: %v", err)
	}

	if fields == nil {
		return nil, errors.New("message is not an object")
	}

	return &request{
		verb:   rawString(fields[fieldType]),
		fields: fields,
	}, nil
}

// rawString renders a JSON value as text. Strings are unquoted, null and
// absent values are empty, everything else keeps its JSON form.
func rawString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	return string(trimmed)
}

// rawTruthy reads the save flag. Unlike a bare presence check, an explicit
// false, 0, "0", "false" or null turns the flag off again.
func rawTruthy(raw json.RawMessage) bool {
	switch strings.ToLower(rawString(raw)) {
	case "", "false", "0":
		return false
	default:
		return true
	}
}

func encodeMessage(v interface{}) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, errors.Errorf("could not encode message: %v", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

type typedMessage struct {
	Type string `json:"t"`
}

type errorMessage struct {
	Type    string `json:"t"`
	Message string `json:"msg"`
}

type infoMessage struct {
	Type            string `json:"t"`
	Vendor          string `json:"vendor"`
	TemplateID      string `json:"tmpl_id"`
	FirmwareType    string `json:"fw_type"`
	FirmwareVersion string `json:"fw_ver"`
	Name            string `json:"name"`
	LastError       int    `json:"last_error"`
}

type wifiIfMessage struct {
	Type     string `json:"t"`
	Name     string `json:"name"`
	Mac      string `json:"mac"`
	Scan     int    `json:"scan"`
	FiveGHz  int    `json:"5ghz"`
	StaticIP int    `json:"static_ip"`
}

type cellIfMessage struct {
	Type  string `json:"t"`
	Name  string `json:"name"`
	IMEI  string `json:"imei"`
	IMSI  string `json:"imsi"`
	ICCID string `json:"iccid"`
	Scan  int    `json:"scan"`
	Pin   int    `json:"pin"`
	APN   int    `json:"apn"`
}

type ethIfMessage struct {
	Type     string `json:"t"`
	Name     string `json:"name"`
	Mac      string `json:"mac"`
	Status   string `json:"status"`
	IP       string `json:"ip,omitempty"`
	StaticIP int    `json:"static_ip"`
}

type scanMessage struct {
	Type     string `json:"t"`
	Ssid     string `json:"ssid"`
	Bssid    string `json:"bssid"`
	Rssi     int    `json:"rssi"`
	Security string `json:"sec"`
	Channel  int    `json:"ch"`
}
