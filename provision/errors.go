package provision

// ErrorCode is the outcome of the last connection attempt as reported to the
// companion app in the info response.
type ErrorCode int

const (
	ErrorNone     ErrorCode = 0
	ErrorConfig   ErrorCode = 700 // invalid config from app, e.g. malformed token
	ErrorNetwork  ErrorCode = 701 // could not connect to the router
	ErrorCloud    ErrorCode = 702 // could not connect to the cloud
	ErrorToken    ErrorCode = 703 // token rejected after connecting
	ErrorInternal ErrorCode = 704 // hardware failure and other issues

	ErrorNetworkNotFound  ErrorCode = 720
	ErrorNetworkNoCable   ErrorCode = 721
	ErrorNetworkAuthFail  ErrorCode = 722
	ErrorNetworkNoAddress ErrorCode = 723

	ErrorSimcardMissing  ErrorCode = 730
	ErrorSimcardLocked   ErrorCode = 731
	ErrorSimcardWrongPin ErrorCode = 732
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorNone:
		return "none"
	case ErrorConfig:
		return "invalid configuration"
	case ErrorNetwork:
		return "network unreachable"
	case ErrorCloud:
		return "cloud unreachable"
	case ErrorToken:
		return "invalid token"
	case ErrorInternal:
		return "internal error"
	case ErrorNetworkNotFound:
		return "network not found"
	case ErrorNetworkNoCable:
		return "cable disconnected"
	case ErrorNetworkAuthFail:
		return "network authentication failed"
	case ErrorNetworkNoAddress:
		return "no address assigned"
	case ErrorSimcardMissing:
		return "SIM card missing"
	case ErrorSimcardLocked:
		return "SIM card locked"
	case ErrorSimcardWrongPin:
		return "wrong SIM PIN"
	default:
		return "unknown error"
	}
}
