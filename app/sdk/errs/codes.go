package errs

import "net/http"

// ErrCode represents an error code in the system.
type ErrCode struct {
	value int
}

// Value returns the integer value of the error code.
func (ec ErrCode) Value() int {
	return ec.value
}

// String returns the string representation of the error code.
func (ec ErrCode) String() string {
	return codeNames[ec]
}

// UnmarshalText implement the unmarshal interface for JSON conversions.
func (ec *ErrCode) UnmarshalText(data []byte) error {
	ec.value = codeNumbers[string(data)]
	return nil
}

// MarshalText implement the marshal interface for JSON conversions.
func (ec ErrCode) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}

// Equal provides support for the go-cmp package and testing.
func (ec ErrCode) Equal(ec2 ErrCode) bool {
	return ec.value == ec2.value
}

// Set of error codes for the system.
var (
	OK               = ErrCode{value: 0}
	Canceled         = ErrCode{value: 1}
	Unknown          = ErrCode{value: 2}
	InvalidArgument  = ErrCode{value: 3}
	DeadlineExceeded = ErrCode{value: 4}
	NotFound         = ErrCode{value: 5}
	Aborted          = ErrCode{value: 10}
	Unimplemented    = ErrCode{value: 12}
	Internal         = ErrCode{value: 13}
	Unavailable      = ErrCode{value: 14}
	Unauthenticated  = ErrCode{value: 16}
	InternalOnlyLog  = ErrCode{value: 17}
)

var codeNames = map[ErrCode]string{
	OK:               "ok",
	Canceled:         "canceled",
	Unknown:          "unknown",
	InvalidArgument:  "invalid_argument",
	DeadlineExceeded: "deadline_exceeded",
	NotFound:         "not_found",
	Aborted:          "aborted",
	Unimplemented:    "unimplemented",
	Internal:         "internal",
	Unavailable:      "unavailable",
	Unauthenticated:  "unauthenticated",
	InternalOnlyLog:  "internal_only_log",
}

var codeNumbers = map[string]int{
	"ok":                0,
	"canceled":          1,
	"unknown":           2,
	"invalid_argument":  3,
	"deadline_exceeded": 4,
	"not_found":         5,
	"aborted":           10,
	"unimplemented":     12,
	"internal":          13,
	"unavailable":       14,
	"unauthenticated":   16,
	"internal_only_log": 17,
}

var httpStatus = map[ErrCode]int{
	OK:               http.StatusOK,
	Canceled:         http.StatusGatewayTimeout,
	Unknown:          http.StatusInternalServerError,
	InvalidArgument:  http.StatusBadRequest,
	DeadlineExceeded: http.StatusGatewayTimeout,
	NotFound:         http.StatusNotFound,
	Aborted:          http.StatusConflict,
	Unimplemented:    http.StatusNotImplemented,
	Internal:         http.StatusInternalServerError,
	Unavailable:      http.StatusServiceUnavailable,
	Unauthenticated:  http.StatusUnauthorized,
	InternalOnlyLog:  http.StatusInternalServerError,
}
