package source

import "errors"

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown record store driver")

// Record store operation names for Error.Op.
const (
	OpOpen        = "open"
	OpMigrate     = "migrate"
	OpPut         = "put"
	OpGetByKey    = "get_by_key"
	OpListKeys    = "list_keys"
	OpOpenSession = "open_session"
)

// Error wraps a record store failure with the operation that caused it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "source " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
