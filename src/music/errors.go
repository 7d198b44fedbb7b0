package music

import "errors"

var (
	// ErrTransport means the backend could not be reached or the protocol broke.
	ErrTransport = errors.New("transport error")
	// ErrNotFound means the backend explicitly reported the resource as absent.
	ErrNotFound = errors.New("resource not found")
	// ErrUnsupported means the provider does not implement the operation.
	ErrUnsupported = errors.New("operation not supported by provider")
	// ErrCorrupt means the FLAC header prefix was truncated or malformed.
	ErrCorrupt = errors.New("corrupt audio header")
	// ErrGeneral covers any other backend failure.
	ErrGeneral = errors.New("provider error")
)

// ErrorKind returns a short label for err, suitable for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrCorrupt):
		return "corrupt"
	default:
		return "general"
	}
}
