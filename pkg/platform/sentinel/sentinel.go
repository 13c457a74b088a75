package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Backends, channels and archives
// return these (optionally wrapped) so stores can translate them into domain
// errors.
//
// - ErrNotFound: key or record does not exist
// - ErrCorrupt: a persisted record exists but cannot be decoded
// - ErrUnavailable: backend, broker or remote service temporarily unavailable
// - ErrClosed: the resource was closed and accepts no more work
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrCorrupt     = errors.New("corrupt record")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
