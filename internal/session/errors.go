package session

import (
	"errors"

	"github.com/vovakirdan/kakaosession/internal/loco"
)

// ErrTransportClosed means the event source is exhausted. The session cannot
// recover and must be reconstructed.
var ErrTransportClosed = errors.New("session: event transport closed")

// IsRequestError reports whether err is a request the server rejected.
func IsRequestError(err error) bool {
	return loco.IsRequestError(err)
}
