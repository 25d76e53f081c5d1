package verifier

import "github.com/pkg/errors"

var (
	// ErrSessionReused when Run is called on a session that already ran
	ErrSessionReused = errors.New("session already ran, create a new one")
	// ErrHealthCheck when the backend health endpoint returns non-200
	ErrHealthCheck = errors.New("health endpoint returned non-200")
	// ErrRouteRedirect when a route that must hold its URL redirects away
	ErrRouteRedirect = errors.New("route redirected away")
)
