// Package view holds the page-level controllers. Each view owns its own
// fetch/loading/error state and talks to the backend through a narrow
// interface, reading the session manager live so a login or logout is
// observed on the next operation without any restart.
package view

// State is the lifecycle of a view's data.
type State int

const (
	// StateIdle: nothing fetched; also the resting state of an
	// auth-gated view while logged out.
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Session is what a view needs to know about authentication.
type Session interface {
	IsAuthenticated() bool
	Username() string
}
