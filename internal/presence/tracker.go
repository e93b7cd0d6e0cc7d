// Package presence mirrors the local client's foreground state into the
// user's profile record.
package presence

import (
	"sync"
	"time"
)

// AppState is the OS-provided foreground signal. Anything that is not
// active counts as backgrounded; inactive and background are not separate
// states here.
type AppState string

const (
	StateActive     AppState = "active"
	StateInactive   AppState = "inactive"
	StateBackground AppState = "background"
)

// Writer persists one presence update. Implementations are fire-and-forget:
// failures are logged inside, never returned, never retried.
type Writer interface {
	WritePresence(userID string, online bool, lastSeen time.Time)
}

// Tracker is a two-state machine (active / backgrounded). Entering active
// writes online:true; leaving active writes online:false; transitions
// between two non-active states write nothing.
type Tracker struct {
	mu     sync.Mutex
	writer Writer
	userID string
	active bool
}

func NewTracker(writer Writer, userID string) *Tracker {
	return &Tracker{
		writer: writer,
		userID: userID,
	}
}

// Start seeds the machine with the state the app launched in. Launching in
// the foreground publishes an immediate online write.
func (t *Tracker) Start(initial AppState) {
	t.OnStateChange(initial)
}

// OnStateChange feeds one OS signal through the machine.
func (t *Tracker) OnStateChange(next AppState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	nowActive := next == StateActive
	if nowActive == t.active {
		// inactive -> background (and the like) never writes twice
		return
	}

	t.active = nowActive
	t.writer.WritePresence(t.userID, nowActive, time.Now().UTC())
}
