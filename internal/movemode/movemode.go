// Package movemode models the student board's "move mode": a pinned source
// session whose attendance the next click will move elsewhere. The state is
// an explicit two-phase machine with pure transitions so its invariants can
// be tested on their own.
package movemode

import (
	"github.com/academyops/clinicboard/internal/fault"
	"github.com/google/uuid"
)

// State is either idle or armed on a single source session.
type State struct {
	armed  bool
	source uuid.UUID
}

// Idle returns the resting state.
func Idle() State {
	return State{}
}

// IsArmed reports whether a source session is pinned.
func (s State) IsArmed() bool {
	return s.armed
}

// Source returns the pinned source session id; the zero uuid when idle.
func (s State) Source() uuid.UUID {
	if !s.armed {
		return uuid.Nil
	}
	return s.source
}

// Arm pins sourceID as the move source. It refuses to arm unless the
// student currently holds an active attendance on that session, so a stale
// board cannot start a move from nothing.
func (s State) Arm(sourceID uuid.UUID, activeSessions map[uuid.UUID]bool) (State, error) {
	if !activeSessions[sourceID] {
		return s, fault.Validation("source", "no active attendance on the selected session")
	}
	return State{armed: true, source: sourceID}, nil
}

// Disarm returns to idle.
func (s State) Disarm() State {
	return Idle()
}

// Reconcile re-checks the armed source against the authoritative
// attendance list. If the source attendance vanished (for example the
// session was canceled server-side while move mode was open) the state
// drops back to idle.
func (s State) Reconcile(activeSessions map[uuid.UUID]bool) State {
	if s.armed && !activeSessions[s.source] {
		return Idle()
	}
	return s
}
