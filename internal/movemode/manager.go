package movemode

import (
	"sync"

	"github.com/google/uuid"
)

// Manager holds per-student move-mode state. Each board screen owns its
// student's entry; entries drop back out of the map when they go idle.
type Manager struct {
	mu     sync.RWMutex
	states map[int64]State // studentID -> state
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]State),
	}
}

// Get returns the student's current state, idle if none is held.
func (m *Manager) Get(studentID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, exists := m.states[studentID]; exists {
		return s
	}
	return Idle()
}

// Arm pins a source session for the student.
func (m *Manager) Arm(studentID int64, sourceID uuid.UUID, activeSessions map[uuid.UUID]bool) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.states[studentID]
	if !exists {
		current = Idle()
	}

	next, err := current.Arm(sourceID, activeSessions)
	if err != nil {
		return current, err
	}

	m.states[studentID] = next
	return next, nil
}

// Disarm returns the student to idle and drops the entry.
func (m *Manager) Disarm(studentID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, studentID)
}

// Reconcile applies the authoritative active-session set to the student's
// state, auto-disarming when the source attendance is gone.
func (m *Manager) Reconcile(studentID int64, activeSessions map[uuid.UUID]bool) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.states[studentID]
	if !exists {
		return Idle()
	}

	next := current.Reconcile(activeSessions)
	if !next.IsArmed() {
		delete(m.states, studentID)
	} else {
		m.states[studentID] = next
	}
	return next
}
