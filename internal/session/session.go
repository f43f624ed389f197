package session

import (
	"sync"
	"time"

	"github.com/carebridge/carebridge-be/internal/triage"
)

// Stage identifies where a patient is in the intake interview
type Stage string

const (
	StageName            Stage = "name"
	StageAge             Stage = "age"
	StageSymptoms        Stage = "symptoms"
	StageLocation        Stage = "location"
	StageInsurance       Stage = "insurance"
	StageContact         Stage = "contact"
	StageTriage          Stage = "triage"
	StageEmergency       Stage = "emergency"
	StageRecommendations Stage = "recommendations"
	StageDone            Stage = "done"
)

// State holds the per-conversation interview state
type State struct {
	ConversationID string
	Stage          Stage
	Patient        triage.PatientInfo
	Assessment     *triage.Assessment
	StartedAt      time.Time
	LastActivity   time.Time
}

// Manager tracks interview state per conversation
type Manager struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewManager creates a session state manager
func NewManager() *Manager {
	return &Manager{
		states: make(map[string]*State),
	}
}

// Get retrieves or creates session state for a conversation
func (m *Manager) Get(conversationID string) *State {
	m.mu.RLock()
	state, exists := m.states[conversationID]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		// Re-check under write lock
		if state = m.states[conversationID]; state == nil {
			state = &State{
				ConversationID: conversationID,
				Stage:          StageName,
				StartedAt:      time.Now(),
				LastActivity:   time.Now(),
			}
			m.states[conversationID] = state
		}
		m.mu.Unlock()
	}

	return state
}

// Advance records the answer for the current stage and moves the
// interview forward. It returns the new stage.
func (m *Manager) Advance(conversationID, answer string) Stage {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.states[conversationID]
	if state == nil {
		return StageName
	}

	switch state.Stage {
	case StageName:
		state.Patient.Name = answer
		state.Stage = StageAge
	case StageAge:
		state.Patient.Age = answer
		state.Stage = StageSymptoms
	case StageSymptoms:
		state.Patient.Symptoms = answer
		state.Stage = StageLocation
	case StageLocation:
		state.Patient.Location = answer
		state.Stage = StageInsurance
	case StageInsurance:
		state.Patient.Insurance = answer
		state.Stage = StageContact
	case StageContact:
		state.Patient.Contact = answer
		state.Stage = StageTriage
	}

	state.LastActivity = time.Now()
	return state.Stage
}

// SetAssessment stores the triage result and routes the session to the
// emergency or recommendation stage.
func (m *Manager) SetAssessment(conversationID string, assessment *triage.Assessment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.states[conversationID]
	if state == nil {
		return
	}

	state.Assessment = assessment
	if assessment.IsEmergency {
		state.Stage = StageEmergency
	} else {
		state.Stage = StageRecommendations
	}
	state.LastActivity = time.Now()
}

// Finish marks the interview complete
func (m *Manager) Finish(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, exists := m.states[conversationID]; exists {
		state.Stage = StageDone
		state.LastActivity = time.Now()
	}
}

// Reset clears session state after the conversation ends
func (m *Manager) Reset(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, conversationID)
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}
