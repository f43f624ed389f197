package session

import (
	"testing"

	"github.com/carebridge/carebridge-be/internal/triage"
)

func TestInterviewProgression(t *testing.T) {
	m := NewManager()
	id := "conv-1"

	state := m.Get(id)
	if state.Stage != StageName {
		t.Fatalf("new session stage: got %s", state.Stage)
	}

	answers := []struct {
		answer string
		next   Stage
	}{
		{"Priya", StageAge},
		{"34", StageSymptoms},
		{"stomach pain for three days", StageLocation},
		{"Pune", StageInsurance},
		{"Star Health", StageContact},
		{"+91 98765 43210", StageTriage},
	}

	for _, step := range answers {
		if got := m.Advance(id, step.answer); got != step.next {
			t.Fatalf("after %q: got stage %s, want %s", step.answer, got, step.next)
		}
	}

	state = m.Get(id)
	if state.Patient.Name != "Priya" || state.Patient.Age != "34" {
		t.Errorf("patient: got %+v", state.Patient)
	}
	if state.Patient.Symptoms != "stomach pain for three days" {
		t.Errorf("symptoms: got %q", state.Patient.Symptoms)
	}
	if state.Patient.Insurance != "Star Health" {
		t.Errorf("insurance: got %q", state.Patient.Insurance)
	}
}

func TestSetAssessmentRouting(t *testing.T) {
	m := NewManager()

	m.Get("routine")
	m.SetAssessment("routine", &triage.Assessment{IsEmergency: false})
	if got := m.Get("routine").Stage; got != StageRecommendations {
		t.Errorf("routine stage: got %s", got)
	}

	m.Get("urgent")
	m.SetAssessment("urgent", &triage.Assessment{IsEmergency: true})
	if got := m.Get("urgent").Stage; got != StageEmergency {
		t.Errorf("emergency stage: got %s", got)
	}
}

func TestFinishAndReset(t *testing.T) {
	m := NewManager()

	m.Get("conv-1")
	m.Finish("conv-1")
	if got := m.Get("conv-1").Stage; got != StageDone {
		t.Errorf("finished stage: got %s", got)
	}

	m.Reset("conv-1")
	if m.Count() != 0 {
		t.Errorf("count after reset: got %d", m.Count())
	}
	// A fresh session starts over
	if got := m.Get("conv-1").Stage; got != StageName {
		t.Errorf("stage after reset: got %s", got)
	}
}

func TestAdvanceUnknownConversation(t *testing.T) {
	m := NewManager()
	if got := m.Advance("ghost", "hello"); got != StageName {
		t.Errorf("got %s, want %s", got, StageName)
	}
}
