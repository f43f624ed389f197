package triage

import (
	"context"
	"errors"
)

// Severity grades how serious the reported symptoms are
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Urgency grades how quickly the patient should be seen
type Urgency string

const (
	UrgencyRoutine Urgency = "routine"
	UrgencySoon    Urgency = "soon"
	UrgencyUrgent  Urgency = "urgent"
)

// Assessment is the structured result of symptom triage
type Assessment struct {
	Severity     Severity `json:"severity"`
	Urgency      Urgency  `json:"urgency"`
	Specialty    string   `json:"recommended_specialty"`
	IsEmergency  bool     `json:"is_emergency"`
	Explanation  string   `json:"explanation"`
	SelfCareTips []string `json:"self_care_tips,omitempty"`
}

// PatientInfo is the collected interview data fed into triage
type PatientInfo struct {
	Name      string `json:"name"`
	Age       string `json:"age"`
	Symptoms  string `json:"symptoms"`
	Location  string `json:"location"`
	Insurance string `json:"insurance"`
	Contact   string `json:"contact"`
}

// ErrBadResponse indicates the model returned output that could not be
// parsed into an Assessment
var ErrBadResponse = errors.New("unparseable triage response")

// Classifier assesses patient symptoms
type Classifier interface {
	Assess(ctx context.Context, info PatientInfo) (*Assessment, error)
}

// Valid reports whether the assessment carries usable enum values
func (a *Assessment) Valid() bool {
	switch a.Severity {
	case SeverityMild, SeverityModerate, SeveritySevere:
	default:
		return false
	}
	switch a.Urgency {
	case UrgencyRoutine, UrgencySoon, UrgencyUrgent:
	default:
		return false
	}
	return a.Specialty != ""
}
