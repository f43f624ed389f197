package triage

import (
	"context"
	"testing"
)

func TestFallbackSpecialtyMapping(t *testing.T) {
	tests := []struct {
		name     string
		symptoms string
		want     string
	}{
		{"chest pain", "I have chest pain when I climb stairs", "Cardiologist"},
		{"heart", "my heart keeps racing at night", "Cardiologist"},
		{"severe headache", "a severe headache behind my eyes", "Neurologist"},
		{"migraine", "recurring migraine attacks", "Neurologist"},
		{"stomach", "stomach pain after every meal", "Gastroenterologist"},
		{"heartburn", "constant heartburn and acid reflux", "Gastroenterologist"},
		{"skin", "an itchy rash on my arm", "Dermatologist"},
		{"anxiety", "anxiety and panic attacks", "Psychiatrist"},
		{"joint", "knee pain after a fall", "Orthopedist"},
		{"diabetes", "my blood sugar readings are high", "Endocrinologist"},
		{"child", "my child has been coughing", "Pediatrician"},
		{"generic", "I feel tired and run down", "General Physician"},
	}

	f := NewFallbackClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := f.Assess(context.Background(), PatientInfo{Symptoms: tt.symptoms})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Specialty != tt.want {
				t.Errorf("got %s, want %s", a.Specialty, tt.want)
			}
		})
	}
}

func TestFallbackEmergencyDetection(t *testing.T) {
	emergencies := []string{
		"chest pain and I can't breathe",
		"severe bleeding that won't stop",
		"my father is unconscious",
		"I think I'm having a stroke, my face is drooping",
		"slurred speech and one side feels numb",
	}

	f := NewFallbackClassifier()
	for _, symptoms := range emergencies {
		a, err := f.Assess(context.Background(), PatientInfo{Symptoms: symptoms})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !a.IsEmergency {
			t.Errorf("%q should be an emergency", symptoms)
		}
		if a.Severity != SeveritySevere || a.Urgency != UrgencyUrgent {
			t.Errorf("%q: got severity=%s urgency=%s", symptoms, a.Severity, a.Urgency)
		}
	}
}

func TestFallbackSeverityEscalation(t *testing.T) {
	tests := []struct {
		name     string
		symptoms string
		severity Severity
		urgency  Urgency
	}{
		{"mild", "a slight runny nose since this morning", SeverityMild, UrgencyRoutine},
		{"moderate", "a fever that won't go away for several days", SeverityModerate, UrgencySoon},
		{"severe", "severe stomach pain with blood in my stool", SeveritySevere, UrgencyUrgent},
	}

	f := NewFallbackClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := f.Assess(context.Background(), PatientInfo{Symptoms: tt.symptoms})
			if a.IsEmergency {
				t.Fatalf("%q should not be an emergency", tt.symptoms)
			}
			if a.Severity != tt.severity {
				t.Errorf("severity: got %s, want %s", a.Severity, tt.severity)
			}
			if a.Urgency != tt.urgency {
				t.Errorf("urgency: got %s, want %s", a.Urgency, tt.urgency)
			}
		})
	}
}

func TestFallbackAlwaysValid(t *testing.T) {
	f := NewFallbackClassifier()
	a, err := f.Assess(context.Background(), PatientInfo{Symptoms: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Valid() {
		t.Errorf("fallback produced invalid assessment: %+v", a)
	}
}
