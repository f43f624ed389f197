package emergency

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/carebridge/carebridge-be/internal/privacy"
	"github.com/carebridge/carebridge-be/internal/triage"
	"github.com/carebridge/carebridge-be/pkg/llm"
)

// Response is what the patient sees when an emergency is declared
type Response struct {
	AmbulanceDispatched bool     `json:"ambulance_dispatched"`
	AmbulanceETA        string   `json:"ambulance_eta,omitempty"`
	CallSID             string   `json:"call_sid,omitempty"`
	DoctorGuidance      string   `json:"doctor_guidance"`
	ImmediateActions    []string `json:"immediate_actions"`
	EmergencyContacts   []string `json:"emergency_contacts"`
}

// Dispatcher places the simulated ambulance-dispatch call
type Dispatcher interface {
	DispatchAmbulance(ctx context.Context, patientName, location, symptoms string) (callSID string, err error)
}

// Coordinator runs the scripted emergency branch: dispatch an ambulance,
// generate calming doctor guidance, and hand back immediate actions.
type Coordinator struct {
	dispatcher Dispatcher
	llmClient  llm.Client
	model      string
}

// NewCoordinator creates an emergency coordinator. The LLM client may
// be nil, in which case the scripted guidance is always used.
func NewCoordinator(dispatcher Dispatcher, client llm.Client, model string) *Coordinator {
	return &Coordinator{
		dispatcher: dispatcher,
		llmClient:  client,
		model:      model,
	}
}

// Respond handles a declared emergency. Dispatch failures are logged
// and reported in the response rather than aborting: the patient still
// gets guidance even if the phone call could not be placed.
func (c *Coordinator) Respond(ctx context.Context, patient triage.PatientInfo, assessment *triage.Assessment) *Response {
	resp := &Response{
		ImmediateActions: immediateActions(assessment),
		EmergencyContacts: []string{
			"Emergency services: 112",
			"Ambulance: 108",
			"Poison control: 1800-116-117",
		},
	}

	if c.dispatcher != nil {
		callSID, err := c.dispatcher.DispatchAmbulance(ctx, patient.Name, patient.Location, patient.Symptoms)
		if err != nil {
			log.Printf("Ambulance dispatch call failed: %v", err)
		} else {
			resp.AmbulanceDispatched = true
			resp.AmbulanceETA = "10-15 minutes"
			resp.CallSID = callSID
			log.Printf("Ambulance dispatched for %s at %s (call %s)", patient.Name, patient.Location, callSID)
		}
	}

	resp.DoctorGuidance = c.doctorGuidance(ctx, patient, assessment)
	return resp
}

// doctorGuidance asks the model for calming guidance tailored to the
// symptoms, falling back to a fixed script on any failure.
func (c *Coordinator) doctorGuidance(ctx context.Context, patient triage.PatientInfo, assessment *triage.Assessment) string {
	if c.llmClient == nil {
		return scriptedGuidance(patient.Name)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(
		"You are an emergency physician speaking to a patient over chat while an ambulance is on the way. "+
			"The patient is %s, age %s, reporting: %s. "+
			"In 3-4 short sentences, calm them, tell them what to do right now, and what NOT to do. "+
			"Plain language only, no lists, no disclaimers.",
		patient.Name, patient.Age, privacy.SanitizeForAPI(patient.Symptoms))

	resp, err := c.llmClient.ChatCompletion(ctxWithTimeout, llm.ChatRequest{
		Model:       c.model,
		Messages:    []llm.ChatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.4,
		MaxTokens:   250,
	})
	if err != nil {
		log.Printf("Emergency guidance model failed (%v), using scripted guidance", err)
		return scriptedGuidance(patient.Name)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return scriptedGuidance(patient.Name)
	}
	return text
}

func scriptedGuidance(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(
		"%s, help is on the way. Stay as calm as you can and try to breathe slowly. "+
			"Sit or lie down in a comfortable position and loosen any tight clothing. "+
			"Do not eat, drink, or take any medication unless a doctor has told you to. "+
			"If you are with someone, keep them close until the ambulance arrives.", name)
}

func immediateActions(assessment *triage.Assessment) []string {
	actions := []string{
		"Stay where you are and remain as calm as possible",
		"Unlock your front door if you can do so safely",
		"Keep your phone nearby and charged",
	}
	if assessment != nil && assessment.Specialty == "Cardiologist" {
		actions = append(actions, "Sit upright and avoid any physical exertion")
	}
	return actions
}
