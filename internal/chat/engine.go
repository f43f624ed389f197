package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/carebridge/carebridge-be/internal/db"
	"github.com/carebridge/carebridge-be/internal/emergency"
	"github.com/carebridge/carebridge-be/internal/privacy"
	"github.com/carebridge/carebridge-be/internal/recommend"
	"github.com/carebridge/carebridge-be/internal/session"
	"github.com/carebridge/carebridge-be/internal/triage"
)

// Responder defines the interface for sending responses to any transport
type Responder interface {
	SendQuestion(stage session.Stage, text string) error
	SendAssessment(assessment *triage.Assessment) error
	SendEmergency(resp *emergency.Response) error
	SendEmergencyUpdate(update string) error
	SendRecommendations(result recommend.Result) error
	SendMessage(content string) error
	SendError(message string) error
	SendDone() error
}

// ProcessRequest contains all data needed to process a message
type ProcessRequest struct {
	UserID         string
	ConversationID string
	Message        string
	Responder      Responder
}

// Interfaces for dependencies
type TriageInterface interface {
	Assess(ctx context.Context, info triage.PatientInfo) (*triage.Assessment, error)
}

type RecommendInterface interface {
	Recommend(q recommend.Query) recommend.Result
}

type EmergencyInterface interface {
	Respond(ctx context.Context, patient triage.PatientInfo, assessment *triage.Assessment) *emergency.Response
}

type MonitorInterface interface {
	Start(ctx context.Context, conversationID string, send func(update string) error) <-chan struct{}
}

type DBInterface interface {
	SavePatient(ctx context.Context, patient *db.Patient) error
}

// Engine drives the intake interview independent of transport: collect
// patient details, triage, then either the emergency branch or doctor
// recommendations.
type Engine struct {
	sessions      *session.Manager
	triager       TriageInterface
	recommender   RecommendInterface
	emergencies   EmergencyInterface
	monitor       MonitorInterface
	db            DBInterface
	triageTimeout time.Duration
}

// NewEngine creates a transport-agnostic interview engine. The db may
// be nil when persistence is disabled.
func NewEngine(
	triager TriageInterface,
	recommender RecommendInterface,
	emergencies EmergencyInterface,
	monitor MonitorInterface,
	database DBInterface,
) *Engine {
	return &Engine{
		sessions:      session.NewManager(),
		triager:       triager,
		recommender:   recommender,
		emergencies:   emergencies,
		monitor:       monitor,
		db:            database,
		triageTimeout: 30 * time.Second,
	}
}

// Greet opens a conversation with the first interview question
func (e *Engine) Greet(conversationID string, responder Responder) error {
	state := e.sessions.Get(conversationID)
	if err := responder.SendMessage("Hello! I'm your health assistant. I'll ask a few questions to find you the right doctor."); err != nil {
		return err
	}
	return responder.SendQuestion(state.Stage, questionFor(state.Stage))
}

// ProcessMessage advances the interview with the patient's answer
func (e *Engine) ProcessMessage(ctx context.Context, req ProcessRequest) error {
	log.Printf("Processing message: conversation=%s, length=%d", req.ConversationID, len(req.Message))

	answer := strings.TrimSpace(req.Message)
	if privacy.ContainsPII(answer) {
		log.Printf("Potential PII in message for conversation %s", req.ConversationID)
	}

	state := e.sessions.Get(req.ConversationID)

	if state.Stage == session.StageDone {
		return req.Responder.SendMessage("This consultation is complete. Start a new conversation if you need anything else.")
	}

	if answer == "" {
		if err := req.Responder.SendError("Please type an answer so we can continue."); err != nil {
			return err
		}
		return req.Responder.SendQuestion(state.Stage, questionFor(state.Stage))
	}

	stage := e.sessions.Advance(req.ConversationID, answer)

	if stage != session.StageTriage {
		return req.Responder.SendQuestion(stage, questionFor(stage))
	}

	return e.runTriage(ctx, req)
}

// runTriage classifies the collected symptoms and routes to the
// emergency branch or doctor recommendations.
func (e *Engine) runTriage(ctx context.Context, req ProcessRequest) error {
	state := e.sessions.Get(req.ConversationID)

	if err := req.Responder.SendMessage("Thank you. Let me review your symptoms..."); err != nil {
		return err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.triageTimeout)
	defer cancel()

	assessment, err := e.triager.Assess(ctxWithTimeout, state.Patient)
	if err != nil {
		log.Printf("Triage failed for conversation %s: %v", req.ConversationID, err)
		return req.Responder.SendError("I couldn't assess your symptoms right now. Please try again in a moment.")
	}

	e.sessions.SetAssessment(req.ConversationID, assessment)
	e.savePatient(ctx, state, assessment)

	if err := req.Responder.SendAssessment(assessment); err != nil {
		return err
	}

	if assessment.IsEmergency {
		return e.runEmergency(ctx, req, state.Patient, assessment)
	}

	return e.runRecommendations(req, state.Patient, assessment)
}

func (e *Engine) runEmergency(ctx context.Context, req ProcessRequest, patient triage.PatientInfo, assessment *triage.Assessment) error {
	log.Printf("Emergency declared for conversation %s", req.ConversationID)

	resp := e.emergencies.Respond(ctx, patient, assessment)
	if err := req.Responder.SendEmergency(resp); err != nil {
		return err
	}

	if e.monitor != nil && resp.AmbulanceDispatched {
		// Updates continue until the series ends or the socket closes
		e.monitor.Start(ctx, req.ConversationID, req.Responder.SendEmergencyUpdate)
	}

	e.sessions.Finish(req.ConversationID)
	return req.Responder.SendDone()
}

func (e *Engine) runRecommendations(req ProcessRequest, patient triage.PatientInfo, assessment *triage.Assessment) error {
	result := e.recommender.Recommend(recommend.Query{
		Location:  patient.Location,
		Specialty: assessment.Specialty,
		Insurance: patient.Insurance,
		Urgency:   string(assessment.Urgency),
	})

	if err := req.Responder.SendRecommendations(result); err != nil {
		return err
	}

	e.sessions.Finish(req.ConversationID)
	return req.Responder.SendDone()
}

// savePatient persists the interview record. Failures are logged; the
// conversation continues either way.
func (e *Engine) savePatient(ctx context.Context, state *session.State, assessment *triage.Assessment) {
	if e.db == nil {
		return
	}

	patient := &db.Patient{
		Name:      state.Patient.Name,
		Age:       state.Patient.Age,
		Symptoms:  state.Patient.Symptoms,
		Location:  state.Patient.Location,
		Insurance: state.Patient.Insurance,
		Contact:   state.Patient.Contact,
		Severity:  string(assessment.Severity),
		Urgency:   string(assessment.Urgency),
		Specialty: assessment.Specialty,
	}
	if err := e.db.SavePatient(ctx, patient); err != nil {
		log.Printf("Failed to save patient record: %v", err)
	}
}

// EndConversation tears down session state when the transport closes
func (e *Engine) EndConversation(conversationID string) {
	e.sessions.Reset(conversationID)
}

func questionFor(stage session.Stage) string {
	switch stage {
	case session.StageName:
		return "What is your name?"
	case session.StageAge:
		return "How old are you?"
	case session.StageSymptoms:
		return "What symptoms are you experiencing? Please describe them in your own words."
	case session.StageLocation:
		return "Which city or area are you in?"
	case session.StageInsurance:
		return "Do you have health insurance? If so, which provider?"
	case session.StageContact:
		return "What is the best phone number or email to reach you?"
	default:
		return "Could you tell me more?"
	}
}
