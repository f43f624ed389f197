package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/carebridge/carebridge-be/internal/circuitbreaker"
	"github.com/carebridge/carebridge-be/internal/privacy"
	"github.com/carebridge/carebridge-be/pkg/llm"
)

const systemPrompt = `You are a medical triage assistant. Given a patient's details and
symptoms, respond with ONLY a JSON object (no markdown, no prose) with exactly these keys:
{
  "severity": "mild" | "moderate" | "severe",
  "urgency": "routine" | "soon" | "urgent",
  "recommended_specialty": "<one of: General Physician, Cardiologist, Gastroenterologist, Neurologist, Dermatologist, Psychiatrist, Orthopedist, Endocrinologist, Pediatrician>",
  "is_emergency": true | false,
  "explanation": "<one or two sentences for the patient, plain language>",
  "self_care_tips": ["<short tip>", ...]
}
Set is_emergency to true only for life-threatening presentations such as chest pain with
breathing difficulty, signs of stroke, uncontrolled bleeding, loss of consciousness, or
suicidal intent. Never invent symptoms the patient did not report.`

// LLMClassifier assesses symptoms through a chat-completion model,
// protected by a circuit breaker, with a rule-based fallback when the
// model is unavailable or returns garbage.
type LLMClassifier struct {
	client   llm.Client
	model    string
	breaker  *circuitbreaker.CircuitBreaker
	fallback *FallbackClassifier
}

// NewLLMClassifier creates a classifier backed by the given LLM client
func NewLLMClassifier(client llm.Client, model string) *LLMClassifier {
	return &LLMClassifier{
		client:   client,
		model:    model,
		breaker:  circuitbreaker.NewCircuitBreaker(3, 30*time.Second),
		fallback: NewFallbackClassifier(),
	}
}

// Assess classifies the patient's symptoms. On model failure or an
// unparseable response it falls back to rule-based triage and never
// returns an error to the caller.
func (c *LLMClassifier) Assess(ctx context.Context, info PatientInfo) (*Assessment, error) {
	var assessment *Assessment

	err := c.breaker.Call(func() error {
		a, err := c.assessViaModel(ctx, info)
		if err != nil {
			return err
		}
		assessment = a
		return nil
	})
	if err != nil {
		log.Printf("Triage model unavailable (%v), using rule-based fallback", err)
		return c.fallback.Assess(ctx, info)
	}

	return assessment, nil
}

func (c *LLMClassifier) assessViaModel(ctx context.Context, info PatientInfo) (*Assessment, error) {
	// Contact details never leave the service; symptoms are scrubbed of
	// stray identifiers before the API call
	userMsg := fmt.Sprintf("Patient: %s, age %s.\nSymptoms: %s",
		info.Name, info.Age, privacy.SanitizeForAPI(info.Symptoms))

	resp, err := c.client.ChatCompletion(ctx, llm.ChatRequest{
		Model: c.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMsg},
		},
		Temperature: 0.2,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("triage completion failed: %w", err)
	}

	assessment, err := parseAssessment(resp.Text())
	if err != nil {
		return nil, err
	}

	return assessment, nil
}

// parseAssessment extracts the JSON object from model output. Models
// occasionally wrap JSON in markdown fences despite instructions, so we
// strip those before decoding.
func parseAssessment(raw string) (*Assessment, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Tolerate leading prose by seeking the first brace
	if idx := strings.Index(text, "{"); idx > 0 {
		text = text[idx:]
	}
	if idx := strings.LastIndex(text, "}"); idx >= 0 {
		text = text[:idx+1]
	}

	var assessment Assessment
	if err := json.Unmarshal([]byte(text), &assessment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if !assessment.Valid() {
		return nil, fmt.Errorf("%w: missing or invalid fields", ErrBadResponse)
	}

	return &assessment, nil
}
