package twilio

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// VoiceClient places outbound calls through the Twilio Voice API
type VoiceClient struct {
	client      *twilio.RestClient
	fromNumber  string
	targetPhone string
}

// VoiceConfig holds Twilio Voice configuration
type VoiceConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string // Caller ID
	TargetPhone string // Dispatch line to call
}

// NewVoiceClient creates a new Twilio Voice client
func NewVoiceClient(config VoiceConfig) *VoiceClient {
	return &VoiceClient{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: config.AccountSID,
			Password: config.AuthToken,
		}),
		fromNumber:  config.PhoneNumber,
		targetPhone: config.TargetPhone,
	}
}

// DispatchAmbulance places a call to the dispatch line announcing the
// patient, their location, and reported symptoms via inline TwiML.
func (c *VoiceClient) DispatchAmbulance(_ context.Context, patientName, location, symptoms string) (string, error) {
	announcement := fmt.Sprintf(
		"Emergency dispatch requested. Patient %s at %s. Reported symptoms: %s. Please respond immediately.",
		patientName, location, symptoms)

	// Dispatch lines expect the message twice
	twiml := NewTwiMLResponse().
		Say(announcement, "", "").
		Pause(1).
		Say("Repeating. "+announcement, "", "").
		String()

	params := &api.CreateCallParams{}
	params.SetTo(c.targetPhone)
	params.SetFrom(c.fromNumber)
	params.SetTwiml(twiml)

	resp, err := c.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("failed to create call: %w", err)
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("call created without SID")
	}

	return *resp.Sid, nil
}

// TwiMLResponse builds a TwiML document for outbound announcements
type TwiMLResponse struct {
	builder strings.Builder
}

// NewTwiMLResponse creates a new TwiML response builder
func NewTwiMLResponse() *TwiMLResponse {
	t := &TwiMLResponse{}
	t.builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	t.builder.WriteString(`<Response>`)
	return t
}

// Say adds a Say verb to speak text
func (t *TwiMLResponse) Say(text, voice, language string) *TwiMLResponse {
	if voice == "" {
		voice = "Polly.Joanna"
	}
	if language == "" {
		language = "en-US"
	}
	t.builder.WriteString(fmt.Sprintf(`<Say voice="%s" language="%s">%s</Say>`, voice, language, escapeXML(text)))
	return t
}

// Pause adds a Pause verb
func (t *TwiMLResponse) Pause(seconds int) *TwiMLResponse {
	t.builder.WriteString(fmt.Sprintf(`<Pause length="%d"/>`, seconds))
	return t
}

// String finalizes and returns the TwiML document
func (t *TwiMLResponse) String() string {
	return t.builder.String() + `</Response>`
}

// escapeXML escapes special characters for XML content
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
