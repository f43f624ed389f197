package privacy

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	// Phone numbers in the formats patients actually type: US style
	// (555-123-4567, (555) 123-4567, 555-1234), Indian mobiles with or
	// without the +91 prefix (98765 43210, +91 98765 43210), and plain
	// 10-digit runs.
	phoneRegex = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]\d{4}|\d{5}[-.\s]\d{5}|\d{10})\b|\b\d{3}[-.\s]\d{4}\b`)

	ssnRegex = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	creditCardRegex = regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4}[-\s]\d{4}\b`)

	// Medical record and insurance policy identifiers
	medicalIDRegex = regexp.MustCompile(`\b(MRN|Medical Record|Patient ID|Policy No|Policy Number)[-:.\s]*[A-Z0-9/-]{6,}\b`)
)

// RedactSensitiveData replaces contact-style identifiers in text with
// bracketed placeholders. Clinical numbers (temperatures, blood pressure,
// durations) pass through untouched.
func RedactSensitiveData(text string) string {
	text = emailRegex.ReplaceAllString(text, "[EMAIL]")
	text = ssnRegex.ReplaceAllString(text, "[SSN]")
	text = creditCardRegex.ReplaceAllString(text, "[CARD]")
	text = phoneRegex.ReplaceAllString(text, "[PHONE]")
	text = medicalIDRegex.ReplaceAllString(text, "[MEDICAL_ID]")
	return text
}

// SanitizeForLogging redacts and truncates text before it hits the logs
func SanitizeForLogging(text string) string {
	redacted := RedactSensitiveData(text)
	if len(redacted) > 200 {
		return redacted[:197] + "..."
	}
	return redacted
}

// SanitizeForAPI scrubs symptom text before it is sent to an external
// model API. Contact fields never reach the API at all; this catches
// identifiers the patient typed into free-text symptom descriptions.
func SanitizeForAPI(text string) string {
	return RedactSensitiveData(text)
}

// ContainsPII reports whether text matches any identifier pattern
func ContainsPII(text string) bool {
	return emailRegex.MatchString(text) ||
		phoneRegex.MatchString(text) ||
		ssnRegex.MatchString(text) ||
		creditCardRegex.MatchString(text) ||
		medicalIDRegex.MatchString(text)
}

// PseudonymizeContact maps a contact string to a stable opaque tag so
// log lines about the same patient can be correlated without exposing
// the contact itself.
func PseudonymizeContact(contact string) string {
	h := fnv.New32a()
	h.Write([]byte(strings.TrimSpace(contact)))
	return fmt.Sprintf("[CONTACT_%08x]", h.Sum32())
}
