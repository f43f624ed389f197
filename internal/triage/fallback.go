package triage

import (
	"context"
	"regexp"
	"strings"
)

// specialtyRule maps symptom patterns to a medical specialty
type specialtyRule struct {
	specialty string
	patterns  []*regexp.Regexp
}

// FallbackClassifier performs rule-based triage when the model is
// unavailable. Rules are evaluated in order; the first specialty match
// wins, and severity escalates with the number of matched red flags.
type FallbackClassifier struct {
	emergencyPatterns []*regexp.Regexp
	severePatterns    []*regexp.Regexp
	moderatePatterns  []*regexp.Regexp
	specialtyRules    []specialtyRule
	spaceNormalizer   *regexp.Regexp
}

// NewFallbackClassifier creates a rule-based triage classifier
func NewFallbackClassifier() *FallbackClassifier {
	return &FallbackClassifier{
		spaceNormalizer: regexp.MustCompile(`\s+`),
		emergencyPatterns: compilePatterns([]string{
			`\bchest (pain|tightness|pressure)\b.*\b(breath|breathing|breathe)\b`,
			`\b(breath|breathing|breathe)\b.*\bchest (pain|tightness|pressure)\b`,
			`\b(can't|cannot|difficulty|trouble|hard to) breath(e|ing)?\b`,
			`\bunconscious|unresponsive|passed out|fainted\b`,
			`\b(severe|heavy|uncontrolled) bleeding\b`,
			`\bstroke\b`,
			`\b(slurred speech|face droop|one side.*(numb|weak))\b`,
			`\bsuicid(e|al)\b`,
			`\bseizure|convulsion\b`,
			`\boverdose\b`,
		}),
		severePatterns: compilePatterns([]string{
			`\bsevere\b`,
			`\bworst\b`,
			`\bunbearable|excruciating|intense\b`,
			`\b(high|very high) fever\b`,
			`\bblood\b`,
			`\bvomiting\b.*\bdays\b`,
		}),
		moderatePatterns: compilePatterns([]string{
			`\b(persistent|constant|recurring|won't go away|getting worse)\b`,
			`\b(several|few|many) days\b`,
			`\bweeks?\b`,
			`\bfever\b`,
			`\bswelling|swollen\b`,
		}),
		specialtyRules: []specialtyRule{
			{"Cardiologist", compilePatterns([]string{
				`\bchest (pain|tightness|pressure)\b`,
				`\bheart\b`,
				`\bpalpitation\b`,
				`\b(high|low) blood pressure\b`,
			})},
			{"Neurologist", compilePatterns([]string{
				`\b(severe|bad|worst) headache\b`,
				`\bmigraine\b`,
				`\bseizure|convulsion\b`,
				`\bnumbness|tingling\b`,
				`\bdizz(y|iness)\b.*\b(vision|balance)\b`,
			})},
			{"Gastroenterologist", compilePatterns([]string{
				`\bstomach (pain|ache|cramp)\b`,
				`\babdominal\b`,
				`\b(diarrhea|constipation)\b`,
				`\bindigestion|acid reflux|heartburn\b`,
				`\bnausea\b.*\bstomach\b`,
			})},
			{"Dermatologist", compilePatterns([]string{
				`\b(skin|rash|itch|itching|itchy|acne|eczema|hives|mole)\b`,
			})},
			{"Psychiatrist", compilePatterns([]string{
				`\b(anxiety|anxious|depress(ed|ion)|panic|insomnia|stress(ed)?)\b`,
				`\bmental health\b`,
			})},
			{"Orthopedist", compilePatterns([]string{
				`\b(bone|joint|knee|shoulder|back|neck|hip|ankle|wrist) (pain|ache|injury)\b`,
				`\bfracture|sprain|sprained\b`,
				`\barthritis\b`,
			})},
			{"Endocrinologist", compilePatterns([]string{
				`\bdiabetes|diabetic\b`,
				`\bthyroid\b`,
				`\bblood sugar\b`,
			})},
			{"Pediatrician", compilePatterns([]string{
				`\b(my (child|kid|baby|son|daughter)|infant|toddler)\b`,
			})},
		},
	}
}

// Assess performs rule-based triage. It never fails.
func (f *FallbackClassifier) Assess(_ context.Context, info PatientInfo) (*Assessment, error) {
	text := f.normalizeText(info.Symptoms)

	if f.matchesAny(text, f.emergencyPatterns) {
		return &Assessment{
			Severity:    SeveritySevere,
			Urgency:     UrgencyUrgent,
			Specialty:   f.specialtyFor(text),
			IsEmergency: true,
			Explanation: "Your symptoms may indicate a medical emergency. Please seek immediate help.",
		}, nil
	}

	severity := SeverityMild
	urgency := UrgencyRoutine
	if f.countMatches(text, f.severePatterns) > 0 {
		severity = SeveritySevere
		urgency = UrgencyUrgent
	} else if f.countMatches(text, f.moderatePatterns) > 0 {
		severity = SeverityModerate
		urgency = UrgencySoon
	}

	specialty := f.specialtyFor(text)

	return &Assessment{
		Severity:    severity,
		Urgency:     urgency,
		Specialty:   specialty,
		IsEmergency: false,
		Explanation: explanationFor(severity, specialty),
		SelfCareTips: []string{
			"Stay hydrated and rest",
			"Note any changes in your symptoms",
			"Seek immediate care if symptoms worsen suddenly",
		},
	}, nil
}

// specialtyFor returns the first matching specialty, defaulting to a
// general physician when nothing specific matches.
func (f *FallbackClassifier) specialtyFor(text string) string {
	for _, rule := range f.specialtyRules {
		if f.matchesAny(text, rule.patterns) {
			return rule.specialty
		}
	}
	return "General Physician"
}

func explanationFor(severity Severity, specialty string) string {
	switch severity {
	case SeveritySevere:
		return "Your symptoms sound serious. Please see a " + specialty + " as soon as possible."
	case SeverityModerate:
		return "Your symptoms should be looked at soon. We recommend seeing a " + specialty + "."
	default:
		return "Your symptoms appear mild. A visit to a " + specialty + " at your convenience is recommended."
	}
}

func (f *FallbackClassifier) normalizeText(input string) string {
	text := strings.ToLower(input)
	text = strings.TrimSpace(text)
	text = f.spaceNormalizer.ReplaceAllString(text, " ")
	return text
}

func (f *FallbackClassifier) matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

func (f *FallbackClassifier) countMatches(text string, patterns []*regexp.Regexp) int {
	count := 0
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			count++
		}
	}
	return count
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
