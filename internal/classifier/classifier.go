package classifier

import (
	"strings"

	"github.com/themobileprof/mamacare-be/internal/conversation"
)

// Intent represents the classified intent of an inbound message
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentSwitchMode      Intent = "switch_mode"
	IntentEmergency       Intent = "emergency"
	IntentSymptomReport   Intent = "symptom_report"
	IntentGeneralQuestion Intent = "general_question"
)

// Result contains the classification of one message
type Result struct {
	Intent Intent `json:"intent"`
	// Mode is the requested mode for IntentSwitchMode
	Mode conversation.Mode `json:"mode,omitempty"`
	// Symptom is set whenever a symptom keyword is present, even when
	// another intent won
	Symptom bool `json:"symptom"`
	// GateToMenu means no mode is active yet and the user must pick one
	// before any advice is generated
	GateToMenu bool `json:"gate_to_menu"`
}

// Classifier routes free text to an intent. Implementations must be
// total and deterministic.
type Classifier interface {
	Classify(text string, mode conversation.Mode) Result
}

// KeywordClassifier is the rule-based Classifier. Rules are checked in
// a fixed order: greeting, mode switch, emergency, symptom, general.
type KeywordClassifier struct {
	greetings         map[string]bool
	maternityKeywords []string
	pcosKeywords      []string
	emergencyKeywords []string
	symptomKeywords   []string
}

var _ Classifier = (*KeywordClassifier)(nil)

// NewClassifier creates the keyword classifier
func NewClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		greetings:         map[string]bool{"hi": true, "hello": true, "start": true, "hey": true},
		maternityKeywords: []string{"maternity", "pregnancy"},
		pcosKeywords:      []string{"pcos"},
		emergencyKeywords: []string{"emergency", "bleeding", "khoon", "bahut dard"},
		symptomKeywords: []string{
			"pain", "cramp", "bleed", "nausea", "headache", "swelling", "dard",
			"khoon", "took", "medicine", "tired", "mood", "vomit", "dizzy",
			"spotting", "moving", "fever", "itching", "weak",
		},
	}
}

// Classify implements Classifier
func (c *KeywordClassifier) Classify(text string, mode conversation.Mode) Result {
	normalized := Normalize(text)
	result := Result{Symptom: containsAny(normalized, c.symptomKeywords)}

	switch {
	case c.greetings[normalized]:
		result.Intent = IntentGreeting
	case containsAny(normalized, c.maternityKeywords):
		result.Intent = IntentSwitchMode
		result.Mode = conversation.ModeMaternity
	case containsAny(normalized, c.pcosKeywords):
		result.Intent = IntentSwitchMode
		result.Mode = conversation.ModePCOS
	case containsAny(normalized, c.emergencyKeywords):
		result.Intent = IntentEmergency
	case result.Symptom:
		result.Intent = IntentSymptomReport
	default:
		result.Intent = IntentGeneralQuestion
	}

	if mode.OrGeneral() == conversation.ModeGeneral &&
		(result.Intent == IntentSymptomReport || result.Intent == IntentGeneralQuestion) {
		result.GateToMenu = true
	}
	return result
}

// voiceEmergencyKeywords are scanned on IVR speech before any advice
var voiceEmergencyKeywords = []string{
	"emergency", "help", "bleeding", "khoon", "dard", "pain", "hospital", "urgent",
}

// IsVoiceEmergency reports whether transcribed speech should short-circuit
// the IVR to the emergency acknowledgment
func IsVoiceEmergency(speech string) bool {
	return containsAny(Normalize(speech), voiceEmergencyKeywords)
}

// Normalize lower-cases and trims input
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
