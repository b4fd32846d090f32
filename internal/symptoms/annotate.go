package symptoms

import (
	"regexp"
	"sort"
	"strings"
)

// Severity levels attached to a reported symptom
const (
	SeveritySevere   = "severe"
	SeverityModerate = "moderate"
	SeverityMild     = "mild"
)

// Annotation contains hints derived from a free-text symptom report.
// It never replaces the verbatim text stored with the report.
type Annotation struct {
	Kinds    []string `json:"kinds"`
	Severity string   `json:"severity"`
	Onset    string   `json:"onset"`
}

// Summary renders the annotation as a short tag string for logs
func (a Annotation) Summary() string {
	parts := []string{a.Severity}
	if len(a.Kinds) > 0 {
		parts = append(parts, strings.Join(a.Kinds, ","))
	}
	if a.Onset != "" && a.Onset != "unknown" {
		parts = append(parts, "onset "+a.Onset)
	}
	return strings.Join(parts, " - ")
}

// Common pregnancy and PCOS symptoms, English and Hinglish
var symptomPatterns = map[string][]string{
	"swelling":         {"swollen", "swelling", "puffy", "edema", "sujan"},
	"nausea":           {"nausea", "nauseous", "morning sickness", "queasy", "ulti jaisa"},
	"headache":         {"headache", "head ache", "head hurts", "migraine", "sir dard", "sar dard"},
	"back_pain":        {"back pain", "backache", "back ache", "lower back", "kamar dard"},
	"abdominal_pain":   {"stomach pain", "pet dard", "pet mein dard", "abdominal"},
	"cramping":         {"cramp", "cramping", "cramps"},
	"vision_changes":   {"blurry", "blurred vision", "can't see", "eyesight"},
	"dizziness":        {"dizzy", "lightheaded", "faint", "chakkar"},
	"fatigue":          {"tired", "exhausted", "fatigue", "weak", "thakan", "kamzori"},
	"vomiting":         {"vomit", "throw up", "throwing up", "ulti"},
	"bleeding":         {"bleed", "bleeding", "spotting", "blood", "khoon"},
	"fever":            {"fever", "bukhar", "temperature"},
	"fetal_movement":   {"not moving", "moving less", "no movement", "kick"},
	"itching":          {"itching", "itchy", "khujli"},
	"mood_changes":     {"mood", "crying", "anxious", "depressed", "udaas"},
	"shortness_breath": {"breathless", "can't breathe", "saans"},
	"irregular_cycle":  {"irregular", "missed period", "late period"},
	"acne":             {"acne", "pimple"},
	"hair_changes":     {"hair loss", "hair fall", "facial hair"},
}

var (
	severeKeywords   = []string{"severe", "really bad", "terrible", "unbearable", "can't handle", "bahut", "zyada"}
	moderateKeywords = []string{"moderate", "bad", "uncomfortable", "bothering"}
	mildKeywords     = []string{"mild", "slight", "little", "bit of", "thoda", "halka"}

	onsetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(right now|just now|currently|abhi)`),
		regexp.MustCompile(`(today|this morning|this afternoon|this evening|aaj)`),
		regexp.MustCompile(`(yesterday|kal)`),
		regexp.MustCompile(`\d+\s*days?\s*ago`),
		regexp.MustCompile(`\d+\s*weeks?\s*ago`),
		regexp.MustCompile(`(this week|last week)`),
		regexp.MustCompile(`(recently|lately)`),
		regexp.MustCompile(`(few days|couple days|several days)`),
	}
)

// Annotate derives symptom kinds, a severity and an onset hint from a
// message. It is total: unknown text yields no kinds, moderate
// severity and unknown onset.
func Annotate(text string) Annotation {
	lower := strings.ToLower(text)

	kinds := make([]string, 0)
	for kind, keywords := range symptomPatterns {
		if containsAny(lower, keywords) {
			kinds = append(kinds, kind)
		}
	}
	sort.Strings(kinds)

	return Annotation{
		Kinds:    kinds,
		Severity: extractSeverity(lower),
		Onset:    extractOnset(lower),
	}
}

func extractSeverity(message string) string {
	switch {
	case containsAny(message, severeKeywords):
		return SeveritySevere
	case containsAny(message, mildKeywords):
		return SeverityMild
	case containsAny(message, moderateKeywords):
		return SeverityModerate
	}
	return SeverityModerate
}

func extractOnset(message string) string {
	for _, pattern := range onsetPatterns {
		if match := pattern.FindString(message); match != "" {
			return match
		}
	}
	return "unknown"
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
