package language

import "strings"

// Language is a conversation language understood by the bot and the IVR
type Language string

const (
	Hindi   Language = "hindi"
	English Language = "english"
)

// Default is used when a caller gives no language at all
const Default = Hindi

// ValidationResult represents the result of language validation
type ValidationResult struct {
	Language     Language `json:"language"`
	UsedFallback bool     `json:"used_fallback"`
}

var aliases = map[string]Language{
	"hindi":   Hindi,
	"hi":      Hindi,
	"hi-in":   Hindi,
	"english": English,
	"en":      English,
	"en-in":   English,
}

// Validate maps a stored or query language value to a Language. Empty
// input yields Default; unknown input yields fallback.
func Validate(code string, fallback Language) ValidationResult {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return ValidationResult{Language: Default, UsedFallback: true}
	}
	if lang, ok := aliases[normalized]; ok {
		return ValidationResult{Language: lang}
	}
	return ValidationResult{Language: fallback, UsedFallback: true}
}

// Parse is Validate without the fallback flag
func Parse(code string, fallback Language) Language {
	return Validate(code, fallback).Language
}

// Pick returns the text for this language
func (l Language) Pick(hindi, english string) string {
	if l == Hindi {
		return hindi
	}
	return english
}

// Voice returns the Polly voice used for this language
func (l Language) Voice() string {
	return l.Pick("Polly.Aditi", "Polly.Raveena")
}

// Locale returns the speech locale used for Say and Gather
func (l Language) Locale() string {
	return l.Pick("hi-IN", "en-IN")
}

// PromptName is the language name given to the text-completion service
func (l Language) PromptName() string {
	return l.Pick("Hindi (Devanagari)", "English")
}
