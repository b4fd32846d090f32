package fallback

import (
	"strings"

	"github.com/themobileprof/mamacare-be/internal/language"
)

// VoiceAnswer is the deterministic answer to a spoken question on the
// main IVR menu
func VoiceAnswer(lang language.Language, speech string) string {
	k := strings.ToLower(speech)
	switch {
	case containsAny(k, "iron", "tablet"):
		return lang.Pick(
			"Iron tablets roz lena bahut zaroori hai. Khane ke baad len, chai ke saath nahi.",
			"Take iron tablets daily after meals, not with tea.")
	case containsAny(k, "eat", "diet"):
		return lang.Pick(
			"Dal, sabzi, roti, doodh, fruits roz len. Paani 8 glass.",
			"Eat dal, vegetables, roti, milk, fruits daily. Drink 8 glasses of water.")
	case containsAny(k, "walk", "exercise"):
		return lang.Pick(
			"Roz 20-30 minute walking karein.",
			"Walk 20-30 minutes daily.")
	default:
		return lang.Pick(
			"Roz iron tablets len, paani zyada piyen.",
			"Take iron tablets daily, drink plenty of water.")
	}
}

// QuestionAnswer is the deterministic answer to a spoken question on
// the answer sub-menu
func QuestionAnswer(lang language.Language) string {
	return lang.Pick(
		"Roz iron tablets len, paani 8 glass piyen, aur healthy khana khayen.",
		"Take iron tablets daily, drink 8 glasses of water, and eat healthy food.")
}

var (
	hindiShortcuts = map[string]string{
		"1": "Iron tablets roz khana bahut zaroori hai. Khane ke baad len, chai ke saath nahi. Vitamin C ke saath len jaise nimbu paani.",
		"2": "Roz ek plate dal chawal ya roti sabzi, ek glass doodh, ek fruit zaroor len. Junk food avoid karein.",
		"3": "Roz 20-30 minute morning walk karein. Halki yoga jaise butterfly pose safe hain.",
	}
	englishShortcuts = map[string]string{
		"1": "Take iron tablets daily after meals, not with tea. Take with lemon water for better absorption.",
		"2": "Eat dal, vegetables, roti, 1 glass milk, and 1 fruit daily. Avoid junk food and excess tea.",
		"3": "Walk 20-30 minutes every morning. Light yoga like butterfly pose is safe during pregnancy.",
	}
)

// Shortcut returns the fixed answer for a sub-menu digit (1 iron,
// 2 diet, 3 exercise)
func Shortcut(lang language.Language, digit string) (string, bool) {
	table := englishShortcuts
	if lang == language.Hindi {
		table = hindiShortcuts
	}
	answer, ok := table[digit]
	return answer, ok
}
