package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/themobileprof/mamacare-be/internal/conversation"
	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/language"
)

// HistoryTurns is the number of recent turns included in a chat prompt
const HistoryTurns = 6

// ChatRequest contains everything needed to build a chat prompt
type ChatRequest struct {
	// Profile is nil for unlinked numbers
	Profile *identity.Profile
	Mode    conversation.Mode
	// History excludes the message being answered
	History []conversation.Turn
	Message string
}

// VoiceRequest contains everything needed to build an IVR prompt
type VoiceRequest struct {
	Speech   string
	Week     string
	Language language.Language
	// Short selects the compact prompt used by the answer sub-menu
	Short bool
}

var chatRules = []string{
	`Give SPECIFIC, ACTIONABLE answers — never say "consult a doctor" unless it is a medical emergency`,
	"For diet questions — give an EXACT meal plan with specific foods, quantities, and timings",
	"For medicine questions — give exact names, dosages, and timing",
	"For symptom questions — explain what it means and what to do right now",
	"For exercise questions — give exact exercises, duration, and frequency",
	"Keep response under 200 words",
	"Use simple Hindi-English mix if user seems Hindi-speaking",
	"Use bullet points and emojis for readability",
	"Be warm, supportive, and confident like a trusted friend",
	`ONLY say "visit doctor" if symptoms suggest genuine emergency`,
}

var (
	maternityDietWords = []string{"diet", "eat", "food", "khana", "meal", "breakfast", "lunch", "dinner", "nutrition"}
	pcosDietWords      = []string{"diet", "eat", "food", "khana", "meal"}
)

// BuildChat constructs the WhatsApp advice prompt
func BuildChat(req ChatRequest) string {
	var sb strings.Builder
	sb.Grow(2048)

	mode := req.Mode.OrGeneral()
	lower := strings.ToLower(strings.TrimSpace(req.Message))

	sb.WriteString("You are MamaCare, an expert AI health assistant for women's health in India.\n")
	sb.WriteString("You specialize in maternal health and PCOS management.\n\n")

	sb.WriteString(profileContext(req.Profile, mode))
	sb.WriteString("\n")

	if history := formatHistory(req.History); history != "" {
		sb.WriteString("Recent conversation:\n")
		sb.WriteString(history)
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("User's message: %q\n\n", req.Message))

	sb.WriteString("STRICT RULES — FOLLOW EXACTLY:\n")
	for i, rule := range chatRules {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, rule))
	}

	switch {
	case mode == conversation.ModeMaternity && containsAny(lower, maternityDietWords):
		sb.WriteString(fmt.Sprintf("\nThis is a DIET question for a pregnant woman (week %s).\n", weekOrUnknown(req.Profile)))
		sb.WriteString("Give an exact full-day meal plan with quantities. DO NOT say \"consult doctor for diet\".\n")
	case mode == conversation.ModePCOS && containsAny(lower, pcosDietWords):
		sb.WriteString("\nThis is a DIET question for a PCOS patient.\n")
		sb.WriteString("Give exact PCOS-friendly meal plan with foods, quantities, timing and supplements.\n")
		sb.WriteString("DO NOT say \"consult doctor for diet\".\n")
	}

	sb.WriteString("\nAnswer now:")
	return sb.String()
}

// BuildVoice constructs the IVR advice prompt
func BuildVoice(req VoiceRequest) string {
	if req.Short {
		return fmt.Sprintf(
			"ASHA worker. Answer with EXACT advice (no consult doctor unless emergency): %s. Week %s. Language: %s. 50-70 words.",
			req.Speech, req.Week, req.Language.Pick("Hindi", "English"))
	}
	return fmt.Sprintf(
		"You are an experienced ASHA health worker in India. "+
			"Answer this pregnancy question with EXACT advice (no \"consult doctor\" unless emergency): %s. "+
			"Patient is at week %s. Language: %s. "+
			"Keep answer 50-70 words. Be specific and actionable.",
		req.Speech, req.Week, req.Language.PromptName())
}

func profileContext(p *identity.Profile, mode conversation.Mode) string {
	if p == nil {
		return fmt.Sprintf("User context: %s\n", mode)
	}

	healthType := string(p.HealthType)
	if healthType == "" {
		healthType = string(mode)
	}
	name := p.Name
	if name == "" {
		name = "Unknown"
	}
	lang := p.Language
	if lang == "" {
		lang = string(language.English)
	}
	age := "unknown"
	if p.Age > 0 {
		age = strconv.Itoa(p.Age)
	}

	var sb strings.Builder
	sb.WriteString("User Profile:\n")
	sb.WriteString("- Name: " + name + "\n")
	sb.WriteString("- Health Type: " + healthType + "\n")
	sb.WriteString("- Pregnancy Week: " + weekOrUnknown(p) + "\n")
	sb.WriteString("- Risk Score: " + string(p.Risk()) + "\n")
	sb.WriteString("- Age: " + age + "\n")
	sb.WriteString("- Language preference: " + lang + "\n")
	return sb.String()
}

func formatHistory(turns []conversation.Turn) string {
	if len(turns) > HistoryTurns {
		turns = turns[len(turns)-HistoryTurns:]
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "MamaCare"
		if t.Role == conversation.RoleUser {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+t.Message)
	}
	return strings.Join(lines, "\n")
}

func weekOrUnknown(p *identity.Profile) string {
	if p == nil || p.PregnancyWeek <= 0 {
		return "unknown"
	}
	return strconv.Itoa(p.PregnancyWeek)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
