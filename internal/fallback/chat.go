package fallback

import (
	"strings"

	"github.com/themobileprof/mamacare-be/internal/conversation"
)

// Topic is the keyword bucket a fallback reply is chosen by
type Topic string

const (
	TopicDiet     Topic = "diet"
	TopicMedicine Topic = "medicine"
	TopicExercise Topic = "exercise"
	TopicMenu     Topic = "menu"
)

var (
	maternityReplies = map[Topic]string{
		TopicDiet: "🥗 *Pregnancy Diet Plan (Daily)*\n\n" +
			"*Breakfast:* 2 rotis + 1 bowl dal + 1 glass milk 🥛\n" +
			"*Mid-morning:* 1 banana + 4 soaked almonds\n" +
			"*Lunch:* 2 rotis + sabzi + 1 bowl curd + salad\n" +
			"*Evening:* 1 fruit + 1 glass milk\n" +
			"*Dinner:* 2 rotis + dal + green sabzi\n\n" +
			"💊 Iron after lunch | Folic acid after breakfast | Calcium after dinner\n" +
			"💧 8-10 glasses water\n\n" +
			"❌ Avoid: Raw papaya, pineapple, junk food",
		TopicMedicine: "💊 *Pregnancy Medicines*\n\n" +
			"• *Folic Acid 5mg* — after breakfast daily\n" +
			"• *Iron + Folic (IFA)* — after lunch daily\n" +
			"• *Calcium* — after dinner daily\n\n" +
			"⚠️ Never take iron with tea/coffee. Take with lemon water.",
		TopicExercise: "🧘 *Safe Pregnancy Exercises*\n\n" +
			"• Walking — 20-30 mins daily\n" +
			"• Prenatal yoga — 15 mins daily\n" +
			"• Kegel exercises — 3 sets of 10 daily\n" +
			"• Deep breathing — 5 mins morning & night\n\n" +
			"❌ Avoid: Heavy lifting, lying flat after week 20",
		TopicMenu: "🤰 Ask me about:\n• *Diet* • *Medicine* • *Exercise* • *Symptoms* • *Week tips*",
	}

	pcosReplies = map[Topic]string{
		TopicDiet: "🥗 *PCOS Diet Plan (Daily)*\n\n" +
			"*Breakfast:* 2 eggs / 1 bowl oats + nuts (no sugar)\n" +
			"*Lunch:* Brown rice / 2 rotis + dal + sabzi\n" +
			"*Evening:* Green tea + flax seeds\n" +
			"*Dinner:* Grilled paneer / chicken + veggies\n\n" +
			"✅ Best: Methi seeds, cinnamon, leafy greens\n" +
			"❌ Avoid: Sugar, white rice, maida, processed foods",
		TopicExercise: "🏃 *Best PCOS Exercises*\n\n" +
			"• Brisk walking — 30 mins daily\n" +
			"• Strength training — 3x/week\n" +
			"• Yoga: Surya namaskar 5 rounds daily\n" +
			"• HIIT — 20 mins, 2x/week\n\n" +
			"💡 30 mins daily reduces PCOS symptoms by 40%!",
		TopicMenu: "🩺 Ask me about:\n• *Diet* • *Exercise* • *Symptoms* • *Supplements* • *Cycle tracking*",
	}
)

// ChatTopic picks the keyword bucket for a message in a mode. Checks
// run in table order and the first hit wins.
func ChatTopic(mode conversation.Mode, message string) Topic {
	k := strings.ToLower(message)
	if mode == conversation.ModeMaternity {
		switch {
		case containsAny(k, "diet", "eat", "khana", "food"):
			return TopicDiet
		case containsAny(k, "iron", "tablet", "medicine"):
			return TopicMedicine
		case containsAny(k, "exercise", "walk", "yoga"):
			return TopicExercise
		}
		return TopicMenu
	}

	switch {
	case containsAny(k, "diet", "eat", "food", "khana"):
		return TopicDiet
	case containsAny(k, "exercise", "workout"):
		return TopicExercise
	}
	return TopicMenu
}

// ChatReply is the deterministic reply used when no completion is
// available. Every mode other than maternity uses the PCOS table.
func ChatReply(mode conversation.Mode, message string) string {
	topic := ChatTopic(mode, message)
	if mode == conversation.ModeMaternity {
		return maternityReplies[topic]
	}
	return pcosReplies[topic]
}

func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
