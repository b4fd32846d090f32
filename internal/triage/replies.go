package triage

import (
	"fmt"

	"github.com/themobileprof/mamacare-be/internal/conversation"
)

// ErrorReply is sent when a turn cannot be processed
const ErrorReply = "Sorry! Type 'hi' to restart 🙏"

const gateReply = "Please type *maternity* or *pcos* first to get started 😊\n\nOr type *hi* to see all options."

const emergencyReply = "🚨 *EMERGENCY ALERT*\n\n" +
	"Please call *102* immediately!\n\n" +
	"Or go to your nearest hospital right now.\n\n" +
	"We have notified your emergency contact. 🙏"

func greetingReply(name string) string {
	return fmt.Sprintf("👋 Namaste %s!\n\n", name) +
		"Welcome to *MamaCare* 🌸\n\n" +
		"Type:\n" +
		"🤰 *maternity* — Pregnancy help\n" +
		"🩺 *pcos* — PCOS help\n" +
		"🥗 *diet* — Diet plan\n" +
		"💊 *medicine* — Medicine reminders\n" +
		"🆘 *emergency* — Emergency help"
}

func onboardingReply(mode conversation.Mode) string {
	if mode == conversation.ModePCOS {
		return "🩺 *PCOS mode ON!*\n\n" +
			"Ask me anything about:\n" +
			"• PCOS diet plan\n• Symptoms\n• Hormone balance\n• Exercise tips\n• Fertility\n\n" +
			"I'll give you exact answers! 💙"
	}
	return "🤰 *Maternity mode ON!*\n\n" +
		"Ask me anything about:\n" +
		"• Diet & nutrition\n• Symptoms\n• Exercise\n• Week-by-week tips\n• Medicines\n\n" +
		"I'll give you exact answers! 💚"
}

func emergencyContactMessage(name string) string {
	return fmt.Sprintf("🚨 *MamaCare Emergency*\n\n%s has reported an emergency on WhatsApp.\nPlease check on her immediately and call 102.", name)
}
