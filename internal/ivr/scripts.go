package ivr

import (
	"fmt"

	"github.com/themobileprof/mamacare-be/internal/language"
)

const gatherHints = "iron, diet, exercise, hospital, emergency, khana, paani"

// Fixed error lines spoken when a turn cannot be computed
const (
	TechnicalErrorLine = "Technical error. Goodbye."
	AnswerErrorLine    = "Error occurred. Goodbye."
)

func healthTip(c Context) string {
	return c.Language.Pick(
		fmt.Sprintf("Namaste %s. Aap %d hafte ki pregnant hain. Roz iron tablets len aur paani zyada piyen. Har 2-3 ghante mein thoda khana khayen. Apna dhyan rakhiye.", c.Name, c.Week),
		fmt.Sprintf("Hello %s. You are %d weeks pregnant. Take iron tablets daily and drink plenty of water. Eat small meals every 2-3 hours. Take care.", c.Name, c.Week),
	)
}

func mainMenuPrompt(l language.Language) string {
	return l.Pick(
		"Aap apna sawal bol sakti hain ya button daba sakti hain. Sawal ke liye 1 dabayen. Emergency ke liye 2 dabayen.",
		"You can speak your question or press a button. Press 1 for questions. Press 2 for emergency.",
	)
}

func noInputClosing(l language.Language) string {
	return l.Pick("Koi input nahi mila. Dhanyavaad.", "No input received. Thank you.")
}

func speechEmergencyAck(l language.Language) string {
	return l.Pick(
		"Samajh gayi. Yeh emergency lag raha hai. Alert bhej di gayi hai. Turant 102 par call karein.",
		"Understood. This seems like an emergency. Alert sent. Please call 102 immediately.",
	)
}

func buttonEmergencyAck(l language.Language) string {
	return l.Pick(
		"Samajh gayi. Alert bhej di gayi hai. Turant 102 par call karein.",
		"Understood. Alert sent. Please call 102 immediately.",
	)
}

func moreQuestionsPrompt(l language.Language) string {
	return l.Pick(
		"Aur sawal ke liye bolo ya 1 dabayen. Emergency ke liye 2 dabayen.",
		"Speak or press 1 for more questions. Press 2 for emergency.",
	)
}

func answerMorePrompt(l language.Language) string {
	return l.Pick(
		"Aur sawal ke liye bolo ya 1 dabayen. Emergency ke liye 2 dabayen.",
		"Speak or press 1 for more. Press 2 for emergency.",
	)
}

func subMenuPrompt(l language.Language) string {
	return l.Pick(
		"Apna sawal boliye. Iron ke liye 1, diet ke liye 2, exercise ke liye 3 dabayen.",
		"Speak your question. Press 1 for iron, 2 for diet, 3 for exercise.",
	)
}

func thanks(l language.Language) string {
	return l.Pick("Dhanyavaad.", "Thank you.")
}

func invalidOption(l language.Language) string {
	return l.Pick("Galat option.", "Invalid option.")
}

func noInput(l language.Language) string {
	return l.Pick("Koi input nahi mila.", "No input received.")
}
