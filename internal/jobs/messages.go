package jobs

import (
	"fmt"
	"strings"

	"github.com/themobileprof/mamacare-be/internal/language"
)

// TipType is the topic of the daily tip
type TipType string

const (
	TipIron     TipType = "iron"
	TipWater    TipType = "water"
	TipFood     TipType = "food"
	TipExercise TipType = "exercise"
	TipCheckup  TipType = "checkup"
)

var tipRotation = []TipType{TipIron, TipWater, TipFood, TipExercise, TipCheckup}

// TipFor returns the tip topic for a day of the week (Sunday = 0)
func TipFor(weekday int) TipType {
	return tipRotation[weekday%len(tipRotation)]
}

// tipLanguage is English only when asked for explicitly
func tipLanguage(code string) language.Language {
	if strings.EqualFold(strings.TrimSpace(code), string(language.English)) {
		return language.English
	}
	return language.Hindi
}

// explicitHindi is Hindi only when asked for explicitly
func explicitHindi(code string) language.Language {
	if strings.EqualFold(strings.TrimSpace(code), string(language.Hindi)) {
		return language.Hindi
	}
	return language.English
}

func tipMessage(tip TipType, lang language.Language, name string, week int) string {
	switch tip {
	case TipIron:
		return lang.Pick(
			fmt.Sprintf("☀️ Good morning %s!\n\n💊 Aaj iron tablet leni hai!\n✅ Khane ke baad len\n\nApna dhyan rakhiye! 💚", name),
			fmt.Sprintf("☀️ Good morning %s!\n\n💊 Take your iron tablet today!\n✅ After meals\n\nTake care! 💚", name))
	case TipWater:
		return lang.Pick(
			fmt.Sprintf("☀️ Namaste %s!\n\n💧 Aaj paani zyada piyen!\n✅ 8-10 glass roz\n\nHealthy rahiye! 💚", name),
			fmt.Sprintf("☀️ Hello %s!\n\n💧 Drink plenty of water!\n✅ 8-10 glasses daily\n\nStay healthy! 💚", name))
	case TipFood:
		return lang.Pick(
			fmt.Sprintf("☀️ Good morning %s!\n\n🍲 Aaj healthy khana khayen!\n✅ Dal, sabzi, roti, doodh, fruits\n\nAap aur baby ke liye! 💚", name),
			fmt.Sprintf("☀️ Good morning %s!\n\n🍲 Eat healthy today!\n✅ Lentils, vegetables, grains, milk, fruits\n\nFor you and baby! 💚", name))
	case TipExercise:
		return lang.Pick(
			fmt.Sprintf("☀️ Namaste %s!\n\n🚶 Aaj thoda chalein!\n✅ 20-30 minute walking\n\nActive rahiye! 💚", name),
			fmt.Sprintf("☀️ Hello %s!\n\n🚶 Walk today!\n✅ 20-30 minutes\n\nStay active! 💚", name))
	default:
		return lang.Pick(
			fmt.Sprintf("☀️ Good morning %s!\n\n🏥 Hospital checkup reminder!\nWeek %d chal raha hai! 💚", name, week),
			fmt.Sprintf("☀️ Good morning %s!\n\n🏥 Hospital checkup reminder!\nWeek %d now! 💚", name, week))
	}
}

func reminderMessage(lang language.Language, name string) string {
	return fmt.Sprintf("🏥 *MamaCare Reminder*\n\nHi %s! You have a checkup scheduled today.\n\n", name) +
		lang.Pick(
			"✅ Apni vitals log karna na bhulen. Apna dhyan rakhiye! 💕",
			"✅ Don't forget to log your vitals after your visit. Stay safe! 💕",
		)
}

func testMessage(name string) string {
	return fmt.Sprintf("☀️ TEST: Good morning %s!\n\n💊 Iron tablet reminder.\n\nTake care! 💚", name)
}
