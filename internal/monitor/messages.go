package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/language"
)

const missingValue = "—"

// alertLanguage is Hindi only when the profile asks for it
func alertLanguage(p *identity.Profile) language.Language {
	if p == nil || strings.TrimSpace(p.Language) == "" {
		return language.English
	}
	return language.Parse(p.Language, language.English)
}

func vitalsLine(bp string, hemoglobin float64) string {
	if strings.TrimSpace(bp) == "" {
		bp = missingValue
	}
	hb := missingValue
	if hemoglobin > 0 {
		hb = strconv.FormatFloat(hemoglobin, 'f', -1, 64)
	}
	return fmt.Sprintf("BP: %s | Hb: %s g/dL", bp, hb)
}

func highRiskMessage(p *identity.Profile, vitals string) string {
	return fmt.Sprintf("🚨 *MamaCare Alert* — High Risk Detected\n\nHi %s, your latest vitals show high risk indicators.\n\n%s\n\n", p.Name, vitals) +
		alertLanguage(p).Pick(
			"⚠️ Kripya turant apne nazdeeki health center jayen.\nYa 102 par call karein.",
			"⚠️ Please visit your nearest health center immediately.\nOr call 102.",
		)
}

func contactMessage(p *identity.Profile) string {
	return fmt.Sprintf("🚨 *MamaCare Emergency Alert*\n\n%s has been flagged as HIGH RISK.\nPlease check on her and help her reach a clinic immediately.", p.Name)
}

func painMessage(p *identity.Profile, painLevel int) string {
	return fmt.Sprintf("💜 *MamaCare* — High Pain Alert\n\nHi %s, you logged a pain level of %d/10.\n\n", p.Name, painLevel) +
		alertLanguage(p).Pick(
			"🧘 Heating pad, halki stretching ya rest karein.\n📞 Agar dard zyada ho toh doctor se milein.",
			"🧘 Try a heating pad, light stretching, or rest.\n📞 If pain is unbearable, contact your doctor.",
		)
}
