package risk

import (
	"strconv"
	"strings"
	"time"

	"github.com/themobileprof/mamacare-be/internal/identity"
)

// RecentWindow is the number of checkups aggregated into a profile risk
const RecentWindow = 3

// Checkup is one recorded antenatal visit
type Checkup struct {
	ID         string              `json:"id"`
	UserID     string              `json:"userId"`
	BP         string              `json:"bp"`
	Hemoglobin float64             `json:"hemoglobin"`
	HealthType identity.HealthType `json:"healthType"`
	RiskScore  identity.RiskLevel  `json:"riskScore"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// CycleLog is one PCOS cycle entry
type CycleLog struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	PainLevel int                `json:"painLevel"`
	Symptoms  []string           `json:"symptoms"`
	RiskScore identity.RiskLevel `json:"riskScore"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Systolic parses the systolic value of a "150/95" reading, 0 if absent
func Systolic(bp string) int {
	head, _, _ := strings.Cut(strings.TrimSpace(bp), "/")
	v, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0
	}
	return v
}

// CheckupRisk rates a single checkup from blood pressure and
// hemoglobin. A zero hemoglobin is treated as not measured.
func CheckupRisk(bp string, hemoglobin float64) identity.RiskLevel {
	systolic := Systolic(bp)
	measured := hemoglobin > 0
	switch {
	case systolic > 140 || (measured && hemoglobin < 8):
		return identity.RiskHigh
	case systolic > 130 || (measured && hemoglobin < 10):
		return identity.RiskModerate
	}
	return identity.RiskLow
}

// Aggregate derives a profile risk from the most recent checkups:
// two or more HIGH → HIGH, one HIGH → MODERATE, two or more MODERATE →
// MODERATE, else LOW. Only the first RecentWindow entries are used.
func Aggregate(recent []identity.RiskLevel) identity.RiskLevel {
	if len(recent) > RecentWindow {
		recent = recent[:RecentWindow]
	}
	high, moderate := 0, 0
	for _, r := range recent {
		switch r {
		case identity.RiskHigh:
			high++
		case identity.RiskModerate:
			moderate++
		}
	}
	switch {
	case high >= 2:
		return identity.RiskHigh
	case high >= 1:
		return identity.RiskModerate
	case moderate >= 2:
		return identity.RiskModerate
	}
	return identity.RiskLow
}

// CycleRisk rates a cycle log from pain level and symptom count
func CycleRisk(painLevel, symptomCount int) identity.RiskLevel {
	switch {
	case painLevel >= 8 || symptomCount >= 4:
		return identity.RiskHigh
	case painLevel >= 5 || symptomCount >= 2:
		return identity.RiskModerate
	}
	return identity.RiskLow
}

// CycleLogTriggers reports whether a cycle log should alert the patient
func CycleLogTriggers(log CycleLog) bool {
	return log.PainLevel >= 8 || log.RiskScore == identity.RiskHigh || len(log.Symptoms) >= 4
}
