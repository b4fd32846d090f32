package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/themobileprof/mamacare-be/internal/identity"
)

// Result is the output of an additive scoring table
type Result struct {
	Risk       identity.RiskLevel `json:"risk"`
	Confidence float64            `json:"confidence"`
	Score      int                `json:"score"`
}

// ValidationError is returned when required inputs are missing
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// MaternalInput holds the vitals for a maternal risk prediction
type MaternalInput struct {
	Age         float64 `json:"age"`
	SystolicBP  float64 `json:"systolicBP"`
	DiastolicBP float64 `json:"diastolicBP"`
	BloodSugar  float64 `json:"bloodSugar"`
	BodyTemp    float64 `json:"bodyTemp"`
	HeartRate   float64 `json:"heartRate"`
}

// Maternal scores vitals. Systolic and diastolic pressure are scored
// independently. Every input is required and must be non-zero.
func Maternal(in MaternalInput) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	score := 0
	score += band(in.SystolicBP, 160, 140, 130)
	score += band(in.DiastolicBP, 110, 90, 85)

	switch {
	case in.BloodSugar > 140:
		score += 3
	case in.BloodSugar > 110:
		score += 2
	case in.BloodSugar > 100:
		score++
	}

	switch {
	case in.BodyTemp > 100.4:
		score += 2
	case in.BodyTemp > 99.5:
		score++
	}

	switch {
	case in.HeartRate > 110 || in.HeartRate < 50:
		score += 2
	case in.HeartRate > 100 || in.HeartRate < 60:
		score++
	}

	switch {
	case in.Age > 40 || in.Age < 17:
		score += 2
	case in.Age > 35:
		score++
	}

	s := float64(score)
	switch {
	case score >= 6:
		return result(identity.RiskHigh, math.Min(0.95, 0.75+s*0.02), score), nil
	case score >= 3:
		return result(identity.RiskModerate, math.Min(0.90, 0.65+s*0.03), score), nil
	default:
		return result(identity.RiskLow, math.Min(0.95, 0.80+(5-s)*0.03), score), nil
	}
}

func (in MaternalInput) validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"age", in.Age},
		{"systolicBP", in.SystolicBP},
		{"diastolicBP", in.DiastolicBP},
		{"bloodSugar", in.BloodSugar},
		{"bodyTemp", in.BodyTemp},
		{"heartRate", in.HeartRate},
	} {
		if f.value == 0 {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// band scores a blood pressure reading: > high → 3, > mid → 2, > low → 1
func band(v, high, mid, low float64) int {
	switch {
	case v > high:
		return 3
	case v > mid:
		return 2
	case v > low:
		return 1
	}
	return 0
}

// PCOSInput holds the features for a PCOS risk prediction
type PCOSInput struct {
	IrregularCycles bool    `json:"irregular_cycles"`
	WeightGain      bool    `json:"weight_gain"`
	Acne            bool    `json:"acne"`
	HairLoss        bool    `json:"hair_loss"`
	Hirsutism       bool    `json:"hirsutism"`
	FollicleCount   float64 `json:"follicle_count"`
	AMH             float64 `json:"amh"`
	LHFSHRatio      float64 `json:"lh_fsh_ratio"`
	BMI             float64 `json:"bmi"`
}

// PCOS scores symptoms and lab values. Missing values score zero.
func PCOS(in PCOSInput) Result {
	score := 0
	if in.IrregularCycles {
		score += 2
	}
	if in.WeightGain {
		score++
	}
	if in.Acne {
		score++
	}
	if in.HairLoss {
		score++
	}
	if in.Hirsutism {
		score += 2
	}
	if in.FollicleCount > 12 {
		score += 2
	}
	if in.AMH > 4 {
		score += 2
	}
	if in.LHFSHRatio > 2 {
		score += 2
	}
	if in.BMI > 30 {
		score++
	}

	s := float64(score)
	switch {
	case score >= 7:
		return result(identity.RiskHigh, math.Min(0.95, 0.78+s*0.015), score)
	case score >= 4:
		return result(identity.RiskModerate, math.Min(0.88, 0.65+s*0.02), score)
	default:
		return result(identity.RiskLow, math.Min(0.95, 0.80+(6-s)*0.025), score)
	}
}

func result(level identity.RiskLevel, confidence float64, score int) Result {
	return Result{
		Risk:       level,
		Confidence: math.Round(confidence*10000) / 10000,
		Score:      score,
	}
}
