package risk

import (
	"errors"
	"testing"

	"github.com/themobileprof/mamacare-be/internal/identity"
)

func TestMaternal(t *testing.T) {
	tests := []struct {
		name      string
		in        MaternalInput
		wantRisk  identity.RiskLevel
		wantScore int
		wantConf  float64
	}{
		{
			name:      "high risk vitals",
			in:        MaternalInput{Age: 28, SystolicBP: 150, DiastolicBP: 95, BloodSugar: 145, BodyTemp: 101, HeartRate: 115},
			wantRisk:  identity.RiskHigh,
			wantScore: 11,
			wantConf:  0.95,
		},
		{
			name:      "normal vitals",
			in:        MaternalInput{Age: 25, SystolicBP: 115, DiastolicBP: 75, BloodSugar: 90, BodyTemp: 98.6, HeartRate: 80},
			wantRisk:  identity.RiskLow,
			wantScore: 0,
			wantConf:  0.95,
		},
		{
			name:      "moderate",
			in:        MaternalInput{Age: 37, SystolicBP: 135, DiastolicBP: 80, BloodSugar: 105, BodyTemp: 98.6, HeartRate: 80},
			wantRisk:  identity.RiskModerate,
			wantScore: 3,
			wantConf:  0.74,
		},
		{
			name:      "low with one point",
			in:        MaternalInput{Age: 30, SystolicBP: 120, DiastolicBP: 80, BloodSugar: 90, BodyTemp: 99.8, HeartRate: 80},
			wantRisk:  identity.RiskLow,
			wantScore: 1,
			wantConf:  0.92,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Maternal(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Risk != tt.wantRisk || got.Score != tt.wantScore || got.Confidence != tt.wantConf {
				t.Errorf("Maternal() = %+v, want risk %s score %d conf %v", got, tt.wantRisk, tt.wantScore, tt.wantConf)
			}
			if got.Confidence > 0.95 {
				t.Errorf("confidence %v above clip", got.Confidence)
			}
		})
	}
}

func TestMaternal_MissingFields(t *testing.T) {
	_, err := Maternal(MaternalInput{Age: 28, SystolicBP: 150})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 4 {
		t.Errorf("expected 4 missing fields, got %v", verr.Fields)
	}
}

func TestPCOS(t *testing.T) {
	tests := []struct {
		name      string
		in        PCOSInput
		wantRisk  identity.RiskLevel
		wantScore int
		wantConf  float64
	}{
		{
			name:      "high",
			in:        PCOSInput{IrregularCycles: true, Hirsutism: true, FollicleCount: 15, AMH: 5},
			wantRisk:  identity.RiskHigh,
			wantScore: 8,
			wantConf:  0.9,
		},
		{
			name:      "moderate",
			in:        PCOSInput{IrregularCycles: true, Acne: true, BMI: 32},
			wantRisk:  identity.RiskModerate,
			wantScore: 4,
			wantConf:  0.73,
		},
		{
			name:      "empty",
			in:        PCOSInput{},
			wantRisk:  identity.RiskLow,
			wantScore: 0,
			wantConf:  0.95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PCOS(tt.in)
			if got.Risk != tt.wantRisk || got.Score != tt.wantScore || got.Confidence != tt.wantConf {
				t.Errorf("PCOS() = %+v, want risk %s score %d conf %v", got, tt.wantRisk, tt.wantScore, tt.wantConf)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	H, M, L := identity.RiskHigh, identity.RiskModerate, identity.RiskLow
	tests := []struct {
		name   string
		recent []identity.RiskLevel
		want   identity.RiskLevel
	}{
		{"two high", []identity.RiskLevel{H, L, H}, H},
		{"one high", []identity.RiskLevel{H, L, L}, M},
		{"two moderate", []identity.RiskLevel{M, M, L}, M},
		{"one moderate", []identity.RiskLevel{M, L}, L},
		{"empty", nil, L},
		{"window of three", []identity.RiskLevel{L, L, H, H}, M},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.recent); got != tt.want {
				t.Errorf("Aggregate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCheckupRisk(t *testing.T) {
	tests := []struct {
		bp   string
		hb   float64
		want identity.RiskLevel
	}{
		{"150/95", 11, identity.RiskHigh},
		{"120/80", 7.5, identity.RiskHigh},
		{"135/85", 11, identity.RiskModerate},
		{"120/80", 9, identity.RiskModerate},
		{"120/80", 12, identity.RiskLow},
		{"", 0, identity.RiskLow},
		{"garbage", 12, identity.RiskLow},
	}

	for _, tt := range tests {
		if got := CheckupRisk(tt.bp, tt.hb); got != tt.want {
			t.Errorf("CheckupRisk(%q, %v) = %s, want %s", tt.bp, tt.hb, got, tt.want)
		}
	}
}

func TestCycleLogTriggers(t *testing.T) {
	tests := []struct {
		name string
		log  CycleLog
		want bool
	}{
		{"pain 8", CycleLog{PainLevel: 8}, true},
		{"pain 7", CycleLog{PainLevel: 7}, false},
		{"risk high", CycleLog{PainLevel: 2, RiskScore: identity.RiskHigh}, true},
		{"four symptoms", CycleLog{Symptoms: []string{"acne", "bloating", "fatigue", "mood"}}, true},
		{"three symptoms", CycleLog{Symptoms: []string{"acne", "bloating", "fatigue"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CycleLogTriggers(tt.log); got != tt.want {
				t.Errorf("CycleLogTriggers() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCycleRisk(t *testing.T) {
	if got := CycleRisk(9, 0); got != identity.RiskHigh {
		t.Errorf("pain 9 = %s", got)
	}
	if got := CycleRisk(5, 0); got != identity.RiskModerate {
		t.Errorf("pain 5 = %s", got)
	}
	if got := CycleRisk(1, 1); got != identity.RiskLow {
		t.Errorf("pain 1 = %s", got)
	}
}
