package identity

import "time"

// HealthType is the programme a profile is enrolled in
type HealthType string

const (
	HealthMaternity HealthType = "maternity"
	HealthPCOS      HealthType = "pcos"
)

// RiskLevel is the coarse risk band stored on a profile
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// Collection names the profile collection a match came from
type Collection string

const (
	CollectionUsers    Collection = "users"
	CollectionPatients Collection = "patients"
	Unlinked           Collection = "unlinked"
)

// Profile is a patient profile owned by the dashboard
type Profile struct {
	ID               string
	Collection       Collection
	Name             string
	Phone            string
	HealthType       HealthType
	RiskScore        RiskLevel
	Language         string
	EmergencyContact string
	PregnancyWeek    int
	Age              int
	LMP              *time.Time
	NextCheckup      *time.Time
	IsActive         bool
}

// HasEmergencyContact reports whether an emergency contact number is set
func (p *Profile) HasEmergencyContact() bool {
	return p != nil && NormalizePhone(p.EmergencyContact) != ""
}

// Risk returns the stored risk, LOW when unset
func (p *Profile) Risk() RiskLevel {
	if p == nil || p.RiskScore == "" {
		return RiskLow
	}
	return p.RiskScore
}

// WeekAt returns the pregnancy week derived from LMP, or PregnancyWeek,
// or def when neither is known
func (p *Profile) WeekAt(now time.Time, def int) int {
	if p != nil && (p.LMP == nil || p.LMP.IsZero()) && p.PregnancyWeek > 0 {
		return p.PregnancyWeek
	}
	return p.LMPWeek(now, def)
}

// LMPWeek returns the pregnancy week derived from LMP alone, or def.
// Partial days round up.
func (p *Profile) LMPWeek(now time.Time, def int) int {
	if p == nil || p.LMP == nil || p.LMP.IsZero() {
		return def
	}
	days := now.Sub(*p.LMP).Hours() / 24
	ceilDays := int(days)
	if float64(ceilDays) < days {
		ceilDays++
	}
	return ceilDays / 7
}
