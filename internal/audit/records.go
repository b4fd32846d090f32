package audit

import "time"

// Message directions
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message and call log types
const (
	TypeBotConversation         = "bot_conversation"
	TypeBotConversationUnlinked = "bot_conversation_unlinked"
	TypeRiskAlertMaternity      = "risk_alert_maternity"
	TypeRiskAlertPCOS           = "risk_alert_pcos"
	TypeEmergencyContact        = "emergency_contact_alert"
	TypeWhatsAppEmergency       = "whatsapp_emergency"
	TypeCheckupReminder         = "checkup_reminder"
	TypeAutomatedDaily          = "automated_daily"
	TypeScheduledWeekly         = "scheduled_3x_weekly"
	TypeManualTrigger           = "manual_trigger"
	TypeUserRequested           = "user_requested"
	TypeEscalationCall          = "escalation_call"
)

// Emergency alert types
const (
	EmergencySpeech   = "speech_emergency"
	EmergencyButton   = "button_emergency"
	EmergencyWhatsApp = "whatsapp_emergency"
)

const (
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusInitiated = "initiated"
	StatusPending   = "pending"
)

// SourceWhatsAppBot tags symptom reports captured by the chatbot
const SourceWhatsAppBot = "whatsapp_bot"

// MessageLog is one WhatsApp exchange or outbound notification
type MessageLog struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId,omitempty"`
	PatientName string    `json:"patientName,omitempty"`
	MatchedFrom string    `json:"matchedFrom,omitempty"`
	Phone       string    `json:"phone"`
	Message     string    `json:"message"`
	Response    string    `json:"response,omitempty"`
	Direction   string    `json:"direction"`
	Context     string    `json:"context,omitempty"`
	Type        string    `json:"type"`
	Status      string    `json:"status,omitempty"`
	MessageSID  string    `json:"messageSid,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// CallLog is one outbound call. Status and Duration are updated by the
// carrier status callback.
type CallLog struct {
	ID          string     `json:"id"`
	PatientID   string     `json:"patientId,omitempty"`
	PatientName string     `json:"patientName"`
	Phone       string     `json:"phone"`
	CallSID     string     `json:"callSid"`
	Status      string     `json:"status"`
	Type        string     `json:"type"`
	Week        int        `json:"week"`
	Language    string     `json:"language"`
	Duration    int        `json:"duration"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// EmergencyAlert is raised from the IVR or the chatbot
type EmergencyAlert struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patientId,omitempty"`
	PatientName   string    `json:"patientName"`
	Phone         string    `json:"phone,omitempty"`
	PregnancyWeek string    `json:"pregnancyWeek"`
	SpeechInput   string    `json:"speechInput,omitempty"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SymptomLog is a verbatim symptom report. Never mutated.
type SymptomLog struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId,omitempty"`
	UserName      string    `json:"userName"`
	HealthType    string    `json:"healthType"`
	Symptom       string    `json:"symptom"`
	PregnancyWeek int       `json:"pregnancyWeek"`
	RiskScore     string    `json:"riskScore"`
	Source        string    `json:"source"`
	Severity      string    `json:"severity"`
	Timestamp     time.Time `json:"timestamp"`
}
