// Package escalation fans a risk trigger out to every notification
// channel. Channels fail independently; a failure is logged and
// reported, never returned.
package escalation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/themobileprof/mamacare-be/internal/alerts"
	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/metrics"
	"github.com/themobileprof/mamacare-be/internal/outreach"
	"github.com/themobileprof/mamacare-be/internal/privacy"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

// DefaultChannelTimeout bounds each channel attempt
const DefaultChannelTimeout = 15 * time.Second

var tracer = otel.Tracer("mamacare.internal.escalation")

// Channel names one escalation step
type Channel string

const (
	ChannelPatient Channel = "patient_message"
	ChannelContact Channel = "contact_message"
	ChannelCall    Channel = "call"
	ChannelAudit   Channel = "audit"
	ChannelFeed    Channel = "feed"
)

// Messenger sends WhatsApp messages
type Messenger interface {
	SendWhatsApp(ctx context.Context, phone, body string) (string, error)
}

// Caller places outbound IVR calls
type Caller interface {
	PlaceCall(ctx context.Context, req outreach.CallRequest) (audit.CallLog, error)
}

// Recorder writes the audit trail of an escalation
type Recorder interface {
	RecordMessage(ctx context.Context, rec audit.MessageLog) (audit.MessageLog, error)
	RecordEmergency(ctx context.Context, rec audit.EmergencyAlert) (audit.EmergencyAlert, error)
}

// Trigger describes one escalation
type Trigger struct {
	// Profile is nil for senders that are not linked to a profile
	Profile *identity.Profile
	// Phone overrides the profile phone
	Phone string
	// Name overrides the profile name
	Name string
	// Source names what raised the trigger (checkup, cycle_log, whatsapp)
	Source string
	// Kind is the audit type tag of the patient alert
	Kind      string
	Risk      identity.RiskLevel
	Vitals    string
	PainLevel int
	// Said is what the patient reported, for emergencies raised in chat
	Said string

	PatientMessage string
	ContactMessage string
	NotifyContact  bool
	PlaceCall      bool

	// EmergencyType, when set, also writes an emergency alert record
	EmergencyType string
}

func (t Trigger) phone() string {
	if t.Phone != "" {
		return t.Phone
	}
	if t.Profile != nil {
		return t.Profile.Phone
	}
	return ""
}

func (t Trigger) name() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Profile != nil && t.Profile.Name != "" {
		return t.Profile.Name
	}
	return "Unknown"
}

func (t Trigger) patientID() string {
	if t.Profile == nil {
		return ""
	}
	return t.Profile.ID
}

// Outcome is the result of one channel
type Outcome struct {
	Channel   Channel
	Attempted bool
	Err       error
	SID       string
}

// Report holds one Outcome per channel, in dispatch order
type Report struct {
	Outcomes []Outcome
}

// Outcome returns the outcome of ch
func (r Report) Outcome(ch Channel) Outcome {
	for _, o := range r.Outcomes {
		if o.Channel == ch {
			return o
		}
	}
	return Outcome{Channel: ch}
}

// Failed lists the channels that were attempted and failed
func (r Report) Failed() []Channel {
	var failed []Channel
	for _, o := range r.Outcomes {
		if o.Attempted && o.Err != nil {
			failed = append(failed, o.Channel)
		}
	}
	return failed
}

// Config configures a Dispatcher
type Config struct {
	Messenger      Messenger
	Caller         Caller
	Recorder       Recorder
	Publisher      alerts.Publisher
	Metrics        *metrics.Metrics
	Logger         *logging.Logger
	ChannelTimeout time.Duration
	// CallsEnabled gates the outbound call channel globally
	CallsEnabled bool
}

// Dispatcher runs escalations
type Dispatcher struct {
	messenger    Messenger
	caller       Caller
	recorder     Recorder
	publisher    alerts.Publisher
	metrics      *metrics.Metrics
	logger       *logging.Logger
	timeout      time.Duration
	callsEnabled bool
	now          func() time.Time
}

// NewDispatcher creates a dispatcher. Nil channels are skipped.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Publisher == nil {
		cfg.Publisher = alerts.Discard{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = DefaultChannelTimeout
	}
	return &Dispatcher{
		messenger:    cfg.Messenger,
		caller:       cfg.Caller,
		recorder:     cfg.Recorder,
		publisher:    cfg.Publisher,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		timeout:      cfg.ChannelTimeout,
		callsEnabled: cfg.CallsEnabled,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Escalate attempts every applicable channel once, in order: patient
// message, emergency contact message, outbound call, audit, live feed.
func (d *Dispatcher) Escalate(ctx context.Context, t Trigger) Report {
	ctx, span := tracer.Start(ctx, "escalation.escalate")
	defer span.End()
	span.SetAttributes(
		attribute.String("escalation.source", t.Source),
		attribute.String("escalation.kind", t.Kind),
	)

	phone := t.phone()
	name := t.name()
	log := d.logger.With("source", t.Source, "kind", t.Kind, "phone", privacy.MaskPhone(phone))

	var report Report

	patient := d.run(ctx, log, ChannelPatient,
		d.messenger != nil && t.PatientMessage != "" && identity.NormalizePhone(phone) != "",
		func(ctx context.Context) (string, error) {
			return d.messenger.SendWhatsApp(ctx, phone, t.PatientMessage)
		})
	report.Outcomes = append(report.Outcomes, patient)

	var contactPhone string
	if t.Profile != nil {
		contactPhone = t.Profile.EmergencyContact
	}
	contact := d.run(ctx, log, ChannelContact,
		d.messenger != nil && t.NotifyContact && t.ContactMessage != "" && t.Profile.HasEmergencyContact(),
		func(ctx context.Context) (string, error) {
			return d.messenger.SendWhatsApp(ctx, contactPhone, t.ContactMessage)
		})
	report.Outcomes = append(report.Outcomes, contact)

	call := d.run(ctx, log, ChannelCall,
		d.caller != nil && d.callsEnabled && t.PlaceCall && identity.NormalizePhone(phone) != "",
		func(ctx context.Context) (string, error) {
			req := outreach.CallRequest{
				PatientID:   t.patientID(),
				PatientName: name,
				Phone:       phone,
				Type:        audit.TypeEscalationCall,
			}
			if t.Profile != nil {
				req.Week = t.Profile.WeekAt(d.now(), 0)
				req.Language = t.Profile.Language
			}
			rec, err := d.caller.PlaceCall(ctx, req)
			return rec.CallSID, err
		})
	report.Outcomes = append(report.Outcomes, call)

	auditOutcome := d.run(ctx, log, ChannelAudit, d.recorder != nil,
		func(ctx context.Context) (string, error) {
			return d.record(ctx, t, phone, name, patient, contact)
		})
	report.Outcomes = append(report.Outcomes, auditOutcome)

	kind := alerts.KindEscalation
	if t.EmergencyType != "" {
		kind = alerts.KindEmergency
	}
	d.publisher.Publish(alerts.Event{
		Kind:        kind,
		Type:        t.Kind,
		PatientID:   t.patientID(),
		PatientName: name,
		Phone:       phone,
		Risk:        string(t.Risk),
		Detail:      t.detail(),
		At:          d.now(),
	})
	d.metrics.ObserveEscalation(string(ChannelFeed), "sent")
	report.Outcomes = append(report.Outcomes, Outcome{Channel: ChannelFeed, Attempted: true})

	if failed := report.Failed(); len(failed) > 0 {
		log.Warn("escalation finished with failures", "failed", failed)
	} else {
		log.Info("escalation finished")
	}
	return report
}

func (d *Dispatcher) run(ctx context.Context, log *logging.Logger, ch Channel, enabled bool, fn func(context.Context) (string, error)) Outcome {
	if !enabled {
		d.metrics.ObserveEscalation(string(ch), "skipped")
		return Outcome{Channel: ch}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	sid, err := fn(ctx)
	if err != nil {
		log.Error("escalation channel failed", "channel", ch, "error", err)
		d.metrics.ObserveEscalation(string(ch), "failed")
		return Outcome{Channel: ch, Attempted: true, Err: err}
	}
	d.metrics.ObserveEscalation(string(ch), "sent")
	return Outcome{Channel: ch, Attempted: true, SID: sid}
}

// record writes the patient alert, the contact alert and, for
// emergencies, the emergency record. Every write is attempted.
func (d *Dispatcher) record(ctx context.Context, t Trigger, phone, name string, patient, contact Outcome) (string, error) {
	var errs []error
	var id string

	if t.PatientMessage != "" {
		rec, err := d.recorder.RecordMessage(ctx, audit.MessageLog{
			PatientID:   t.patientID(),
			PatientName: name,
			Phone:       phone,
			Message:     t.PatientMessage,
			Direction:   audit.DirectionOutbound,
			Type:        t.Kind,
			Status:      deliveryStatus(patient),
			MessageSID:  patient.SID,
		})
		errs = append(errs, err)
		id = rec.ID
	}

	if contact.Attempted {
		_, err := d.recorder.RecordMessage(ctx, audit.MessageLog{
			PatientID:   t.patientID(),
			PatientName: name,
			Phone:       t.Profile.EmergencyContact,
			Message:     t.ContactMessage,
			Direction:   audit.DirectionOutbound,
			Type:        audit.TypeEmergencyContact,
			Status:      deliveryStatus(contact),
			MessageSID:  contact.SID,
		})
		errs = append(errs, err)
	}

	if t.EmergencyType != "" {
		alert := audit.EmergencyAlert{
			PatientID:   t.patientID(),
			PatientName: name,
			Phone:       phone,
			SpeechInput: t.Said,
			Type:        t.EmergencyType,
		}
		if t.Profile != nil && t.Profile.PregnancyWeek > 0 {
			alert.PregnancyWeek = strconv.Itoa(t.Profile.PregnancyWeek)
		}
		rec, err := d.recorder.RecordEmergency(ctx, alert)
		errs = append(errs, err)
		if id == "" {
			id = rec.ID
		}
	}

	return id, errors.Join(errs...)
}

func (t Trigger) detail() string {
	switch {
	case t.Said != "":
		return t.Said
	case t.Vitals != "":
		return t.Vitals
	case t.PainLevel > 0:
		return "pain " + strconv.Itoa(t.PainLevel) + "/10"
	}
	return ""
}

func deliveryStatus(o Outcome) string {
	if o.Attempted && o.Err == nil {
		return audit.StatusSent
	}
	return audit.StatusFailed
}
