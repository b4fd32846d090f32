package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no call log matches a CallSID
var ErrNotFound = errors.New("audit: record not found")

// Store persists audit records. Implementations append; the only
// update is UpdateCallStatus.
type Store interface {
	InsertMessageLog(ctx context.Context, rec *MessageLog) error
	InsertCallLog(ctx context.Context, rec *CallLog) error
	InsertEmergencyAlert(ctx context.Context, rec *EmergencyAlert) error
	InsertSymptomLog(ctx context.Context, rec *SymptomLog) error
	// UpdateCallStatus updates the first call log with callSID and
	// returns ErrNotFound when there is none
	UpdateCallStatus(ctx context.Context, callSID, status string, duration int, completedAt time.Time) error
}

// Logger assigns identifiers and timestamps before handing records to
// the Store
type Logger struct {
	store Store
	now   func() time.Time
	newID func() string
}

// NewLogger creates an audit logger
func NewLogger(store Store) *Logger {
	return &Logger{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (l *Logger) RecordMessage(ctx context.Context, rec MessageLog) (MessageLog, error) {
	rec.ID = l.newID()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = l.now()
	}
	if err := l.store.InsertMessageLog(ctx, &rec); err != nil {
		return rec, fmt.Errorf("failed to record message log: %w", err)
	}
	return rec, nil
}

func (l *Logger) RecordCall(ctx context.Context, rec CallLog) (CallLog, error) {
	rec.ID = l.newID()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = l.now()
	}
	if rec.Status == "" {
		rec.Status = StatusInitiated
	}
	if err := l.store.InsertCallLog(ctx, &rec); err != nil {
		return rec, fmt.Errorf("failed to record call log: %w", err)
	}
	return rec, nil
}

func (l *Logger) RecordEmergency(ctx context.Context, rec EmergencyAlert) (EmergencyAlert, error) {
	rec.ID = l.newID()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = l.now()
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	if err := l.store.InsertEmergencyAlert(ctx, &rec); err != nil {
		return rec, fmt.Errorf("failed to record emergency alert: %w", err)
	}
	return rec, nil
}

// RecordSymptom stores a symptom report. RiskScore defaults to LOW and
// HealthType to unknown.
func (l *Logger) RecordSymptom(ctx context.Context, rec SymptomLog) (SymptomLog, error) {
	rec.ID = l.newID()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = l.now()
	}
	if rec.RiskScore == "" {
		rec.RiskScore = "LOW"
	}
	if rec.HealthType == "" {
		rec.HealthType = "unknown"
	}
	if rec.Source == "" {
		rec.Source = SourceWhatsAppBot
	}
	if err := l.store.InsertSymptomLog(ctx, &rec); err != nil {
		return rec, fmt.Errorf("failed to record symptom log: %w", err)
	}
	return rec, nil
}

// UpdateCallStatus applies a carrier status callback
func (l *Logger) UpdateCallStatus(ctx context.Context, callSID, status string, duration int) error {
	if callSID == "" {
		return ErrNotFound
	}
	if err := l.store.UpdateCallStatus(ctx, callSID, status, duration, l.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update call status: %w", err)
	}
	return nil
}
