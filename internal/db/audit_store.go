package db

import (
	"context"
	"fmt"
	"time"

	"github.com/themobileprof/mamacare-be/internal/audit"
)

// AuditStore persists audit records. It implements audit.Store.
type AuditStore struct {
	db *DB
}

var _ audit.Store = (*AuditStore)(nil)

func (db *DB) Audit() *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) InsertMessageLog(ctx context.Context, rec *audit.MessageLog) error {
	query := `
		INSERT INTO whatsapp_logs (id, patient_id, patient_name, matched_from, phone, message,
			response, direction, context, type, status, message_sid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, nullString(rec.PatientID), rec.PatientName, rec.MatchedFrom, rec.Phone, rec.Message,
		rec.Response, rec.Direction, rec.Context, rec.Type, rec.Status, nullString(rec.MessageSID), rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert whatsapp log: %w", err)
	}
	return nil
}

func (s *AuditStore) InsertCallLog(ctx context.Context, rec *audit.CallLog) error {
	query := `
		INSERT INTO call_logs (id, patient_id, patient_name, phone, call_sid, status, type,
			pregnancy_week, language, duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, nullString(rec.PatientID), rec.PatientName, rec.Phone, rec.CallSID, rec.Status, rec.Type,
		rec.Week, rec.Language, rec.Duration, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert call log: %w", err)
	}
	return nil
}

func (s *AuditStore) InsertEmergencyAlert(ctx context.Context, rec *audit.EmergencyAlert) error {
	query := `
		INSERT INTO emergency_alerts (id, patient_id, patient_name, phone, pregnancy_week,
			speech_input, status, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, nullString(rec.PatientID), rec.PatientName, rec.Phone, rec.PregnancyWeek,
		rec.SpeechInput, rec.Status, rec.Type, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert emergency alert: %w", err)
	}
	return nil
}

func (s *AuditStore) InsertSymptomLog(ctx context.Context, rec *audit.SymptomLog) error {
	query := `
		INSERT INTO symptom_logs (id, user_id, user_name, health_type, symptom, pregnancy_week,
			risk_score, source, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, nullString(rec.UserID), rec.UserName, rec.HealthType, rec.Symptom, rec.PregnancyWeek,
		rec.RiskScore, rec.Source, rec.Severity, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert symptom log: %w", err)
	}
	return nil
}

// UpdateCallStatus updates the oldest call log carrying callSID
func (s *AuditStore) UpdateCallStatus(ctx context.Context, callSID, status string, duration int, completedAt time.Time) error {
	query := `
		UPDATE call_logs
		SET status = $2, duration = $3, completed_at = $4
		WHERE id = (
			SELECT id FROM call_logs WHERE call_sid = $1 ORDER BY created_at LIMIT 1
		)
	`
	res, err := s.db.ExecContext(ctx, query, callSID, status, duration, completedAt)
	if err != nil {
		return fmt.Errorf("failed to update call log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update call log: %w", err)
	}
	if n == 0 {
		return audit.ErrNotFound
	}
	return nil
}
