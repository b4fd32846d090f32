package db

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/risk"
)

// HealthRecords stores checkups and cycle logs
type HealthRecords struct {
	db *DB
}

func (db *DB) HealthRecords() *HealthRecords {
	return &HealthRecords{db: db}
}

// InsertCheckup stores a checkup and fills its id and created_at
func (h *HealthRecords) InsertCheckup(ctx context.Context, c *risk.Checkup) error {
	query := `
		INSERT INTO checkups (user_id, bp, hemoglobin, health_type, risk_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := h.db.QueryRowContext(ctx, query,
		c.UserID, c.BP, c.Hemoglobin, string(c.HealthType), string(c.RiskScore),
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert checkup: %w", err)
	}
	return nil
}

// RecentCheckupRisks returns the risk of the newest n checkups, newest first
func (h *HealthRecords) RecentCheckupRisks(ctx context.Context, userID string, n int) ([]identity.RiskLevel, error) {
	query := `
		SELECT risk_score
		FROM checkups
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := h.db.QueryContext(ctx, query, userID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent checkups: %w", err)
	}
	defer rows.Close()

	var risks []identity.RiskLevel
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("failed to scan checkup: %w", err)
		}
		risks = append(risks, identity.RiskLevel(r))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get recent checkups: %w", err)
	}
	return risks, nil
}

// InsertCycleLog stores a cycle log and fills its id and created_at
func (h *HealthRecords) InsertCycleLog(ctx context.Context, l *risk.CycleLog) error {
	query := `
		INSERT INTO cycle_logs (user_id, pain_level, symptoms, risk_score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := h.db.QueryRowContext(ctx, query,
		l.UserID, l.PainLevel, pq.Array(l.Symptoms), string(l.RiskScore),
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cycle log: %w", err)
	}
	return nil
}
