package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/themobileprof/mamacare-be/internal/identity"
)

const profileColumns = `id, name, phone, health_type, risk_score, language,
	emergency_contact, pregnancy_week, age, lmp, next_checkup, is_active`

// ProfileSource looks profiles up in one table. It implements
// identity.Source.
type ProfileSource struct {
	db         *DB
	table      string
	collection identity.Collection
}

var _ identity.Source = (*ProfileSource)(nil)

// Users returns the primary profile source
func (db *DB) Users() *ProfileSource {
	return &ProfileSource{db: db, table: "users", collection: identity.CollectionUsers}
}

// Patients returns the legacy profile source managed by health workers
func (db *DB) Patients() *ProfileSource {
	return &ProfileSource{db: db, table: "patients", collection: identity.CollectionPatients}
}

// FindByPhoneKey returns the oldest profile whose phone ends with the key
func (s *ProfileSource) FindByPhoneKey(ctx context.Context, phoneKey string) (*identity.Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE phone_key = $1
		ORDER BY created_at
		LIMIT 1
	`, profileColumns, s.table)

	p, err := scanProfile(s.db.QueryRowContext(ctx, query, phoneKey), s.collection)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, identity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s by phone: %w", s.table, err)
	}
	return p, nil
}

// Get returns a profile by id
func (s *ProfileSource) Get(ctx context.Context, id string) (*identity.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, profileColumns, s.table)

	p, err := scanProfile(s.db.QueryRowContext(ctx, query, id), s.collection)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", s.table, err)
	}
	return p, nil
}

// List returns profiles in creation order. activeOnly filters on
// is_active, healthType filters when non-empty and limit applies when
// positive.
func (s *ProfileSource) List(ctx context.Context, healthType identity.HealthType, activeOnly bool, limit int) ([]*identity.Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE ($1 = '' OR health_type = $1)
		  AND (NOT $2 OR is_active)
		ORDER BY created_at
	`, profileColumns, s.table)
	args := []any{string(healthType), activeOnly}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table, err)
	}
	defer rows.Close()

	var profiles []*identity.Profile
	for rows.Next() {
		p, err := scanProfile(rows, s.collection)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.table, err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table, err)
	}
	return profiles, nil
}

// UpdateRiskScore stores the aggregated risk on a profile
func (s *ProfileSource) UpdateRiskScore(ctx context.Context, id string, level identity.RiskLevel) error {
	query := fmt.Sprintf(`UPDATE %s SET risk_score = $2, updated_at = NOW() WHERE id = $1`, s.table)

	res, err := s.db.ExecContext(ctx, query, id, string(level))
	if err != nil {
		return fmt.Errorf("failed to update risk score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update risk score: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner, collection identity.Collection) (*identity.Profile, error) {
	var (
		p                        identity.Profile
		name, phone, healthType  sql.NullString
		riskScore, lang, contact sql.NullString
		week, age                sql.NullInt64
		lmp, nextCheckup         sql.NullTime
		isActive                 sql.NullBool
	)
	if err := row.Scan(&p.ID, &name, &phone, &healthType, &riskScore, &lang,
		&contact, &week, &age, &lmp, &nextCheckup, &isActive); err != nil {
		return nil, err
	}

	p.Collection = collection
	p.Name = name.String
	p.Phone = phone.String
	p.HealthType = identity.HealthType(healthType.String)
	p.RiskScore = identity.RiskLevel(riskScore.String)
	p.Language = lang.String
	p.EmergencyContact = contact.String
	p.PregnancyWeek = int(week.Int64)
	p.Age = int(age.Int64)
	p.LMP = timePtr(lmp)
	p.NextCheckup = timePtr(nextCheckup)
	p.IsActive = !isActive.Valid || isActive.Bool
	return &p, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
