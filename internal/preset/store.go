// internal/preset/store.go
package preset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/validation"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// filtersSchema guards the JSON payloads read back from storage: a row
// written by an older build or touched by hand must not smuggle unknown
// shapes into the browse session.
const filtersSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"intake_month": {"type": "string"},
		"intake_year": {"type": "integer"},
		"study_level": {"type": "string"},
		"status": {"type": "string"},
		"school": {"type": "string"},
		"program": {"type": "string"},
		"loan_amount_min": {"type": "integer", "minimum": 0},
		"loan_amount_max": {"type": "integer", "minimum": 0},
		"total_tuition_fee": {"type": "integer", "minimum": 0},
		"total_cost_of_living": {"type": "integer", "minimum": 0},
		"supported_countries": {"type": "string"}
	}
}`

// Store persists filter presets.
type Store interface {
	Insert(ctx context.Context, p models.FilterPreset) error
	Get(ctx context.Context, id string) (*models.FilterPreset, error)
	List(ctx context.Context) ([]models.FilterPreset, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// PostgresStore keeps presets in a filter_presets table, filters as JSONB.
type PostgresStore struct {
	db        *sql.DB
	validator *validation.Validator
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	v, err := validation.NewValidator(filtersSchema)
	if err != nil {
		return nil, fmt.Errorf("compile preset filters schema: %w", err)
	}
	return &PostgresStore{db: db, validator: v}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, p models.FilterPreset) error {
	payload, err := json.Marshal(p.Filters)
	if err != nil {
		return fmt.Errorf("marshal preset filters: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO filter_presets (id, name, filters, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, payload, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert preset: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.FilterPreset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, filters, created_at FROM filter_presets WHERE id = $1`, id)

	p, err := s.scanPreset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.FilterPreset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, filters, created_at FROM filter_presets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var out []models.FilterPreset
	for rows.Next() {
		p, err := s.scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM filter_presets WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete preset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *PostgresStore) scanPreset(row rowScanner) (*models.FilterPreset, error) {
	var (
		p       models.FilterPreset
		payload []byte
		created time.Time
	)
	if err := row.Scan(&p.ID, &p.Name, &payload, &created); err != nil {
		return nil, err
	}
	p.CreatedAt = created

	res, err := s.validator.ValidateJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("validate preset filters: %w", err)
	}
	if !res.Valid {
		return nil, fmt.Errorf("stored preset %s has invalid filters: %s", p.ID, res.FirstError())
	}

	if err := json.Unmarshal(payload, &p.Filters); err != nil {
		return nil, fmt.Errorf("unmarshal preset filters: %w", err)
	}
	return &p, nil
}
