package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/alaraguvercin/kolay-hatirla/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	times, err := json.Marshal(m.Times)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, user_id,
			name, dosage, frequency_per_day, times,
			start_date, end_date, notes, is_active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		m.ID,
		m.UserID,
		m.Name,
		m.Dosage,
		m.FrequencyPerDay,
		times,
		m.StartDate,
		toNullString(m.EndDate),
		m.Notes,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	times, err := json.Marshal(m.Times)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			name = $2,
			dosage = $3,
			frequency_per_day = $4,
			times = $5,
			start_date = $6,
			end_date = $7,
			notes = $8,
			is_active = $9,
			updated_at = $10
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Dosage,
		m.FrequencyPerDay,
		times,
		m.StartDate,
		toNullString(m.EndDate),
		m.Notes,
		m.IsActive,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, user_id,
			name, dosage, frequency_per_day, times,
			start_date, end_date, notes, is_active,
			created_at, updated_at
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err == sql.ErrNoRows {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, err
}

func (r *MedicationsRepo) ListByUser(ctx context.Context, userID string) ([]medications.Medication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id,
			name, dosage, frequency_per_day, times,
			start_date, end_date, notes, is_active,
			created_at, updated_at
		FROM medications
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMedication(row scanner) (medications.Medication, error) {
	var (
		m       medications.Medication
		times   []byte
		endDate sql.NullString
	)
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Dosage,
		&m.FrequencyPerDay,
		&times,
		&m.StartDate,
		&endDate,
		&m.Notes,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}

	if err := json.Unmarshal(times, &m.Times); err != nil {
		return medications.Medication{}, err
	}
	if endDate.Valid {
		m.EndDate = endDate.String
	}

	return m, nil
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
