package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/alaraguvercin/kolay-hatirla/internal/domain/doses"
)

type DosesRepo struct {
	db *sql.DB
}

func NewDosesRepo(db *sql.DB) *DosesRepo {
	return &DosesRepo{db: db}
}

func (r *DosesRepo) Create(ctx context.Context, d doses.Dose) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medication_doses (
			id, user_id, medication_id, scheduled_time, date, taken_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		d.ID,
		d.UserID,
		d.MedicationID,
		d.ScheduledTime,
		d.Date,
		toNullInt64(d.TakenAt),
	)
	return err
}

func (r *DosesRepo) Update(ctx context.Context, d doses.Dose) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medication_doses
		SET taken_at = $2
		WHERE id = $1
	`,
		d.ID,
		toNullInt64(d.TakenAt),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return doses.ErrNotFound
	}
	return nil
}

func (r *DosesRepo) Find(ctx context.Context, userID, medicationID, scheduledTime, date string) (doses.Dose, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, medication_id, scheduled_time, date, taken_at
		FROM medication_doses
		WHERE user_id = $1 AND medication_id = $2 AND scheduled_time = $3 AND date = $4
		ORDER BY id ASC
		LIMIT 1
	`, userID, medicationID, scheduledTime, date)

	d, err := scanDose(row)
	if err == sql.ErrNoRows {
		return doses.Dose{}, doses.ErrNotFound
	}
	return d, err
}

func (r *DosesRepo) ListByUserDate(ctx context.Context, userID, date string) ([]doses.Dose, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, medication_id, scheduled_time, date, taken_at
		FROM medication_doses
		WHERE user_id = $1 AND date = $2
		ORDER BY scheduled_time ASC, id ASC
	`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doses.Dose, 0)
	for rows.Next() {
		d, err := scanDose(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

func (r *DosesRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM medication_doses WHERE medication_id = $1
	`, medicationID)
	return err
}

func scanDose(row scanner) (doses.Dose, error) {
	var (
		d       doses.Dose
		takenAt sql.NullInt64
	)
	if err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.MedicationID,
		&d.ScheduledTime,
		&d.Date,
		&takenAt,
	); err != nil {
		return doses.Dose{}, err
	}

	if takenAt.Valid {
		d.TakenAt = takenAt.Int64
	}
	return d, nil
}

func toNullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
