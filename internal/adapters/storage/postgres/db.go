package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a Postgres connection pool through pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the two collections' tables. Dose slots carry no unique
// index on (medication_id, date, scheduled_time); the mark-taken upsert is
// query-before-insert and stays best-effort under concurrent writers.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS medications (
			id text PRIMARY KEY,
			user_id text NOT NULL,
			name text NOT NULL,
			dosage text NOT NULL,
			frequency_per_day integer NOT NULL,
			times jsonb NOT NULL,
			start_date text NOT NULL,
			end_date text,
			notes text NOT NULL DEFAULT '',
			is_active boolean NOT NULL,
			created_at bigint NOT NULL,
			updated_at bigint NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_medications_user ON medications(user_id)`,
		`CREATE TABLE IF NOT EXISTS medication_doses (
			id text PRIMARY KEY,
			user_id text NOT NULL,
			medication_id text NOT NULL,
			scheduled_time text NOT NULL,
			date text NOT NULL,
			taken_at bigint
		)`,
		`CREATE INDEX IF NOT EXISTS idx_medication_doses_user_date ON medication_doses(user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_medication_doses_medication ON medication_doses(medication_id)`,
	}

	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
