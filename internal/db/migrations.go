package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// schema is applied statement by statement, every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users
	(
		id            SERIAL PRIMARY KEY,
		username      VARCHAR NOT NULL UNIQUE,
		email         VARCHAR NOT NULL UNIQUE,
		password_hash VARCHAR NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_settings
	(
		user_id             INTEGER PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
		rest_days           VARCHAR NOT NULL DEFAULT '0',
		weekly_min_sessions INTEGER NOT NULL DEFAULT 3
	)`,
	`CREATE TABLE IF NOT EXISTS workouts
	(
		id           SERIAL PRIMARY KEY,
		user_id      INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		date         DATE    NOT NULL,
		routine      VARCHAR NOT NULL DEFAULT 'Free',
		duration_min INTEGER,
		note         TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ix_workouts_user_date ON workouts (user_id, date)`,
	`CREATE TABLE IF NOT EXISTS sets
	(
		id         SERIAL PRIMARY KEY,
		workout_id INTEGER NOT NULL REFERENCES workouts (id) ON DELETE CASCADE,
		exercise   VARCHAR NOT NULL,
		sets       INTEGER,
		reps       INTEGER,
		weight     DOUBLE PRECISION,
		notes      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS ix_sets_workout ON sets (workout_id)`,
	`CREATE TABLE IF NOT EXISTS exercises
	(
		id      SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		name    VARCHAR NOT NULL,
		UNIQUE (user_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS saved_notes
	(
		id         SERIAL PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		text       TEXT    NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS routines
	(
		id         SERIAL PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		name       VARCHAR NOT NULL,
		train_days VARCHAR NOT NULL DEFAULT '',
		rest_days  VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS routine_days
	(
		id         SERIAL PRIMARY KEY,
		routine_id INTEGER NOT NULL REFERENCES routines (id) ON DELETE CASCADE,
		day_label  VARCHAR NOT NULL,
		day_order  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS routine_exercises
	(
		id             SERIAL PRIMARY KEY,
		routine_day_id INTEGER NOT NULL REFERENCES routine_days (id) ON DELETE CASCADE,
		exercise       VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admins
	(
		user_id    INTEGER PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS muscle_info
	(
		muscle_slug   VARCHAR PRIMARY KEY,
		name          VARCHAR NOT NULL,
		overview_html TEXT    NOT NULL DEFAULT '',
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS muscle_tiers
	(
		muscle_slug VARCHAR NOT NULL,
		tier        VARCHAR(1) NOT NULL,
		title       VARCHAR NOT NULL DEFAULT '',
		body_html   TEXT    NOT NULL DEFAULT '',
		video_url   VARCHAR NOT NULL DEFAULT '',
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (muscle_slug, tier)
	)`,
}

// Migrate creates all the tables the service needs, if missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i, err)
		}
	}
	log.Debugf("db migrations applied: %d statements", len(schema))
	return nil
}

// Schema returns the full schema as a single script.
func Schema() string {
	script := ""
	for _, stmt := range schema {
		script += stmt + ";\n"
	}
	return script
}
