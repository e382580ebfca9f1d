package settings

import (
	"context"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Get returns the user settings, creating the default row on first access.
func (r *Repo) Get(ctx context.Context, userID int) (_ *Settings, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.settings.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	def := Default(userID)
	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO user_settings (user_id, rest_days, weekly_min_sessions)
			VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING;`,
		userID, FormatRestDays(def.RestDays), def.WeeklyMinSessions,
	); err != nil {
		return nil, fmt.Errorf("ensure settings row: %w", err)
	}

	var rawRestDays string
	s := Settings{UserID: userID}
	if err := r.db.QueryRow(
		ctx,
		`SELECT rest_days, weekly_min_sessions FROM user_settings WHERE user_id = $1;`,
		userID,
	).Scan(&rawRestDays, &s.WeeklyMinSessions); err != nil {
		return nil, fmt.Errorf("select settings: %w", err)
	}

	s.RestDays = ParseRestDays(rawRestDays)
	s.Normalize()
	return &s, nil
}

func (r *Repo) Update(ctx context.Context, s Settings) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.settings.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", s.UserID))

	s.Normalize()
	_, err = r.db.Exec(
		ctx,
		`INSERT INTO user_settings (user_id, rest_days, weekly_min_sessions)
			VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
			SET rest_days = EXCLUDED.rest_days, weekly_min_sessions = EXCLUDED.weekly_min_sessions;`,
		s.UserID, FormatRestDays(s.RestDays), s.WeeklyMinSessions,
	)
	return err
}
