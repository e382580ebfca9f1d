package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/settings"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/jackc/pgx/v5"
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

// Create stores the user together with its default settings.
func (r *Repo) Create(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := tx.QueryRow(
		ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3)
		RETURNING id, created_at;`,
		user.Username, user.Email, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	def := settings.Default(user.ID)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO user_settings (user_id, rest_days, weekly_min_sessions) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING;`,
		user.ID, settings.FormatRestDays(def.RestDays), def.WeeklyMinSessions,
	); err != nil {
		return nil, fmt.Errorf("insert default settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	return &user, nil
}

func (r *Repo) ByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.byUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var u User
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1;`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) IsAdmin(ctx context.Context, userID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.isAdmin")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var isAdmin bool
	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE user_id = $1);`,
		userID,
	).Scan(&isAdmin)
	return isAdmin, err
}

// AddAdmin grants the admin role, adding an existing admin is a no-op.
func (r *Repo) AddAdmin(ctx context.Context, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.addAdmin")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO admins (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING;`,
		userID,
	)
	if pkg.IsForeignKeyViolationError(err) {
		return ErrUserNotFound
	}
	return err
}

func (r *Repo) RemoveAdmin(ctx context.Context, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.removeAdmin")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx, `DELETE FROM admins WHERE user_id = $1;`, userID)
	return err
}

// ListAdmins returns the usernames of all the admins, sorted.
func (r *Repo) ListAdmins(ctx context.Context) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.listAdmins")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT u.username FROM admins a JOIN users u ON u.id = a.user_id ORDER BY u.username ASC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowTo[string])
}
