package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

func (r *Repo) Add(ctx context.Context, note *Note) (_ *Note, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	note.Text = strings.TrimSpace(note.Text)
	if note.Text == "" {
		return nil, ErrEmptyNote
	}
	if note.CreatedAt.IsZero() {
		return nil, errors.New("note timestamp empty")
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO saved_notes (user_id, text, created_at) VALUES ($1, $2, $3) RETURNING id;`,
		note.UserID, note.Text, note.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected error [no rows next]")
	}

	if err := rows.Scan(&note.ID); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("note.id", note.ID))
	return note, nil
}

// Recent returns the newest notes of the user first.
func (r *Repo) Recent(ctx context.Context, userID, limit int) (_ []Note, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, text, created_at
			FROM saved_notes
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT $2;`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Text, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM saved_notes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}
