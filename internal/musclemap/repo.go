package musclemap

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrInfoNotFound = errors.New("muscle info not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Info(ctx context.Context, slug string) (_ *Info, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.musclemap.info")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("muscle.slug", slug))

	info := Info{}
	if err := r.db.QueryRow(
		ctx,
		`SELECT muscle_slug, name, overview_html FROM muscle_info WHERE muscle_slug = $1;`,
		slug,
	).Scan(&info.Slug, &info.Name, &info.OverviewHTML); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInfoNotFound
		}
		return nil, err
	}

	return &info, nil
}

func (r *Repo) Tiers(ctx context.Context, slug string) (_ []Tier, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.musclemap.tiers")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("muscle.slug", slug))

	rows, err := r.db.Query(
		ctx,
		`SELECT tier, title, body_html, video_url FROM muscle_tiers WHERE muscle_slug = $1;`,
		slug,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByPos[Tier])
}

// Save upserts the muscle info and the given tiers, other tiers stay as they are.
func (r *Repo) Save(ctx context.Context, info Info, tiers []Tier) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.musclemap.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("muscle.slug", info.Slug),
		attribute.Int("tiers", len(tiers)),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(
		ctx,
		`INSERT INTO muscle_info (muscle_slug, name, overview_html, updated_at)
			VALUES ($1, $2, $3, now())
		ON CONFLICT (muscle_slug) DO UPDATE SET
			name = excluded.name,
			overview_html = excluded.overview_html,
			updated_at = excluded.updated_at;`,
		info.Slug, info.Name, info.OverviewHTML,
	); err != nil {
		return fmt.Errorf("upsert muscle info: %w", err)
	}

	for _, t := range tiers {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO muscle_tiers (muscle_slug, tier, title, body_html, video_url, updated_at)
				VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (muscle_slug, tier) DO UPDATE SET
				title = excluded.title,
				body_html = excluded.body_html,
				video_url = excluded.video_url,
				updated_at = excluded.updated_at;`,
			info.Slug, t.Tier, t.Title, t.BodyHTML, t.VideoURL,
		); err != nil {
			return fmt.Errorf("upsert tier [%s]: %w", t.Tier, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
