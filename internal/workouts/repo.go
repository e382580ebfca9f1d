package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrNoExercises     = errors.New("workout has no exercises")
)

// sql fragment computing a set volume, coercing NULL and out of range values
const setVolumeSQL = `GREATEST(COALESCE(s.weight, 0), 0) * GREATEST(COALESCE(s.reps, 0), 0) * GREATEST(COALESCE(s.sets, 1), 1)`

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// EnsureExercise records the exercise name in the user exercise list, if not there yet.
func EnsureExercise(ctx context.Context, db execer, userID int, name string) error {
	_, err := db.Exec(
		ctx,
		`INSERT INTO exercises (user_id, name) VALUES ($1, $2) ON CONFLICT (user_id, name) DO NOTHING;`,
		userID, name,
	)
	return err
}

// Add stores the workout with all its sets in a single transaction.
func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", workout.UserID))

	if len(workout.Sets) == 0 {
		return nil, ErrNoExercises
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// no-op when already committed
		_ = tx.Rollback(ctx)
	}()

	if err := tx.QueryRow(
		ctx,
		`INSERT INTO workouts (user_id, date, routine, duration_min, note)
			VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`,
		workout.UserID, workout.Date, workout.Routine, workout.DurationMin, workout.Note,
	).Scan(&workout.ID); err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	for i := range workout.Sets {
		s := &workout.Sets[i]
		s.WorkoutID = workout.ID
		if err := EnsureExercise(ctx, tx, workout.UserID, s.Exercise); err != nil {
			return nil, fmt.Errorf("ensure exercise [%s]: %w", s.Exercise, err)
		}
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO sets (workout_id, exercise, sets, reps, weight, notes)
				VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
			workout.ID, s.Exercise, s.Sets, s.Reps, s.Weight, s.Note,
		).Scan(&s.ID); err != nil {
			return nil, fmt.Errorf("insert set [%s]: %w", s.Exercise, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	return &workout, nil
}

func (r *Repo) CountInRange(ctx context.Context, userID int, start, end time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.countInRange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workouts WHERE user_id = $1 AND date BETWEEN $2 AND $3;`,
		userID, start, end,
	).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repo) VolumeInRange(ctx context.Context, userID int, start, end time.Time) (_ float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.volumeInRange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var volume float64
	if err := r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(`+setVolumeSQL+`), 0)::float8
			FROM sets s
			JOIN workouts w ON w.id = s.workout_id
			WHERE w.user_id = $1 AND w.date BETWEEN $2 AND $3;`,
		userID, start, end,
	).Scan(&volume); err != nil {
		return 0, err
	}

	return volume, nil
}

func (r *Repo) ExistsOnDate(ctx context.Context, userID int, date time.Time) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.existsOnDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var exists bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM workouts WHERE user_id = $1 AND date = $2);`,
		userID, date,
	).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// MostRecentDate returns nil if the user has no workouts.
func (r *Repo) MostRecentDate(ctx context.Context, userID int) (_ *time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.mostRecentDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var last *time.Time
	if err := r.db.QueryRow(
		ctx,
		`SELECT MAX(date) FROM workouts WHERE user_id = $1;`,
		userID,
	).Scan(&last); err != nil {
		return nil, err
	}

	return last, nil
}

// Recent returns the last limit workouts of the user, without sets.
func (r *Repo) Recent(ctx context.Context, userID, limit int) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, date, routine, COALESCE(duration_min, 0), COALESCE(note, '')
			FROM workouts
			WHERE user_id = $1
			ORDER BY date DESC, id DESC
			LIMIT $2;`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2workouts(rows)
}

// ListWithSets returns the last limit workouts of the user, each with its sets.
func (r *Repo) ListWithSets(ctx context.Context, userID, limit int) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listWithSets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workouts, err := r.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return workouts, nil
	}

	ids := make([]int, 0, len(workouts))
	byID := make(map[int]int, len(workouts))
	for i, w := range workouts {
		ids = append(ids, w.ID)
		byID[w.ID] = i
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, workout_id, exercise, COALESCE(sets, 1), COALESCE(reps, 0), COALESCE(weight, 0), COALESCE(notes, '')
			FROM sets
			WHERE workout_id = ANY($1)
			ORDER BY id ASC;`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s Set
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.Exercise, &s.Sets, &s.Reps, &s.Weight, &s.Note); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		s.Normalize()
		idx := byID[s.WorkoutID]
		workouts[idx].Sets = append(workouts[idx].Sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}

// ExerciseSummaries aggregates the user sets per exercise, latest trained first.
func (r *Repo) ExerciseSummaries(ctx context.Context, userID int) (_ []ExerciseSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exerciseSummaries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT s.exercise,
				MAX(w.date) AS last_date,
				COALESCE(MAX(GREATEST(COALESCE(s.weight, 0), 0)), 0)::float8,
				COALESCE(MAX(GREATEST(COALESCE(s.weight, 0), 0) * (1 + GREATEST(COALESCE(s.reps, 0), 0) / 30.0)), 0)::float8,
				COALESCE(SUM(`+setVolumeSQL+`), 0)::float8
			FROM sets s
			JOIN workouts w ON w.id = s.workout_id
			WHERE w.user_id = $1
			GROUP BY s.exercise
			ORDER BY last_date DESC, s.exercise ASC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ExerciseSummary
	for rows.Next() {
		var es ExerciseSummary
		if err := rows.Scan(&es.Exercise, &es.LastDate, &es.MaxWeight, &es.Est1RM, &es.Volume); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		es.MaxWeight = Round1(es.MaxWeight)
		es.Est1RM = Round1(es.Est1RM)
		es.Volume = Round1(es.Volume)
		summaries = append(summaries, es)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// UserExercises lists the exercise names the user has ever logged, sorted.
func (r *Repo) UserExercises(ctx context.Context, userID int) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.userExercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT name FROM exercises WHERE user_id = $1 ORDER BY name ASC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Delete removes a workout of the user, sets are removed by cascade.
func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func rows2workouts(rows pgx.Rows) ([]Workout, error) {
	var workouts []Workout
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Date, &w.Routine, &w.DurationMin, &w.Note); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if w.DurationMin < 0 {
			w.DurationMin = 0
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}
