package routines

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"

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

func (r *Repo) Add(ctx context.Context, routine Routine) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", routine.UserID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := tx.QueryRow(
		ctx,
		`INSERT INTO routines (user_id, name, train_days, rest_days)
			VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;`,
		routine.UserID, routine.Name, joinDays(routine.TrainDays), joinDays(routine.RestDays),
	).Scan(&routine.ID, &routine.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert routine: %w", err)
	}

	if err := insertDays(ctx, tx, routine); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("routine.id", routine.ID))
	return &routine, nil
}

func insertDays(ctx context.Context, tx pgx.Tx, routine Routine) error {
	for i, day := range routine.Days {
		var dayID int
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO routine_days (routine_id, day_label, day_order) VALUES ($1, $2, $3) RETURNING id;`,
			routine.ID, day.Label, i,
		).Scan(&dayID); err != nil {
			return fmt.Errorf("insert routine day [%s]: %w", day.Label, err)
		}
		for _, exercise := range day.Exercises {
			if err := workouts.EnsureExercise(ctx, tx, routine.UserID, exercise); err != nil {
				return fmt.Errorf("ensure exercise [%s]: %w", exercise, err)
			}
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO routine_exercises (routine_day_id, exercise) VALUES ($1, $2);`,
				dayID, exercise,
			); err != nil {
				return fmt.Errorf("insert routine exercise [%s]: %w", exercise, err)
			}
		}
	}
	return nil
}

// Update replaces the routine fields and all its days.
func (r *Repo) Update(ctx context.Context, routine Routine) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routine.ID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(
		ctx,
		`UPDATE routines SET name = $1, train_days = $2, rest_days = $3 WHERE id = $4 AND user_id = $5;`,
		routine.Name, joinDays(routine.TrainDays), joinDays(routine.RestDays), routine.ID, routine.UserID,
	)
	if err != nil {
		return fmt.Errorf("update routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}

	// routine_exercises go with the days, by cascade
	if _, err := tx.Exec(ctx, `DELETE FROM routine_days WHERE routine_id = $1;`, routine.ID); err != nil {
		return fmt.Errorf("delete routine days: %w", err)
	}
	if err := insertDays(ctx, tx, routine); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// List returns the user routines, newest first, with their days.
func (r *Repo) List(ctx context.Context, userID int) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, train_days, rest_days, created_at
			FROM routines
			WHERE user_id = $1
			ORDER BY id DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routines []Routine
	for rows.Next() {
		routine := Routine{UserID: userID}
		var trainDays, restDays string
		if err := rows.Scan(&routine.ID, &routine.Name, &trainDays, &restDays, &routine.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		routine.TrainDays = splitDays(trainDays)
		routine.RestDays = splitDays(restDays)
		routines = append(routines, routine)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range routines {
		days, err := r.days(ctx, routines[i].ID)
		if err != nil {
			return nil, err
		}
		routines[i].Days = days
	}

	return routines, nil
}

func (r *Repo) Get(ctx context.Context, userID, id int) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", id))

	routine := Routine{UserID: userID}
	var trainDays, restDays string
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, name, train_days, rest_days, created_at FROM routines WHERE id = $1 AND user_id = $2;`,
		id, userID,
	).Scan(&routine.ID, &routine.Name, &trainDays, &restDays, &routine.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	routine.TrainDays = splitDays(trainDays)
	routine.RestDays = splitDays(restDays)

	routine.Days, err = r.days(ctx, routine.ID)
	if err != nil {
		return nil, err
	}

	return &routine, nil
}

func (r *Repo) days(ctx context.Context, routineID int) ([]Day, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT d.id, d.day_label, e.exercise
			FROM routine_days d
			LEFT JOIN routine_exercises e ON e.routine_day_id = d.id
			WHERE d.routine_id = $1
			ORDER BY d.day_order ASC, e.id ASC;`,
		routineID,
	)
	if err != nil {
		return nil, fmt.Errorf("query routine days: %w", err)
	}
	defer rows.Close()

	days := []Day{}
	lastDayID := 0
	for rows.Next() {
		var dayID int
		var label string
		var exercise *string
		if err := rows.Scan(&dayID, &label, &exercise); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if dayID != lastDayID {
			days = append(days, Day{Label: label, Exercises: []string{}})
			lastDayID = dayID
		}
		if exercise != nil {
			days[len(days)-1].Exercises = append(days[len(days)-1].Exercises, *exercise)
		}
	}

	return days, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM routines WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}
	return nil
}
