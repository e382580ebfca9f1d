package routines

import (
	"context"
	"sort"
	"sync"
	"time"
)

type TestRepo struct {
	mutex    sync.Mutex
	nextID   int
	routines map[int]Routine

	Err error
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		nextID:   1,
		routines: make(map[int]Routine),
	}
}

func cloneRoutine(r Routine) Routine {
	r.TrainDays = append([]string{}, r.TrainDays...)
	r.RestDays = append([]string{}, r.RestDays...)
	days := make([]Day, 0, len(r.Days))
	for _, d := range r.Days {
		days = append(days, Day{Label: d.Label, Exercises: append([]string{}, d.Exercises...)})
	}
	r.Days = days
	return r
}

func (r *TestRepo) Add(_ context.Context, routine Routine) (*Routine, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	routine.ID = r.nextID
	r.nextID++
	routine.CreatedAt = time.Now()
	r.routines[routine.ID] = cloneRoutine(routine)
	added := cloneRoutine(routine)
	return &added, nil
}

func (r *TestRepo) Update(_ context.Context, routine Routine) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}
	existing, ok := r.routines[routine.ID]
	if !ok || existing.UserID != routine.UserID {
		return ErrRoutineNotFound
	}
	routine.CreatedAt = existing.CreatedAt
	r.routines[routine.ID] = cloneRoutine(routine)
	return nil
}

func (r *TestRepo) List(_ context.Context, userID int) ([]Routine, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var res []Routine
	for _, routine := range r.routines {
		if routine.UserID == userID {
			res = append(res, cloneRoutine(routine))
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (r *TestRepo) Get(_ context.Context, userID, id int) (*Routine, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	routine, ok := r.routines[id]
	if !ok || routine.UserID != userID {
		return nil, ErrRoutineNotFound
	}
	routine = cloneRoutine(routine)
	return &routine, nil
}

func (r *TestRepo) Delete(_ context.Context, userID, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}
	routine, ok := r.routines[id]
	if !ok || routine.UserID != userID {
		return ErrRoutineNotFound
	}
	delete(r.routines, id)
	return nil
}
