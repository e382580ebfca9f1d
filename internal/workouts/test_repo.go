package workouts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/2beens/fittrack/pkg"
)

// TestRepo is an in-memory workouts store, used in tests and local development.
// When Err is set, every read and write fails with it.
type TestRepo struct {
	mutex     sync.Mutex
	nextID    int
	workouts  map[int]Workout
	exercises map[int]map[string]bool

	Err error
	// Calls counts the calls per method name.
	Calls map[string]int
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		nextID:    1,
		workouts:  make(map[int]Workout),
		exercises: make(map[int]map[string]bool),
		Calls:     make(map[string]int),
	}
}

func (r *TestRepo) called(method string) error {
	r.Calls[method]++
	return r.Err
}

func (r *TestRepo) Add(_ context.Context, workout Workout) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("Add"); err != nil {
		return nil, err
	}
	if len(workout.Sets) == 0 {
		return nil, ErrNoExercises
	}

	workout.ID = r.nextID
	r.nextID++
	workout.Date = pkg.DayStart(workout.Date)
	workout.Sets = append([]Set(nil), workout.Sets...)
	for i := range workout.Sets {
		workout.Sets[i].WorkoutID = workout.ID
		if r.exercises[workout.UserID] == nil {
			r.exercises[workout.UserID] = make(map[string]bool)
		}
		r.exercises[workout.UserID][workout.Sets[i].Exercise] = true
	}
	r.workouts[workout.ID] = workout
	return &workout, nil
}

// Log is a shortcut for tests: adds a single-set workout on the given date.
func (r *TestRepo) Log(userID int, date time.Time, sets ...Set) *Workout {
	if len(sets) == 0 {
		sets = []Set{{Exercise: "Squat", Sets: 1, Reps: 1, Weight: 1}}
	}
	w, err := r.Add(context.Background(), Workout{
		UserID:  userID,
		Date:    date,
		Routine: DefaultRoutine,
		Sets:    sets,
	})
	if err != nil {
		panic(err)
	}
	return w
}

func (r *TestRepo) inRange(userID int, start, end time.Time) []Workout {
	start, end = pkg.DayStart(start), pkg.DayStart(end)
	var res []Workout
	for _, w := range r.workouts {
		if w.UserID != userID {
			continue
		}
		if w.Date.Before(start) || w.Date.After(end) {
			continue
		}
		res = append(res, w)
	}
	return res
}

func (r *TestRepo) CountInRange(_ context.Context, userID int, start, end time.Time) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("CountInRange"); err != nil {
		return 0, err
	}
	return len(r.inRange(userID, start, end)), nil
}

func (r *TestRepo) VolumeInRange(_ context.Context, userID int, start, end time.Time) (float64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("VolumeInRange"); err != nil {
		return 0, err
	}
	var volume float64
	for _, w := range r.inRange(userID, start, end) {
		volume += w.Volume()
	}
	return volume, nil
}

func (r *TestRepo) ExistsOnDate(_ context.Context, userID int, date time.Time) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("ExistsOnDate"); err != nil {
		return false, err
	}
	return len(r.inRange(userID, date, date)) > 0, nil
}

func (r *TestRepo) MostRecentDate(_ context.Context, userID int) (*time.Time, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("MostRecentDate"); err != nil {
		return nil, err
	}
	var last *time.Time
	for _, w := range r.workouts {
		if w.UserID != userID {
			continue
		}
		if last == nil || w.Date.After(*last) {
			d := w.Date
			last = &d
		}
	}
	return last, nil
}

func (r *TestRepo) sortedFor(userID int) []Workout {
	var res []Workout
	for _, w := range r.workouts {
		if w.UserID == userID {
			res = append(res, w)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Date.Equal(res[j].Date) {
			return res[i].ID > res[j].ID
		}
		return res[i].Date.After(res[j].Date)
	})
	return res
}

func (r *TestRepo) Recent(_ context.Context, userID, limit int) ([]Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("Recent"); err != nil {
		return nil, err
	}
	var res []Workout
	for _, w := range r.sortedFor(userID) {
		if len(res) == limit {
			break
		}
		w.Sets = nil
		res = append(res, w)
	}
	return res, nil
}

func (r *TestRepo) ListWithSets(_ context.Context, userID, limit int) ([]Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("ListWithSets"); err != nil {
		return nil, err
	}
	all := r.sortedFor(userID)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *TestRepo) ExerciseSummaries(_ context.Context, userID int) ([]ExerciseSummary, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("ExerciseSummaries"); err != nil {
		return nil, err
	}

	byExercise := map[string]*ExerciseSummary{}
	for _, w := range r.sortedFor(userID) {
		for _, s := range w.Sets {
			es, ok := byExercise[s.Exercise]
			if !ok {
				es = &ExerciseSummary{Exercise: s.Exercise, LastDate: w.Date}
				byExercise[s.Exercise] = es
			}
			if w.Date.After(es.LastDate) {
				es.LastDate = w.Date
			}
			es.MaxWeight = max(es.MaxWeight, s.Weight)
			es.Est1RM = max(es.Est1RM, Est1RM(s.Weight, s.Reps))
			es.Volume += s.Volume()
		}
	}

	summaries := make([]ExerciseSummary, 0, len(byExercise))
	for _, es := range byExercise {
		es.MaxWeight = Round1(es.MaxWeight)
		es.Est1RM = Round1(es.Est1RM)
		es.Volume = Round1(es.Volume)
		summaries = append(summaries, *es)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].LastDate.Equal(summaries[j].LastDate) {
			return summaries[i].Exercise < summaries[j].Exercise
		}
		return summaries[i].LastDate.After(summaries[j].LastDate)
	})
	return summaries, nil
}

func (r *TestRepo) UserExercises(_ context.Context, userID int) ([]string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("UserExercises"); err != nil {
		return nil, err
	}
	var names []string
	for name := range r.exercises[userID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *TestRepo) Delete(_ context.Context, userID, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.called("Delete"); err != nil {
		return err
	}
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return ErrWorkoutNotFound
	}
	delete(r.workouts, id)
	return nil
}
