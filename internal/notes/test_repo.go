package notes

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type TestRepo struct {
	mutex  sync.Mutex
	nextID int
	notes  map[int]*Note

	Err error
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		nextID: 1,
		notes:  make(map[int]*Note),
	}
}

func (r *TestRepo) Add(_ context.Context, note *Note) (*Note, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	note.Text = strings.TrimSpace(note.Text)
	if note.Text == "" {
		return nil, ErrEmptyNote
	}
	note.ID = r.nextID
	r.nextID++
	stored := *note
	r.notes[note.ID] = &stored
	return note, nil
}

func (r *TestRepo) Recent(_ context.Context, userID, limit int) ([]Note, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var notes []Note
	for _, n := range r.notes {
		if n.UserID == userID {
			notes = append(notes, *n)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].ID > notes[j].ID
	})
	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

func (r *TestRepo) Delete(_ context.Context, userID, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}
	n, ok := r.notes[id]
	if !ok || n.UserID != userID {
		return ErrNoteNotFound
	}
	delete(r.notes, id)
	return nil
}
