package settings

import (
	"context"
	"sync"
)

// TestRepo keeps the settings in memory, used in tests and local development.
type TestRepo struct {
	mutex    sync.Mutex
	settings map[int]Settings

	Err   error
	Calls int
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		settings: make(map[int]Settings),
	}
}

func (r *TestRepo) Get(_ context.Context, userID int) (*Settings, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	s, ok := r.settings[userID]
	if !ok {
		s = Default(userID)
		r.settings[userID] = s
	}
	s.RestDays = append([]int(nil), s.RestDays...)
	return &s, nil
}

func (r *TestRepo) Update(_ context.Context, s Settings) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Calls++
	if r.Err != nil {
		return r.Err
	}
	s.Normalize()
	r.settings[s.UserID] = s
	return nil
}

// Set stores the settings as given, without normalizing them.
func (r *TestRepo) Set(s Settings) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.settings[s.UserID] = s
}
