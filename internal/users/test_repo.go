package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type TestRepo struct {
	mutex  sync.Mutex
	nextID int
	users  map[int]User
	admins map[int]bool

	Err error
	// IsAdminCalls counts the admin lookups, to check the caching.
	IsAdminCalls int
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		nextID: 1,
		users:  make(map[int]User),
		admins: make(map[int]bool),
	}
}

func (r *TestRepo) Create(_ context.Context, user User) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return nil, ErrUsernameTaken
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return &user, nil
}

func (r *TestRepo) ByUsername(_ context.Context, username string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *TestRepo) IsAdmin(_ context.Context, userID int) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.IsAdminCalls++
	if r.Err != nil {
		return false, r.Err
	}
	return r.admins[userID], nil
}

func (r *TestRepo) AddAdmin(_ context.Context, userID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.users[userID]; !ok {
		return ErrUserNotFound
	}
	r.admins[userID] = true
	return nil
}

func (r *TestRepo) RemoveAdmin(_ context.Context, userID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}
	delete(r.admins, userID)
	return nil
}

func (r *TestRepo) ListAdmins(_ context.Context) ([]string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var names []string
	for id := range r.admins {
		names = append(names, r.users[id].Username)
	}
	sort.Strings(names)
	return names, nil
}
