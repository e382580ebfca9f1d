package musclemap

import (
	"context"
	"sync"
)

type TestRepo struct {
	mutex sync.Mutex
	infos map[string]Info
	tiers map[string]map[string]Tier

	Err error
	// Reads counts the Info and Tiers calls.
	Reads int
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		infos: make(map[string]Info),
		tiers: make(map[string]map[string]Tier),
	}
}

func (r *TestRepo) Info(_ context.Context, slug string) (*Info, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Reads++
	if r.Err != nil {
		return nil, r.Err
	}
	info, ok := r.infos[slug]
	if !ok {
		return nil, ErrInfoNotFound
	}
	return &info, nil
}

func (r *TestRepo) Tiers(_ context.Context, slug string) ([]Tier, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Reads++
	if r.Err != nil {
		return nil, r.Err
	}
	var tiers []Tier
	for _, t := range r.tiers[slug] {
		tiers = append(tiers, t)
	}
	return tiers, nil
}

func (r *TestRepo) Save(_ context.Context, info Info, tiers []Tier) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.infos[info.Slug] = info
	if r.tiers[info.Slug] == nil {
		r.tiers[info.Slug] = make(map[string]Tier)
	}
	for _, t := range tiers {
		r.tiers[info.Slug][t.Tier] = t
	}
	return nil
}
