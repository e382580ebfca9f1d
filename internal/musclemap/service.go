package musclemap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	cacheSize   = 10 * 1024 * 1024
	cacheExpire = 60 * 60 // seconds
)

type muscleRepo interface {
	Info(ctx context.Context, slug string) (*Info, error)
	Tiers(ctx context.Context, slug string) ([]Tier, error)
	Save(ctx context.Context, info Info, tiers []Tier) error
}

type Service struct {
	repo  muscleRepo
	cache *freecache.Cache
}

func NewService(repo muscleRepo) *Service {
	return &Service{
		repo:  repo,
		cache: freecache.NewCache(cacheSize),
	}
}

func cacheKey(slug string) []byte {
	return []byte("muscle::" + slug)
}

// Get returns the muscle detail, from cache when possible.
func (s *Service) Get(ctx context.Context, slug string) (_ *Detail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "musclemap.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("muscle.slug", slug))

	if detailBytes, err := s.cache.Get(cacheKey(slug)); err == nil {
		detail := &Detail{}
		if err := json.Unmarshal(detailBytes, detail); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return detail, nil
		}
		log.Errorf("failed to unmarshal muscle %s from cache: %s", slug, err)
	}

	info, err := s.repo.Info(ctx, slug)
	if err != nil {
		if !errors.Is(err, ErrInfoNotFound) {
			return nil, fmt.Errorf("get muscle info: %w", err)
		}
		info = &Info{Slug: slug, Name: DisplayName(slug)}
	}

	stored, err := s.repo.Tiers(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get muscle tiers: %w", err)
	}

	detail := &Detail{
		Info:  *info,
		Tiers: fullTiers(stored),
	}

	detailBytes, err := json.Marshal(detail)
	if err != nil {
		log.Errorf("failed to marshal muscle %s for cache: %s", slug, err)
		return detail, nil
	}
	if err := s.cache.Set(cacheKey(slug), detailBytes, cacheExpire); err != nil {
		log.Errorf("failed to write muscle cache for %s: %s", slug, err)
	}

	return detail, nil
}

// Save stores the muscle content, invalid tier letters are ignored.
func (s *Service) Save(ctx context.Context, slug string, req SaveRequest) (_ *Detail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "musclemap.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("muscle.slug", slug))

	info, tiers := req.normalize(slug)
	if err := s.repo.Save(ctx, info, tiers); err != nil {
		return nil, fmt.Errorf("save muscle: %w", err)
	}
	s.cache.Del(cacheKey(slug))
	log.Debugf("muscle %s saved with %d tiers", slug, len(tiers))

	return s.Get(ctx, slug)
}
