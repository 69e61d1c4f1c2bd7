// Package lru caches rfqtrack query results in a size-bounded LRU with a
// time-to-live.
package lru

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/rfqtrack"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Default cache settings.
const (
	DefaultSize = 1024
	DefaultTTL  = 5 * time.Minute
)

// Ensure QueryService implements rfqtrack.QueryService at compile time.
var _ rfqtrack.QueryService = (*QueryService)(nil)

// QueryService caches the results of an underlying QueryService, keyed by
// method and arguments. Errors are never cached. Cached values are shared
// between callers and must not be modified.
type QueryService struct {
	next  rfqtrack.QueryService
	cache *expirable.LRU[string, any]
}

// NewQueryService wraps next with a cache holding up to size results for
// ttl each. Non-positive values select the defaults.
func NewQueryService(next rfqtrack.QueryService, size int, ttl time.Duration) *QueryService {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryService{
		next:  next,
		cache: expirable.NewLRU[string, any](size, nil, ttl),
	}
}

// Purge drops every cached result. Call it after a crawl changes storage.
func (s *QueryService) Purge() {
	s.cache.Purge()
}

// Len returns the number of cached results.
func (s *QueryService) Len() int {
	return s.cache.Len()
}

func (s *QueryService) FindProjects(ctx context.Context, filter rfqtrack.ProjectFilter) ([]*rfqtrack.Project, error) {
	key, err := cacheKey("FindProjects", filter)
	if err != nil {
		return s.next.FindProjects(ctx, filter)
	}
	return cached(s, key, func() ([]*rfqtrack.Project, error) {
		return s.next.FindProjects(ctx, filter)
	})
}

func (s *QueryService) FindPartners(ctx context.Context, projectNumber string, typ *rfqtrack.PartnerType) ([]*rfqtrack.Partner, error) {
	key, err := cacheKey("FindPartners", projectNumber, typ)
	if err != nil {
		return s.next.FindPartners(ctx, projectNumber, typ)
	}
	return cached(s, key, func() ([]*rfqtrack.Partner, error) {
		return s.next.FindPartners(ctx, projectNumber, typ)
	})
}

func (s *QueryService) PartnerNames(ctx context.Context) ([]string, error) {
	return cached(s, "PartnerNames", func() ([]string, error) {
		return s.next.PartnerNames(ctx)
	})
}

func (s *QueryService) FindSubmissionHistory(ctx context.Context, projectNumber, partnerName string) (*rfqtrack.SubmissionHistory, error) {
	key, err := cacheKey("FindSubmissionHistory", projectNumber, partnerName)
	if err != nil {
		return s.next.FindSubmissionHistory(ctx, projectNumber, partnerName)
	}
	return cached(s, key, func() (*rfqtrack.SubmissionHistory, error) {
		return s.next.FindSubmissionHistory(ctx, projectNumber, partnerName)
	})
}

func (s *QueryService) SubmissionStats(ctx context.Context, id string) (*rfqtrack.FolderStats, error) {
	key, err := cacheKey("SubmissionStats", id)
	if err != nil {
		return s.next.SubmissionStats(ctx, id)
	}
	return cached(s, key, func() (*rfqtrack.FolderStats, error) {
		return s.next.SubmissionStats(ctx, id)
	})
}

func (s *QueryService) PartnerStats(ctx context.Context, projectNumber, partnerName string) (*rfqtrack.PartnerStats, error) {
	key, err := cacheKey("PartnerStats", projectNumber, partnerName)
	if err != nil {
		return s.next.PartnerStats(ctx, projectNumber, partnerName)
	}
	return cached(s, key, func() (*rfqtrack.PartnerStats, error) {
		return s.next.PartnerStats(ctx, projectNumber, partnerName)
	})
}

func (s *QueryService) ProjectStats(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) (*rfqtrack.ProjectStats, error) {
	key, err := cacheKey("ProjectStats", projectNumber, typ)
	if err != nil {
		return s.next.ProjectStats(ctx, projectNumber, typ)
	}
	return cached(s, key, func() (*rfqtrack.ProjectStats, error) {
		return s.next.ProjectStats(ctx, projectNumber, typ)
	})
}

func (s *QueryService) PartnerActivity(ctx context.Context, projectNumber string, typ rfqtrack.PartnerType) ([]*rfqtrack.PartnerActivity, error) {
	key, err := cacheKey("PartnerActivity", projectNumber, typ)
	if err != nil {
		return s.next.PartnerActivity(ctx, projectNumber, typ)
	}
	return cached(s, key, func() ([]*rfqtrack.PartnerActivity, error) {
		return s.next.PartnerActivity(ctx, projectNumber, typ)
	})
}

// cacheKey encodes a method name and its arguments.
func cacheKey(method string, args ...any) (string, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("cache key for %s: %w", method, err)
	}
	return method + ":" + string(b), nil
}

func cached[T any](s *QueryService, key string, load func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	s.cache.Add(key, v)
	return v, nil
}
