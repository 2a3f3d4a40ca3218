package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asltutor/apiserver/internal/logging"
	"github.com/asltutor/apiserver/internal/metrics"
	"github.com/asltutor/apiserver/internal/store"
	"github.com/asltutor/apiserver/types"
	"go.uber.org/zap"
)

const (
	MinTopRequested     = 5
	MaxTopRequested     = 100
	DefaultTopRequested = 20

	DefaultWindowDays = 30
	MaxWindowDays     = 365
)

// ErrInvalidWord is returned when recording a request for an empty word.
var ErrInvalidWord = errors.New("word must not be empty")

// DictionaryRepository defines persistence operations for dictionary entries.
type DictionaryRepository interface {
	TopRequested(ctx context.Context, limit int) ([]types.DictionaryEntry, error)
	IncrementRequested(ctx context.Context, word string, at time.Time) error
}

// UserCounter counts users.
type UserCounter interface {
	Count(ctx context.Context, filter store.UserCountFilter) (int64, error)
}

// SubmissionCounter counts submissions.
type SubmissionCounter interface {
	Count(ctx context.Context, since time.Time) (int64, error)
}

// TopRequestedCache caches top-N lists keyed by their limit.
type TopRequestedCache interface {
	GetTopRequested(ctx context.Context, limit int) ([]types.DictionaryEntry, bool, error)
	SetTopRequested(ctx context.Context, limit int, entries []types.DictionaryEntry) error
}

// StatsService aggregates dictionary and population statistics.
type StatsService struct {
	dictionary  DictionaryRepository
	users       UserCounter
	submissions SubmissionCounter
	cache       TopRequestedCache
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewStatsService builds a StatsService. cache may be nil.
func NewStatsService(
	dictionary DictionaryRepository,
	users UserCounter,
	submissions SubmissionCounter,
	cache TopRequestedCache,
	m *metrics.Metrics,
) *StatsService {
	return &StatsService{
		dictionary:  dictionary,
		users:       users,
		submissions: submissions,
		cache:       cache,
		metrics:     m,
		now:         time.Now,
	}
}

// ClampTopRequested maps limit outside [MinTopRequested, MaxTopRequested]
// to DefaultTopRequested.
func ClampTopRequested(limit int) int {
	if limit < MinTopRequested || limit > MaxTopRequested {
		return DefaultTopRequested
	}
	return limit
}

// ClampWindowDays bounds days to [1, MaxWindowDays].
func ClampWindowDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

// TopRequested returns the most requested words missing from the dictionary.
func (s *StatsService) TopRequested(ctx context.Context, limit int) ([]types.DictionaryEntry, error) {
	limit = ClampTopRequested(limit)
	logger := logging.FromContext(ctx)

	if s.cache != nil {
		entries, ok, err := s.cache.GetTopRequested(ctx, limit)
		if err != nil {
			logger.Warn(ctx, "stats cache read failed", zap.Error(err))
		} else if ok {
			s.metrics.ObserveStatsCache(true)
			return entries, nil
		}
		s.metrics.ObserveStatsCache(false)
	}

	entries, err := s.dictionary.TopRequested(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top requested: %w", err)
	}
	if entries == nil {
		entries = []types.DictionaryEntry{}
	}

	if s.cache != nil {
		if err := s.cache.SetTopRequested(ctx, limit, entries); err != nil {
			logger.Warn(ctx, "stats cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// UserStats counts users and submissions, with the "new", "active" and
// "recent" counters taken over the trailing days.
func (s *StatsService) UserStats(ctx context.Context, days int) (types.UserStats, error) {
	days = ClampWindowDays(days)
	since := s.now().UTC().AddDate(0, 0, -days)
	stats := types.UserStats{WindowDays: days}

	counts := []struct {
		name  string
		dst   *int64
		count func() (int64, error)
	}{
		{"total users", &stats.TotalUsers, func() (int64, error) {
			return s.users.Count(ctx, store.UserCountFilter{})
		}},
		{"verified users", &stats.VerifiedUsers, func() (int64, error) {
			return s.users.Count(ctx, store.UserCountFilter{VerifiedOnly: true})
		}},
		{"new users", &stats.NewUsers, func() (int64, error) {
			return s.users.Count(ctx, store.UserCountFilter{CreatedSince: since})
		}},
		{"active users", &stats.ActiveUsers, func() (int64, error) {
			return s.users.Count(ctx, store.UserCountFilter{LoggedInSince: since})
		}},
		{"total submissions", &stats.TotalSubmissions, func() (int64, error) {
			return s.submissions.Count(ctx, time.Time{})
		}},
		{"recent submissions", &stats.RecentSubmissions, func() (int64, error) {
			return s.submissions.Count(ctx, since)
		}},
	}

	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return types.UserStats{}, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dst = n
	}
	return stats, nil
}

// RecordRequest counts one request for word. Unknown words are added as
// not yet in the dictionary.
func (s *StatsService) RecordRequest(ctx context.Context, word string) error {
	word = NormalizeWord(word)
	if word == "" {
		return ErrInvalidWord
	}
	if err := s.dictionary.IncrementRequested(ctx, word, s.now().UTC()); err != nil {
		return fmt.Errorf("increment %q: %w", word, err)
	}
	return nil
}

// NormalizeWord trims and lower-cases a dictionary word.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
