package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asltutor/apiserver/internal/metrics"
	"github.com/asltutor/apiserver/internal/store"
	"github.com/asltutor/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionRepository defines read operations for submissions.
type SubmissionRepository interface {
	Get(ctx context.Context, id primitive.ObjectID) (types.Submission, error)
	Find(ctx context.Context, filter store.SubmissionFilter) ([]types.Submission, error)
	Count(ctx context.Context, since time.Time) (int64, error)
}

// UserLookup resolves usernames to users.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
}

// Resolution is the outcome of a successful resolve: exactly one of
// Single or Items is set.
type Resolution struct {
	Single *types.Submission
	Items  []types.Submission
}

// SubmissionService encapsulates submission use-cases.
type SubmissionService struct {
	repo    SubmissionRepository
	users   UserLookup
	metrics *metrics.Metrics
}

func NewSubmissionService(repo SubmissionRepository, users UserLookup, m *metrics.Metrics) *SubmissionService {
	return &SubmissionService{repo: repo, users: users, metrics: m}
}

// Resolve plans req and runs the plan against the store. It only reads.
func (s *SubmissionService) Resolve(ctx context.Context, req FilterRequest) (Resolution, error) {
	res, err := s.resolve(ctx, req)
	s.metrics.ObserveResolution(resolutionOutcome(res, err))
	return res, err
}

func (s *SubmissionService) resolve(ctx context.Context, req FilterRequest) (Resolution, error) {
	plan, err := Plan(req)
	if err != nil {
		return Resolution{}, err
	}

	switch p := plan.(type) {
	case PlanByID:
		submission, err := s.repo.Get(ctx, p.SubmissionID)
		if err != nil {
			return Resolution{}, fmt.Errorf("get submission %s: %w", p.SubmissionID.Hex(), err)
		}
		return Resolution{Single: &submission}, nil

	case PlanFiltered:
		filter := store.SubmissionFilter{QuizID: p.QuizID, ModuleID: p.ModuleID}
		if p.Username != "" {
			user, err := s.users.GetByUsername(ctx, p.Username)
			if err != nil {
				return Resolution{}, fmt.Errorf("resolve user %q: %w", p.Username, err)
			}
			filter.UserID = &user.ID
		}

		items, err := s.repo.Find(ctx, filter)
		if err != nil {
			return Resolution{}, fmt.Errorf("find submissions: %w", err)
		}
		if items == nil {
			items = []types.Submission{}
		}
		return Resolution{Items: items}, nil
	}

	return Resolution{}, fmt.Errorf("unknown query plan %T", plan)
}

func resolutionOutcome(res Resolution, err error) string {
	switch {
	case err == nil && res.Single != nil:
		return metrics.OutcomeSingle
	case err == nil:
		return metrics.OutcomeCollection
	case errors.Is(err, ErrInvalidIdentifier):
		return metrics.OutcomeInvalidID
	case errors.Is(err, ErrConflictingFilters):
		return metrics.OutcomeConflicting
	case errors.Is(err, ErrNoFilterSpecified):
		return metrics.OutcomeNoFilter
	case errors.Is(err, store.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
