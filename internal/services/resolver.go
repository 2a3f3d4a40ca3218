package services

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolver errors. Each maps to exactly one HTTP status.
var (
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrConflictingFilters = errors.New("submission id cannot be combined with other filters")
	ErrNoFilterSpecified  = errors.New("no filter specified")
)

// FilterRequest is the set of optional submission filters of one request.
// An empty field is absent.
type FilterRequest struct {
	SubmissionID string
	Username     string
	QuizID       string
	ModuleID     string
}

func (f FilterRequest) hasCollectionFilter() bool {
	return f.Username != "" || f.QuizID != "" || f.ModuleID != ""
}

// QueryPlan is either a PlanByID or a PlanFiltered.
type QueryPlan interface {
	isQueryPlan()
}

// PlanByID looks up a single submission.
type PlanByID struct {
	SubmissionID primitive.ObjectID
}

// PlanFiltered selects every submission matching all the set filters.
type PlanFiltered struct {
	Username string
	QuizID   *primitive.ObjectID
	ModuleID *primitive.ObjectID
}

func (PlanByID) isQueryPlan()     {}
func (PlanFiltered) isQueryPlan() {}

// Plan validates req and turns it into a query plan without touching any
// store. The submission id branch always wins; identifier format is
// checked before anything that would need a lookup.
func Plan(req FilterRequest) (QueryPlan, error) {
	if req.SubmissionID != "" {
		id, err := parseIdentifier(req.SubmissionID)
		if err != nil {
			return nil, err
		}
		if req.hasCollectionFilter() {
			return nil, ErrConflictingFilters
		}
		return PlanByID{SubmissionID: id}, nil
	}

	if !req.hasCollectionFilter() {
		return nil, ErrNoFilterSpecified
	}

	plan := PlanFiltered{Username: req.Username}
	if req.ModuleID != "" {
		id, err := parseIdentifier(req.ModuleID)
		if err != nil {
			return nil, err
		}
		plan.ModuleID = &id
	}
	if req.QuizID != "" {
		id, err := parseIdentifier(req.QuizID)
		if err != nil {
			return nil, err
		}
		plan.QuizID = &id
	}
	return plan, nil
}

func parseIdentifier(value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidIdentifier
	}
	return id, nil
}
