package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionFilter selects submissions by exact match on their references.
// Nil fields are unconstrained; set fields are combined with AND.
type SubmissionFilter struct {
	UserID   *primitive.ObjectID
	QuizID   *primitive.ObjectID
	ModuleID *primitive.ObjectID
}

// IsEmpty reports whether no field is constrained.
func (f SubmissionFilter) IsEmpty() bool {
	return f.UserID == nil && f.QuizID == nil && f.ModuleID == nil
}

// UserCountFilter narrows a user count. Zero values are unconstrained.
type UserCountFilter struct {
	VerifiedOnly  bool
	CreatedSince  time.Time
	LoggedInSince time.Time
}
