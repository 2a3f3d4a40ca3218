package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/asltutor/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const submissionColumns = `id, user_id, quiz_id, module_id, answers, score, created_at`

// SubmissionRepository handles persistence for submissions.
type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Get(ctx context.Context, id primitive.ObjectID) (types.Submission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	submission, err := scanSubmission(r.db.QueryRowContext(ctx, query, id.Hex()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Submission{}, ErrNotFound
		}
		return types.Submission{}, err
	}
	return submission, nil
}

// Find returns every submission matching filter, ordered by id.
func (r *SubmissionRepository) Find(ctx context.Context, filter SubmissionFilter) ([]types.Submission, error) {
	query, args := buildSubmissionQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]types.Submission, 0)
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return submissions, nil
}

// Count returns the number of submissions created at or after since.
// A zero since counts every submission.
func (r *SubmissionRepository) Count(ctx context.Context, since time.Time) (int64, error) {
	query, args := buildSubmissionCountQuery(since)
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (types.Submission, error) {
	var submission types.Submission
	var id, userID, quizID, moduleID string
	var answersJSON []byte
	if err := row.Scan(
		&id,
		&userID,
		&quizID,
		&moduleID,
		&answersJSON,
		&submission.Score,
		&submission.CreatedAt,
	); err != nil {
		return types.Submission{}, err
	}

	if err := parseObjectID(&submission.ID, "id", id); err != nil {
		return types.Submission{}, err
	}
	if err := parseObjectID(&submission.UserID, "user_id", userID); err != nil {
		return types.Submission{}, err
	}
	if err := parseObjectID(&submission.QuizID, "quiz_id", quizID); err != nil {
		return types.Submission{}, err
	}
	if err := parseObjectID(&submission.ModuleID, "module_id", moduleID); err != nil {
		return types.Submission{}, err
	}

	submission.Answers = []types.Answer{}
	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &submission.Answers); err != nil {
			return types.Submission{}, err
		}
	}
	return submission, nil
}
