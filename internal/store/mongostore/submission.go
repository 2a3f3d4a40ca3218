// Package mongostore implements the repositories on top of MongoDB.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/asltutor/apiserver/internal/store"
	"github.com/asltutor/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	SubmissionsCollection = "submissions"
	UsersCollection       = "users"
	DictionaryCollection  = "dictionary"
)

// SubmissionRepository reads submissions from MongoDB.
type SubmissionRepository struct {
	coll *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{coll: db.Collection(SubmissionsCollection)}
}

func (r *SubmissionRepository) Get(ctx context.Context, id primitive.ObjectID) (types.Submission, error) {
	var submission types.Submission
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&submission)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Submission{}, store.ErrNotFound
		}
		return types.Submission{}, err
	}
	return submission, nil
}

// Find returns every submission matching filter, ordered by id.
func (r *SubmissionRepository) Find(ctx context.Context, filter store.SubmissionFilter) ([]types.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, submissionQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	submissions := make([]types.Submission, 0)
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// Count returns the number of submissions created at or after since.
// A zero since counts every submission.
func (r *SubmissionRepository) Count(ctx context.Context, since time.Time) (int64, error) {
	query := bson.D{}
	if !since.IsZero() {
		query = append(query, bson.E{Key: "created_at", Value: bson.M{"$gte": since}})
	}
	return r.coll.CountDocuments(ctx, query)
}

func submissionQuery(filter store.SubmissionFilter) bson.D {
	query := bson.D{}
	if filter.UserID != nil {
		query = append(query, bson.E{Key: "user_id", Value: *filter.UserID})
	}
	if filter.QuizID != nil {
		query = append(query, bson.E{Key: "quiz_id", Value: *filter.QuizID})
	}
	if filter.ModuleID != nil {
		query = append(query, bson.E{Key: "module_id", Value: *filter.ModuleID})
	}
	return query
}
