package mongostore

import (
	"context"
	"time"

	"github.com/asltutor/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DictionaryRepository handles persistence for dictionary entries in MongoDB.
type DictionaryRepository struct {
	coll *mongo.Collection
}

func NewDictionaryRepository(db *mongo.Database) *DictionaryRepository {
	return &DictionaryRepository{coll: db.Collection(DictionaryCollection)}
}

// TopRequested returns the most requested words that have no sign yet.
func (r *DictionaryRepository) TopRequested(ctx context.Context, limit int) ([]types.DictionaryEntry, error) {
	opts := options.Find().
		SetSort(topRequestedSort()).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{"in_dictionary": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]types.DictionaryEntry, 0, limit)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// IncrementRequested atomically bumps the request counter of word,
// inserting a not-yet-in-dictionary entry on first request.
func (r *DictionaryRepository) IncrementRequested(ctx context.Context, word string, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"word": word},
		incrementUpdate(at),
		options.Update().SetUpsert(true),
	)
	return err
}

func topRequestedSort() bson.D {
	return bson.D{
		{Key: "times_requested", Value: -1},
		{Key: "word", Value: 1},
	}
}

func incrementUpdate(at time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"times_requested": 1},
		"$setOnInsert": bson.M{
			"in_dictionary": false,
			"created_at":    at,
		},
	}
}
