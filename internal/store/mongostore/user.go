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
)

// UserRepository handles persistence for users in MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.getOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) getOne(ctx context.Context, query bson.M) (types.User, error) {
	var user types.User
	if err := r.coll.FindOne(ctx, query).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.User{}, store.ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login": at}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context, filter store.UserCountFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, userCountQuery(filter))
}

func userCountQuery(filter store.UserCountFilter) bson.D {
	query := bson.D{}
	if filter.VerifiedOnly {
		query = append(query, bson.E{Key: "is_verified", Value: true})
	}
	if !filter.CreatedSince.IsZero() {
		query = append(query, bson.E{Key: "created_at", Value: bson.M{"$gte": filter.CreatedSince}})
	}
	if !filter.LoggedInSince.IsZero() {
		query = append(query, bson.E{Key: "last_login", Value: bson.M{"$gte": filter.LoggedInSince}})
	}
	return query
}
