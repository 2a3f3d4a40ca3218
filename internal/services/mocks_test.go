package services

import (
	"context"
	"io"
	"time"

	"github.com/asltutor/apiserver/internal/store"
	"github.com/asltutor/apiserver/types"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockSubmissionRepository is a testify mock for SubmissionRepository.
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Get(ctx context.Context, id primitive.ObjectID) (types.Submission, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Find(ctx context.Context, filter store.SubmissionFilter) ([]types.Submission, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Count(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a testify mock for UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, filter store.UserCountFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockDictionaryRepository is a testify mock for DictionaryRepository.
type MockDictionaryRepository struct {
	mock.Mock
}

func (m *MockDictionaryRepository) TopRequested(ctx context.Context, limit int) ([]types.DictionaryEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.DictionaryEntry), args.Error(1)
}

func (m *MockDictionaryRepository) IncrementRequested(ctx context.Context, word string, at time.Time) error {
	args := m.Called(ctx, word, at)
	return args.Error(0)
}

// MockTopRequestedCache is a testify mock for TopRequestedCache.
type MockTopRequestedCache struct {
	mock.Mock
}

func (m *MockTopRequestedCache) GetTopRequested(ctx context.Context, limit int) ([]types.DictionaryEntry, bool, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]types.DictionaryEntry), args.Bool(1), args.Error(2)
}

func (m *MockTopRequestedCache) SetTopRequested(ctx context.Context, limit int, entries []types.DictionaryEntry) error {
	args := m.Called(ctx, limit, entries)
	return args.Error(0)
}

// MockObjectWriter is a testify mock for ObjectWriter that keeps the
// uploaded body for inspection.
type MockObjectWriter struct {
	mock.Mock
	body []byte
}

func (m *MockObjectWriter) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.body = data
	args := m.Called(ctx, key, size, contentType)
	return args.Error(0)
}
