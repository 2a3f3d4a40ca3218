package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/asltutor/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newExportFixture(t *testing.T) (*ExportService, *MockObjectWriter, time.Time) {
	t.Helper()
	dict := new(MockDictionaryRepository)
	users := new(MockUserRepository)
	subs := new(MockSubmissionRepository)

	now := time.Date(2026, 6, 2, 8, 30, 0, 0, time.UTC)
	stats := NewStatsService(dict, users, subs, nil, nil)
	stats.now = func() time.Time { return now }

	dict.On("TopRequested", mock.Anything, 20).Return([]types.DictionaryEntry{{Word: "apple", TimesRequested: 3}}, nil)
	users.On("Count", mock.Anything, mock.Anything).Return(int64(4), nil)
	subs.On("Count", mock.Anything, mock.Anything).Return(int64(9), nil)

	objects := new(MockObjectWriter)
	svc := NewExportService(stats, objects)
	svc.newID = func() string { return "fixed-id" }
	return svc, objects, now
}

func TestExportWritesSnapshot(t *testing.T) {
	svc, objects, now := newExportFixture(t)
	objects.On("Put", mock.Anything, "stats/2026-06-02/fixed-id.json", mock.AnythingOfType("int64"), "application/json").Return(nil).Once()

	key, err := svc.Export(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "stats/2026-06-02/fixed-id.json", key)
	objects.AssertExpectations(t)

	var snapshot types.StatsSnapshot
	require.NoError(t, json.Unmarshal(objects.body, &snapshot))
	assert.True(t, now.Equal(snapshot.GeneratedAt))
	require.Len(t, snapshot.TopRequested, 1)
	assert.Equal(t, "apple", snapshot.TopRequested[0].Word)
	assert.Equal(t, int64(4), snapshot.UserStats.TotalUsers)
	assert.Equal(t, int64(9), snapshot.UserStats.TotalSubmissions)
	assert.Equal(t, 1, snapshot.UserStats.WindowDays)
}

func TestExportUploadError(t *testing.T) {
	svc, objects, _ := newExportFixture(t)
	boom := errors.New("bucket gone")
	objects.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(boom)

	_, err := svc.Export(context.Background(), 20, 30)
	assert.ErrorIs(t, err, boom)
}

func TestExportWithoutStorage(t *testing.T) {
	svc := NewExportService(NewStatsService(nil, nil, nil, nil, nil), nil)

	_, err := svc.Export(context.Background(), 20, 30)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
