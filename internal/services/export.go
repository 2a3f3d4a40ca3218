package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/asltutor/apiserver/types"
	"github.com/google/uuid"
)

const snapshotContentType = "application/json"

// ErrStorageUnavailable is returned when no object storage is configured.
var ErrStorageUnavailable = errors.New("object storage is not configured")

// ObjectWriter uploads objects to the configured bucket.
type ObjectWriter interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// ExportService writes stats snapshots to object storage.
type ExportService struct {
	stats   *StatsService
	objects ObjectWriter
	newID   func() string
}

// NewExportService builds an ExportService. objects may be nil, in which
// case Export returns ErrStorageUnavailable.
func NewExportService(stats *StatsService, objects ObjectWriter) *ExportService {
	return &ExportService{
		stats:   stats,
		objects: objects,
		newID:   func() string { return uuid.NewString() },
	}
}

// Export builds a snapshot of the current stats, uploads it and returns
// the object key.
func (s *ExportService) Export(ctx context.Context, limit, days int) (string, error) {
	if s.objects == nil {
		return "", ErrStorageUnavailable
	}

	top, err := s.stats.TopRequested(ctx, limit)
	if err != nil {
		return "", err
	}
	users, err := s.stats.UserStats(ctx, days)
	if err != nil {
		return "", err
	}

	snapshot := types.StatsSnapshot{
		GeneratedAt:  s.stats.now().UTC(),
		TopRequested: top,
		UserStats:    users,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := path.Join("stats", snapshot.GeneratedAt.Format("2006-01-02"), s.newID()+".json")
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), snapshotContentType); err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return key, nil
}
