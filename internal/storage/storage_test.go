package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/asltutor/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	objects     map[string][]byte
	types       map[string]string
	ensureCalls int
	closed      bool
}

func newMemBackend() *memBackend {
	return &memBackend{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memBackend) EnsureBucket(context.Context) error {
	m.ensureCalls++
	return nil
}

func (m *memBackend) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memBackend) Bucket() string { return "mem" }

func (m *memBackend) Close() error {
	m.closed = true
	return nil
}

func TestStorageDelegates(t *testing.T) {
	backend := newMemBackend()
	s := NewStorage(backend)

	require.NoError(t, s.EnsureBucket(context.Background()))
	require.NoError(t, s.Put(context.Background(), "stats/a.json", bytes.NewReader([]byte(`{}`)), 2, "application/json"))
	require.NoError(t, s.Close())

	assert.Equal(t, 1, backend.ensureCalls)
	assert.Equal(t, []byte(`{}`), backend.objects["stats/a.json"])
	assert.Equal(t, "application/json", backend.types["stats/a.json"])
	assert.Equal(t, "mem", s.Bucket())
	assert.True(t, backend.closed)
}

func TestOpenWithoutBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "ftp"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotConfigured))
}

func TestNewMinioClientValidatesConfig(t *testing.T) {
	_, err := NewMinioClient(config.MinioConfig{})
	assert.Error(t, err)

	_, err = NewMinioClient(config.MinioConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err)

	client, err := NewMinioClient(config.MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "exports",
	})
	require.NoError(t, err)
	assert.Equal(t, "exports", client.Bucket())
}

func TestNewGCSClientRequiresBucket(t *testing.T) {
	_, err := NewGCSClient(context.Background(), config.GCSConfig{})
	assert.Error(t, err)
}
