//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asltutor/apiserver/config"
	"github.com/asltutor/apiserver/internal/db"
	"github.com/asltutor/apiserver/internal/logging"
	"github.com/asltutor/apiserver/internal/server"
	"github.com/asltutor/apiserver/internal/services"
	"github.com/asltutor/apiserver/types"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	serverPort = 18080
	password   = "testpass123!"
)

var baseURL = fmt.Sprintf("http://localhost:%d", serverPort)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d", "postgres"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	setEnv()
	cfg := config.LoadConfig()

	if err := waitForPostgres(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := server.New(ctx, cfg, logging.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}
	go func() {
		_ = srv.Start()
	}()

	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown(context.Background())
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown(context.Background())
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

type fixture struct {
	admin      types.User
	learner    types.User
	submission primitive.ObjectID
	quiz       primitive.ObjectID
	module     primitive.ObjectID
}

func seed(t *testing.T) fixture {
	t.Helper()
	ctx := t.Context()
	cfg := config.LoadConfig()

	repos, err := server.OpenRepositories(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = repos.Close(context.Background()) }()

	suffix := time.Now().UnixNano()
	users := services.NewUserService(repos.Users)
	admin, err := users.Register(ctx, types.User{
		Username:   fmt.Sprintf("admin_%d", suffix),
		Email:      "admin@example.com",
		Role:       types.RoleAdmin,
		IsVerified: true,
	}, password)
	require.NoError(t, err)
	learner, err := users.Register(ctx, types.User{
		Username: fmt.Sprintf("learner_%d", suffix),
		Email:    "learner@example.com",
	}, password)
	require.NoError(t, err)

	conn, err := db.Open(ctx, cfg)
	require.NoError(t, err)
	defer conn.Close()

	f := fixture{
		admin:      admin,
		learner:    learner,
		submission: primitive.NewObjectID(),
		quiz:       primitive.NewObjectID(),
		module:     primitive.NewObjectID(),
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO submissions (id, user_id, quiz_id, module_id, score) VALUES ($1, $2, $3, $4, 3), ($5, $2, $6, $4, 5)`,
		f.submission.Hex(), learner.ID.Hex(), f.quiz.Hex(), f.module.Hex(),
		primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(),
	)
	require.NoError(t, err)

	for i, word := range []string{fmt.Sprintf("hello%d", suffix), fmt.Sprintf("thanks%d", suffix)} {
		_, err = conn.ExecContext(ctx,
			`INSERT INTO dictionary (id, word, times_requested) VALUES ($1, $2, $3)`,
			primitive.NewObjectID().Hex(), word, 1000+i,
		)
		require.NoError(t, err)
	}
	return f
}

func TestAdminEndpoints(t *testing.T) {
	f := seed(t)
	adminToken := login(t, f.admin.Username)
	learnerToken := login(t, f.learner.Username)

	t.Run("gate", func(t *testing.T) {
		status, _ := get(t, "/admin/stats", "")
		assert.Equal(t, http.StatusUnauthorized, status)

		status, _ = get(t, "/admin/stats", learnerToken)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("top requested", func(t *testing.T) {
		status, body := get(t, "/admin/stats?limit=1", adminToken)
		require.Equal(t, http.StatusOK, status)

		var entries []types.DictionaryEntry
		require.NoError(t, json.Unmarshal(body, &entries))
		assert.GreaterOrEqual(t, len(entries), 2)
		assert.LessOrEqual(t, len(entries), services.MinTopRequested)
		assert.GreaterOrEqual(t, entries[0].TimesRequested, int64(1001))
	})

	t.Run("user stats", func(t *testing.T) {
		status, body := get(t, "/admin/stats/users?days=7", adminToken)
		require.Equal(t, http.StatusOK, status)

		var stats types.UserStats
		require.NoError(t, json.Unmarshal(body, &stats))
		assert.Equal(t, 7, stats.WindowDays)
		assert.GreaterOrEqual(t, stats.TotalUsers, int64(2))
		assert.GreaterOrEqual(t, stats.ActiveUsers, int64(2))
		assert.GreaterOrEqual(t, stats.RecentSubmissions, int64(2))
	})

	t.Run("submission by id", func(t *testing.T) {
		status, body := get(t, "/admin/submissions?submission="+f.submission.Hex(), adminToken)
		require.Equal(t, http.StatusOK, status)

		var sub types.Submission
		require.NoError(t, json.Unmarshal(body, &sub))
		assert.Equal(t, f.submission, sub.ID)
		assert.Equal(t, 3, sub.Score)
	})

	t.Run("submissions by filters", func(t *testing.T) {
		status, body := get(t, "/admin/submissions?user="+f.learner.Username+"&module="+f.module.Hex(), adminToken)
		require.Equal(t, http.StatusOK, status)

		var subs []types.Submission
		require.NoError(t, json.Unmarshal(body, &subs))
		assert.Len(t, subs, 2)

		status, body = get(t, "/admin/submissions?user="+f.learner.Username+"&quiz="+f.quiz.Hex(), adminToken)
		require.Equal(t, http.StatusOK, status)
		require.NoError(t, json.Unmarshal(body, &subs))
		require.Len(t, subs, 1)
		assert.Equal(t, f.submission, subs[0].ID)

		status, body = get(t, "/admin/submissions?user="+f.admin.Username, adminToken)
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `[]`, string(body))
	})

	t.Run("submission errors", func(t *testing.T) {
		cases := map[string]int{
			"/admin/submissions":                                                     http.StatusPreconditionFailed,
			"/admin/submissions?submission=nope":                                     http.StatusBadRequest,
			"/admin/submissions?submission=" + f.submission.Hex() + "&user=x":        http.StatusBadRequest,
			"/admin/submissions?submission=" + primitive.NewObjectID().Hex():         http.StatusNotFound,
			"/admin/submissions?user=nobody_" + primitive.NewObjectID().Hex():        http.StatusNotFound,
			"/admin/submissions?user=" + f.learner.Username + "&quiz=0123456789abcde": http.StatusBadRequest,
		}
		for target, want := range cases {
			status, _ := get(t, target, adminToken)
			assert.Equal(t, want, status, target)
		}
	})

	t.Run("export without storage", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, baseURL+"/admin/stats/export", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+adminToken)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func login(t *testing.T, username string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)

	resp, err := http.Post(baseURL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		t.Fatalf("login status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.Token)
	return parsed.Token
}

func get(t *testing.T, path, token string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func setEnv() {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_BACKEND", config.BackendPostgres)
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "asltutor")
	_ = os.Setenv("DB_PASSWORD", "asltutor")
	_ = os.Setenv("DB_NAME", "asltutor")
	_ = os.Setenv("DB_USE_SSL", "false")
	_ = os.Setenv("STORAGE_BACKEND", "")
	_ = os.Setenv("REDIS_URL", "")
	_ = os.Setenv("LOG_LEVEL", "error")
}

func waitForPostgres(ctx context.Context, cfg config.Config) error {
	conn, err := sql.Open("postgres", db.PostgresURL(cfg))
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := conn.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string, cfg config.Config) error {
	migrationsURL := "file://" + filepath.Join(root, "internal", "db", "migrations", "postgres")

	migrator, err := migrate.New(migrationsURL, db.PostgresURL(cfg))
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
