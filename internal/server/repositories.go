package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asltutor/apiserver/config"
	"github.com/asltutor/apiserver/internal/db"
	"github.com/asltutor/apiserver/internal/services"
	"github.com/asltutor/apiserver/internal/store"
	"github.com/asltutor/apiserver/internal/store/mongostore"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories groups the store implementations of the configured backend.
type Repositories struct {
	Submissions services.SubmissionRepository
	Users       services.UserRepository
	Dictionary  services.DictionaryRepository

	close func(ctx context.Context) error
}

// Close releases the underlying database connection.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// OpenRepositories connects to the database selected by DB_BACKEND.
func OpenRepositories(ctx context.Context, cfg config.Config) (*Repositories, error) {
	switch cfg.Database.Backend {
	case config.BackendMongo:
		client, database, err := db.OpenMongo(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return mongoRepositories(client, database), nil
	case config.BackendPostgres:
		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgresRepositories(conn), nil
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}

func mongoRepositories(client *mongo.Client, database *mongo.Database) *Repositories {
	return &Repositories{
		Submissions: mongostore.NewSubmissionRepository(database),
		Users:       mongostore.NewUserRepository(database),
		Dictionary:  mongostore.NewDictionaryRepository(database),
		close:       client.Disconnect,
	}
}

func postgresRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		Submissions: store.NewSubmissionRepository(conn),
		Users:       store.NewUserRepository(conn),
		Dictionary:  store.NewDictionaryRepository(conn),
		close: func(context.Context) error {
			return conn.Close()
		},
	}
}
