package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/asltutor/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DictionaryRepository handles persistence for dictionary entries.
type DictionaryRepository struct {
	db *sql.DB
}

func NewDictionaryRepository(db *sql.DB) *DictionaryRepository {
	return &DictionaryRepository{db: db}
}

// TopRequested returns the most requested words that have no sign yet.
func (r *DictionaryRepository) TopRequested(ctx context.Context, limit int) ([]types.DictionaryEntry, error) {
	const query = `
		SELECT id, word, url, in_dictionary, times_requested, created_at
		FROM dictionary
		WHERE in_dictionary = FALSE
		ORDER BY times_requested DESC, word ASC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.DictionaryEntry, 0, limit)
	for rows.Next() {
		var entry types.DictionaryEntry
		var id string
		if err := rows.Scan(
			&id,
			&entry.Word,
			&entry.URL,
			&entry.InDictionary,
			&entry.TimesRequested,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := parseObjectID(&entry.ID, "id", id); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// IncrementRequested atomically bumps the request counter of word,
// inserting a not-yet-in-dictionary entry on first request.
func (r *DictionaryRepository) IncrementRequested(ctx context.Context, word string, at time.Time) error {
	const query = `
		INSERT INTO dictionary (id, word, url, in_dictionary, times_requested, created_at)
		VALUES ($1, $2, '', FALSE, 1, $3)
		ON CONFLICT (word) DO UPDATE
		SET times_requested = dictionary.times_requested + 1`
	_, err := r.db.ExecContext(ctx, query, primitive.NewObjectID().Hex(), word, at)
	return err
}
