package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DictionaryEntry is a word learners looked up in the sign dictionary.
// Words that are requested but have no sign video yet are kept with
// InDictionary set to false so admins can see what to record next.
type DictionaryEntry struct {
	// ID is the unique identifier of the entry.
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty" db:"id"`

	// Word is the looked-up word, unique across the dictionary.
	Word string `json:"word" bson:"word" db:"word"`

	// URL points to the sign video for the word, if any.
	URL string `json:"url,omitempty" bson:"url,omitempty" db:"url"`

	// InDictionary reports whether a sign video exists for the word.
	InDictionary bool `json:"in_dictionary" bson:"in_dictionary" db:"in_dictionary"`

	// TimesRequested counts how often the word was requested.
	TimesRequested int64 `json:"times_requested" bson:"times_requested" db:"times_requested"`

	// CreatedAt is the timestamp of the first request for the word.
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}
