package mq

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventTypeAttribute is the message attribute carrying the event type.
const EventTypeAttribute = "event_type"

// EventWordRequested is the type of WordRequested messages.
const EventWordRequested = "dictionary.word_requested"

// WordRequested is published whenever a learner looks up a word.
type WordRequested struct {
	Word        string    `json:"word"`
	RequestedAt time.Time `json:"requested_at,omitzero"`
}

// EncodeWordRequested returns the payload and attributes of evt.
func EncodeWordRequested(evt WordRequested) ([]byte, map[string]string, error) {
	if strings.TrimSpace(evt.Word) == "" {
		return nil, nil, errors.New("word is required")
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	return data, map[string]string{EventTypeAttribute: EventWordRequested}, nil
}

// DecodeWordRequested parses a WordRequested payload.
func DecodeWordRequested(msg Message) (WordRequested, error) {
	var evt WordRequested
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		return WordRequested{}, fmt.Errorf("decode word requested: %w", err)
	}
	if strings.TrimSpace(evt.Word) == "" {
		return WordRequested{}, errors.New("decode word requested: missing word")
	}
	return evt, nil
}
