package mq

import (
	"testing"
	"time"

	"github.com/asltutor/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordRequestedRoundTrip(t *testing.T) {
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	data, attrs, err := EncodeWordRequested(WordRequested{Word: "thanks", RequestedAt: at})
	require.NoError(t, err)
	assert.Equal(t, EventWordRequested, attrs[EventTypeAttribute])

	evt, err := DecodeWordRequested(Message{Data: data})
	require.NoError(t, err)
	assert.Equal(t, "thanks", evt.Word)
	assert.True(t, at.Equal(evt.RequestedAt))
}

func TestDecodeWordRequestedAcceptsBareWord(t *testing.T) {
	evt, err := DecodeWordRequested(Message{Data: []byte(`{"word":"hello"}`)})
	require.NoError(t, err)
	assert.Equal(t, "hello", evt.Word)
	assert.True(t, evt.RequestedAt.IsZero())
}

func TestDecodeWordRequestedRejectsBadPayloads(t *testing.T) {
	for _, payload := range []string{``, `not json`, `{}`, `{"word":"  "}`, `{"word":7}`} {
		_, err := DecodeWordRequested(Message{Data: []byte(payload)})
		assert.Error(t, err, "payload %q", payload)
	}
}

func TestEncodeWordRequestedRequiresWord(t *testing.T) {
	_, _, err := EncodeWordRequested(WordRequested{})
	assert.Error(t, err)
}

func TestKafkaHeaderConversion(t *testing.T) {
	assert.Nil(t, attributesToKafkaHeaders(nil))
	assert.Nil(t, kafkaHeadersToAttributes(nil))

	attrs := map[string]string{EventTypeAttribute: EventWordRequested}
	assert.Equal(t, attrs, kafkaHeadersToAttributes(attributesToKafkaHeaders(attrs)))
}

func TestRabbitHeaderConversion(t *testing.T) {
	headers := attributesToHeaders(map[string]string{"a": "b"})
	headers["n"] = int32(3)
	headers["raw"] = []byte("x")

	assert.Equal(t, map[string]string{"a": "b", "n": "3", "raw": "x"}, headersToAttributes(headers))
	assert.Nil(t, headersToAttributes(nil))
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(t.Context(), config.MQConfig{Backend: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewKafkaClientValidatesConfig(t *testing.T) {
	_, err := NewKafkaClient(config.KafkaConfig{})
	assert.Error(t, err)

	_, err = NewKafkaClient(config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	client, err := NewKafkaClient(config.KafkaConfig{Brokers: []string{"localhost:9092"}, GroupID: "g"})
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}
