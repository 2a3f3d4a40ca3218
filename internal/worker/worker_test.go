package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/asltutor/apiserver/internal/metrics"
	"github.com/asltutor/apiserver/internal/mq"
	"github.com/asltutor/apiserver/internal/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordRequest(ctx context.Context, word string) error {
	return m.Called(ctx, word).Error(0)
}

// fakeSubscriber delivers a fixed list of messages and records handler errors.
type fakeSubscriber struct {
	messages []mq.Message
	channel  string
	errs     []error
	final    error
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, channel string, handler mq.Handler) error {
	f.channel = channel
	for _, msg := range f.messages {
		f.errs = append(f.errs, handler(ctx, msg))
	}
	return f.final
}

func wordMessage(t *testing.T, word string) mq.Message {
	t.Helper()
	data, attrs, err := mq.EncodeWordRequested(mq.WordRequested{Word: word})
	require.NoError(t, err)
	return mq.Message{ID: word, Data: data, Attributes: attrs}
}

func TestHandleRecordsWord(t *testing.T) {
	rec := new(MockRecorder)
	m := metrics.New()
	w := NewWordRequestWorker(rec, nil, "words", nil, m)

	rec.On("RecordRequest", mock.Anything, "hello").Return(nil).Once()

	require.NoError(t, w.Handle(context.Background(), wordMessage(t, "hello")))
	rec.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WordRequests.WithLabelValues(ResultRecorded)))
}

func TestHandleDropsMalformedPayload(t *testing.T) {
	rec := new(MockRecorder)
	m := metrics.New()
	w := NewWordRequestWorker(rec, nil, "words", nil, m)

	require.NoError(t, w.Handle(context.Background(), mq.Message{ID: "x", Data: []byte("{")}))
	rec.AssertNotCalled(t, "RecordRequest", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WordRequests.WithLabelValues(ResultDropped)))
}

func TestHandleDropsInvalidWord(t *testing.T) {
	rec := new(MockRecorder)
	w := NewWordRequestWorker(rec, nil, "words", nil, nil)

	rec.On("RecordRequest", mock.Anything, "???").Return(services.ErrInvalidWord)

	assert.NoError(t, w.Handle(context.Background(), wordMessage(t, "???")))
}

func TestHandlePropagatesStoreErrors(t *testing.T) {
	rec := new(MockRecorder)
	m := metrics.New()
	w := NewWordRequestWorker(rec, nil, "words", nil, m)

	boom := errors.New("mongo unavailable")
	rec.On("RecordRequest", mock.Anything, "hello").Return(boom)

	err := w.Handle(context.Background(), wordMessage(t, "hello"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WordRequests.WithLabelValues(ResultFailed)))
}

func TestRunSubscribesToChannel(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("RecordRequest", mock.Anything, "a").Return(nil)
	rec.On("RecordRequest", mock.Anything, "b").Return(errors.New("boom"))

	sub := &fakeSubscriber{
		messages: []mq.Message{wordMessage(t, "a"), {Data: []byte("junk")}, wordMessage(t, "b")},
		final:    context.Canceled,
	}
	w := NewWordRequestWorker(rec, sub, "dictionary.word-requested", nil, nil)

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, "dictionary.word-requested", sub.channel)
	require.Len(t, sub.errs, 3)
	assert.NoError(t, sub.errs[0])
	assert.NoError(t, sub.errs[1])
	assert.Error(t, sub.errs[2])
}

func TestRunReturnsSubscribeError(t *testing.T) {
	sub := &fakeSubscriber{final: errors.New("connection refused")}
	w := NewWordRequestWorker(new(MockRecorder), sub, "words", nil, nil)

	assert.EqualError(t, w.Run(context.Background()), "connection refused")
}
