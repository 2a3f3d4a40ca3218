// Package worker consumes word request events and feeds the dictionary
// request counters.
package worker

import (
	"context"
	"errors"

	"github.com/asltutor/apiserver/internal/logging"
	"github.com/asltutor/apiserver/internal/metrics"
	"github.com/asltutor/apiserver/internal/mq"
	"github.com/asltutor/apiserver/internal/services"
	"go.uber.org/zap"
)

// Word request results reported to metrics.
const (
	ResultRecorded = "recorded"
	ResultDropped  = "dropped"
	ResultFailed   = "failed"
)

// Recorder counts word requests.
type Recorder interface {
	RecordRequest(ctx context.Context, word string) error
}

// Subscriber delivers messages of a channel to a handler until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler mq.Handler) error
}

// WordRequestWorker records every WordRequested message it receives.
// Messages that can never succeed are acknowledged and dropped; store
// failures are returned so the broker redelivers.
type WordRequestWorker struct {
	recorder   Recorder
	subscriber Subscriber
	channel    string
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

func NewWordRequestWorker(
	recorder Recorder,
	subscriber Subscriber,
	channel string,
	logger *logging.Logger,
	m *metrics.Metrics,
) *WordRequestWorker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &WordRequestWorker{
		recorder:   recorder,
		subscriber: subscriber,
		channel:    channel,
		logger:     logger,
		metrics:    m,
	}
}

// Run blocks consuming the channel until ctx is cancelled.
func (w *WordRequestWorker) Run(ctx context.Context) error {
	ctx = logging.ContextWithLogger(ctx, w.logger)
	w.logger.Info(ctx, "word request worker started", zap.String("channel", w.channel))

	err := w.subscriber.Subscribe(ctx, w.channel, w.Handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Handle processes a single message.
func (w *WordRequestWorker) Handle(ctx context.Context, msg mq.Message) error {
	evt, err := mq.DecodeWordRequested(msg)
	if err != nil {
		w.logger.Warn(ctx, "dropping malformed word request",
			zap.String("message_id", msg.ID),
			zap.ByteString("payload", msg.Data),
			zap.Error(err),
		)
		w.metrics.ObserveWordRequest(ResultDropped)
		return nil
	}

	if err := w.recorder.RecordRequest(ctx, evt.Word); err != nil {
		if errors.Is(err, services.ErrInvalidWord) {
			w.metrics.ObserveWordRequest(ResultDropped)
			return nil
		}
		w.logger.Error(ctx, "failed to record word request",
			zap.String("message_id", msg.ID),
			zap.String("word", evt.Word),
			zap.Error(err),
		)
		w.metrics.ObserveWordRequest(ResultFailed)
		return err
	}

	w.logger.Debug(ctx, "word request recorded", zap.String("word", evt.Word))
	w.metrics.ObserveWordRequest(ResultRecorded)
	return nil
}
