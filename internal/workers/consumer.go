package workers

import (
	"context"

	"github.com/benvon/cinemate/internal/queue"
	"go.uber.org/zap"
)

// MessageProcessor handles one consumed message, including its acknowledgement
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, msg queue.MessageInterface) error
}

// Run drains msgs and errs until ctx is cancelled or msgs is closed
func Run(ctx context.Context, p MessageProcessor, msgs <-chan *queue.Message, errs <-chan error, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("message_channel_closed")
				return
			}
			if err := p.ProcessMessage(ctx, msg); err != nil {
				fields := []zap.Field{zap.Error(err)}
				if ev := msg.GetEvent(); ev != nil {
					fields = append(fields,
						zap.String("event_id", ev.ID.String()),
						zap.String("event_type", string(ev.Type)),
					)
				}
				logger.Error("event_processing_failed", fields...)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Error("queue_error", zap.Error(err))
		}
	}
}
