package kafka_middleware

import (
	"context"
	"time"

	"eventrooms/pkg/kafka"
	"eventrooms/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"message_id", msg.MessageID(),
			"message_type", msg.MessageType(),
			"duration", time.Since(start),
		}
		if err != nil {
			attrs = append(attrs, "error_type", kafka.ClassifyError(err).String(), "error", err)
			log.Error("Failed to publish message", attrs...)
			return err
		}

		log.Debug("Published message", attrs...)
		return nil
	}
}
