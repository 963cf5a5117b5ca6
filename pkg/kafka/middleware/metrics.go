package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"eventrooms/pkg/kafka"
)

// PublishMetrics counts publish outcomes. It is safe for concurrent use.
type PublishMetrics struct {
	published atomic.Int64
	failed    atomic.Int64
	durations atomic.Int64 // nanoseconds
}

type PublishSnapshot struct {
	Published       int64
	Failed          int64
	AverageDuration time.Duration
}

func (m *PublishMetrics) Snapshot() PublishSnapshot {
	published := m.published.Load()
	failed := m.failed.Load()

	var avg time.Duration
	if total := published + failed; total > 0 {
		avg = time.Duration(m.durations.Load() / total)
	}

	return PublishSnapshot{
		Published:       published,
		Failed:          failed,
		AverageDuration: avg,
	}
}

func MetricsProducerMiddleware(m *PublishMetrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.durations.Add(int64(time.Since(start)))

		if err != nil {
			m.failed.Add(1)
		} else {
			m.published.Add(1)
		}
		return err
	}
}
