package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/wintercup/portal/internal/domain"
)

// Publisher writes a keyed message to a topic (infra.KafkaProducer).
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// ProducerSink forwards bus events to a Publisher from a background goroutine,
// so a slow broker never stalls the caller that published the event.
type ProducerSink struct {
	publisher Publisher
	topic     string
	queue     chan domain.Event
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewProducerSink creates a sink writing to topic with a bounded queue.
func NewProducerSink(publisher Publisher, topic string, queueSize int, logger *slog.Logger) *ProducerSink {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &ProducerSink{
		publisher: publisher,
		topic:     topic,
		queue:     make(chan domain.Event, queueSize),
		logger:    logger,
	}
}

// Start drains the queue until ctx is cancelled or Stop is called.
func (s *ProducerSink) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-s.queue:
				if !ok {
					return
				}
				s.write(ctx, e)
			}
		}
	}()
}

func (s *ProducerSink) write(ctx context.Context, e domain.Event) {
	value, err := json.Marshal(e)
	if err != nil {
		s.logger.Error("event marshal failed", "type", e.Type, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, s.topic, []byte(e.Topic), value); err != nil {
		s.logger.Error("event publish failed", "type", e.Type, "topic", e.Topic, "error", err)
	}
}

// Forward enqueues e; a full queue drops it.
func (s *ProducerSink) Forward(e domain.Event) {
	select {
	case s.queue <- e:
	default:
		s.logger.Warn("event sink queue full, dropping event", "type", e.Type)
	}
}

// Stop closes the queue and waits for the drain goroutine to exit.
func (s *ProducerSink) Stop() {
	close(s.queue)
	s.wg.Wait()
}
