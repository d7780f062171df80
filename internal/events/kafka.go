package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultQueueSize    = 1024
	defaultBatchSize    = 100
	defaultBatchTimeout = 10 * time.Millisecond
	defaultWriteTimeout = 10 * time.Second
)

var (
	// ErrQueueFull indicates the publisher dropped an event because delivery is behind.
	ErrQueueFull = errors.New("event queue full")
	// ErrPublisherClosed indicates Publish was called after Close.
	ErrPublisherClosed = errors.New("event publisher closed")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues lifecycle events and writes them to a single topic
// from one background goroutine, keyed by user ID so one user's events stay
// ordered within a partition. Publish never waits on the broker.
type KafkaPublisher struct {
	brokers      []string
	topic        string
	writeTimeout time.Duration
	logger       *slog.Logger

	queue chan kafka.Message
	done  chan struct{}

	sendMu sync.RWMutex
	closed bool

	mu     sync.Mutex
	writer messageWriter
}

// NewKafkaPublisher creates a KafkaPublisher and starts its delivery loop.
// The writer is created on first delivery.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, errors.New("kafka publisher requires a topic")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &KafkaPublisher{
		brokers:      brokers,
		topic:        topic,
		writeTimeout: defaultWriteTimeout,
		logger:       logger,
		queue:        make(chan kafka.Message, defaultQueueSize),
		done:         make(chan struct{}),
	}
	go p.run()
	return p, nil
}

// Publish encodes the event as JSON and queues it for delivery.
func (p *KafkaPublisher) Publish(_ context.Context, event LifecycleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Time:  occurred.UTC(),
	}

	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)

	for msg := range p.queue {
		batch := []kafka.Message{msg}
	drain:
		for len(batch) < defaultBatchSize {
			select {
			case next, ok := <-p.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		p.deliver(batch)
	}
}

func (p *KafkaPublisher) deliver(batch []kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	if err := p.writerOrInit().WriteMessages(ctx, batch...); err != nil {
		p.logger.Warn("event delivery failed", "topic", p.topic, "count", len(batch), "error", err)
		return
	}
	p.logger.Debug("events published", "topic", p.topic, "count", len(batch))
}

func (p *KafkaPublisher) writerOrInit() messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(p.brokers...),
			Topic:        p.topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			BatchSize:    defaultBatchSize,
			BatchTimeout: defaultBatchTimeout,
		}
	}
	return p.writer
}

// Close stops accepting events, delivers what is queued, and releases the writer.
func (p *KafkaPublisher) Close() error {
	p.sendMu.Lock()
	if p.closed {
		p.sendMu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.sendMu.Unlock()

	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}
