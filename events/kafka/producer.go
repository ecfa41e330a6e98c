// Package kafka publishes engine telemetry events (spins, achievements,
// bonus claims) to a Kafka topic. Telemetry is optional: without brokers
// configured the engine simply runs without a producer.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Digital-Creators-Team/slot-machine-core/engine"
)

const defaultWorkerNum = 4

// Producer ships engine events to Kafka via a small worker pool so the
// game loop never blocks on the broker.
type Producer struct {
	writer    *kafka.Writer
	topic     string
	logger    zerolog.Logger
	jobs      chan kafka.Message
	workerNum int
	wg        sync.WaitGroup
}

// ProducerConfig holds configuration for the telemetry producer
type ProducerConfig struct {
	Brokers   []string
	Topic     string
	Logger    zerolog.Logger
	WorkerNum int
}

// NewProducer creates a telemetry producer. Returns nil without error when
// no brokers are configured.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	workerNum := cfg.WorkerNum
	if workerNum <= 0 {
		workerNum = defaultWorkerNum
	}

	p := &Producer{
		writer:    writer,
		topic:     cfg.Topic,
		logger:    cfg.Logger.With().Str("component", "kafka_producer").Logger(),
		jobs:      make(chan kafka.Message, 100),
		workerNum: workerNum,
	}

	for i := 0; i < workerNum; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p, nil
}

func (p *Producer) worker() {
	defer p.wg.Done()
	for msg := range p.jobs {
		func() {
			defer p.recover()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := p.writer.WriteMessages(ctx, msg); err != nil {
				p.logger.Error().
					Err(err).
					Str("key", string(msg.Key)).
					Msg("Failed to publish telemetry event")
			} else {
				p.logger.Debug().
					Str("key", string(msg.Key)).
					Msg("Telemetry event published")
			}
		}()
	}
}

// Publish enqueues an engine event for delivery. Events are keyed by type
// so consumers can partition per event kind. Never blocks: the event is
// dropped with a warning when the queue is full.
func (p *Producer) Publish(ev engine.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to marshal telemetry event")
		return
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(ev.Type),
		Value: data,
		Time:  ev.Timestamp,
	}

	select {
	case p.jobs <- msg:
	default:
		p.logger.Warn().Str("type", string(ev.Type)).Msg("Telemetry queue full, event dropped")
	}
}

// Listener adapts the producer into an engine event listener
func (p *Producer) Listener() engine.Listener {
	return func(ev engine.Event) {
		switch ev.Type {
		case engine.EventSpinStart,
			engine.EventPayoutResolved,
			engine.EventLevelUp,
			engine.EventAchievementUnlocked,
			engine.EventTransferResult:
			p.Publish(ev)
		}
	}
}

// Close drains the queue and closes the writer
func (p *Producer) Close() error {
	close(p.jobs)
	p.wg.Wait()
	if err := p.writer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Error closing telemetry producer")
		return err
	}
	return nil
}

func (p *Producer) recover() {
	if r := recover(); r != nil {
		p.logger.Error().
			Str("panic", fmt.Sprintf("%v", r)).
			Str("stack_trace", string(debug.Stack())).
			Msg("Panic recovered in telemetry worker")
	}
}
