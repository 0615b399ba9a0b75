package kafka

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/infra/config"
)

const clientID = "event-planner-api"

// Producer owns the sarama async producer that carries account events.
// Delivery failures are logged and mirrored on Errors until Close.
type Producer struct {
	producer sarama.AsyncProducer
	logger   *zap.Logger
	cfg      config.KafkaSettings
	errChan  chan error
	done     chan struct{}
	drained  chan struct{}
	closed   sync.Once
	closeErr error
}

// NewProducer connects to the configured brokers.
func NewProducer(cfg config.KafkaSettings, logger *zap.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("create kafka producer: no brokers configured")
	}

	async, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic_prefix", cfg.TopicPrefix),
	)
	return newProducer(async, cfg, logger), nil
}

// saramaConfig keys messages by user id so events for one account stay ordered on a partition.
func saramaConfig() *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = clientID
	c.Version = sarama.V3_5_0_0

	c.Producer.Partitioner = sarama.NewHashPartitioner
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Idempotent = true
	c.Net.MaxOpenRequests = 1
	c.Producer.Compression = sarama.CompressionSnappy
	c.Producer.Flush.Frequency = 100 * time.Millisecond
	c.Producer.Flush.Messages = 100
	c.Producer.Retry.Max = 5
	c.Producer.Retry.Backoff = 200 * time.Millisecond
	c.Producer.Return.Successes = false
	c.Producer.Return.Errors = true

	c.Metadata.Retry.Max = 3
	c.Metadata.Retry.Backoff = 250 * time.Millisecond
	return c
}

func newProducer(async sarama.AsyncProducer, cfg config.KafkaSettings, logger *zap.Logger) *Producer {
	p := &Producer{
		producer: async,
		logger:   logger,
		cfg:      cfg,
		errChan:  make(chan error, 64),
		done:     make(chan struct{}),
		drained:  make(chan struct{}),
	}
	go p.drainErrors()
	return p
}

func (p *Producer) drainErrors() {
	defer close(p.drained)

	errs := p.producer.Errors()
	for {
		select {
		case perr, ok := <-errs:
			if !ok {
				return
			}
			if perr != nil {
				p.report(perr)
			}
		case <-p.done:
			return
		}
	}
}

func (p *Producer) report(perr *sarama.ProducerError) {
	fields := []zap.Field{zap.Error(perr.Err)}
	if perr.Msg != nil {
		fields = append(fields, zap.String("topic", perr.Msg.Topic))
	}
	p.logger.Error("kafka delivery failed", fields...)

	select {
	case p.errChan <- perr.Err:
	default:
		p.logger.Warn("kafka error channel full, dropping error")
	}
}

// Input is where publishers enqueue messages.
func (p *Producer) Input() chan<- *sarama.ProducerMessage {
	return p.producer.Input()
}

// Errors reports delivery failures. It is closed by Close.
func (p *Producer) Errors() <-chan error {
	return p.errChan
}

// Close flushes buffered messages, then stops error forwarding. Later calls return the first result.
func (p *Producer) Close() error {
	p.closed.Do(func() {
		p.logger.Info("closing kafka producer")
		close(p.done)
		<-p.drained

		if err := p.producer.Close(); err != nil {
			p.closeErr = fmt.Errorf("close kafka producer: %w", err)
		}
		close(p.errChan)
	})
	return p.closeErr
}

// TopicName returns "<prefix>.<eventType>" unless eventType already carries the prefix.
func (p *Producer) TopicName(eventType string) string {
	if p.cfg.TopicPrefix == "" {
		return eventType
	}
	prefix := p.cfg.TopicPrefix + "."
	if strings.HasPrefix(eventType, prefix) {
		return eventType
	}
	return prefix + eventType
}
