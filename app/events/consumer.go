package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
	"github.com/vibast-solutions/ms-go-invoicing/app/factory"
	"github.com/vibast-solutions/ms-go-invoicing/app/service"
	"github.com/vibast-solutions/ms-go-invoicing/config"
)

const (
	requestIDHeader       = "x-request-id"
	defaultHandleTimeout  = 60 * time.Second
	defaultFetchRetryWait = time.Second
)

// PaymentStatusEvent is published by the membership site whenever a
// payment changes status.
type PaymentStatusEvent struct {
	PaymentID uint64 `json:"payment_id"`
	Status    string `json:"status"`
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type paymentProcessor interface {
	ProcessPaymentCompleted(ctx context.Context, paymentID uint64) (*service.InvoiceState, error)
}

// Consumer feeds completed payments from the status topic into the invoice
// workflow. Every message is committed once handled, whatever the outcome.
type Consumer struct {
	reader         messageReader
	processor      paymentProcessor
	handleTimeout  time.Duration
	fetchRetryWait time.Duration
	logger         logrus.FieldLogger
}

func NewConsumer(cfg config.KafkaConfig, processor paymentProcessor) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, processor)
}

func newConsumer(reader messageReader, processor paymentProcessor) *Consumer {
	return &Consumer{
		reader:         reader,
		processor:      processor,
		handleTimeout:  defaultHandleTimeout,
		fetchRetryWait: defaultFetchRetryWait,
		logger:         factory.NewModuleLogger("payment-events"),
	}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("Payment status consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Payment status consumer stopped")
				return nil
			}
			c.logger.WithError(err).Warn("Fetch payment status message failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.fetchRetryWait):
			}
			continue
		}

		c.Handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.WithError(err).WithField("offset", msg.Offset).Error("Commit payment status message failed")
		}
	}
}

// Handle processes one message. Failures are logged and never retried.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) {
	logger := factory.LoggerWithRequestID(c.logger, messageRequestID(msg)).WithFields(logrus.Fields{
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event PaymentStatusEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.WithError(err).Warn("Discarding malformed payment status message")
		return
	}
	if !strings.EqualFold(strings.TrimSpace(event.Status), entity.PaymentStatusComplete) {
		logger.WithField("status", event.Status).Debug("Ignoring payment status")
		return
	}
	if event.PaymentID == 0 {
		logger.Warn("Discarding payment status message without payment id")
		return
	}

	handleCtx, cancel := context.WithTimeout(ctx, c.handleTimeout)
	defer cancel()

	logger = logger.WithField("payment_id", event.PaymentID)
	state, err := c.processor.ProcessPaymentCompleted(handleCtx, event.PaymentID)
	if err != nil {
		logger.WithError(err).Error("Completed payment processing failed")
		return
	}
	logger.WithField("stage", state.Stage()).Info("Completed payment processed")
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func messageRequestID(msg kafka.Message) string {
	for _, header := range msg.Headers {
		if strings.EqualFold(header.Key, requestIDHeader) {
			if value := strings.TrimSpace(string(header.Value)); value != "" {
				return value
			}
		}
	}
	return uuid.NewString()
}
