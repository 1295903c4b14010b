package email

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer lee eventos de verificación y los entrega con el Sender configurado.
type Consumer struct {
	logger     *zap.Logger
	reader     messageReader
	sender     Sender
	retryBase  time.Duration
	retryLimit time.Duration
}

func NewKafkaConsumer(logger *zap.Logger, opts KafkaOptions, sender Sender) *Consumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if opts.Username != "" {
		dialer.TLS = &tls.Config{}
		dialer.SASLMechanism = plain.Mechanism{Username: opts.Username, Password: opts.Password}
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  opts.Brokers,
		GroupID:  opts.GroupID,
		Topic:    opts.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})
	return &Consumer{
		logger:     logger,
		reader:     reader,
		sender:     sender,
		retryBase:  time.Second,
		retryLimit: time.Minute,
	}
}

// Run procesa mensajes en orden hasta que ctx se cancela. Un mensaje que no se
// pudo entregar se reintenta con backoff y ningún offset posterior se confirma
// antes que él. Los payloads ilegibles se descartan y se confirman.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		backoff := retry.WithCappedDuration(c.retryLimit, retry.NewExponential(c.retryBase))
		err = retry.Do(ctx, backoff, func(ctx context.Context) error {
			return c.deliver(ctx, msg)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn("commit mail event failed", zap.Error(err), zap.Int64("offset", msg.Offset))
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, msg kafka.Message) error {
	var event VerificationMessage
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("discarding malformed mail event", zap.Error(err), zap.Int64("offset", msg.Offset))
		return nil
	}
	if err := c.sender.SendVerificationCode(ctx, event); err != nil {
		c.logger.Warn("deliver verification email failed, retrying",
			zap.Error(err),
			zap.String("email", event.To),
			zap.Int64("offset", msg.Offset),
		)
		return retry.RetryableError(err)
	}
	c.logger.Info("verification email delivered", zap.String("email", event.To))
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
