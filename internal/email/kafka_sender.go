package email

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publica el correo de verificación como evento para cmd/mailer.
// Se considera enviado cuando todas las réplicas confirman la escritura.
type KafkaSender struct {
	writer  messageWriter
	timeout time.Duration
}

// KafkaOptions agrupa la conexión al broker compartida por productor y consumidor.
type KafkaOptions struct {
	Brokers  []string
	Topic    string
	GroupID  string
	Username string
	Password string
}

func NewKafkaSender(opts KafkaOptions) (*KafkaSender, error) {
	if len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if strings.TrimSpace(opts.Topic) == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(opts.Brokers...),
		Topic:        opts.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: 10 * time.Second,
	}
	if opts.Username != "" {
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: opts.Username, Password: opts.Password},
			TLS:  &tls.Config{},
		}
	}
	return &KafkaSender{writer: writer, timeout: 5 * time.Second}, nil
}

func (s *KafkaSender) SendVerificationCode(ctx context.Context, msg VerificationMessage) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("to email is required")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strings.ToLower(msg.To)),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
