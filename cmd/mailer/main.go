package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"skillshare/internal/config"
	"skillshare/internal/email"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// mailer consume los eventos de verificación publicados por la API cuando
// MAIL_TRANSPORT=kafka y los entrega por SMTP.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadMailConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatal("kafka brokers not configured")
	}
	if cfg.SMTPHost == "" {
		logger.Fatal("smtp host not configured")
	}

	sender, err := email.NewSMTPSender(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
		cfg.MailFrom, cfg.MailFromName, cfg.SMTPUseTLS,
		email.NewRenderer(cfg.AppName),
	)
	if err != nil {
		logger.Fatal("smtp sender init failed", zap.Error(err))
	}

	consumer := email.NewKafkaConsumer(logger, email.KafkaOptions{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		Username: cfg.KafkaUsername,
		Password: cfg.KafkaPassword,
	}, sender)
	defer consumer.Close()

	logger.Info("mailer started", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	if err := consumer.Run(ctx); err != nil {
		logger.Fatal("mailer stopped", zap.Error(err))
	}
	logger.Info("mailer stopped")
}
