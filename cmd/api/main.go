package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"skillshare/internal/config"
	"skillshare/internal/db"
	"skillshare/internal/email"
	apihttp "skillshare/internal/http"
	"skillshare/internal/repository"
	"skillshare/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	skillRepo := repository.NewPgSkillRepository(pool)

	emailSender, closeSender := newEmailSender(cfg.MailConfig, logger)
	if closeSender != nil {
		defer closeSender.Close()
	}

	var (
		codeLimiter service.CodeRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			codeLimiter = service.NewRedisCodeRateLimiter(redisClient, cfg.CodeRateLimitWindow(), cfg.CodeRateLimitMax)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	if codeLimiter == nil {
		codeLimiter = service.NewCodeRateLimiter(cfg.CodeRateLimitWindow(), cfg.CodeRateLimitMax)
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, emailSender, codeLimiter, cfg.VerifyCodeTTL())
	profileSvc := service.NewProfileService(logger, userRepo, skillRepo, service.ContextIdentity{})
	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	profileHandler := apihttp.NewProfileHandler(logger, profileSvc)
	router := apihttp.NewRouter(logger, userHandler, profileHandler, jwtSvc, apihttp.NewIPLimiter(cfg.HTTPRateLimitPerSec, cfg.HTTPTrustProxy))

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("mail_transport", cfg.MailTransport))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newEmailSender elige el transporte de correo según MAIL_TRANSPORT.
// Si el transporte elegido no está configurado queda un sender deshabilitado
// y los registros responden con error de entrega.
func newEmailSender(cfg config.MailConfig, logger *zap.Logger) (email.Sender, io.Closer) {
	switch cfg.MailTransport {
	case "kafka":
		sender, err := email.NewKafkaSender(email.KafkaOptions{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		})
		if err != nil {
			logger.Warn("kafka sender init failed", zap.Error(err))
			return email.NewDisabledSender("email sender not configured"), nil
		}
		return sender, sender
	case "smtp":
		if cfg.SMTPHost == "" {
			break
		}
		sender, err := email.NewSMTPSender(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
			cfg.MailFrom, cfg.MailFromName, cfg.SMTPUseTLS,
			email.NewRenderer(cfg.AppName),
		)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
			break
		}
		return sender, nil
	default:
		logger.Warn("unknown mail transport", zap.String("transport", cfg.MailTransport))
	}
	return email.NewDisabledSender("email sender not configured"), nil
}
