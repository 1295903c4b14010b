package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort             string  `env:"HTTP_PORT" envDefault:"8080"`
	HTTPRateLimitPerSec  float64 `env:"HTTP_RATE_LIMIT_PER_SECOND" envDefault:"5"`
	HTTPTrustProxy       bool    `env:"HTTP_TRUST_PROXY_HEADERS" envDefault:"false"`
	DatabaseURL          string  `env:"DATABASE_URL,required,notEmpty"`
	VerifyCodeTTLMinutes int     `env:"VERIFY_CODE_TTL_MINUTES" envDefault:"10"`
	CodeRateLimitMax     int     `env:"CODE_RATE_LIMIT_MAX" envDefault:"3"`
	CodeRateLimitMinutes int     `env:"CODE_RATE_LIMIT_WINDOW_MINUTES" envDefault:"10"`

	MailConfig

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`
}

// MailConfig agrupa el transporte de correo; el binario mailer solo carga esta parte.
type MailConfig struct {
	AppName       string `env:"APP_NAME" envDefault:"SkillShare"`
	MailTransport string `env:"MAIL_TRANSPORT" envDefault:"smtp"`
	MailFrom      string `env:"MAIL_FROM"`
	MailFromName  string `env:"MAIL_FROM_NAME" envDefault:"SkillShare"`
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser      string `env:"SMTP_USER"`
	SMTPPass      string `env:"SMTP_PASS"`
	SMTPUseTLS    bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic    string   `env:"KAFKA_MAIL_TOPIC" envDefault:"mail.verification"`
	KafkaGroupID  string   `env:"KAFKA_GROUP_ID" envDefault:"skillshare-mailer"`
	KafkaUsername string   `env:"KAFKA_USERNAME"`
	KafkaPassword string   `env:"KAFKA_PASSWORD"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// VerifyCodeTTL devuelve la ventana de validez de los códigos de verificación.
func (c *Config) VerifyCodeTTL() time.Duration {
	if c.VerifyCodeTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.VerifyCodeTTLMinutes) * time.Minute
}

// CodeRateLimitWindow devuelve la ventana del limitador de emisión de códigos.
func (c *Config) CodeRateLimitWindow() time.Duration {
	if c.CodeRateLimitMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.CodeRateLimitMinutes) * time.Minute
}

// LoadMailConfig carga solo la configuración de correo y Kafka.
func LoadMailConfig() (*MailConfig, error) {
	var cfg MailConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
