package email

import (
	"context"
	"errors"
	"time"
)

// VerificationMessage son los datos con los que se renderiza el correo de verificación.
type VerificationMessage struct {
	To        string    `json:"to"`
	Username  string    `json:"username"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Sender define la interfaz para envio de correos de verificacion.
// El envío es síncrono y sin reintentos: cualquier fallo se devuelve al llamador.
type Sender interface {
	SendVerificationCode(ctx context.Context, msg VerificationMessage) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationCode(_ context.Context, _ VerificationMessage) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
