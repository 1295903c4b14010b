package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"skillshare/internal/domain"
	"skillshare/internal/email"
	"skillshare/internal/repository"
)

const (
	MsgRegistered             = "User registered successfully. Please verify your account."
	MsgVerificationSuccessful = "Verification Successful"
	MsgVerificationFailed     = "Verification Unsuccessful"
	MsgVerificationExpired    = "Verification code expired"
)

// UserService coordina registro, verificación e inicio de sesión.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
	codeLimiter CodeRateLimiter
	codeTTL     time.Duration

	now          func() time.Time
	newCode      func() (string, error)
	hashPassword func(password string) (string, error)
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender, codeLimiter CodeRateLimiter, codeTTL time.Duration) *UserService {
	if codeTTL <= 0 {
		codeTTL = defaultCodeTTL
	}
	if codeLimiter == nil {
		codeLimiter = NewCodeRateLimiter(codeTTL, 3)
	}
	return &UserService{
		logger:       logger,
		users:        users,
		emailSender:  emailSender,
		codeLimiter:  codeLimiter,
		codeTTL:      codeTTL,
		now:          func() time.Time { return time.Now().UTC() },
		newCode:      generateVerificationCode,
		hashPassword: hashPassword,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=2,max=20,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type RegisterResult struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// RedeemResult es el resultado de canjear un código. Un código incorrecto o
// vencido no es un error: Success queda en false con un mensaje visible.
type RedeemResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register crea la cuenta pendiente (o pisa una pendiente con el mismo email),
// guarda un código nuevo y lo envía por correo.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	if s.users == nil {
		return RegisterResult{}, errors.New("user service not configured")
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return RegisterResult{}, err
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return RegisterResult{}, ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return RegisterResult{}, err
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err == nil && existing.IsVerified {
		return RegisterResult{}, ErrEmailInUse
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return RegisterResult{}, err
	}

	// El cupo se consume solo cuando de verdad se va a emitir un código.
	if s.codeLimiter != nil {
		allowed, err := s.codeLimiter.Allow(ctx, input.Email)
		if err != nil {
			// Si el limitador no responde se deja pasar el registro.
			if s.logger != nil {
				s.logger.Warn("code rate limiter unavailable", zap.Error(err))
			}
		} else if !allowed {
			return RegisterResult{}, ErrRateLimited
		}
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return RegisterResult{}, err
	}
	code, err := s.newCode()
	if err != nil {
		return RegisterResult{}, err
	}
	now := s.now()
	expiresAt := now.Add(s.codeTTL)

	stored, err := s.users.UpsertPending(ctx, domain.User{
		ID:                  uuid.NewString(),
		Username:            input.Username,
		Email:               input.Email,
		PasswordHash:        passwordHash,
		IsAcceptingMessages: true,
		VerifyCode:          code,
		VerifyCodeExpiry:    &expiresAt,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailVerified):
			return RegisterResult{}, ErrEmailInUse
		case errors.Is(err, repository.ErrUsernameConflict):
			return RegisterResult{}, ErrUsernameTaken
		}
		return RegisterResult{}, err
	}

	if s.emailSender == nil {
		return RegisterResult{}, &DeliveryError{Username: stored.Username, Err: errors.New("email sender not configured")}
	}
	err = s.emailSender.SendVerificationCode(ctx, email.VerificationMessage{
		To:        stored.Email,
		Username:  stored.Username,
		Code:      code,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("send verification code failed", zap.Error(err), zap.String("email", stored.Email))
		}
		return RegisterResult{}, &DeliveryError{Username: stored.Username, Err: err}
	}

	return RegisterResult{Username: stored.Username, Message: MsgRegistered}, nil
}

// Redeem compara el código recibido con el guardado para username, que puede
// llegar codificado como segmento de URL.
func (s *UserService) Redeem(ctx context.Context, rawUsername, code string) (RedeemResult, error) {
	if s.users == nil {
		return RedeemResult{}, errors.New("user service not configured")
	}

	username, err := url.PathUnescape(rawUsername)
	if err != nil {
		return RedeemResult{}, newValidationError("username", "Username is malformed")
	}
	username = strings.TrimSpace(username)
	code = strings.TrimSpace(code)
	if username == "" || code == "" {
		verr := &ValidationError{Fields: map[string]string{}}
		if username == "" {
			verr.Fields["username"] = "Username is required"
		}
		if code == "" {
			verr.Fields["code"] = "Code is required"
		}
		return RedeemResult{}, verr
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RedeemResult{}, ErrNotFound
		}
		return RedeemResult{}, err
	}
	if user.VerifyCode == "" {
		return RedeemResult{}, ErrNotFound
	}

	if !codesMatch(code, user.VerifyCode) {
		return RedeemResult{Success: false, Message: MsgVerificationFailed}, nil
	}
	if user.IsVerified {
		return RedeemResult{Success: true, Message: MsgVerificationSuccessful}, nil
	}
	now := s.now()
	if !user.CodeRedeemableAt(now) {
		return RedeemResult{Success: false, Message: MsgVerificationExpired}, nil
	}

	if err := s.users.MarkVerified(ctx, user.ID, now); err != nil {
		return RedeemResult{}, err
	}
	if s.logger != nil {
		s.logger.Info("account verified", zap.String("user_id", user.ID))
	}
	return RedeemResult{Success: true, Message: MsgVerificationSuccessful}, nil
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Authenticate valida credenciales; solo las cuentas verificadas pueden entrar.
func (s *UserService) Authenticate(ctx context.Context, input SignInInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return domain.User{}, err
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return domain.User{}, ErrAccountNotVerified
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
