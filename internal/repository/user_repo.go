package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillshare/internal/domain"
)

var (
	// ErrEmailVerified indica que el email pertenece a una cuenta ya verificada.
	ErrEmailVerified = errors.New("email belongs to a verified account")
	// ErrUsernameConflict indica que el username pertenece a otra cuenta.
	ErrUsernameConflict = errors.New("username belongs to another account")
)

const (
	pgUniqueViolation  = "23505"
	usernameConstraint = "users_username_key"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// UpsertPending crea la cuenta o sobrescribe una pendiente con el mismo
	// email en una sola sentencia. Devuelve ErrEmailVerified si el email ya
	// está verificado y ErrUsernameConflict si el username está ocupado.
	UpsertPending(ctx context.Context, user domain.User) (domain.User, error)
	MarkVerified(ctx context.Context, id string, at time.Time) error
	UpdateBio(ctx context.Context, id, bio string, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status bool, at time.Time) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `
	id, username, email, password_hash, bio, status, last_seen,
	is_verified, is_accepting_messages, verify_code, verify_code_expiry,
	created_at, updated_at
`

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PgUserRepository) UpsertPending(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
		INSERT INTO users (
			id, username, email, password_hash, is_verified, is_accepting_messages,
			verify_code, verify_code_expiry, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, FALSE, TRUE, $5, $6, $7, $7)
		ON CONFLICT (email) DO UPDATE SET
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			is_verified = FALSE,
			is_accepting_messages = TRUE,
			verify_code = EXCLUDED.verify_code,
			verify_code_expiry = EXCLUDED.verify_code_expiry,
			updated_at = EXCLUDED.updated_at
		WHERE users.is_verified = FALSE
		RETURNING ` + userColumns
	row := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullableString(user.VerifyCode),
		user.VerifyCodeExpiry,
		user.CreatedAt,
	)
	stored, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// ON CONFLICT ... WHERE no devuelve filas cuando la cuenta ya está verificada.
			return domain.User{}, ErrEmailVerified
		}
		if isUniqueViolation(err, usernameConstraint) {
			return domain.User{}, ErrUsernameConflict
		}
		return domain.User{}, err
	}
	return stored, nil
}

func (r *PgUserRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE users
		SET is_verified = TRUE, updated_at = $2
		WHERE id = $1 AND is_verified = FALSE
	`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *PgUserRepository) UpdateBio(ctx context.Context, id, bio string, at time.Time) error {
	const query = `UPDATE users SET bio = $2, updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, bio, at)
}

func (r *PgUserRepository) UpdateStatus(ctx context.Context, id string, status bool, at time.Time) error {
	const query = `UPDATE users SET status = $2, last_seen = $3, updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, status, at)
}

func (r *PgUserRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) getOne(ctx context.Context, query string, arg string) (domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, query, arg))
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u    domain.User
		code *string
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Bio,
		&u.Status,
		&u.LastSeen,
		&u.IsVerified,
		&u.IsAcceptingMessages,
		&code,
		&u.VerifyCodeExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if code != nil {
		u.VerifyCode = *code
	}
	return u, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}
