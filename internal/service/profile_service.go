package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"skillshare/internal/domain"
	"skillshare/internal/repository"
)

const (
	maxBioLength      = 500
	maxSkillLength    = 50
	defaultFeatured   = 12
	maxFeaturedLimit  = 50
	maxFeaturedSearch = 100
)

// ProfileService aplica las mutaciones de perfil del usuario autenticado y
// expone las lecturas del dashboard.
type ProfileService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	skills   repository.SkillRepository
	identity Identity
	now      func() time.Time
}

func NewProfileService(logger *zap.Logger, users repository.UserRepository, skills repository.SkillRepository, identity Identity) *ProfileService {
	if identity == nil {
		identity = ContextIdentity{}
	}
	return &ProfileService{
		logger:   logger,
		users:    users,
		skills:   skills,
		identity: identity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProfileService) currentUserID(ctx context.Context) (string, error) {
	id, ok := s.identity.CurrentUserID(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return id, nil
}

// CurrentUser devuelve la proyección del usuario para el dashboard.
func (s *ProfileService) CurrentUser(ctx context.Context) (domain.UserOverview, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return domain.UserOverview{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserOverview{}, ErrUserNotFound
		}
		return domain.UserOverview{}, err
	}
	count, err := s.skills.CountByUser(ctx, userID)
	if err != nil {
		return domain.UserOverview{}, err
	}
	return domain.UserOverview{User: user, SkillsCount: count}, nil
}

func (s *ProfileService) UpdateBio(ctx context.Context, bio string) (domain.User, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return domain.User{}, err
	}
	bio = strings.TrimSpace(bio)
	if len([]rune(bio)) > maxBioLength {
		return domain.User{}, newValidationError("bio", "Bio must be at most 500 characters")
	}

	if err := s.users.UpdateBio(ctx, userID, bio, s.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// AddSkill crea la habilidad si no existe y la vincula al usuario sin duplicar.
func (s *ProfileService) AddSkill(ctx context.Context, name string) (domain.UserSkill, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return domain.UserSkill{}, err
	}
	name = normalizeSkillName(name)
	if name == "" {
		return domain.UserSkill{}, newValidationError("name", "Skill name is required")
	}
	if len([]rune(name)) > maxSkillLength {
		return domain.UserSkill{}, newValidationError("name", "Skill name must be at most 50 characters")
	}

	now := s.now()
	skill, err := s.skills.UpsertByName(ctx, domain.Skill{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
	})
	if err != nil {
		return domain.UserSkill{}, err
	}
	link, err := s.skills.LinkUser(ctx, domain.UserSkill{
		UserID:    userID,
		SkillID:   skill.ID,
		CreatedAt: now,
	})
	if err != nil {
		return domain.UserSkill{}, err
	}
	if s.logger != nil {
		s.logger.Info("skill added", zap.String("user_id", userID), zap.String("skill", skill.Name))
	}
	return link, nil
}

func (s *ProfileService) ListSkills(ctx context.Context) ([]string, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.skills.ListNamesByUser(ctx, userID)
}

// SetStatus marca al usuario como conectado o no y actualiza last_seen.
func (s *ProfileService) SetStatus(ctx context.Context, online bool) error {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return err
	}
	if err := s.users.UpdateStatus(ctx, userID, online, s.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *ProfileService) FeaturedSkills(ctx context.Context, query string, limit int) ([]domain.SkillSummary, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) > maxFeaturedSearch {
		return nil, newValidationError("q", "Search must be at most 100 characters")
	}
	if limit <= 0 {
		limit = defaultFeatured
	}
	if limit > maxFeaturedLimit {
		limit = maxFeaturedLimit
	}
	return s.skills.Featured(ctx, query, limit)
}

func normalizeSkillName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
