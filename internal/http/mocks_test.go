package http

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"skillshare/internal/domain"
	"skillshare/internal/email"
	"skillshare/internal/repository"
)

type mockUserRepo struct {
	usersByID       map[string]domain.User
	usersByEmail    map[string]string
	usersByUsername map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:       make(map[string]domain.User),
		usersByEmail:    make(map[string]string),
		usersByUsername: make(map[string]string),
	}
}

func (m *mockUserRepo) put(user domain.User) {
	if prev, ok := m.usersByID[user.ID]; ok {
		delete(m.usersByUsername, prev.Username)
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	m.usersByUsername[user.Username] = user.ID
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	id, ok := m.usersByUsername[username]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) UpsertPending(_ context.Context, user domain.User) (domain.User, error) {
	if id, ok := m.usersByUsername[user.Username]; ok && m.usersByID[id].Email != user.Email {
		return domain.User{}, repository.ErrUsernameConflict
	}
	if id, ok := m.usersByEmail[user.Email]; ok {
		existing := m.usersByID[id]
		if existing.IsVerified {
			return domain.User{}, repository.ErrEmailVerified
		}
		existing.Username = user.Username
		existing.PasswordHash = user.PasswordHash
		existing.VerifyCode = user.VerifyCode
		existing.VerifyCodeExpiry = user.VerifyCodeExpiry
		existing.UpdatedAt = user.UpdatedAt
		m.put(existing)
		return existing, nil
	}
	m.put(user)
	return user, nil
}

func (m *mockUserRepo) MarkVerified(_ context.Context, id string, at time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.IsVerified = true
	user.UpdatedAt = at
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateBio(_ context.Context, id, bio string, at time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Bio = bio
	user.UpdatedAt = at
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateStatus(_ context.Context, id string, status bool, at time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Status = status
	user.LastSeen = &at
	m.usersByID[id] = user
	return nil
}

type mockSkillRepo struct {
	byName map[string]domain.Skill
	links  []domain.UserSkill
}

func newMockSkillRepo() *mockSkillRepo {
	return &mockSkillRepo{byName: make(map[string]domain.Skill)}
}

func (m *mockSkillRepo) UpsertByName(_ context.Context, skill domain.Skill) (domain.Skill, error) {
	if existing, ok := m.byName[skill.Name]; ok {
		return existing, nil
	}
	m.byName[skill.Name] = skill
	return skill, nil
}

func (m *mockSkillRepo) LinkUser(_ context.Context, link domain.UserSkill) (domain.UserSkill, error) {
	for _, l := range m.links {
		if l.UserID == link.UserID && l.SkillID == link.SkillID {
			return l, nil
		}
	}
	m.links = append(m.links, link)
	return link, nil
}

func (m *mockSkillRepo) ListNamesByUser(_ context.Context, userID string) ([]string, error) {
	names := make([]string, 0)
	for _, l := range m.links {
		if l.UserID != userID {
			continue
		}
		for name, s := range m.byName {
			if s.ID == l.SkillID {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func (m *mockSkillRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	names, _ := m.ListNamesByUser(ctx, userID)
	return len(names), nil
}

func (m *mockSkillRepo) Featured(_ context.Context, _ string, limit int) ([]domain.SkillSummary, error) {
	out := make([]domain.SkillSummary, 0)
	for name, s := range m.byName {
		if len(out) == limit {
			break
		}
		out = append(out, domain.SkillSummary{ID: s.ID, Name: name})
	}
	return out, nil
}

type mockEmailSender struct {
	lastTo   string
	lastCode string
	err      error
}

func (m *mockEmailSender) SendVerificationCode(_ context.Context, msg email.VerificationMessage) error {
	m.lastTo = msg.To
	m.lastCode = msg.Code
	return m.err
}

type mockLimiter struct {
	allow bool
	err   error
}

func (m *mockLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return m.allow, m.err
}
