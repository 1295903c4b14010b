package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"skillshare/internal/domain"
)

type mockSkillRepo struct {
	skillsByName map[string]domain.Skill
	links        map[string]map[string]domain.UserSkill
	order        map[string][]string
}

func newMockSkillRepo() *mockSkillRepo {
	return &mockSkillRepo{
		skillsByName: make(map[string]domain.Skill),
		links:        make(map[string]map[string]domain.UserSkill),
		order:        make(map[string][]string),
	}
}

func (m *mockSkillRepo) UpsertByName(_ context.Context, skill domain.Skill) (domain.Skill, error) {
	if existing, ok := m.skillsByName[skill.Name]; ok {
		return existing, nil
	}
	m.skillsByName[skill.Name] = skill
	return skill, nil
}

func (m *mockSkillRepo) LinkUser(_ context.Context, link domain.UserSkill) (domain.UserSkill, error) {
	if m.links[link.UserID] == nil {
		m.links[link.UserID] = make(map[string]domain.UserSkill)
	}
	if existing, ok := m.links[link.UserID][link.SkillID]; ok {
		return existing, nil
	}
	m.links[link.UserID][link.SkillID] = link
	m.order[link.UserID] = append(m.order[link.UserID], link.SkillID)
	return link, nil
}

func (m *mockSkillRepo) skillName(id string) string {
	for name, s := range m.skillsByName {
		if s.ID == id {
			return name
		}
	}
	return ""
}

func (m *mockSkillRepo) ListNamesByUser(_ context.Context, userID string) ([]string, error) {
	names := make([]string, 0)
	for _, id := range m.order[userID] {
		names = append(names, m.skillName(id))
	}
	return names, nil
}

func (m *mockSkillRepo) CountByUser(_ context.Context, userID string) (int, error) {
	return len(m.links[userID]), nil
}

func (m *mockSkillRepo) Featured(_ context.Context, query string, limit int) ([]domain.SkillSummary, error) {
	out := make([]domain.SkillSummary, 0)
	for name, s := range m.skillsByName {
		if query != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(query)) {
			continue
		}
		count := 0
		for _, links := range m.links {
			if _, ok := links[s.ID]; ok {
				count++
			}
		}
		out = append(out, domain.SkillSummary{ID: s.ID, Name: name, UsersCount: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsersCount != out[j].UsersCount {
			return out[i].UsersCount > out[j].UsersCount
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubIdentity struct {
	userID string
}

func (s stubIdentity) CurrentUserID(_ context.Context) (string, bool) {
	return s.userID, s.userID != ""
}

func newTestProfileService(userID string) (*ProfileService, *mockUserRepo, *mockSkillRepo) {
	users := newMockUserRepo()
	users.put(domain.User{ID: "u1", Username: "alice", Email: "alice@x.com", IsVerified: true})
	users.put(domain.User{ID: "u2", Username: "bob", Email: "bob@x.com", IsVerified: true})
	skills := newMockSkillRepo()
	svc := NewProfileService(zap.NewNop(), users, skills, stubIdentity{userID: userID})
	svc.now = func() time.Time { return fixedNow }
	return svc, users, skills
}

func TestProfileServiceRequiresIdentity(t *testing.T) {
	svc, users, _ := newTestProfileService("")
	ctx := context.Background()

	_, err := svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.UpdateBio(ctx, "hi")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.AddSkill(ctx, "Go")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.ListSkills(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, svc.SetStatus(ctx, true), ErrUnauthenticated)
	assert.Zero(t, users.writes)
}

func TestProfileServiceUpdateBio(t *testing.T) {
	svc, _, _ := newTestProfileService("u1")

	user, err := svc.UpdateBio(context.Background(), "  I teach guitar  ")
	require.NoError(t, err)
	assert.Equal(t, "I teach guitar", user.Bio)

	_, err = svc.UpdateBio(context.Background(), strings.Repeat("a", 501))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Fields["bio"])
}

func TestProfileServiceAddSkillDeduplicates(t *testing.T) {
	svc, _, skills := newTestProfileService("u1")
	ctx := context.Background()

	first, err := svc.AddSkill(ctx, "  Rock   Climbing ")
	require.NoError(t, err)
	second, err := svc.AddSkill(ctx, "Rock Climbing")
	require.NoError(t, err)
	assert.Equal(t, first.SkillID, second.SkillID)

	_, err = svc.AddSkill(ctx, "Go")
	require.NoError(t, err)

	names, err := svc.ListSkills(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rock Climbing", "Go"}, names)
	assert.Len(t, skills.skillsByName, 2)

	_, err = svc.AddSkill(ctx, "   ")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestProfileServiceSetStatus(t *testing.T) {
	svc, users, _ := newTestProfileService("u1")

	require.NoError(t, svc.SetStatus(context.Background(), true))
	stored, _ := users.GetByID(context.Background(), "u1")
	assert.True(t, stored.Status)
	require.NotNil(t, stored.LastSeen)
	assert.True(t, stored.LastSeen.Equal(fixedNow))

	missing, _, _ := newTestProfileService("ghost")
	assert.ErrorIs(t, missing.SetStatus(context.Background(), false), ErrUserNotFound)
}

func TestProfileServiceCurrentUserAndFeatured(t *testing.T) {
	svc, users, skills := newTestProfileService("u1")
	ctx := context.Background()
	_, err := svc.AddSkill(ctx, "Go")
	require.NoError(t, err)
	_, err = svc.AddSkill(ctx, "Guitar")
	require.NoError(t, err)

	bob := NewProfileService(zap.NewNop(), users, skills, stubIdentity{userID: "u2"})
	_, err = bob.AddSkill(ctx, "Go")
	require.NoError(t, err)

	overview, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", overview.Username)
	assert.Equal(t, 2, overview.SkillsCount)

	featured, err := svc.FeaturedSkills(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, "Go", featured[0].Name)
	assert.Equal(t, 2, featured[0].UsersCount)

	filtered, err := svc.FeaturedSkills(ctx, "guit", 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Guitar", filtered[0].Name)

	ghost := NewProfileService(zap.NewNop(), users, skills, stubIdentity{userID: "ghost"})
	_, err = ghost.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
