package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"skillshare/internal/domain"
)

type SkillRepository interface {
	// UpsertByName devuelve la habilidad existente con ese nombre o la crea.
	UpsertByName(ctx context.Context, skill domain.Skill) (domain.Skill, error)
	// LinkUser asocia la habilidad al usuario; repetir el vínculo no duplica filas.
	LinkUser(ctx context.Context, link domain.UserSkill) (domain.UserSkill, error)
	ListNamesByUser(ctx context.Context, userID string) ([]string, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Featured(ctx context.Context, query string, limit int) ([]domain.SkillSummary, error)
}

type PgSkillRepository struct {
	pool *pgxpool.Pool
}

func NewPgSkillRepository(pool *pgxpool.Pool) *PgSkillRepository {
	return &PgSkillRepository{pool: pool}
}

func (r *PgSkillRepository) UpsertByName(ctx context.Context, skill domain.Skill) (domain.Skill, error) {
	// El DO UPDATE no-op hace que RETURNING devuelva también la fila existente.
	const query = `
		INSERT INTO skills (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`
	var out domain.Skill
	err := r.pool.QueryRow(ctx, query, skill.ID, skill.Name, skill.CreatedAt).Scan(
		&out.ID,
		&out.Name,
		&out.CreatedAt,
	)
	return out, err
}

func (r *PgSkillRepository) LinkUser(ctx context.Context, link domain.UserSkill) (domain.UserSkill, error) {
	const query = `
		INSERT INTO user_skills (user_id, skill_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, skill_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, skill_id, created_at
	`
	var out domain.UserSkill
	err := r.pool.QueryRow(ctx, query, link.UserID, link.SkillID, link.CreatedAt).Scan(
		&out.UserID,
		&out.SkillID,
		&out.CreatedAt,
	)
	return out, err
}

func (r *PgSkillRepository) ListNamesByUser(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT s.name
		FROM user_skills us
		JOIN skills s ON s.id = us.skill_id
		WHERE us.user_id = $1
		ORDER BY us.created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *PgSkillRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM user_skills WHERE user_id = $1`
	var n int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&n)
	return n, err
}

func (r *PgSkillRepository) Featured(ctx context.Context, query string, limit int) ([]domain.SkillSummary, error) {
	const sqlQuery = `
		SELECT s.id, s.name, COUNT(us.user_id) AS users_count
		FROM skills s
		LEFT JOIN user_skills us ON us.skill_id = s.id
		WHERE $1::text = '' OR s.name ILIKE $3 ESCAPE '\'
		GROUP BY s.id, s.name
		ORDER BY users_count DESC, s.name ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, sqlQuery, query, limit, containsPattern(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SkillSummary, 0, limit)
	for rows.Next() {
		var s domain.SkillSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.UsersCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}


var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern arma el patrón ILIKE de "contiene" tratando % y _ como literales.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
