package domain

import "time"

type Skill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type UserSkill struct {
	UserID    string    `json:"user_id"`
	SkillID   string    `json:"skill_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SkillSummary agrega una habilidad con la cantidad de usuarios que la comparten.
type SkillSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UsersCount int    `json:"users_count"`
}

// UserOverview es la proyección del usuario que consume el dashboard.
type UserOverview struct {
	User
	SkillsCount int `json:"skills_count"`
}
