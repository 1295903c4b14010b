package domain

import "time"

// User es la cuenta registrada. Los campos de verificación nunca se serializan.
type User struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Bio                 string     `json:"bio"`
	Status              bool       `json:"status"`
	LastSeen            *time.Time `json:"last_seen,omitempty"`
	IsVerified          bool       `json:"is_verified"`
	IsAcceptingMessages bool       `json:"is_accepting_messages"`
	VerifyCode          string     `json:"-"`
	VerifyCodeExpiry    *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// CodeRedeemableAt indica si el código almacenado sigue vigente en now.
// La vigencia es estricta: en el instante de expiración ya no se acepta.
func (u *User) CodeRedeemableAt(now time.Time) bool {
	if u.VerifyCode == "" || u.VerifyCodeExpiry == nil {
		return false
	}
	return now.Before(*u.VerifyCodeExpiry)
}
