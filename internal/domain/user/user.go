package user

import "time"

// Role is a closed set. Anything else coming off the wire is rejected at
// bind time instead of being stored as an open string.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=40"`
	Password string `json:"password" binding:"required,min=4,max=72"`
	// Optional, defaults to USER. Asking for ADMIN requires AdminToken.
	Role       string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
	AdminToken string `json:"adminToken"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
