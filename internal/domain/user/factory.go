package user

import (
	"time"

	"github.com/google/uuid"
)

func New(username, passwordHash string, role Role) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
