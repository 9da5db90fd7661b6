package post

import (
	"time"

	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreatePostRequest, owner user.User) Post {
	now := time.Now().UTC()

	return Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Username:  owner.Username,
		UserID:    owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
