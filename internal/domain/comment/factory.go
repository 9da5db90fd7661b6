package comment

import (
	"time"

	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateCommentRequest, postID string, author user.User) Comment {
	now := time.Now().UTC()

	return Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Username:  author.Username,
		UserID:    author.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
