package comment

import (
	"errors"
	"time"
)

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Username  string    `json:"username"`
	UserID    string    `json:"-"`
	Content   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("comment not found")

type CreateCommentRequest struct {
	Content string `json:"comment" binding:"required,min=1,max=1000"`
}

// full replacement of the comment text
type UpdateCommentRequest struct {
	Content string `json:"comment" binding:"required,min=1,max=1000"`
}
