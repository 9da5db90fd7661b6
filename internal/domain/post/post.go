package post

import (
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/comment"
)

type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	// creating username, denormalized so reads never join users
	Username  string    `json:"username"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// populated on single-post reads only
	Comments []comment.Comment `json:"comments,omitempty"`
}

var ErrNotFound = errors.New("post not found")

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"omitempty,max=5000"`
}

// a full update payload, might switch to a patch which optionally provides means for partial updates.
type UpdatePostRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"omitempty,max=5000"`
}
