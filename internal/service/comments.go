package service

import (
	"context"
	"log/slog"

	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
)

type CommentStore interface {
	Create(ctx context.Context, c comment.Comment) error
	GetByID(ctx context.Context, id string) (comment.Comment, error)
	Update(ctx context.Context, id string, req comment.UpdateCommentRequest) (comment.Comment, error)
	Delete(ctx context.Context, id string) error
}

type CommentPosts interface {
	GetByID(ctx context.Context, id string) (post.Post, error)
}

type CommentService struct {
	comments CommentStore
	posts    CommentPosts
	log      *slog.Logger
}

func NewCommentService(comments CommentStore, posts CommentPosts, log *slog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		log:      log,
	}
}

func (s *CommentService) Create(ctx context.Context, postID string, req comment.CreateCommentRequest, actor user.User) (comment.Comment, error) {
	// parent must exist before anything is written
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return comment.Comment{}, err
	}

	c := comment.NewFromCreateRequest(req, postID, actor)

	err := s.comments.Create(ctx, c)

	if err != nil {
		return comment.Comment{}, err
	}

	return c, nil
}

// Update edits a comment. Authorization is checked against the persisted
// comment's author, never against anything in the request.
func (s *CommentService) Update(ctx context.Context, postID, commentID string, req comment.UpdateCommentRequest, actor user.User) (comment.Comment, error) {
	existing, err := s.getForPost(ctx, postID, commentID)

	if err != nil {
		return comment.Comment{}, err
	}

	if !authz.CanMutate(actor, existing.Username) {
		return comment.Comment{}, authz.ErrForbidden
	}

	return s.comments.Update(ctx, commentID, req)
}

func (s *CommentService) Delete(ctx context.Context, postID, commentID string, actor user.User) error {
	existing, err := s.getForPost(ctx, postID, commentID)

	if err != nil {
		return err
	}

	if !authz.CanMutate(actor, existing.Username) {
		return authz.ErrForbidden
	}

	err = s.comments.Delete(ctx, commentID)

	if err != nil {
		return err
	}

	s.log.Info("comment deleted", "comment_id", commentID, "post_id", postID, "by", actor.Username)

	return nil
}

func (s *CommentService) getForPost(ctx context.Context, postID, commentID string) (comment.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return comment.Comment{}, err
	}

	existing, err := s.comments.GetByID(ctx, commentID)

	if err != nil {
		return comment.Comment{}, err
	}

	if existing.PostID != postID {
		return comment.Comment{}, comment.ErrNotFound
	}

	return existing, nil
}
