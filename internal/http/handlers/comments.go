package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type CommentOperator interface {
	Create(ctx context.Context, postID string, req comment.CreateCommentRequest, actor user.User) (comment.Comment, error)
	Update(ctx context.Context, postID, commentID string, req comment.UpdateCommentRequest, actor user.User) (comment.Comment, error)
	Delete(ctx context.Context, postID, commentID string, actor user.User) error
}

type CommentsHandler struct {
	svc CommentOperator
}

func NewCommentsHandler(svc CommentOperator) *CommentsHandler {
	return &CommentsHandler{svc: svc}
}

func (h *CommentsHandler) CreateComment(ctx *gin.Context) {
	actor, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req comment.CreateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	postID := ctx.Param("postId")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.svc.Create(cctx, postID, req, actor)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not create comment")
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *CommentsHandler) UpdateComment(ctx *gin.Context) {
	actor, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req comment.UpdateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.svc.Update(cctx, ctx.Param("postId"), ctx.Param("commentId"), req, actor)

	if err != nil {
		respondCommentMutationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CommentsHandler) DeleteComment(ctx *gin.Context) {
	actor, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.svc.Delete(cctx, ctx.Param("postId"), ctx.Param("commentId"), actor)

	if err != nil {
		respondCommentMutationError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func respondCommentMutationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, post.ErrNotFound):
		RespondNotFound(ctx, "Post not found")
	case errors.Is(err, comment.ErrNotFound):
		RespondNotFound(ctx, "Comment not found")
	case errors.Is(err, authz.ErrForbidden):
		RespondForbidden(ctx, "You may not modify this comment")
	default:
		RespondInternal(ctx, "Could not modify comment")
	}
}
