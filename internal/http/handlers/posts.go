package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type PostOperator interface {
	Create(ctx context.Context, req post.CreatePostRequest, actor user.User) (post.Post, error)
	List(ctx context.Context) ([]post.Post, error)
	Get(ctx context.Context, id string) (post.Post, error)
	Update(ctx context.Context, id string, req post.UpdatePostRequest, actor user.User) (post.Post, error)
	Delete(ctx context.Context, id string, actor user.User) error
}

type PostsHandler struct {
	svc PostOperator
}

func NewPostsHandler(svc PostOperator) *PostsHandler {
	return &PostsHandler{svc: svc}
}

func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	actor, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req post.CreatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.svc.Create(cctx, req, actor)

	if err != nil {
		RespondInternal(ctx, "Could not create post")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *PostsHandler) ListPosts(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	posts, err := h.svc.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list posts")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": posts,
		"count": len(posts),
	})
}

func (h *PostsHandler) GetPostByID(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.svc.Get(cctx, id)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not fetch post")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *PostsHandler) UpdatePost(ctx *gin.Context) {
	actor, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req post.UpdatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.svc.Update(cctx, id, req, actor)

	if err != nil {
		respondPostMutationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PostsHandler) DeletePost(ctx *gin.Context) {
	actor, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.svc.Delete(cctx, id, actor)

	if err != nil {
		respondPostMutationError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func respondPostMutationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, post.ErrNotFound):
		RespondNotFound(ctx, "Post not found")
	case errors.Is(err, authz.ErrForbidden):
		RespondForbidden(ctx, "You may not modify this post")
	default:
		RespondInternal(ctx, "Could not modify post")
	}
}
