package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeCommentOperator struct {
	createFn func(ctx context.Context, postID string, req comment.CreateCommentRequest, actor user.User) (comment.Comment, error)
	updateFn func(ctx context.Context, postID, commentID string, req comment.UpdateCommentRequest, actor user.User) (comment.Comment, error)
	deleteFn func(ctx context.Context, postID, commentID string, actor user.User) error
}

func (f *fakeCommentOperator) Create(ctx context.Context, postID string, req comment.CreateCommentRequest, actor user.User) (comment.Comment, error) {
	return f.createFn(ctx, postID, req, actor)
}

func (f *fakeCommentOperator) Update(ctx context.Context, postID, commentID string, req comment.UpdateCommentRequest, actor user.User) (comment.Comment, error) {
	return f.updateFn(ctx, postID, commentID, req, actor)
}

func (f *fakeCommentOperator) Delete(ctx context.Context, postID, commentID string, actor user.User) error {
	return f.deleteFn(ctx, postID, commentID, actor)
}

func commentRoutes(svc handlers.CommentOperator, actor *user.User) *gin.Engine {
	h := handlers.NewCommentsHandler(svc)

	r := gin.New()

	if actor != nil {
		r.Use(asUser(*actor))
	}

	r.POST("/api/:postId/comment", h.CreateComment)
	r.PUT("/api/:postId/comment/:commentId", h.UpdateComment)
	r.DELETE("/api/:postId/comment/:commentId", h.DeleteComment)

	return r
}

func TestCreateComment(t *testing.T) {
	actor := user.User{ID: "u1", Username: "bob", Role: user.RoleUser}

	svc := &fakeCommentOperator{
		createFn: func(ctx context.Context, postID string, req comment.CreateCommentRequest, got user.User) (comment.Comment, error) {
			if postID != "p1" {
				t.Fatalf("postID %q, want p1", postID)
			}
			return comment.Comment{ID: "c1", PostID: postID, Username: got.Username, Content: req.Content}, nil
		},
	}

	r := commentRoutes(svc, &actor)

	w := perform(t, r, http.MethodPost, "/api/p1/comment", `{"comment":"nice post"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201; body=%s", w.Code, w.Body.String())
	}

	var created comment.Comment
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if created.Content != "nice post" || created.Username != "bob" {
		t.Fatalf("unexpected comment: %+v", created)
	}
}

func TestCreateCommentUnderMissingPost(t *testing.T) {
	actor := user.User{Username: "bob", Role: user.RoleUser}

	svc := &fakeCommentOperator{
		createFn: func(ctx context.Context, postID string, req comment.CreateCommentRequest, got user.User) (comment.Comment, error) {
			return comment.Comment{}, post.ErrNotFound
		},
	}

	r := commentRoutes(svc, &actor)

	w := perform(t, r, http.MethodPost, "/api/nope/comment", `{"comment":"into the void"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
}

func TestUpdateCommentErrorMapping(t *testing.T) {
	actor := user.User{Username: "mallory", Role: user.RoleUser}

	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"missing post", post.ErrNotFound, http.StatusNotFound, "not_found"},
		{"missing comment", comment.ErrNotFound, http.StatusNotFound, "not_found"},
		{"not the author", authz.ErrForbidden, http.StatusForbidden, "forbidden"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeCommentOperator{
				updateFn: func(ctx context.Context, postID, commentID string, req comment.UpdateCommentRequest, got user.User) (comment.Comment, error) {
					return comment.Comment{}, tc.svcErr
				},
			}

			r := commentRoutes(svc, &actor)

			w := perform(t, r, http.MethodPut, "/api/p1/comment/c1", `{"comment":"edited"}`)

			if w.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d", w.Code, tc.wantStatus)
			}

			if code := errorCode(t, w.Body.Bytes()); code != tc.wantCode {
				t.Fatalf("error code %q, want %q", code, tc.wantCode)
			}
		})
	}
}

func TestDeleteComment(t *testing.T) {
	actor := user.User{Username: "bob", Role: user.RoleUser}

	var gotPost, gotComment string

	svc := &fakeCommentOperator{
		deleteFn: func(ctx context.Context, postID, commentID string, got user.User) error {
			gotPost, gotComment = postID, commentID
			return nil
		},
	}

	r := commentRoutes(svc, &actor)

	w := perform(t, r, http.MethodDelete, "/api/p1/comment/c1", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", w.Code)
	}

	if gotPost != "p1" || gotComment != "c1" {
		t.Fatalf("deleted %s/%s, want p1/c1", gotPost, gotComment)
	}
}

func TestCommentHandlersRequireIdentity(t *testing.T) {
	r := commentRoutes(&fakeCommentOperator{}, nil)

	w := perform(t, r, http.MethodPost, "/api/p1/comment", `{"comment":"anon"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}
