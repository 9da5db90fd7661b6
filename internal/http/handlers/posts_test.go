package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePostOperator struct {
	createFn func(ctx context.Context, req post.CreatePostRequest, actor user.User) (post.Post, error)
	listFn   func(ctx context.Context) ([]post.Post, error)
	getFn    func(ctx context.Context, id string) (post.Post, error)
	updateFn func(ctx context.Context, id string, req post.UpdatePostRequest, actor user.User) (post.Post, error)
	deleteFn func(ctx context.Context, id string, actor user.User) error
}

func (f *fakePostOperator) Create(ctx context.Context, req post.CreatePostRequest, actor user.User) (post.Post, error) {
	return f.createFn(ctx, req, actor)
}

func (f *fakePostOperator) List(ctx context.Context) ([]post.Post, error) {
	return f.listFn(ctx)
}

func (f *fakePostOperator) Get(ctx context.Context, id string) (post.Post, error) {
	return f.getFn(ctx, id)
}

func (f *fakePostOperator) Update(ctx context.Context, id string, req post.UpdatePostRequest, actor user.User) (post.Post, error) {
	return f.updateFn(ctx, id, req, actor)
}

func (f *fakePostOperator) Delete(ctx context.Context, id string, actor user.User) error {
	return f.deleteFn(ctx, id, actor)
}

// asUser plays the role of the auth filter for handler tests.
func asUser(u user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middlewares.SetUser(c, u)
		c.Next()
	}
}

func postRoutes(svc handlers.PostOperator, actor *user.User) *gin.Engine {
	h := handlers.NewPostsHandler(svc)

	r := gin.New()

	if actor != nil {
		r.Use(asUser(*actor))
	}

	r.GET("/api/post", h.ListPosts)
	r.GET("/api/post/:id", h.GetPostByID)
	r.POST("/api/post", h.CreatePost)
	r.PUT("/api/post/:id", h.UpdatePost)
	r.DELETE("/api/post/:id", h.DeletePost)

	return r
}

func perform(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}

	return resp.Error.Code
}

func TestCreatePostRequiresIdentity(t *testing.T) {
	r := postRoutes(&fakePostOperator{}, nil)

	w := perform(t, r, http.MethodPost, "/api/post", `{"title":"hi"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestCreatePost(t *testing.T) {
	actor := user.User{ID: "u1", Username: "alice", Role: user.RoleUser}

	svc := &fakePostOperator{
		createFn: func(ctx context.Context, req post.CreatePostRequest, got user.User) (post.Post, error) {
			if got.Username != "alice" {
				t.Fatalf("actor %q, want alice", got.Username)
			}
			return post.Post{ID: "p1", Title: req.Title, Content: req.Content, Username: got.Username}, nil
		},
	}

	r := postRoutes(svc, &actor)

	w := perform(t, r, http.MethodPost, "/api/post", `{"title":"First","content":"hello"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201; body=%s", w.Code, w.Body.String())
	}

	var created post.Post
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if created.Title != "First" || created.Username != "alice" {
		t.Fatalf("unexpected post: %+v", created)
	}
}

func TestCreatePostValidatesBody(t *testing.T) {
	actor := user.User{Username: "alice", Role: user.RoleUser}

	svc := &fakePostOperator{
		createFn: func(ctx context.Context, req post.CreatePostRequest, got user.User) (post.Post, error) {
			t.Fatal("service must not run on a failed bind")
			return post.Post{}, nil
		},
	}

	r := postRoutes(svc, &actor)

	w := perform(t, r, http.MethodPost, "/api/post", `{"content":"no title"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400; body=%s", w.Code, w.Body.String())
	}

	if code := errorCode(t, w.Body.Bytes()); code != "invalid_request" {
		t.Fatalf("error code %q, want invalid_request", code)
	}
}

func TestListPosts(t *testing.T) {
	svc := &fakePostOperator{
		listFn: func(ctx context.Context) ([]post.Post, error) {
			return []post.Post{
				{ID: "p2", Title: "newer"},
				{ID: "p1", Title: "older"},
			}, nil
		},
	}

	r := postRoutes(svc, nil)

	w := perform(t, r, http.MethodGet, "/api/post", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}

	if w.Header().Get("ETag") == "" {
		t.Fatal("expected an ETag on the list response")
	}

	var resp struct {
		Items []post.Post `json:"items"`
		Count int         `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Count != 2 || len(resp.Items) != 2 || resp.Items[0].ID != "p2" {
		t.Fatalf("unexpected list: %+v", resp)
	}
}

func TestGetPostByID(t *testing.T) {
	svc := &fakePostOperator{
		getFn: func(ctx context.Context, id string) (post.Post, error) {
			if id != "p1" {
				return post.Post{}, post.ErrNotFound
			}
			return post.Post{ID: "p1", Title: "found"}, nil
		},
	}

	r := postRoutes(svc, nil)

	t.Run("found", func(t *testing.T) {
		w := perform(t, r, http.MethodGet, "/api/post/p1", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status %d, want 200", w.Code)
		}
	})

	t.Run("missing", func(t *testing.T) {
		w := perform(t, r, http.MethodGet, "/api/post/nope", "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("status %d, want 404", w.Code)
		}

		if code := errorCode(t, w.Body.Bytes()); code != "not_found" {
			t.Fatalf("error code %q, want not_found", code)
		}
	})
}

func TestUpdatePostErrorMapping(t *testing.T) {
	actor := user.User{Username: "mallory", Role: user.RoleUser}

	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"missing post", post.ErrNotFound, http.StatusNotFound, "not_found"},
		{"not the owner", authz.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"storage failure", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakePostOperator{
				updateFn: func(ctx context.Context, id string, req post.UpdatePostRequest, got user.User) (post.Post, error) {
					return post.Post{}, tc.svcErr
				},
			}

			r := postRoutes(svc, &actor)

			w := perform(t, r, http.MethodPut, "/api/post/p1", `{"title":"new"}`)

			if w.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d", w.Code, tc.wantStatus)
			}

			if code := errorCode(t, w.Body.Bytes()); code != tc.wantCode {
				t.Fatalf("error code %q, want %q", code, tc.wantCode)
			}
		})
	}
}

func TestDeletePost(t *testing.T) {
	actor := user.User{Username: "alice", Role: user.RoleUser}

	var deletedID string

	svc := &fakePostOperator{
		deleteFn: func(ctx context.Context, id string, got user.User) error {
			deletedID = id
			return nil
		},
	}

	r := postRoutes(svc, &actor)

	w := perform(t, r, http.MethodDelete, "/api/post/p1", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", w.Code)
	}

	if deletedID != "p1" {
		t.Fatalf("deleted %q, want p1", deletedID)
	}
}
