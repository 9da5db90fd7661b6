package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/cache"
	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/service"
)

// Fake store implementations of the service.PostStore / service.PostComments interfaces

type fakePostStore struct {
	createFn func(ctx context.Context, p post.Post) error
	listFn   func(ctx context.Context) ([]post.Post, error)
	getFn    func(ctx context.Context, id string) (post.Post, error)
	updateFn func(ctx context.Context, id string, req post.UpdatePostRequest) (post.Post, error)
	deleteFn func(ctx context.Context, id string) error

	listCalls int
}

func (f *fakePostStore) Create(ctx context.Context, p post.Post) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakePostStore) List(ctx context.Context) ([]post.Post, error) {
	f.listCalls++
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []post.Post{}, nil
}

func (f *fakePostStore) GetByID(ctx context.Context, id string) (post.Post, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return post.Post{}, post.ErrNotFound
}

func (f *fakePostStore) Update(ctx context.Context, id string, req post.UpdatePostRequest) (post.Post, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return post.Post{}, nil
}

func (f *fakePostStore) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeCommentLister struct {
	listFn func(ctx context.Context, postID string) ([]comment.Comment, error)
}

func (f *fakeCommentLister) ListByPost(ctx context.Context, postID string) ([]comment.Comment, error) {
	if f.listFn != nil {
		return f.listFn(ctx, postID)
	}
	return []comment.Comment{}, nil
}

func newPostService(posts *fakePostStore, comments *fakeCommentLister, c cache.Cache) *service.PostService {
	if comments == nil {
		comments = &fakeCommentLister{}
	}
	return service.NewPostService(posts, comments, c, nil, testLogger())
}

func TestCreatePostAttachesOwner(t *testing.T) {
	var stored post.Post

	posts := &fakePostStore{
		createFn: func(ctx context.Context, p post.Post) error {
			stored = p
			return nil
		},
	}

	svc := newPostService(posts, nil, nil)

	actor := user.User{ID: "u1", Username: "alice", Role: user.RoleUser}

	p, err := svc.Create(context.Background(), post.CreatePostRequest{Title: "hi", Content: "body"}, actor)

	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if stored.Username != "alice" || stored.UserID != "u1" {
		t.Fatalf("owner not attached: %+v", stored)
	}

	if p.ID == "" {
		t.Fatal("post has no ID")
	}
}

func TestUpdatePostAuthorization(t *testing.T) {
	owned := post.Post{ID: "p1", Title: "old", Username: "alice", UserID: "u1"}

	tests := []struct {
		name    string
		actor   user.User
		wantErr error
	}{
		{
			name:  "owner may update",
			actor: user.User{Username: "alice", Role: user.RoleUser},
		},
		{
			name:    "other user is forbidden",
			actor:   user.User{Username: "bob", Role: user.RoleUser},
			wantErr: authz.ErrForbidden,
		},
		{
			name:  "admin may update",
			actor: user.User{Username: "root", Role: user.RoleAdmin},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			updated := false

			posts := &fakePostStore{
				getFn: func(ctx context.Context, id string) (post.Post, error) {
					return owned, nil
				},
				updateFn: func(ctx context.Context, id string, req post.UpdatePostRequest) (post.Post, error) {
					updated = true
					owned.Title = req.Title
					return owned, nil
				},
			}

			svc := newPostService(posts, nil, nil)

			_, err := svc.Update(context.Background(), "p1", post.UpdatePostRequest{Title: "new"}, tc.actor)

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got %v, want %v", err, tc.wantErr)
				}
				if updated {
					t.Fatal("store update ran despite failed authorization")
				}
				return
			}

			if err != nil {
				t.Fatalf("Update: %v", err)
			}

			if !updated {
				t.Fatal("store update never ran")
			}
		})
	}
}

func TestDeletePostAuthorization(t *testing.T) {
	posts := &fakePostStore{
		getFn: func(ctx context.Context, id string) (post.Post, error) {
			return post.Post{ID: id, Username: "alice"}, nil
		},
	}

	svc := newPostService(posts, nil, nil)

	err := svc.Delete(context.Background(), "p1", user.User{Username: "bob", Role: user.RoleUser})

	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	err = svc.Delete(context.Background(), "p1", user.User{Username: "root", Role: user.RoleAdmin})

	if err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestDeleteMissingPost(t *testing.T) {
	svc := newPostService(&fakePostStore{}, nil, nil)

	err := svc.Delete(context.Background(), "nope", user.User{Username: "alice"})

	if !errors.Is(err, post.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGetPostAttachesComments(t *testing.T) {
	posts := &fakePostStore{
		getFn: func(ctx context.Context, id string) (post.Post, error) {
			return post.Post{ID: id, Title: "t", Username: "alice"}, nil
		},
	}

	comments := &fakeCommentLister{
		listFn: func(ctx context.Context, postID string) ([]comment.Comment, error) {
			return []comment.Comment{{ID: "c1", PostID: postID, Username: "bob", Content: "hi"}}, nil
		},
	}

	svc := newPostService(posts, comments, nil)

	p, err := svc.Get(context.Background(), "p1")

	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if len(p.Comments) != 1 || p.Comments[0].ID != "c1" {
		t.Fatalf("comments not attached: %+v", p.Comments)
	}
}

func TestListUsesCacheUntilInvalidated(t *testing.T) {
	now := time.Now().UTC()

	posts := &fakePostStore{
		listFn: func(ctx context.Context) ([]post.Post, error) {
			return []post.Post{{ID: "p1", Title: "t", Username: "alice", CreatedAt: now}}, nil
		},
	}

	svc := newPostService(posts, nil, cache.NewMemory(time.Minute))

	for i := 0; i < 3; i++ {
		got, err := svc.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d posts, want 1", len(got))
		}
	}

	if posts.listCalls != 1 {
		t.Fatalf("store hit %d times, want 1 (cache-aside)", posts.listCalls)
	}

	// a write drops the cached listing
	_, err := svc.Create(context.Background(), post.CreatePostRequest{Title: "new"}, user.User{Username: "alice"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}

	if posts.listCalls != 2 {
		t.Fatalf("store hit %d times after invalidation, want 2", posts.listCalls)
	}
}
