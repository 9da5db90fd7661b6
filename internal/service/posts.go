package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/cache"
	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/observability"
)

const postListCacheKey = "posts:list"

type PostStore interface {
	Create(ctx context.Context, p post.Post) error
	List(ctx context.Context) ([]post.Post, error)
	GetByID(ctx context.Context, id string) (post.Post, error)
	Update(ctx context.Context, id string, req post.UpdatePostRequest) (post.Post, error)
	Delete(ctx context.Context, id string) error
}

type PostComments interface {
	ListByPost(ctx context.Context, postID string) ([]comment.Comment, error)
}

type PostService struct {
	posts    PostStore
	comments PostComments
	cache    cache.Cache
	prom     *observability.Prom
	log      *slog.Logger
}

func NewPostService(posts PostStore, comments PostComments, c cache.Cache, prom *observability.Prom, log *slog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		cache:    c,
		prom:     prom,
		log:      log,
	}
}

func (s *PostService) Create(ctx context.Context, req post.CreatePostRequest, actor user.User) (post.Post, error) {
	p := post.NewFromCreateRequest(req, actor)

	err := s.posts.Create(ctx, p)

	if err != nil {
		return post.Post{}, err
	}

	s.invalidateList(ctx)

	return p, nil
}

// List returns all posts newest first, cache-aside over the repository.
func (s *PostService) List(ctx context.Context) ([]post.Post, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, postListCacheKey); ok {
			var cached []post.Post

			if err := json.Unmarshal(raw, &cached); err == nil {
				s.countCache(true)
				return cached, nil
			}

			// poisoned entry, drop it and fall through to the repo
			s.cache.Delete(ctx, postListCacheKey)
		}

		s.countCache(false)
	}

	posts, err := s.posts.List(ctx)

	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(posts); err == nil {
			s.cache.Set(ctx, postListCacheKey, raw)
		}
	}

	return posts, nil
}

// Get returns one post with its comments attached.
func (s *PostService) Get(ctx context.Context, id string) (post.Post, error) {
	p, err := s.posts.GetByID(ctx, id)

	if err != nil {
		return post.Post{}, err
	}

	comments, err := s.comments.ListByPost(ctx, id)

	if err != nil {
		return post.Post{}, err
	}

	p.Comments = comments

	return p, nil
}

func (s *PostService) Update(ctx context.Context, id string, req post.UpdatePostRequest, actor user.User) (post.Post, error) {
	existing, err := s.posts.GetByID(ctx, id)

	if err != nil {
		return post.Post{}, err
	}

	if !authz.CanMutate(actor, existing.Username) {
		return post.Post{}, authz.ErrForbidden
	}

	updated, err := s.posts.Update(ctx, id, req)

	if err != nil {
		return post.Post{}, err
	}

	s.invalidateList(ctx)

	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, id string, actor user.User) error {
	existing, err := s.posts.GetByID(ctx, id)

	if err != nil {
		return err
	}

	if !authz.CanMutate(actor, existing.Username) {
		return authz.ErrForbidden
	}

	err = s.posts.Delete(ctx, id)

	if err != nil {
		return err
	}

	s.invalidateList(ctx)
	s.log.Info("post deleted", "post_id", id, "by", actor.Username)

	return nil
}

func (s *PostService) invalidateList(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, postListCacheKey)
	}
}

func (s *PostService) countCache(hit bool) {
	if s.prom == nil {
		return
	}

	if hit {
		s.prom.CacheHits.WithLabelValues(postListCacheKey).Inc()
		return
	}

	s.prom.CacheMisses.WithLabelValues(postListCacheKey).Inc()
}
