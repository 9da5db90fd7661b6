package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *PostsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *PostsRepo) Create(ctx context.Context, p post.Post) error {
	return r.observe("posts.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO posts (id, title, content, username, user_id, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, p.Title, p.Content, p.Username, p.UserID, p.CreatedAt, p.UpdatedAt)

		return err
	})
}

// List returns all posts newest first.
func (r *PostsRepo) List(ctx context.Context) ([]post.Post, error) {
	var output []post.Post

	err := r.observe("posts.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, title, content, username, user_id, created_at, updated_at
			 FROM posts
			 ORDER BY created_at DESC, id DESC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]post.Post, 0)

		for rows.Next() {
			var p post.Post

			err = rows.Scan(&p.ID, &p.Title, &p.Content, &p.Username, &p.UserID, &p.CreatedAt, &p.UpdatedAt)

			if err != nil {
				return err
			}

			output = append(output, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id string) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, content, username, user_id, created_at, updated_at
			 FROM posts WHERE id = $1`, id).
			Scan(&p.ID, &p.Title, &p.Content, &p.Username, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}

		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) Update(ctx context.Context, id string, req post.UpdatePostRequest) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE posts
				SET title = $2,
						content = $3,
						updated_at = NOW()
			WHERE id = $1
			RETURNING id, title, content, username, user_id, created_at, updated_at`,
			id,
			req.Title,
			req.Content,
		).Scan(
			&p.ID,
			&p.Title,
			&p.Content,
			&p.Username,
			&p.UserID,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
	})

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		// if it is any other type of error
		return post.Post{}, err
	}

	return p, nil
}

// Delete removes the post and every comment attached to it in one
// transaction: all of them go, or none do.
func (r *PostsRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = r.observe("posts.delete.comments", func() error {
		_, e := tx.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	var deleted pgconn.CommandTag

	err = r.observe("posts.delete.post", func() error {
		tag, e := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		deleted = tag
		return e
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if deleted.RowsAffected() == 0 {
		return post.ErrNotFound
	}

	return tx.Commit(ctx)
}
