package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/bloghub/internal/domain/comment"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCommentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CommentsRepo {
	return &CommentsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *CommentsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CommentsRepo) Create(ctx context.Context, c comment.Comment) error {
	return r.observe("comments.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO comments (id, post_id, username, user_id, content, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7)`,
			c.ID, c.PostID, c.Username, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt)

		return err
	})
}

func (r *CommentsRepo) GetByID(ctx context.Context, id string) (comment.Comment, error) {
	var c comment.Comment

	err := r.observe("comments.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, post_id, username, user_id, content, created_at, updated_at
			 FROM comments WHERE id = $1`, id).
			Scan(&c.ID, &c.PostID, &c.Username, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}

		return comment.Comment{}, err
	}

	return c, nil
}

// ListByPost returns a post's comments oldest first.
func (r *CommentsRepo) ListByPost(ctx context.Context, postID string) ([]comment.Comment, error) {
	var output []comment.Comment

	err := r.observe("comments.list_by_post", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, post_id, username, user_id, content, created_at, updated_at
			 FROM comments
			 WHERE post_id = $1
			 ORDER BY created_at ASC, id ASC`, postID)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]comment.Comment, 0)

		for rows.Next() {
			var c comment.Comment

			err = rows.Scan(&c.ID, &c.PostID, &c.Username, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt)

			if err != nil {
				return err
			}

			output = append(output, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *CommentsRepo) Update(ctx context.Context, id string, req comment.UpdateCommentRequest) (comment.Comment, error) {
	var c comment.Comment

	err := r.observe("comments.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE comments
				SET content = $2,
						updated_at = NOW()
			WHERE id = $1
			RETURNING id, post_id, username, user_id, content, created_at, updated_at`,
			id,
			req.Content,
		).Scan(
			&c.ID,
			&c.PostID,
			&c.Username,
			&c.UserID,
			&c.Content,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}

		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("comments.delete", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return comment.ErrNotFound
	}

	return nil
}
