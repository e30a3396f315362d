package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/akovalyov/inkwell/internal/apperrors"
	"github.com/akovalyov/inkwell/internal/models"
	"github.com/akovalyov/inkwell/internal/repository"
)

type PostRepo struct {
	DB DBTX
}

const createPost = `-- name: CreatePost
INSERT INTO posts (id, title, content, author_id)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at, title, content, author_id
`

func (r *PostRepo) CreatePost(ctx context.Context, arg repository.CreatePostParams) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, createPost, uuid.New(), arg.Title, arg.Content, arg.AuthorID)
	post, err := pgx.CollectOneRow(rows, rowToPost)
	if err != nil {
		return post, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

const getPost = `-- name: GetPost
SELECT p.id, p.created_at, p.updated_at, p.title, p.content, p.author_id, u.username
FROM posts p
JOIN users u ON p.author_id = u.id
WHERE p.id = $1
`

func (r *PostRepo) GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, getPost, postID)
	post, err := pgx.CollectOneRow(rows, rowToPostWithAuthor)

	switch {
	case err == nil:
		return post, nil
	case errors.Is(err, pgx.ErrNoRows):
		return post, apperrors.ErrPostNotFound
	default:
		return post, fmt.Errorf("db error: %w", err)
	}
}

const listPosts = `-- name: ListPosts
SELECT p.id, p.created_at, p.updated_at, p.title, p.content, p.author_id, u.username
FROM posts p
JOIN users u ON p.author_id = u.id
ORDER BY p.created_at DESC
`

func (r *PostRepo) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, _ := r.DB.Query(ctx, listPosts)
	posts, err := pgx.CollectRows(rows, rowToPostWithAuthor)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return posts, nil
}

const updatePost = `-- name: UpdatePost
UPDATE posts
SET title = $2, content = $3, updated_at = $4
WHERE id = $1
RETURNING id, created_at, updated_at, title, content, author_id
`

func (r *PostRepo) UpdatePost(ctx context.Context, postID uuid.UUID, arg repository.UpdatePostParams) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, updatePost, postID, arg.Title, arg.Content, time.Now())
	post, err := pgx.CollectOneRow(rows, rowToPost)

	switch {
	case err == nil:
		return post, nil
	case errors.Is(err, pgx.ErrNoRows):
		return post, apperrors.ErrPostNotFound
	default:
		return post, fmt.Errorf("db error: %w", err)
	}
}

const deletePost = `-- name: DeletePost
DELETE FROM posts
WHERE id = $1
`

func (r *PostRepo) DeletePost(ctx context.Context, postID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deletePost, postID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}

	return nil
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Title, &p.Content, &p.AuthorID)
	return p, err
}

func rowToPostWithAuthor(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Title, &p.Content, &p.AuthorID, &p.AuthorName)
	return p, err
}
