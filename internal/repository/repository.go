package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/akovalyov/inkwell/internal/models"
)

type CreateUserParams struct {
	Username       string
	Email          string
	HashedPassword string
	Role           models.Role
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with same username or email exists has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by its id, or by username or email (login endpoint accepts either)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository
	// Has to return apperrors.ErrRefreshTokenIsUsed alike conflict if token string collides
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the token even if it's used, revoked or expired
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Consume the token: mark used if and only if it not used and not revoked yet
	// Exactly one of concurrent callers may win, so the conditional update must be atomic
	// If the token is consumed already: apperrors.ErrRefreshTokenIsUsed
	// If the token is revoked: apperrors.ErrRefreshTokenRevoked
	// If the token not found: apperrors.ErrRefreshTokenNotFound
	GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Revoke the token. Revoking already revoked token must not overwrite 'revokedAt'
	Revoke(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Revoke every not yet revoked token of the user, return how many were revoked
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Delete tokens that expired before the given moment, return how many were deleted
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type CreatePostParams struct {
	Title    string
	Content  string
	AuthorID uuid.UUID
}

type UpdatePostParams struct {
	Title   string
	Content string
}

// Post repository interface
type PostRepo interface {
	// Create post for the author
	CreatePost(ctx context.Context, arg CreatePostParams) (models.Post, error)

	// Get post by id with author username
	// If post not found must return apperrors.ErrPostNotFound
	GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error)

	// List all posts with author usernames, newest first
	ListPosts(ctx context.Context) ([]models.Post, error)

	// Update post fields. If post not found must return apperrors.ErrPostNotFound
	UpdatePost(ctx context.Context, postID uuid.UUID, arg UpdatePostParams) (models.Post, error)

	// Delete post. If post not found must return apperrors.ErrPostNotFound
	DeletePost(ctx context.Context, postID uuid.UUID) error
}

// Storage aggregates the repositories over one connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Post() PostRepo

	// Run fn within a database transaction
	InTx(ctx context.Context, fn func(s Storage) error) error
}
