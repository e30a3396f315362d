package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/akovalyov/inkwell/internal/handlers/middleware"
	"github.com/akovalyov/inkwell/internal/handlers/render"
	"github.com/akovalyov/inkwell/internal/logger"
	"github.com/akovalyov/inkwell/internal/models"
	"github.com/akovalyov/inkwell/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	postService postService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.NewAuth(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware.Auth(h)
	}

	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/register", handleRegister(authService, logger))
	mux.Handle("POST /api/auth/login", handleLogin(authService, logger))
	mux.Handle("POST /api/auth/refresh", handleTokenRefresh(authService, logger))
	mux.Handle("POST /api/auth/logout", handleLogout(authService, logger))
	mux.Handle("GET /api/auth/me", withAuth(handleUserMe(authService, logger)))

	mux.Handle("GET /api/posts", handleListPosts(postService, logger))
	mux.Handle("GET /api/posts/{id}", handleGetPost(postService, logger))
	mux.Handle("POST /api/posts", withAuth(handleCreatePost(postService, logger)))
	mux.Handle("PUT /api/posts/{id}", withAuth(handleUpdatePost(postService, logger)))
	mux.Handle("DELETE /api/posts/{id}", withAuth(handleDeletePost(postService, logger)))

	mux.Handle("GET /api/health", handleHealth())

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

func handleHealth() http.Handler {
	type response struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, response{Status: "OK", Message: "Server is running"})
	})
}

type authService interface {
	// Register user, force role to 'user'
	// Has to return apperrors.ErrUserAlreadyExists on duplicate username or email
	Register(ctx context.Context, arg auth.RegisterParams) (models.User, models.TokenPair, error)

	// Login with username or email
	// Has to return apperrors.ErrInvalidCredentials on any credential failure
	Login(ctx context.Context, usernameOrEmail string, password string) (models.User, models.TokenPair, error)

	// Rotate tokens using refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token consumed already: apperrors.ErrRefreshTokenIsUsed
	// If token revoked or unknown: apperrors.ErrRefreshTokenRevoked, apperrors.ErrRefreshTokenNotFound
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Revoke the refresh token
	Logout(ctx context.Context, refresh string) error

	// Validate access token and return identity snapshot from claims
	Authenticate(ctx context.Context, access string) (models.User, error)

	// Load fresh user record from the store
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type postService interface {
	Create(ctx context.Context, author models.User, title string, content string) (models.Post, error)
	Get(ctx context.Context, postID uuid.UUID) (models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, subject models.User, postID uuid.UUID, title string, content string) (models.Post, error)
	Delete(ctx context.Context, subject models.User, postID uuid.UUID) error
}
