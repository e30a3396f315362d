package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akovalyov/inkwell/internal/handlers/render"
	"github.com/akovalyov/inkwell/internal/handlers/userctx"
	"github.com/akovalyov/inkwell/internal/models"
)

const authScheme = "Bearer"

type authService interface {
	// Validate access token and return identity snapshot from its claims
	Authenticate(ctx context.Context, access string) (models.User, error)
}

type AuthMiddleware struct {
	auth authService
}

func NewAuth(auth authService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Auth validates the bearer token and puts the user into the request context
// Requests without a valid token never reach the next handler
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access, ok := bearerToken(r)
		if !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user, err := m.auth.Authenticate(r.Context(), access)
		if err != nil {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := userctx.New(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, authScheme) || token == "" {
		return "", false
	}

	return token, true
}
