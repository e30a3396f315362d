package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/akovalyov/inkwell/internal/handlers"
	"github.com/akovalyov/inkwell/internal/logger"
	"github.com/akovalyov/inkwell/internal/repository/postgres"
	"github.com/akovalyov/inkwell/internal/service/auth"
	"github.com/akovalyov/inkwell/internal/service/auth/tokenmanager"
	"github.com/akovalyov/inkwell/internal/service/post"
	"github.com/akovalyov/inkwell/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
	PostService *post.PostService
}

// Run server over a rolled back transaction, so the db stays clean between tests
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		tokenManager, err := tokenmanager.New(
			tokenmanager.Config{SecretKey: "test-secret"},
			&postgres.RefreshTokenRepo{DB: tx},
		)
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, &postgres.UserRepo{DB: tx})
		require.NoError(t, err, "auth service starting error", err)

		ps := post.NewService(&postgres.PostRepo{DB: tx})

		router := handlers.NewRouter(as, ps, logger.NewNoOpLogger())

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{AuthService: as, PostService: ps})
	})
}
