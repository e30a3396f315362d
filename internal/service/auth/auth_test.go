package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akovalyov/inkwell/internal/apperrors"
	"github.com/akovalyov/inkwell/internal/models"
	"github.com/akovalyov/inkwell/internal/repository/postgres"
	"github.com/akovalyov/inkwell/internal/service/auth/tokenmanager"
	"github.com/akovalyov/inkwell/internal/testutil"
)

func Test_AuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	registration := RegisterParams{
		Username: "alice",
		Email:    "a@x.com",
		Password: "Str0ng!Passw0rd",
	}

	withService := func(t *testing.T, fn func(s *AuthService)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			tm, err := tokenmanager.New(
				tokenmanager.Config{SecretKey: "test-secret-key"},
				&postgres.RefreshTokenRepo{DB: tx},
			)
			require.NoError(t, err)

			service, err := NewService(Config{}, tm, &postgres.UserRepo{DB: tx})
			require.NoError(t, err, "auth service should be created without errors")

			fn(service)
		})
	}

	t.Run("Register", func(t *testing.T) {
		t.Run("register ok", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				user, pair, err := s.Register(t.Context(), registration)

				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, user.ID)
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, "a@x.com", user.Email)
				assert.Equal(t, models.RoleUser, user.Role)
				assert.NotEqual(t, "Str0ng!Passw0rd", user.HashedPassword, "password must not be stored in plain text")
				assert.NotEmpty(t, pair.Access.Value)
				assert.NotEmpty(t, pair.Refresh.Value)
			})
		})

		t.Run("requested admin role is ignored", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				arg := registration
				arg.Role = "admin"

				user, _, err := s.Register(t.Context(), arg)

				require.NoError(t, err)
				assert.Equal(t, models.RoleUser, user.Role, "nobody self-registers as admin")
			})
		})

		t.Run("duplicate username", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, _, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				dup := registration
				dup.Email = "other@x.com"
				_, _, err = s.Register(t.Context(), dup)

				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})

		t.Run("invalid input", func(t *testing.T) {
			tests := []struct {
				name   string
				mutate func(arg *RegisterParams)
			}{
				{"short username", func(arg *RegisterParams) { arg.Username = "ab" }},
				{"bad username chars", func(arg *RegisterParams) { arg.Username = "al ice!" }},
				{"bad email", func(arg *RegisterParams) { arg.Email = "not-an-email" }},
				{"short password", func(arg *RegisterParams) { arg.Password = "Ab1" }},
				{"password without digits", func(arg *RegisterParams) { arg.Password = "longenoughpassword" }},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					withService(t, func(s *AuthService) {
						arg := registration
						tt.mutate(&arg)

						_, _, err := s.Register(t.Context(), arg)

						require.Error(t, err)
						assert.ErrorIs(t, err, apperrors.ErrValidation)
					})
				})
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("login by username", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				registered, _, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				user, pair, err := s.Login(t.Context(), "alice", "Str0ng!Passw0rd")

				require.NoError(t, err)
				assert.Equal(t, registered.ID, user.ID)
				assert.NotEmpty(t, pair.Access.Value)
				assert.NotEmpty(t, pair.Refresh.Value)
			})
		})

		t.Run("login by email", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				registered, _, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				user, _, err := s.Login(t.Context(), "a@x.com", "Str0ng!Passw0rd")

				require.NoError(t, err)
				assert.Equal(t, registered.ID, user.ID)
			})
		})

		t.Run("wrong password", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, _, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				_, _, err = s.Login(t.Context(), "alice", "wrong-password")

				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
			})
		})

		t.Run("unknown user fails with the same error", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, _, err := s.Login(t.Context(), "nobody", "whatever-password")

				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "unknown identity must be indistinguishable from wrong password")
			})
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("rotation issues new pair and retires the old token", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, pair, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				rotated, err := s.Refresh(t.Context(), pair.Refresh.Value)

				require.NoError(t, err)
				assert.NotEmpty(t, rotated.Access.Value)
				assert.NotEqual(t, pair.Refresh.Value, rotated.Refresh.Value, "refresh token must rotate")

				_, err = s.Refresh(t.Context(), pair.Refresh.Value)
				require.Error(t, err, "consumed token must not refresh again")
			})
		})

		t.Run("reuse revokes every session of the user", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, pair, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				// Second live session of the same user
				_, other, err := s.Login(t.Context(), "alice", "Str0ng!Passw0rd")
				require.NoError(t, err)

				rotated, err := s.Refresh(t.Context(), pair.Refresh.Value)
				require.NoError(t, err)

				// Replay of the consumed token: possible theft
				_, err = s.Refresh(t.Context(), pair.Refresh.Value)
				require.ErrorIs(t, err, apperrors.ErrRefreshTokenIsUsed)

				_, err = s.Refresh(t.Context(), rotated.Refresh.Value)
				assert.ErrorIs(t, err, apperrors.ErrRefreshTokenRevoked, "rotated session must be revoked after reuse")

				_, err = s.Refresh(t.Context(), other.Refresh.Value)
				assert.ErrorIs(t, err, apperrors.ErrRefreshTokenRevoked, "unrelated session of the same user must be revoked too")
			})
		})

		t.Run("unknown token", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, err := s.Refresh(t.Context(), "never-issued")

				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
			})
		})

		t.Run("expired token retry does not revoke other sessions", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				refreshRepo := &postgres.RefreshTokenRepo{DB: tx}
				tm, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"}, refreshRepo)
				require.NoError(t, err)
				s, err := NewService(Config{}, tm, &postgres.UserRepo{DB: tx})
				require.NoError(t, err)

				user, live, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				// Stale session: its refresh token outlived its TTL on another device
				expired, err := refreshRepo.Save(t.Context(), models.RefreshToken{
					ID:        uuid.New(),
					UserID:    user.ID,
					Token:     "stale-device-token",
					CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
					ExpiresAt: time.Now().Add(-24 * time.Hour),
				})
				require.NoError(t, err)

				// An honest client may retry its expired token, that is not theft
				_, err = s.Refresh(t.Context(), expired.Token)
				require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
				_, err = s.Refresh(t.Context(), expired.Token)
				require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
				require.NotErrorIs(t, err, apperrors.ErrRefreshTokenIsUsed)

				_, err = s.Refresh(t.Context(), live.Refresh.Value)
				require.NoError(t, err, "live session on another device must survive the retries")
			})
		})
	})

	t.Run("Logout", func(t *testing.T) {
		t.Run("logout revokes the refresh token", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, pair, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				err = s.Logout(t.Context(), pair.Refresh.Value)
				require.NoError(t, err)

				_, err = s.Refresh(t.Context(), pair.Refresh.Value)
				assert.ErrorIs(t, err, apperrors.ErrRefreshTokenRevoked)
			})
		})

		t.Run("logout unknown token", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				err := s.Logout(t.Context(), "never-issued")

				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound, "handler relies on this kind to stay idempotent")
			})
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("valid access token", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				registered, pair, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				user, err := s.Authenticate(t.Context(), pair.Access.Value)

				require.NoError(t, err)
				assert.Equal(t, registered.ID, user.ID)
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, models.RoleUser, user.Role)
			})
		})

		t.Run("tampered access token", func(t *testing.T) {
			withService(t, func(s *AuthService) {
				_, pair, err := s.Register(t.Context(), registration)
				require.NoError(t, err)

				tampered := pair.Access.Value[:len(pair.Access.Value)-2] + "xx"
				_, err = s.Authenticate(t.Context(), tampered)

				require.Error(t, err)
			})
		})
	})

	t.Run("GetUser", func(t *testing.T) {
		withService(t, func(s *AuthService) {
			registered, _, err := s.Register(t.Context(), registration)
			require.NoError(t, err)

			user, err := s.GetUser(t.Context(), registered.ID)

			require.NoError(t, err)
			assert.Equal(t, registered.Username, user.Username)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Minute)

			_, err = s.GetUser(t.Context(), uuid.New())
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
