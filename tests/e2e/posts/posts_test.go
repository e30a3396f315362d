package posts

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akovalyov/inkwell/internal/models"
	"github.com/akovalyov/inkwell/internal/service/auth"
	"github.com/akovalyov/inkwell/internal/testutil"
	"github.com/akovalyov/inkwell/tests/e2e"
)

const (
	PostsURL = "/api/posts"
)

func Test_Posts(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Send request with optional bearer token, return status and body
	do := func(t *testing.T, method string, url string, access string, data string) (int, string) {
		t.Helper()

		var reqBody io.Reader
		if data != "" {
			reqBody = strings.NewReader(data)
		}
		req, err := http.NewRequest(method, url, reqBody)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		return resp.StatusCode, string(body)
	}

	e2e.ServeWithTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s e2e.Services) {
		register := func(t *testing.T, username string) (models.User, models.TokenPair) {
			t.Helper()
			user, pair, err := s.AuthService.Register(t.Context(), auth.RegisterParams{
				Username: username,
				Email:    username + "@x.com",
				Password: "Str0ng!Passw0rd",
			})
			require.NoError(t, err)
			return user, pair
		}

		// Promote user to admin in the store and login again
		// so the new access token carries the admin role
		loginAsAdmin := func(t *testing.T, username string) models.TokenPair {
			t.Helper()
			_, err := tx.Exec(t.Context(), "UPDATE users SET role = 'admin' WHERE username = $1", username)
			require.NoError(t, err)

			_, pair, err := s.AuthService.Login(t.Context(), username, "Str0ng!Passw0rd")
			require.NoError(t, err)
			return pair
		}

		createPost := func(t *testing.T, access string) string {
			t.Helper()
			status, body := do(t, http.MethodPost, srvURL+PostsURL, access, `{"title": "Hello", "content": "First!"}`)
			require.Equalf(t, http.StatusCreated, status, "not expected code. Body: %s", body)

			var parsed struct {
				Post struct {
					ID string `json:"id"`
				} `json:"post"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &parsed))
			require.NotEmpty(t, parsed.Post.ID)
			return parsed.Post.ID
		}

		t.Run("create and read post", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				_, pair := register(t, "alice")
				postID := createPost(t, pair.Access.Value)

				// Reading is public, no token needed
				status, body := do(t, http.MethodGet, srvURL+PostsURL+"/"+postID, "", "")
				require.Equalf(t, http.StatusOK, status, "not expected code. Body: %s", body)

				var parsed struct {
					Post struct {
						Title      string `json:"title"`
						Content    string `json:"content"`
						AuthorName string `json:"author_name"`
					} `json:"post"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &parsed))
				assert.Equal(t, "Hello", parsed.Post.Title)
				assert.Equal(t, "First!", parsed.Post.Content)
				assert.Equal(t, "alice", parsed.Post.AuthorName)
			})
		})

		t.Run("list posts is public", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				_, pair := register(t, "alice")
				createPost(t, pair.Access.Value)

				status, body := do(t, http.MethodGet, srvURL+PostsURL, "", "")

				require.Equalf(t, http.StatusOK, status, "not expected code. Body: %s", body)

				var parsed struct {
					Posts []struct {
						AuthorName string `json:"author_name"`
					} `json:"posts"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &parsed))
				require.Len(t, parsed.Posts, 1)
				assert.Equal(t, "alice", parsed.Posts[0].AuthorName)
			})
		})

		t.Run("create without token fails", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				status, body := do(t, http.MethodPost, srvURL+PostsURL, "", `{"title": "Hello", "content": "First!"}`)

				require.Equalf(t, http.StatusUnauthorized, status, "not expected code. Body: %s", body)
			})
		})

		t.Run("owner can update", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				_, pair := register(t, "alice")
				postID := createPost(t, pair.Access.Value)

				status, body := do(t, http.MethodPut, srvURL+PostsURL+"/"+postID, pair.Access.Value, `{"title": "Edited", "content": "Better"}`)

				require.Equalf(t, http.StatusOK, status, "not expected code. Body: %s", body)

				var parsed struct {
					Post struct {
						Title string `json:"title"`
					} `json:"post"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &parsed))
				assert.Equal(t, "Edited", parsed.Post.Title)
			})
		})

		t.Run("non owner can not update", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				_, alice := register(t, "alice")
				_, bob := register(t, "bob")
				postID := createPost(t, alice.Access.Value)

				status, body := do(t, http.MethodPut, srvURL+PostsURL+"/"+postID, bob.Access.Value, `{"title": "Hijacked", "content": "Mine now"}`)

				require.Equalf(t, http.StatusForbidden, status, "not expected code. Body: %s", body)
				require.JSONEq(t, `
					{
						"error": "service_error",
						"message": "You can only edit your own posts"
					}`, body)
			})
		})

		t.Run("non owner can not delete", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				_, alice := register(t, "alice")
				_, bob := register(t, "bob")
				postID := createPost(t, alice.Access.Value)

				status, body := do(t, http.MethodDelete, srvURL+PostsURL+"/"+postID, bob.Access.Value, "")

				require.Equalf(t, http.StatusForbidden, status, "not expected code. Body: %s", body)
			})
		})

		t.Run("owner can delete", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				_, pair := register(t, "alice")
				postID := createPost(t, pair.Access.Value)

				status, body := do(t, http.MethodDelete, srvURL+PostsURL+"/"+postID, pair.Access.Value, "")
				require.Equalf(t, http.StatusNoContent, status, "not expected code. Body: %s", body)

				status, _ = do(t, http.MethodGet, srvURL+PostsURL+"/"+postID, "", "")
				require.Equal(t, http.StatusNotFound, status)
			})
		})

		t.Run("admin can delete other users post", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				_, alice := register(t, "alice")
				register(t, "carol")
				admin := loginAsAdmin(t, "carol")
				postID := createPost(t, alice.Access.Value)

				status, body := do(t, http.MethodDelete, srvURL+PostsURL+"/"+postID, admin.Access.Value, "")

				require.Equalf(t, http.StatusNoContent, status, "admin must override ownership. Body: %s", body)
			})
		})

		t.Run("unknown post id", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				status, _ := do(t, http.MethodGet, srvURL+PostsURL+"/not-a-uuid", "", "")
				require.Equal(t, http.StatusNotFound, status, "malformed id must look like a missing post")

				status, _ = do(t, http.MethodGet, srvURL+PostsURL+"/93a6f7cb-4a1c-49a5-90d8-a8e196f2f3a2", "", "")
				require.Equal(t, http.StatusNotFound, status)
			})
		})
	})
}
