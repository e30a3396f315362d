package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/akovalyov/inkwell/internal/apperrors"
	"github.com/akovalyov/inkwell/internal/handlers/render"
	"github.com/akovalyov/inkwell/internal/handlers/userctx"
	"github.com/akovalyov/inkwell/internal/logger"
	"github.com/akovalyov/inkwell/internal/models"
)

type postResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toPostResponse(p models.Post) postResponse {
	return postResponse{
		ID:         p.ID.String(),
		Title:      p.Title,
		Content:    p.Content,
		AuthorID:   p.AuthorID.String(),
		AuthorName: p.AuthorName,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func handleListPosts(postService postService, l logger.Logger) http.Handler {
	type response struct {
		Posts []postResponse `json:"posts"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts, err := postService.List(r.Context())
		if err != nil {
			l.Error("list posts failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resp := response{Posts: make([]postResponse, 0, len(posts))}
		for _, p := range posts {
			resp.Posts = append(resp.Posts, toPostResponse(p))
		}

		render.JSON(w, resp)
	})
}

func handleGetPost(postService postService, l logger.Logger) http.Handler {
	type response struct {
		Post postResponse `json:"post"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Post not found", http.StatusNotFound)
			return
		}

		post, err := postService.Get(r.Context(), postID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrPostNotFound):
				render.ServiceError(w, "Post not found", http.StatusNotFound)
			default:
				l.Error("get post failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Post: toPostResponse(post)})
	})
}

func handleCreatePost(postService postService, l logger.Logger) http.Handler {
	type request struct {
		Title   string `json:"title" validate:"required,max=200"`
		Content string `json:"content" validate:"required"`
	}
	type response struct {
		Message string       `json:"message"`
		Post    postResponse `json:"post"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, _ := userctx.FromContext(r.Context())

		post, err := postService.Create(r.Context(), user, data.Title, data.Content)
		if err != nil {
			l.Error("create post failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, response{
			Message: "Post created successfully",
			Post:    toPostResponse(post),
		}, http.StatusCreated)
	})
}

func handleUpdatePost(postService postService, l logger.Logger) http.Handler {
	type request struct {
		Title   string `json:"title" validate:"required,max=200"`
		Content string `json:"content" validate:"required"`
	}
	type response struct {
		Message string       `json:"message"`
		Post    postResponse `json:"post"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Post not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, _ := userctx.FromContext(r.Context())

		post, err := postService.Update(r.Context(), user, postID, data.Title, data.Content)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrPostNotFound):
				render.ServiceError(w, "Post not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrForbidden):
				render.ServiceError(w, "You can only edit your own posts", http.StatusForbidden)
			default:
				l.Error("update post failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{
			Message: "Post updated successfully",
			Post:    toPostResponse(post),
		})
	})
}

func handleDeletePost(postService postService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Post not found", http.StatusNotFound)
			return
		}

		user, _ := userctx.FromContext(r.Context())

		err = postService.Delete(r.Context(), user, postID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrPostNotFound):
				render.ServiceError(w, "Post not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrForbidden):
				render.ServiceError(w, "You can only delete your own posts", http.StatusForbidden)
			default:
				l.Error("delete post failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
