package post

import (
	"context"

	"github.com/google/uuid"

	"github.com/akovalyov/inkwell/internal/apperrors"
	"github.com/akovalyov/inkwell/internal/models"
	"github.com/akovalyov/inkwell/internal/repository"
	"github.com/akovalyov/inkwell/internal/service/access"
)

type PostService struct {
	postRepo repository.PostRepo
}

func NewService(postRepo repository.PostRepo) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) Create(ctx context.Context, author models.User, title string, content string) (models.Post, error) {
	post, err := s.postRepo.CreatePost(ctx, repository.CreatePostParams{
		Title:    title,
		Content:  content,
		AuthorID: author.ID,
	})
	if err != nil {
		return post, err
	}

	post.AuthorName = author.Username
	return post, nil
}

func (s *PostService) Get(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	return s.postRepo.GetPost(ctx, postID)
}

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.ListPosts(ctx)
}

// Update post content
// Allowed for the post owner or an admin, otherwise apperrors.ErrForbidden
func (s *PostService) Update(ctx context.Context, subject models.User, postID uuid.UUID, title string, content string) (models.Post, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return post, err
	}

	if !access.CanModify(subject.Role, subject.ID, post.AuthorID) {
		return models.Post{}, apperrors.ErrForbidden
	}

	updated, err := s.postRepo.UpdatePost(ctx, postID, repository.UpdatePostParams{
		Title:   title,
		Content: content,
	})
	if err != nil {
		return updated, err
	}

	updated.AuthorName = post.AuthorName
	return updated, nil
}

// Delete post
// Same ownership rule as Update
func (s *PostService) Delete(ctx context.Context, subject models.User, postID uuid.UUID) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if !access.CanModify(subject.Role, subject.ID, post.AuthorID) {
		return apperrors.ErrForbidden
	}

	return s.postRepo.DeletePost(ctx, postID)
}
