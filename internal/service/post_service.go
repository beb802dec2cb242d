package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/contentpilot/internal/models"
	"github.com/maheshrc27/contentpilot/internal/repository"
	"github.com/maheshrc27/contentpilot/internal/transfer"
)

type PostService interface {
	Save(ctx context.Context, userID int64, ps *transfer.PostSave) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Update(ctx context.Context, userID int64, pu *transfer.PostUpdate) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr      repository.PostRepository
	storage *StorageService
}

func NewPostService(pr repository.PostRepository, storage *StorageService) PostService {
	return &postService{
		pr:      pr,
		storage: storage,
	}
}

// Save stores a generated post as a draft. The image is rehosted on R2 when
// possible, since generation providers expire their URLs; the original URL is
// kept when rehosting fails.
func (s *postService) Save(ctx context.Context, userID int64, ps *transfer.PostSave) (int64, error) {
	if ps == nil {
		err := errors.New("post data is nil")
		slog.Info(err.Error())
		return 0, err
	}
	if ps.Title == "" && ps.Content == "" {
		err := errors.New("post needs a title or content")
		slog.Info(err.Error())
		return 0, err
	}

	imageURL := ps.ImageURL
	if imageURL != "" && s.storage != nil {
		hosted, err := s.storage.SaveFromURL(ctx, imageURL)
		if err != nil {
			slog.Warn(fmt.Sprintf("rehosting image failed, keeping source url: %v", err))
		} else {
			imageURL = hosted
		}
	}

	id, err := s.pr.Create(ctx, nil, &models.Post{
		UserID:   userID,
		Prompt:   ps.Prompt,
		Title:    ps.Title,
		Content:  ps.Content,
		ImageURL: imageURL,
		Status:   models.PostStatusDraft,
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	return s.pr.GetByUserID(ctx, userID)
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, ErrNotOwner
	}

	return post, nil
}

// Update applies a partial edit. Fields left nil keep their current value; a
// request with neither field set is rejected before touching the database.
func (s *postService) Update(ctx context.Context, userID int64, pu *transfer.PostUpdate) (*models.Post, error) {
	if pu.Title == nil && pu.Content == nil {
		err := errors.New("nothing to update")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, pu.ID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, ErrNotOwner
	}

	return s.pr.UpdateContent(ctx, pu.ID, pu.Title, pu.Content)
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		return ErrNotOwner
	}

	return s.pr.Remove(ctx, postID)
}
