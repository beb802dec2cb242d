package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maheshrc27/contentpilot/internal/models"
	"github.com/maheshrc27/contentpilot/internal/repository"
)

type HistoryService interface {
	List(ctx context.Context, userID int64) ([]*models.History, error)
}

type historyService struct {
	hr repository.HistoryRepository
}

func NewHistoryService(hr repository.HistoryRepository) HistoryService {
	return &historyService{hr: hr}
}

func (s *historyService) List(ctx context.Context, userID int64) ([]*models.History, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	return s.hr.GetByUserID(ctx, userID)
}
