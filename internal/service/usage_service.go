package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentpilot/internal/repository"
)

const (
	ActionGeneration = "generation"

	defaultDailyLimit = 20
)

type UsageService interface {
	CanGenerate(ctx context.Context, userID int64) (bool, error)
	RecordUsage(ctx context.Context, userID int64, action string) error
}

type usageService struct {
	ur    repository.UsageLogRepository
	limit int
}

func NewUsageService(ur repository.UsageLogRepository) UsageService {
	return &usageService{ur: ur, limit: defaultDailyLimit}
}

// CanGenerate reports whether the user is under the daily generation quota.
// The window is the current UTC calendar day. A failed count fails open: quota
// enforcement never blocks the product when the ledger is unreachable.
func (s *usageService) CanGenerate(ctx context.Context, userID int64) (bool, error) {
	from, to := dayWindowUTC(time.Now().UTC())

	count, err := s.ur.CountByAction(ctx, userID, ActionGeneration, from, to)
	if err != nil {
		slog.Warn(fmt.Sprintf("usage count for user %d failed, allowing request: %v", userID, err))
		return true, nil
	}

	return count < s.limit, nil
}

func (s *usageService) RecordUsage(ctx context.Context, userID int64, action string) error {
	return s.ur.Create(ctx, userID, action)
}

// dayWindowUTC returns the inclusive bounds of the UTC day containing t.
func dayWindowUTC(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999000000, time.UTC)
	return from, to
}
