package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maheshrc27/contentpilot/internal/models"
	"github.com/maheshrc27/contentpilot/internal/repository"
)

type AccountService interface {
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, string, error)
	SetActive(ctx context.Context, userID int64, accountID string) error
}

type accountService struct {
	sa repository.SocialAccountRepository
}

func NewAccountService(sa repository.SocialAccountRepository) AccountService {
	return &accountService{sa: sa}
}

// List returns all of the user's linked accounts plus the id of the active
// one. A user with no linked accounts gets an empty list, not an error.
func (s *accountService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, string, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, "", err
	}

	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	var activeID string
	for _, acc := range accounts {
		if acc.IsActive {
			activeID = acc.AccountID
			break
		}
	}

	return accounts, activeID, nil
}

// SetActive makes accountID the user's single publishing identity. The clear
// write is sequenced before the set write so a reader never observes two
// active rows; a crash in between leaves zero active rows, which a retry
// repairs.
func (s *accountService) SetActive(ctx context.Context, userID int64, accountID string) error {
	if err := s.sa.ClearActive(ctx, userID); err != nil {
		return err
	}

	affected, err := s.sa.SetActive(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if affected == 0 {
		slog.Info("set-active matched no rows")
		return ErrAccountNotFound
	}

	return nil
}
