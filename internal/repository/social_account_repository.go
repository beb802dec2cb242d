package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentpilot/internal/models"
)

type SocialAccountRepository interface {
	Upsert(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) error
	UpsertAll(ctx context.Context, accounts []*models.SocialAccount) error
	GetByID(ctx context.Context, id int64) (*models.SocialAccount, error)
	GetActiveByUserID(ctx context.Context, userID int64) (*models.SocialAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	ClearActive(ctx context.Context, userID int64) error
	SetActive(ctx context.Context, userID int64, accountID string) (int64, error)
	Remove(ctx context.Context, id int64) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const socialAccountColumns = `id, user_id, provider, account_id, username, name, profile_picture_url, page_id, page_name, access_token, is_active, created_at, updated_at`

// Upsert inserts a linked account or refreshes an existing row keyed by
// (provider, account_id). Inserts start inactive; updates never touch is_active.
func (r *socialAccountRepository) Upsert(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) error {
	query := `
		INSERT INTO social_accounts (
			user_id,
			provider,
			account_id,
			username,
			name,
			profile_picture_url,
			page_id,
			page_name,
			access_token,
			is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		ON CONFLICT (provider, account_id) DO UPDATE
		SET username = EXCLUDED.username,
			name = EXCLUDED.name,
			profile_picture_url = EXCLUDED.profile_picture_url,
			page_id = EXCLUDED.page_id,
			page_name = EXCLUDED.page_name,
			access_token = EXCLUDED.access_token,
			updated_at = CURRENT_TIMESTAMP
	`

	var err error
	args := []interface{}{
		sa.UserID,
		sa.Provider,
		sa.AccountID,
		sa.Username,
		sa.Name,
		sa.ProfilePicture,
		sa.PageID,
		sa.PageName,
		sa.AccessToken,
	}

	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// UpsertAll writes all candidates in one transaction. If the transaction
// fails, callers are expected to retry rows individually via Upsert.
func (r *socialAccountRepository) UpsertAll(ctx context.Context, accounts []*models.SocialAccount) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	for _, sa := range accounts {
		if err := r.Upsert(ctx, tx, sa); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Provider, &sa.AccountID, &sa.Username,
		&sa.Name, &sa.ProfilePicture, &sa.PageID, &sa.PageName, &sa.AccessToken,
		&sa.IsActive, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sa, nil
}

func (r *socialAccountRepository) GetActiveByUserID(ctx context.Context, userID int64) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 AND is_active = TRUE`
	row := r.db.QueryRowContext(ctx, query, userID)

	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Provider, &sa.AccountID, &sa.Username,
		&sa.Name, &sa.ProfilePicture, &sa.PageID, &sa.PageName, &sa.AccessToken,
		&sa.IsActive, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sa, nil
}

func (r *socialAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		err := rows.Scan(&sa.ID, &sa.UserID, &sa.Provider, &sa.AccountID, &sa.Username,
			&sa.Name, &sa.ProfilePicture, &sa.PageID, &sa.PageName, &sa.AccessToken,
			&sa.IsActive, &sa.CreatedAt, &sa.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &sa)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *socialAccountRepository) ClearActive(ctx context.Context, userID int64) error {
	query := `UPDATE social_accounts SET is_active = FALSE, updated_at = $1 WHERE user_id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SetActive marks one of the user's accounts active and returns the number of
// rows updated, so callers can tell a missing account from a successful write.
func (r *socialAccountRepository) SetActive(ctx context.Context, userID int64, accountID string) (int64, error) {
	query := `UPDATE social_accounts SET is_active = TRUE, updated_at = $1 WHERE user_id = $2 AND account_id = $3`
	result, err := r.db.ExecContext(ctx, query, time.Now(), userID, accountID)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}

func (r *socialAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM social_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
