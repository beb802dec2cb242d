package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/contentpilot/internal/models"
)

type HistoryRepository interface {
	Create(ctx context.Context, h *models.History) (int64, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.History, error)
}

type historyRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, h *models.History) (int64, error) {
	query := `
		INSERT INTO history (user_id, post_id, status, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, h.UserID, h.PostID, h.Status, h.Message).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *historyRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.History, error) {
	query := `SELECT id, user_id, post_id, status, message, created_at FROM history WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.History
	for rows.Next() {
		var h models.History
		err := rows.Scan(&h.ID, &h.UserID, &h.PostID, &h.Status, &h.Message, &h.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &h)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return entries, nil
}
