package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

type UsageLogRepository interface {
	Create(ctx context.Context, userID int64, action string) error
	CountByAction(ctx context.Context, userID int64, action string, from, to time.Time) (int, error)
	RemoveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type usageLogRepository struct {
	db *sql.DB
}

func NewUsageLogRepository(db *sql.DB) UsageLogRepository {
	return &usageLogRepository{db: db}
}

func (r *usageLogRepository) Create(ctx context.Context, userID int64, action string) error {
	query := `INSERT INTO usage_logs (user_id, action) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, userID, action)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *usageLogRepository) CountByAction(ctx context.Context, userID int64, action string, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM usage_logs
		WHERE user_id = $1 AND action = $2 AND created_at >= $3 AND created_at <= $4
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, action, from, to).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *usageLogRepository) RemoveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM usage_logs WHERE created_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
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
