package models

import "time"

type History struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	Status    string    `db:"status" json:"status"` // success, failed
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	HistoryStatusSuccess = "success"
	HistoryStatusFailed  = "failed"
)
