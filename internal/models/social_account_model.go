package models

import "time"

type SocialAccount struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Provider       string    `db:"provider" json:"provider"`
	AccountID      string    `db:"account_id" json:"account_id"`
	Username       string    `db:"username" json:"username"`
	Name           string    `db:"name" json:"name"`
	ProfilePicture string    `db:"profile_picture_url" json:"profile_picture"`
	PageID         string    `db:"page_id" json:"page_id"`
	PageName       string    `db:"page_name" json:"page_name"`
	AccessToken    string    `db:"access_token" json:"-"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

const ProviderInstagram = "instagram"
