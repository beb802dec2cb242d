package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/maheshrc27/contentpilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postRows(posts ...*models.Post) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "prompt", "title", "content",
		"image_url", "video_url", "status", "created_at", "updated_at",
	})
	for _, p := range posts {
		rows.AddRow(p.ID, p.UserID, p.Prompt, p.Title, p.Content,
			p.ImageURL, p.VideoURL, p.Status, p.CreatedAt, p.UpdatedAt)
	}
	return rows
}

func TestPostGetByIDNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM posts WHERE id = \\$1").
		WithArgs(int64(10)).
		WillReturnRows(postRows())

	post, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, post)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM posts WHERE id = \\$1").
		WithArgs(int64(10)).
		WillReturnRows(postRows(&models.Post{
			ID: 10, UserID: 7, Title: "T", Content: "C",
			ImageURL: "http://img", Status: models.PostStatusDraft,
			CreatedAt: now, UpdatedAt: now,
		}))

	post, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, int64(7), post.UserID)
	assert.Equal(t, models.PostStatusDraft, post.Status)
}

func TestPostCreateReturnsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	mock.ExpectQuery("INSERT INTO posts").
		WithArgs(int64(7), "prompt", "T", "C", "http://img", "", models.PostStatusDraft).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Create(context.Background(), nil, &models.Post{
		UserID: 7, Prompt: "prompt", Title: "T", Content: "C",
		ImageURL: "http://img", Status: models.PostStatusDraft,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostUpdateContentPartial(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	title := "New title"
	now := time.Now()
	mock.ExpectQuery("UPDATE posts").
		WithArgs("New title", nil, sqlmock.AnyArg(), int64(10)).
		WillReturnRows(postRows(&models.Post{
			ID: 10, UserID: 7, Title: title, Content: "old content",
			Status: models.PostStatusDraft, CreatedAt: now, UpdatedAt: now,
		}))

	post, err := repo.UpdateContent(context.Background(), 10, &title, nil)
	require.NoError(t, err)
	assert.Equal(t, "New title", post.Title)
	assert.Equal(t, "old content", post.Content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	mock.ExpectExec("UPDATE posts").
		WithArgs(models.PostStatusPublished, sqlmock.AnyArg(), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), models.PostStatusPublished, 10))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostGetDraftsByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM posts WHERE user_id = \\$1 AND status = \\$2").
		WithArgs(int64(7), models.PostStatusDraft).
		WillReturnRows(postRows(
			&models.Post{ID: 1, UserID: 7, Status: models.PostStatusDraft, CreatedAt: now, UpdatedAt: now},
			&models.Post{ID: 2, UserID: 7, Status: models.PostStatusDraft, CreatedAt: now, UpdatedAt: now},
		))

	drafts, err := repo.GetDraftsByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, drafts, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
