package service

import (
	"context"
	"testing"

	"github.com/maheshrc27/contentpilot/internal/models"
	"github.com/maheshrc27/contentpilot/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostSaveRequiresContent(t *testing.T) {
	s := NewPostService(&fakePostRepo{posts: map[int64]*models.Post{}}, nil)

	_, err := s.Save(context.Background(), 7, &transfer.PostSave{})
	assert.Error(t, err)
}

func TestPostSaveDraft(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{}}
	s := NewPostService(pr, nil)

	id, err := s.Save(context.Background(), 7, &transfer.PostSave{
		Prompt:   "a prompt",
		Title:    "T",
		Content:  "C",
		ImageURL: "http://img",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestPostUpdateNothingToUpdate(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{10: testPost(7, "http://img")}}
	s := NewPostService(pr, nil)

	_, err := s.Update(context.Background(), 7, &transfer.PostUpdate{ID: 10})
	assert.Error(t, err)
}

func TestPostUpdateOwnership(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{10: testPost(99, "http://img")}}
	s := NewPostService(pr, nil)

	title := "New"
	_, err := s.Update(context.Background(), 7, &transfer.PostUpdate{ID: 10, Title: &title})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestPostUpdatePartial(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{10: testPost(7, "http://img")}}
	s := NewPostService(pr, nil)

	title := "New title"
	post, err := s.Update(context.Background(), 7, &transfer.PostUpdate{ID: 10, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New title", post.Title)
	assert.Equal(t, "A caption #tag", post.Content, "content stays untouched")
}

func TestPostRemoveNotFound(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{}}
	s := NewPostService(pr, nil)

	err := s.Remove(context.Background(), 7, 10)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostRemoveOwnership(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{10: testPost(99, "http://img")}}
	s := NewPostService(pr, nil)

	err := s.Remove(context.Background(), 7, 10)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.NotNil(t, pr.posts[10], "foreign post must survive")
}

func TestPostInfo(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{10: testPost(7, "http://img")}}
	s := NewPostService(pr, nil)

	post, err := s.PostInfo(context.Background(), 10, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(10), post.ID)

	_, err = s.PostInfo(context.Background(), 10, 8)
	assert.ErrorIs(t, err, ErrNotOwner)
}
