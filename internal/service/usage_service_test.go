package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsageRepo struct {
	count    int
	countErr error
	from, to time.Time
	recorded []string
}

func (r *fakeUsageRepo) Create(ctx context.Context, userID int64, action string) error {
	r.recorded = append(r.recorded, fmt.Sprintf("%d:%s", userID, action))
	return nil
}

func (r *fakeUsageRepo) CountByAction(ctx context.Context, userID int64, action string, from, to time.Time) (int, error) {
	r.from, r.to = from, to
	return r.count, r.countErr
}

func (r *fakeUsageRepo) RemoveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestCanGenerateUnderLimit(t *testing.T) {
	ur := &fakeUsageRepo{count: defaultDailyLimit - 1}
	s := NewUsageService(ur)

	allowed, err := s.CanGenerate(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCanGenerateAtLimit(t *testing.T) {
	ur := &fakeUsageRepo{count: defaultDailyLimit}
	s := NewUsageService(ur)

	allowed, err := s.CanGenerate(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanGenerateFailsOpen(t *testing.T) {
	ur := &fakeUsageRepo{countErr: fmt.Errorf("db down")}
	s := NewUsageService(ur)

	allowed, err := s.CanGenerate(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCanGenerateUsesUTCDayWindow(t *testing.T) {
	ur := &fakeUsageRepo{}
	s := NewUsageService(ur)

	_, err := s.CanGenerate(context.Background(), 7)
	require.NoError(t, err)

	now := time.Now().UTC()
	assert.Equal(t, time.UTC, ur.from.Location())
	assert.Equal(t, now.Year(), ur.from.Year())
	assert.Equal(t, now.YearDay(), ur.from.YearDay())
	assert.Equal(t, 0, ur.from.Hour())
	assert.Equal(t, 0, ur.from.Minute())
	assert.Equal(t, 0, ur.from.Second())

	assert.Equal(t, 23, ur.to.Hour())
	assert.Equal(t, 59, ur.to.Minute())
	assert.Equal(t, 59, ur.to.Second())
	assert.Equal(t, now.YearDay(), ur.to.YearDay())
}

func TestDayWindowBounds(t *testing.T) {
	at := time.Date(2024, 3, 15, 13, 45, 12, 0, time.UTC)
	from, to := dayWindowUTC(at)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 999000000, time.UTC), to)

	// yesterday's timestamps fall outside the window
	yesterday := at.AddDate(0, 0, -1)
	assert.True(t, yesterday.Before(from))
}

func TestRecordUsage(t *testing.T) {
	ur := &fakeUsageRepo{}
	s := NewUsageService(ur)

	require.NoError(t, s.RecordUsage(context.Background(), 7, ActionGeneration))
	assert.Equal(t, []string{"7:generation"}, ur.recorded)
}
