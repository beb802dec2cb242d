package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/maheshrc27/contentpilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountList(t *testing.T) {
	sa := &fakeSocialAccountRepo{
		accounts: []*models.SocialAccount{
			{ID: 1, AccountID: "ig-1"},
			{ID: 2, AccountID: "ig-2", IsActive: true},
		},
	}
	s := NewAccountService(sa)

	accounts, activeID, err := s.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, "ig-2", activeID)
}

func TestAccountListNoActive(t *testing.T) {
	sa := &fakeSocialAccountRepo{
		accounts: []*models.SocialAccount{{ID: 1, AccountID: "ig-1"}},
	}
	s := NewAccountService(sa)

	accounts, activeID, err := s.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Empty(t, activeID)
}

func TestSetActiveClearsBeforeSet(t *testing.T) {
	sa := &fakeSocialAccountRepo{setAffected: 1}
	s := NewAccountService(sa)

	err := s.SetActive(context.Background(), 7, "ig-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"clear", "set:ig-2"}, sa.calls)
}

func TestSetActiveAccountNotFound(t *testing.T) {
	sa := &fakeSocialAccountRepo{setAffected: 0}
	s := NewAccountService(sa)

	err := s.SetActive(context.Background(), 7, "nope")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestSetActiveClearFailureStops(t *testing.T) {
	sa := &fakeSocialAccountRepo{clearErr: fmt.Errorf("db down")}
	s := NewAccountService(sa)

	err := s.SetActive(context.Background(), 7, "ig-2")
	require.Error(t, err)
	assert.Equal(t, []string{"clear"}, sa.calls, "set must not run when clear fails")
}
