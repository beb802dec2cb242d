package service

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrTokenExchange       = errors.New("failed to get token")
	ErrNoPages             = errors.New("no connected facebook pages")
	ErrNoInstagramAccounts = errors.New("no instagram business accounts linked")

	ErrPostNotFound       = errors.New("post not found")
	ErrNotOwner           = errors.New("forbidden: not the owner")
	ErrAccountNotFound    = errors.New("social account not found")
	ErrNoActiveAccount    = errors.New("no active instagram account")
	ErrInvalidAccountData = errors.New("invalid social account data")
	ErrImageUnreachable   = errors.New("image url not accessible")
	ErrContainerCreation  = errors.New("create container failed")
	ErrPublishFailed      = errors.New("media publish failed")
)

// ContainerTimeoutError is returned when the media container never became
// publishable within the polling budget. LastStatus keeps the last payload the
// status endpoint returned, for diagnostics.
type ContainerTimeoutError struct {
	LastStatus json.RawMessage
}

func (e *ContainerTimeoutError) Error() string {
	return fmt.Sprintf("media container not ready in time, last status: %s", string(e.LastStatus))
}

// PartialFailureError reports the dual-state outcome where the remote publish
// succeeded but the local draft could not be marked published.
type PartialFailureError struct {
	MediaID string
	Err     error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("published on instagram but failed to update post status: %v", e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
