package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/maheshrc27/contentpilot/configs"
	"github.com/maheshrc27/contentpilot/internal/graph"
	"github.com/maheshrc27/contentpilot/internal/models"
	"github.com/maheshrc27/contentpilot/internal/repository"
	"github.com/maheshrc27/contentpilot/pkg/utils"
)

// PollConfig controls how long the orchestrator waits for a media container to
// finish server-side processing. Delays grow geometrically between attempts.
type PollConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxAttempts  int
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		InitialDelay: 1000 * time.Millisecond,
		Multiplier:   1.7,
		MaxAttempts:  12,
	}
}

// PublishOutcome is the result of a successful publish.
type PublishOutcome struct {
	MediaID string
	Post    *models.Post
}

type PublishService interface {
	Publish(ctx context.Context, userID, postID int64) (*PublishOutcome, error)
	PublishDrafts(ctx context.Context, userID int64) error
}

type publishService struct {
	cfg        config.Config
	gc         *graph.Client
	pr         repository.PostRepository
	sa         repository.SocialAccountRepository
	hr         repository.HistoryRepository
	poll       PollConfig
	httpClient *http.Client
}

func NewPublishService(cfg config.Config, gc *graph.Client, pr repository.PostRepository,
	sa repository.SocialAccountRepository, hr repository.HistoryRepository) PublishService {
	return &publishService{
		cfg:        cfg,
		gc:         gc,
		pr:         pr,
		sa:         sa,
		hr:         hr,
		poll:       DefaultPollConfig(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Publish pushes one post to the user's active Instagram account: stage a
// media container, wait for it to finish processing, publish it, then mark the
// post published locally. Every terminal outcome past the precondition checks
// leaves a history entry.
func (s *publishService) Publish(ctx context.Context, userID, postID int64) (*PublishOutcome, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		slog.Info(fmt.Sprintf("user %d attempted to publish post %d owned by %d", userID, postID, post.UserID))
		return nil, ErrNotOwner
	}

	account, err := s.sa.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNoActiveAccount
	}
	if account.AccountID == "" || account.AccessToken == "" {
		slog.Info(fmt.Sprintf("active account %d has incomplete credentials", account.ID))
		return nil, ErrInvalidAccountData
	}

	token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return nil, ErrInvalidAccountData
	}

	// The workflow must run to completion even if the caller goes away:
	// abandoning it mid-flight could publish remotely without recording
	// anything locally.
	ctx = context.WithoutCancel(ctx)

	if err := s.checkImageReachable(ctx, post.ImageURL); err != nil {
		s.recordHistory(ctx, userID, postID, models.HistoryStatusFailed,
			fmt.Sprintf("Image not accessible by FB: %s", post.ImageURL))
		return nil, fmt.Errorf("%w: %v", ErrImageUnreachable, err)
	}

	caption := post.Content
	if caption == "" {
		caption = post.Title
	}

	creationID, err := s.gc.CreateMediaContainer(ctx, account.AccountID, token, post.ImageURL, caption)
	if err != nil {
		slog.Info(err.Error())
		s.recordHistory(ctx, userID, postID, models.HistoryStatusFailed,
			fmt.Sprintf("Create container failed: %s", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrContainerCreation, err)
	}

	mediaID, err := s.waitAndPublish(ctx, account.AccountID, creationID, token)
	if err != nil {
		if timeoutErr, ok := err.(*ContainerTimeoutError); ok {
			s.recordHistory(ctx, userID, postID, models.HistoryStatusFailed,
				"Media container not ready in time (Media ID is not available). Last status: "+string(timeoutErr.LastStatus))
		} else {
			s.recordHistory(ctx, userID, postID, models.HistoryStatusFailed, err.Error())
		}
		return nil, err
	}

	if err := s.pr.UpdateStatus(ctx, models.PostStatusPublished, postID); err != nil {
		slog.Info(err.Error())
		s.recordHistory(ctx, userID, postID, models.HistoryStatusFailed,
			"Published on Instagram but failed to update DB status")
		return nil, &PartialFailureError{MediaID: mediaID, Err: err}
	}

	s.recordHistory(ctx, userID, postID, models.HistoryStatusSuccess,
		fmt.Sprintf("Published (IG post id: %s)", mediaID))

	post.Status = models.PostStatusPublished
	return &PublishOutcome{MediaID: mediaID, Post: post}, nil
}

// PublishDrafts publishes every remaining draft for the user, continuing past
// individual failures. Used by the background auto-post task.
func (s *publishService) PublishDrafts(ctx context.Context, userID int64) error {
	drafts, err := s.pr.GetDraftsByUserID(ctx, userID)
	if err != nil {
		return err
	}

	for _, draft := range drafts {
		if _, err := s.Publish(ctx, userID, draft.ID); err != nil {
			slog.Warn(fmt.Sprintf("auto-post of post %d failed: %v", draft.ID, err))
		}
	}
	return nil
}

// waitAndPublish polls the container until it reports FINISHED, then publishes
// it. Containers that never report a status at all get a speculative publish
// attempt each round, since some finished containers omit the field. Status
// probe errors are transient and do not consume the publish.
func (s *publishService) waitAndPublish(ctx context.Context, igUserID, creationID, token string) (string, error) {
	delay := s.poll.InitialDelay
	var lastStatus []byte

	for attempt := 0; attempt < s.poll.MaxAttempts; attempt++ {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}

		status, err := s.gc.GetContainerStatus(ctx, creationID, token)
		if err != nil {
			slog.Info(fmt.Sprintf("container status check failed: %v", err))
			delay = time.Duration(float64(delay) * s.poll.Multiplier)
			continue
		}
		lastStatus = status.Raw

		if status.HasStatus {
			if strings.EqualFold(status.StatusCode, "FINISHED") {
				mediaID, err := s.gc.PublishMedia(ctx, igUserID, creationID, token)
				if err != nil {
					slog.Info(err.Error())
					return "", fmt.Errorf("%w: %v", ErrPublishFailed, err)
				}
				return mediaID, nil
			}
		} else {
			// No status field at all; try publishing anyway and keep
			// polling if the container turns out not to be ready.
			mediaID, err := s.gc.PublishMedia(ctx, igUserID, creationID, token)
			if err == nil {
				return mediaID, nil
			}
			slog.Info(fmt.Sprintf("speculative publish failed: %v", err))
		}

		delay = time.Duration(float64(delay) * s.poll.Multiplier)
	}

	return "", &ContainerTimeoutError{LastStatus: lastStatus}
}

// checkImageReachable verifies the image URL is publicly fetchable before
// spending a container on it. HEAD first, falling back to GET for hosts that
// reject HEAD.
func (s *publishService) checkImageReachable(ctx context.Context, imageURL string) error {
	if imageURL == "" {
		return fmt.Errorf("post has no image url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode < 400 {
			return nil
		}
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}

	resp, err = s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}
	return nil
}

// recordHistory is best effort: a ledger write failure must never change the
// outcome of the publish itself.
func (s *publishService) recordHistory(ctx context.Context, userID, postID int64, status, message string) {
	_, err := s.hr.Create(ctx, &models.History{
		UserID:  userID,
		PostID:  postID,
		Status:  status,
		Message: message,
	})
	if err != nil {
		slog.Warn(fmt.Sprintf("recording history for post %d: %v", postID, err))
	}
}
