package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	config "github.com/maheshrc27/contentpilot/configs"
	"github.com/maheshrc27/contentpilot/internal/graph"
	"github.com/maheshrc27/contentpilot/internal/models"
	"github.com/maheshrc27/contentpilot/internal/repository"
	"github.com/maheshrc27/contentpilot/pkg/utils"
)

const facebookAuthURL = "https://www.facebook.com/v20.0/dialog/oauth"

type InstagramService interface {
	GetAuthURL(ctx context.Context, state string) string
	LinkCallback(ctx context.Context, code string, userID int64) error
}

type instagramService struct {
	cfg config.Config
	gc  *graph.Client
	sa  repository.SocialAccountRepository
}

func NewInstagramService(cfg config.Config, gc *graph.Client, sa repository.SocialAccountRepository) InstagramService {
	return &instagramService{
		cfg: cfg,
		gc:  gc,
		sa:  sa,
	}
}

func (s *instagramService) GetAuthURL(ctx context.Context, state string) string {
	params := url.Values{}
	params.Add("client_id", s.cfg.FacebookAppID)
	params.Add("redirect_uri", s.cfg.FacebookRedirect)
	params.Add("scope", "pages_show_list,pages_read_engagement,instagram_basic,instagram_content_publish")
	params.Add("response_type", "code")
	params.Add("state", state)

	return fmt.Sprintf("%s?%s", facebookAuthURL, params.Encode())
}

// LinkCallback exchanges the OAuth code, walks every Page the user manages and
// upserts each linked Instagram Business account as a candidate publishing
// identity. A failure on one Page never aborts discovery of the others.
func (s *instagramService) LinkCallback(ctx context.Context, code string, userID int64) error {
	if userID == 0 {
		slog.Info(ErrNotAuthenticated.Error())
		return ErrNotAuthenticated
	}

	userToken, err := s.gc.ExchangeCode(ctx, s.cfg.FacebookAppID, s.cfg.FacebookAppSecret, s.cfg.FacebookRedirect, code)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	pages, err := s.gc.ListPages(ctx, userToken)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("listing pages: %w", err)
	}
	if len(pages) == 0 {
		return ErrNoPages
	}

	var candidates []*models.SocialAccount
	for _, page := range pages {
		igUserID, err := s.gc.GetPageInstagramAccount(ctx, page.ID, userToken)
		if err != nil {
			slog.Warn(fmt.Sprintf("resolving IG account for page %s: %v", page.ID, err))
			continue
		}
		if igUserID == "" {
			continue
		}

		profile, err := s.gc.GetInstagramProfile(ctx, igUserID, userToken)
		if err != nil {
			slog.Warn(fmt.Sprintf("fetching IG profile %s: %v", igUserID, err))
			continue
		}

		// prefer the page-scoped token; older responses omit it
		pageToken := page.AccessToken
		if pageToken == "" {
			pageToken = userToken
		}

		encryptedToken, err := utils.Encrypt([]byte(pageToken), []byte(s.cfg.SecretKey))
		if err != nil {
			slog.Warn(fmt.Sprintf("encrypting token for page %s: %v", page.ID, err))
			continue
		}

		candidates = append(candidates, &models.SocialAccount{
			UserID:         userID,
			Provider:       models.ProviderInstagram,
			AccountID:      profile.ID,
			Username:       profile.Username,
			Name:           profile.Name,
			ProfilePicture: profile.ProfilePictureURL,
			PageID:         page.ID,
			PageName:       page.Name,
			AccessToken:    encryptedToken,
		})
	}

	if len(candidates) == 0 {
		return ErrNoInstagramAccounts
	}

	if err := s.sa.UpsertAll(ctx, candidates); err != nil {
		// one malformed row must not block the rest
		slog.Warn(fmt.Sprintf("bulk upsert failed, retrying rows individually: %v", err))
		for _, candidate := range candidates {
			if err := s.sa.Upsert(ctx, nil, candidate); err != nil {
				slog.Warn(fmt.Sprintf("upserting account %s: %v", candidate.AccountID, err))
			}
		}
	}

	return nil
}
