package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/maheshrc27/contentpilot/configs"
	"github.com/maheshrc27/contentpilot/internal/repository"
	"github.com/maheshrc27/contentpilot/internal/transfer"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	replicateBaseURL  = "https://api.replicate.com/v1"

	imageModel = "ideogram-ai/ideogram-v3-turbo"
	videoModel = "wan-video/wan-2.2-i2v-fast"
)

type GenerationService interface {
	GenerateIdeas(ctx context.Context, ir *transfer.IdeaRequest) (string, error)
	GenerateCaption(ctx context.Context, cr *transfer.CaptionRequest) (*transfer.CaptionResult, error)
	GenerateImage(ctx context.Context, ir *transfer.IdeaRequest) (string, error)
	GenerateVideo(ctx context.Context, vr *transfer.VideoRequest) (string, error)
}

type generationService struct {
	cfg        config.Config
	ai         openai.Client
	pr         repository.PostRepository
	storage    *StorageService
	httpClient *http.Client
}

func NewGenerationService(cfg config.Config, pr repository.PostRepository, storage *StorageService) GenerationService {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenRouterAPIKey),
		option.WithBaseURL(openRouterBaseURL),
	)

	return &generationService{
		cfg:        cfg,
		ai:         client,
		pr:         pr,
		storage:    storage,
		httpClient: &http.Client{Timeout: 3 * time.Minute},
	}
}

// GenerateIdeas produces a short numbered list of content ideas for a niche.
func (s *generationService) GenerateIdeas(ctx context.Context, ir *transfer.IdeaRequest) (string, error) {
	if ir == nil || ir.Niche == "" {
		err := errors.New("niche is required")
		slog.Info(err.Error())
		return "", err
	}

	prompt := fmt.Sprintf("Generate 5 short content ideas (titles only) for %q. Context: %q. Numbered list.", ir.Niche, ir.Description)

	ideas, err := s.complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	return ideas, nil
}

// GenerateCaption runs two completions: a long caption from the prompt, then a
// short title derived from that caption.
func (s *generationService) GenerateCaption(ctx context.Context, cr *transfer.CaptionRequest) (*transfer.CaptionResult, error) {
	if cr == nil || cr.Prompt == "" {
		err := errors.New("prompt is required")
		slog.Info(err.Error())
		return nil, err
	}

	contentPrompt := fmt.Sprintf("Write a long, informative, engaging and SEO friendly Instagram caption for the prompt: %q. Include popular hashtags.", cr.Prompt)
	content, err := s.complete(ctx, contentPrompt)
	if err != nil {
		return nil, err
	}

	titlePrompt := fmt.Sprintf("Write a short, catchy title of at most 8 words for the following text:\n\n%s", content)
	title, err := s.complete(ctx, titlePrompt)
	if err != nil {
		return nil, err
	}

	return &transfer.CaptionResult{Title: title, Content: content}, nil
}

// GenerateImage runs the image model synchronously (the API holds the request
// open until the prediction finishes) and returns the output URL.
func (s *generationService) GenerateImage(ctx context.Context, ir *transfer.IdeaRequest) (string, error) {
	if ir == nil || ir.Niche == "" {
		err := errors.New("niche is required")
		slog.Info(err.Error())
		return "", err
	}

	prompt := fmt.Sprintf("Generate an image for niche: %s. Additional details: %s", ir.Niche, ir.Description)

	prediction, err := s.createPrediction(ctx, imageModel, map[string]interface{}{
		"prompt":       prompt,
		"aspect_ratio": "1:1",
	}, true)
	if err != nil {
		return "", err
	}

	imageURL := prediction.outputURL()
	if imageURL == "" {
		err = fmt.Errorf("image generation returned no output (status %s)", prediction.Status)
		slog.Info(err.Error())
		return "", err
	}

	return imageURL, nil
}

// GenerateVideo animates a post's image. The prediction is polled until it
// settles, the resulting video is rehosted on R2 and the post row is updated.
func (s *generationService) GenerateVideo(ctx context.Context, vr *transfer.VideoRequest) (string, error) {
	if vr == nil || vr.ImageURL == "" || vr.PostID == 0 {
		err := errors.New("imageUrl and postId are required")
		slog.Info(err.Error())
		return "", err
	}

	prediction, err := s.createPrediction(ctx, videoModel, map[string]interface{}{
		"image":             vr.ImageURL,
		"frames_per_second": 8,
		"resolution":        "480p",
		"prompt":            "natural cinematic movement",
	}, false)
	if err != nil {
		return "", err
	}

	const maxTries = 40
	for tries := 0; tries < maxTries && (prediction.Status == "starting" || prediction.Status == "processing"); tries++ {
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			return "", ctx.Err()
		}

		prediction, err = s.getPrediction(ctx, prediction.ID)
		if err != nil {
			return "", err
		}
	}

	if prediction.Status != "succeeded" || prediction.outputURL() == "" {
		err = fmt.Errorf("video generation failed: %s", prediction.Error)
		slog.Info(err.Error())
		return "", err
	}

	videoURL, err := s.storage.SaveFromURL(ctx, prediction.outputURL())
	if err != nil {
		return "", err
	}

	if err := s.pr.UpdateVideoURL(ctx, vr.PostID, videoURL); err != nil {
		return "", err
	}

	return videoURL, nil
}

func (s *generationService) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.ai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.cfg.OpenRouterModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	if len(resp.Choices) == 0 {
		err = errors.New("completion returned no choices")
		slog.Info(err.Error())
		return "", err
	}

	return resp.Choices[0].Message.Content, nil
}

// prediction is the subset of the Replicate prediction resource the workflows
// read. Output is either a URL string or a list of them depending on model.
type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

func (p *prediction) outputURL() string {
	if len(p.Output) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		return single
	}

	var many []string
	if err := json.Unmarshal(p.Output, &many); err == nil && len(many) > 0 {
		return many[0]
	}

	return ""
}

func (s *generationService) createPrediction(ctx context.Context, model string, input map[string]interface{}, wait bool) (*prediction, error) {
	payload, err := json.Marshal(map[string]interface{}{"input": input})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s/predictions", replicateBaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ReplicateAPIKey)
	req.Header.Set("Content-Type", "application/json")
	if wait {
		req.Header.Set("Prefer", "wait")
	}

	return s.doPrediction(req)
}

func (s *generationService) getPrediction(ctx context.Context, id string) (*prediction, error) {
	endpoint := fmt.Sprintf("%s/predictions/%s", replicateBaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ReplicateAPIKey)

	return s.doPrediction(req)
}

func (s *generationService) doPrediction(req *http.Request) (*prediction, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if resp.StatusCode >= 400 {
		err = fmt.Errorf("replicate API error (status %d): %s", resp.StatusCode, string(body))
		slog.Info(err.Error())
		return nil, err
	}

	var p prediction
	if err := json.Unmarshal(body, &p); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &p, nil
}
