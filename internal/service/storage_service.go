package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	cfg "github.com/maheshrc27/contentpilot/configs"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// StorageService rehosts generated media on R2 so posts never depend on the
// short-lived URLs the generation providers return.
type StorageService struct {
	config     cfg.Config
	httpClient *http.Client
}

func NewStorageService(cfg cfg.Config) *StorageService {
	return &StorageService{
		config:     cfg,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (r *StorageService) R2Client() (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

// UploadToR2 uploads file bytes under key with the given content type.
func (r *StorageService) UploadToR2(ctx context.Context, key string, file []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	r2Client, err := r.R2Client()
	if err != nil {
		return err
	}

	_, err = r2Client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

// SaveFromURL downloads the resource, sniffs its type, uploads it under a
// random key and returns the public URL.
func (r *StorageService) SaveFromURL(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("fetching media returned status %d", resp.StatusCode)
		slog.Info(err.Error())
		return "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	kind, err := filetype.Match(data)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	if kind == filetype.Unknown {
		err = fmt.Errorf("unknown media type")
		slog.Info(err.Error())
		return "", err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	key := fmt.Sprintf("%s.%s", id, kind.Extension)

	if err := r.UploadToR2(ctx, key, data, kind.MIME.Value); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", r.config.R2.PublicURL, key), nil
}
