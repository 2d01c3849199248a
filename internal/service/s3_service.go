package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/config"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// S3Service uploads product images to an S3-compatible bucket using path
// style URLs ({endpoint}/{bucket}/{key}) signed with SigV4.
type S3Service struct {
	bucket   string
	region   string
	endpoint string
	creds    aws.CredentialsProvider
	signer   *v4.Signer
	client   *http.Client
	now      func() time.Time
}

// NewS3Service creates an S3Service. Static keys from cfg take precedence;
// otherwise the default AWS credential chain is used.
func NewS3Service(ctx context.Context, cfg *config.S3Config) (*S3Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("S3 config is nil")
	}

	var provider aws.CredentialsProvider
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		provider = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		provider = awsCfg.Credentials
	}

	return &S3Service{
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		creds:    provider,
		signer:   v4.NewSigner(),
		client:   &http.Client{Timeout: 60 * time.Second},
		now:      time.Now,
	}, nil
}

// Upload PUTs body under key and returns the object URL.
func (s *S3Service) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if s.creds == nil {
		return "", utils.ErrStorageUnavailable
	}
	creds, err := s.creds.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		log.Warn().Err(err).Str("key", key).Msg("S3 credentials not available")
		return "", utils.ErrStorageUnavailable
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload body: %w", err)
	}
	if size > 0 && int64(len(data)) != size {
		return "", fmt.Errorf("upload body is %d bytes, expected %d", len(data), size)
	}

	url := s.GetObjectURL(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	sum := sha256.Sum256(data)
	payloadHash := hex.EncodeToString(sum[:])
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	if err := s.signer.SignHTTP(ctx, creds, req, payloadHash, "s3", s.region, s.now().UTC()); err != nil {
		return "", fmt.Errorf("sign request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload to S3")
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error().
			Str("key", key).
			Int("status", resp.StatusCode).
			Str("response", string(respBody)).
			Msg("S3 upload failed")
		return "", fmt.Errorf("S3 upload failed with status %d", resp.StatusCode)
	}

	log.Info().Str("key", key).Int("bytes", len(data)).Msg("Successfully uploaded to S3")
	return url, nil
}

// GetObjectURL returns the public URL of key.
func (s *S3Service) GetObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, strings.TrimLeft(key, "/"))
}
