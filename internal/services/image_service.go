package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxImageBytes caps a decoded avatar or product photo.
const MaxImageBytes = 512 << 10

var ErrInvalidImage = errors.New("invalid image")

var imageExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// ImageStore persists image bytes and returns a reference the storefront can
// render (a URL or a /media path).
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// LocalImageStore writes under Dir; files are served from /media/.
type LocalImageStore struct {
	Dir string
}

func (s LocalImageStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	full := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return "/media/" + key, nil
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3ImageStore uploads to a bucket whose objects are publicly readable.
type S3ImageStore struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3ImageStore(ctx context.Context, cfg S3Config) (*S3ImageStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3ImageStore{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

func (s *S3ImageStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// ImageService turns data URLs into stored references. Any other reference
// (an https URL or a /media path) is kept as is.
type ImageService struct {
	Store ImageStore
}

func NewImageService(store ImageStore) *ImageService { return &ImageService{Store: store} }

// Resolve stores ref under folder when it is a data URL.
func (s *ImageService) Resolve(ctx context.Context, folder, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || !strings.HasPrefix(ref, "data:") {
		if len(ref) > 2048 || strings.ContainsAny(ref, "\x00\n\r") {
			return "", ErrInvalidImage
		}
		return ref, nil
	}
	if s == nil || s.Store == nil {
		return "", ErrInvalidImage
	}
	contentType, data, err := DecodeDataURL(ref)
	if err != nil {
		return "", err
	}
	key := path.Join(folder, uuid.NewString()+imageExt[contentType])
	return s.Store.Put(ctx, key, contentType, data)
}

// DecodeDataURL parses data:image/<type>;base64,<payload>. The decoded bytes
// must sniff as the declared type.
func DecodeDataURL(ref string) (string, []byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return "", nil, ErrInvalidImage
	}
	contentType, enc, ok := strings.Cut(meta, ";")
	if !ok || enc != "base64" {
		return "", nil, ErrInvalidImage
	}
	contentType = strings.ToLower(contentType)
	if _, ok := imageExt[contentType]; !ok {
		return "", nil, ErrInvalidImage
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return "", nil, ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 || len(data) > MaxImageBytes {
		return "", nil, ErrInvalidImage
	}
	if http.DetectContentType(data) != contentType {
		return "", nil, ErrInvalidImage
	}
	return contentType, data, nil
}
