// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taqyim/valuation-backend/internal/config"
)

// StorageService stores uploaded documents. S3 is tried first when
// configured; any remote failure falls back to the local upload directory so
// a client never loses an upload to a cloud outage.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	// Reference is what gets persisted on RequestDocument.FilePath: an S3 key
	// or a path relative to the local upload directory.
	Reference string `json:"reference"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mime_type"`
	Local     bool   `json:"local"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Local-only mode for development.
		return &StorageService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// Store validates and persists one uploaded file, returning the reference to
// record. Only when both the remote and local writes fail does it error.
func (s *StorageService) Store(file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, Validationf("file size %d bytes exceeds maximum allowed size %d bytes", header.Size, options.MaxSize)
	}

	if len(options.AllowedTypes) > 0 {
		fileExt := strings.ToLower(filepath.Ext(header.Filename))
		allowed := false
		for _, allowedType := range options.AllowedTypes {
			if fileExt == allowedType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, Validationf("file type %s is not allowed", fileExt)
		}
	}

	key := s.generateFileName(header.Filename, options.Folder)
	contentType := header.Header.Get("Content-Type")

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, Storagef(err, "failed to read upload")
	}

	if s.s3Client != nil {
		result, s3Err := s.storeRemote(fileBytes, key, contentType)
		if s3Err == nil {
			return result, nil
		}
		logrus.WithError(s3Err).WithField("key", key).Warn("S3 upload failed, falling back to local storage")
	}

	return s.storeLocal(fileBytes, key, contentType)
}

func (s *StorageService) storeRemote(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Reference: key,
		URL:       s.getS3URL(key),
		Size:      int64(len(fileBytes)),
		MimeType:  contentType,
	}, nil
}

func (s *StorageService) storeLocal(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	path := filepath.Join(s.config.Upload.LocalDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, Storagef(err, "failed to prepare local upload directory")
	}
	if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
		return nil, Storagef(err, "failed to write upload locally")
	}

	return &UploadResult{
		Reference: key,
		URL:       fmt.Sprintf("%s/uploads/%s", s.config.Server.BaseURL, key),
		Size:      int64(len(fileBytes)),
		MimeType:  contentType,
		Local:     true,
	}, nil
}

func (s *StorageService) DeleteFile(key string) error {
	if s.s3Client == nil {
		return os.Remove(filepath.Join(s.config.Upload.LocalDir, filepath.FromSlash(key)))
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

// GetDefaultUploadOptions maps an upload category to its size and type limits.
func (s *StorageService) GetDefaultUploadOptions(category string) UploadOptions {
	switch category {
	case "documents":
		return UploadOptions{
			Folder:       "documents",
			MaxSize:      20 * 1024 * 1024, // 20MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png", ".pdf"},
		}
	case "reports":
		return UploadOptions{
			Folder:       "reports",
			MaxSize:      50 * 1024 * 1024, // 50MB
			AllowedTypes: []string{".pdf"},
		}
	case "logos":
		return UploadOptions{
			Folder:       "logos",
			MaxSize:      2 * 1024 * 1024, // 2MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png"},
		}
	case "pricing":
		return UploadOptions{
			Folder:       "pricing",
			MaxSize:      10 * 1024 * 1024, // 10MB
			AllowedTypes: []string{".csv", ".xlsx"},
		}
	default:
		return UploadOptions{
			Folder:       "general",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png", ".pdf"},
		}
	}
}

func (s *StorageService) generateFileName(originalName, folder string) string {
	id := uuid.New()
	ext := filepath.Ext(originalName)
	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, id.String()[:8], ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}
	return filename
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
