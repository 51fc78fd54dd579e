// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/smartify/sim-backend/internal/config"
)

// StorageService stores customer artifacts: ID document photos and the
// application signature image. Uses S3 when credentials are configured
// and a local placeholder URL otherwise.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

// Per-category upload limits. ID documents may be scans, so they get a
// bigger budget and PDF support; signatures are small PNG/JPEG captures.
var uploadProfiles = map[string]UploadOptions{
	"id_documents": {
		Folder:       "id-documents",
		MaxSize:      10 << 20,
		AllowedTypes: []string{".jpg", ".jpeg", ".png", ".pdf"},
	},
	"signatures": {
		Folder:       "signatures",
		MaxSize:      2 << 20,
		AllowedTypes: []string{".jpg", ".jpeg", ".png"},
	},
}

var defaultUploadProfile = UploadOptions{
	Folder:       "general",
	MaxSize:      5 << 20,
	AllowedTypes: []string{".jpg", ".jpeg", ".png", ".pdf"},
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Local development without S3
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

func (s *StorageService) GetDefaultUploadOptions(category string) UploadOptions {
	if profile, ok := uploadProfiles[category]; ok {
		return profile
	}
	return defaultUploadProfile
}

func (s *StorageService) UploadFile(file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	if err := checkUpload(header, options); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	key := s.objectKey(header.Filename, options.Folder)
	contentType := header.Header.Get("Content-Type")

	if s.s3Client == nil {
		// Local development placeholder; files are not persisted
		return &UploadResult{
			URL:      fmt.Sprintf("http://localhost:%s/uploads/%s", s.config.Server.Port, key),
			Key:      key,
			Size:     int64(len(content)),
			MimeType: contentType,
		}, nil
	}

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"key":  key,
		"size": len(content),
	}).Debug("Uploaded object to S3")

	return &UploadResult{
		URL:      s.publicURL(key),
		Key:      key,
		Size:     int64(len(content)),
		MimeType: contentType,
	}, nil
}

func checkUpload(header *multipart.FileHeader, options UploadOptions) error {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size %d bytes", header.Size, options.MaxSize)
	}

	if len(options.AllowedTypes) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, allowed := range options.AllowedTypes {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("file type %s is not allowed", ext)
}

func (s *StorageService) DeleteFile(key string) error {
	if s.s3Client == nil {
		logrus.WithField("key", key).Debug("Local storage: delete skipped")
		return nil
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

// GeneratePresignedURL grants the agent console temporary access to a
// private document.
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

// objectKey builds date-prefixed keys so bucket listings group by upload
// day, e.g. signatures/20260901_1a2b3c4d.png.
func (s *StorageService) objectKey(originalName, folder string) string {
	name := fmt.Sprintf("%s_%s%s",
		time.Now().Format("20060102"),
		uuid.New().String()[:8],
		filepath.Ext(originalName))

	if folder == "" {
		return name
	}
	return folder + "/" + name
}

func (s *StorageService) publicURL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
