package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sc "github.com/rasgroup/bagcapturer/internal/server/config"
	"github.com/rasgroup/bagcapturer/internal/server/models"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/recordings"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// test seams for the AWS SDK, kept as package vars so unit tests can stub
// the presign pipeline without network access
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// RecordingService exposes captured bag metadata to the dashboard and hands
// out presigned S3 download URLs for finished bags.
type RecordingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

// NewRecordingService constructs a RecordingService.
func NewRecordingService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *RecordingService {
	return &RecordingService{db: db, repomanager: m, config: cfg}
}

// GetRandomStorageKey builds a date-partitioned object key for a new bag.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("bags/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// ListRecent returns at most limit recordings, newest first.
func (s *RecordingService) ListRecent(ctx context.Context, limit int) ([]*models.Recording, error) {
	return s.repomanager.Recordings(s.db).ListRecent(ctx, limit)
}

// Status aggregates recording counts per status for the console page and the
// JSON status API.
func (s *RecordingService) Status(ctx context.Context) (*recordings.StatusCounts, error) {
	return s.repomanager.Recordings(s.db).CountByStatus(ctx)
}

// Start registers a new running capture and reserves the object key the
// finished bag will be uploaded under.
func (s *RecordingService) Start(ctx context.Context, bagName, topics string) (*models.Recording, error) {
	rec := &models.Recording{
		BagName:    bagName,
		Topics:     topics,
		Status:     models.RecordingStatusRunning,
		StorageKey: GetRandomStorageKey(),
		StartedAt:  time.Now(),
	}
	return s.repomanager.Recordings(s.db).Create(ctx, rec)
}

// Finish marks a capture finished and stores its final size and object key.
func (s *RecordingService) Finish(ctx context.Context, id string, sizeBytes int64, storageKey string) error {
	return s.repomanager.Recordings(s.db).Finish(ctx, id, sizeBytes, storageKey)
}

// GetDownloadURL returns a presigned GET URL for a recording's bag file.
func (s *RecordingService) GetDownloadURL(ctx context.Context, id string) (string, error) {
	rec, err := s.repomanager.Recordings(s.db).Get(ctx, id)
	if err != nil {
		return "", err
	}
	if rec.StorageKey == "" {
		return "", fmt.Errorf("recording %s has no stored bag", id)
	}
	return s.getPresignedGetURL(ctx, rec.StorageKey)
}

func (s *RecordingService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

func (s *RecordingService) getPresignedGetURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
