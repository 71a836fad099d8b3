package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/kendall-kelly/estate-inquiries-api/config"
)

// presignExpiry bounds how long image links in views stay valid
const presignExpiry = time.Hour

// S3Interface defines the interface for S3 operations
type S3Interface interface {
	GetPresignedURL(s3Key string) (string, error)
}

// S3Service handles all S3-related operations
type S3Service struct {
	presigner *s3.PresignClient
	bucket    string
}

// NewS3Service builds an S3 client from the application configuration
func NewS3Service(ctx context.Context, cfg *appConfig.Config) (*S3Service, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.AWSRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig)
	return &S3Service{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.AWSS3Bucket,
	}, nil
}

// GetPresignedURL generates a presigned GET URL for a private S3 object
func (s *S3Service) GetPresignedURL(s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}

	request, err := s.presigner.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return request.URL, nil
}
