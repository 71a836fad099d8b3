package services

import "fmt"

// ImageService turns stored image keys into URLs clients can load
type ImageService interface {
	// GetImageURL generates a URL for accessing a stored image
	GetImageURL(imageKey string) (string, error)
}

// S3ImageService implements ImageService using AWS S3 presigned URLs
type S3ImageService struct {
	s3Service S3Interface
}

// NewS3ImageService creates an image service over an S3 backend
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service}
}

// GetImageURL generates a presigned URL for accessing an image
func (s *S3ImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}
