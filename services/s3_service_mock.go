package services

import (
	"fmt"
	"sync"
)

// MockS3Service is an in-memory stand-in for S3Service
type MockS3Service struct {
	objects map[string]bool
	mu      sync.RWMutex
}

// NewMockS3Service creates a mock holding the given object keys
func NewMockS3Service(keys ...string) *MockS3Service {
	m := &MockS3Service{objects: make(map[string]bool)}
	for _, k := range keys {
		m.objects[k] = true
	}
	return m
}

// Put registers an object key
func (m *MockS3Service) Put(key string) {
	m.mu.Lock()
	m.objects[key] = true
	m.mu.Unlock()
}

// GetPresignedURL returns a fake presigned URL for known keys
func (m *MockS3Service) GetPresignedURL(s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[s3Key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock S3: %s", s3Key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", s3Key), nil
}
