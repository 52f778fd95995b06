package services

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// SignedURL génère une URL temporaire pour une photo stockée par Upload.
// Les URL externes sont retournées telles quelles.
func (s *PhotoStore) SignedURL(ctx context.Context, objectURL string, duration time.Duration) (string, error) {
	key, ok := s.keyFromURL(objectURL)
	if !ok {
		return objectURL, nil
	}

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, key, duration, make(url.Values))
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

func (s *PhotoStore) keyFromURL(objectURL string) (string, bool) {
	prefix := s.baseURL + "/" + s.bucket + "/"
	if !strings.HasPrefix(objectURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(objectURL, prefix), true
}
