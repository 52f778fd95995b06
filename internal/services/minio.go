package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"reviere_back_end/internal/config"
)

// PhotoStore range les photos produit dans le bucket configuré.
type PhotoStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewPhotoStore(client *minio.Client, cfg config.MinIOConfig) *PhotoStore {
	base := cfg.PublicURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}
	return &PhotoStore{client: client, bucket: cfg.Bucket, baseURL: strings.TrimRight(base, "/")}
}

// Upload stocke le fichier sous une clé aléatoire et retourne son URL publique.
func (s *PhotoStore) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := objectKey(file.Filename)
	_, err = s.client.PutObject(ctx, s.bucket, key, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}
	return s.objectURL(key), nil
}

func objectKey(filename string) string {
	return "productos/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

func (s *PhotoStore) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key)
}
