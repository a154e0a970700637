package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage はGoogle Cloud Storageに保存するバックエンド。
// 参照はpublic URL（バケットはpublic read前提）。
type GCSStorage struct {
	client *storage.Client
	bucket string
	prefix string
}

// credsPathが空ならADCを使う
func NewGCSStorage(ctx context.Context, bucket string, prefix string, credsPath string) (*GCSStorage, error) {
	var client *storage.Client
	var err error

	if credsPath == "" {
		client, err = storage.NewClient(ctx)
	} else {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
	}
	if err != nil {
		return nil, err
	}

	return &GCSStorage{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCSStorage) Store(ctx context.Context, r io.Reader, originalName string, contentType string, size int64) (string, error) {
	if err := validate(contentType, size); err != nil {
		return "", err
	}

	objectPath := s.prefix + "/" + uniqueName(originalName)

	wc := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // 小さいファイルなのでチャンク分割しない

	if _, err := io.Copy(wc, io.LimitReader(r, MaxFileSize+1)); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}

	return s.publicURL(objectPath), nil
}

// 参照を削除。既に無ければno-op
func (s *GCSStorage) Delete(ctx context.Context, ref string) error {
	if !s.Owns(ref) {
		return nil
	}

	objectPath := strings.TrimPrefix(ref, s.urlPrefix())
	err := s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (s *GCSStorage) Owns(ref string) bool {
	return strings.HasPrefix(ref, s.urlPrefix())
}

func (s *GCSStorage) publicURL(objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectPath)
}

func (s *GCSStorage) urlPrefix() string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/", s.bucket)
}
