package upload

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// publicな参照のprefix。echoがこの配下を静的配信する
const localRefPrefix = "/uploads/"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// LocalStorage はサーバーのディスクに保存するバックエンド。
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Store(ctx context.Context, r io.Reader, originalName string, contentType string, size int64) (string, error) {
	if err := validate(contentType, size); err != nil {
		return "", err
	}

	name := uniqueName(originalName)
	dst := filepath.Join(s.dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	// 宣言されたsizeを超えて書かないようLimitReaderで抑える
	if _, err := io.Copy(f, io.LimitReader(r, MaxFileSize+1)); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}

	return localRefPrefix + name, nil
}

// 参照を削除。既に無ければno-op
func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	if !s.Owns(ref) {
		return nil
	}

	// パストラバーサル対策でファイル名部分だけを使う
	name := filepath.Base(strings.TrimPrefix(ref, localRefPrefix))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStorage) Owns(ref string) bool {
	return strings.HasPrefix(ref, localRefPrefix)
}

// 静的配信用のディレクトリ
func (s *LocalStorage) Dir() string {
	return s.dir
}

// 元のファイル名を安全にしてuuidを付ける
func uniqueName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	base = strings.ToLower(unsafeChars.ReplaceAllString(base, "-"))
	if base == "" {
		base = "image"
	}
	return base + "-" + uuid.NewString() + ext
}
