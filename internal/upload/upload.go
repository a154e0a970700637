package upload

import (
	"context"
	"errors"
	"io"
)

var (
	// 受け付けない画像形式
	ErrInvalidType = errors.New("invalid file type")
	// 5MB超
	ErrTooLarge = errors.New("file too large")
)

// 1ファイルの上限（5MB）
const MaxFileSize = 5 * 1024 * 1024

// 受け付ける画像のMIMEタイプ
var allowedTypes = map[string]bool{
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/png":     true,
	"image/webp":    true,
	"image/gif":     true,
	"image/svg+xml": true,
}

// Storage は画像ファイルの保存先の約束。
// localディスクとGCSを差し替えられるようにusecaseはこれだけに依存する。
type Storage interface {
	// 保存して参照文字列（URLまたはパス）を返す
	Store(ctx context.Context, r io.Reader, originalName string, contentType string, size int64) (string, error)
	// 参照を削除する。既に無ければno-op
	Delete(ctx context.Context, ref string) error
	// このバックエンドが管理している参照か（掃除対象かどうか）
	Owns(ref string) bool
}

// 形式とサイズの検証。各バックエンドのStoreの先頭で呼ぶ
func validate(contentType string, size int64) error {
	if !allowedTypes[contentType] {
		return ErrInvalidType
	}
	if size > MaxFileSize {
		return ErrTooLarge
	}
	return nil
}
