package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return s
}

func TestLocalStorage_StoreAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	body := "fake png bytes"
	ref, err := s.Store(ctx, strings.NewReader(body), "My Photo (1).PNG", "image/png", int64(len(body)))
	require.NoError(t, err)

	// /uploads/配下の安全なファイル名になる
	assert.True(t, strings.HasPrefix(ref, "/uploads/"))
	assert.True(t, strings.HasPrefix(filepath.Base(ref), "my-photo--1--"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, err := os.ReadFile(filepath.Join(s.Dir(), filepath.Base(ref)))
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	require.NoError(t, s.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(s.Dir(), filepath.Base(ref)))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_RejectsInvalidType(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Store(context.Background(), strings.NewReader("x"), "doc.pdf", "application/pdf", 1)
	assert.ErrorIs(t, err, ErrInvalidType)

	// 何も書き込まれていない
	entries, readErr := os.ReadDir(s.Dir())
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestLocalStorage_RejectsTooLarge(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Store(context.Background(), strings.NewReader("x"), "big.png", "image/png", MaxFileSize+1)
	assert.ErrorIs(t, err, ErrTooLarge)
}

// 削除は冪等。無いファイルや管理外の参照でもエラーにしない
func TestLocalStorage_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	assert.NoError(t, s.Delete(ctx, "/uploads/does-not-exist.png"))
	assert.NoError(t, s.Delete(ctx, "https://example.com/pic.png"))
	assert.NoError(t, s.Delete(ctx, ""))
}

// パストラバーサルはファイル名部分に切り詰められる
func TestLocalStorage_DeleteIgnoresTraversal(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	outside := filepath.Join(filepath.Dir(s.Dir()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	require.NoError(t, s.Delete(ctx, "/uploads/../secret.txt"))

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

func TestLocalStorage_Owns(t *testing.T) {
	s := newTestStorage(t)

	assert.True(t, s.Owns("/uploads/a.png"))
	assert.False(t, s.Owns("https://storage.googleapis.com/bucket/a.png"))
	assert.False(t, s.Owns(""))
}

func TestUniqueName_EmptyBase(t *testing.T) {
	name := uniqueName(".png")
	assert.True(t, strings.HasPrefix(name, "image-"))
	assert.True(t, strings.HasSuffix(name, ".png"))
}
