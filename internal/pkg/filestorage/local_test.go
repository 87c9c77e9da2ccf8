package filestorage

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func newStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "https://rollcall.test/uploads/", zerolog.Nop())
	require.NoError(t, err)
	return ls, dir
}

func TestSaveFileStoresImage(t *testing.T) {
	ls, dir := newStorage(t)

	url, err := ls.SaveFile(context.Background(), fileHeader(t, "me.png", pngHeader), "profile_pictures")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://rollcall.test/uploads/profile_pictures/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored := filepath.Join(dir, "profile_pictures", filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, ls.DeleteFile(url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveFileRejects(t *testing.T) {
	ls, _ := newStorage(t)
	ctx := context.Background()

	_, err := ls.SaveFile(ctx, nil, "")
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = ls.SaveFile(ctx, fileHeader(t, "notes.png", []byte("plain text pretending")), "")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	ls.WithMaxSize(8)
	_, err = ls.SaveFile(ctx, fileHeader(t, "big.png", pngHeader), "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSaveFileKeepsSubPathInsideBase(t *testing.T) {
	ls, dir := newStorage(t)

	url, err := ls.SaveFile(context.Background(), fileHeader(t, "x.png", pngHeader), "../../escape")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://rollcall.test/uploads/escape/"))

	_, err = os.Stat(filepath.Join(dir, "escape", filepath.Base(url)))
	assert.NoError(t, err)
}

func TestDeleteFileIgnoresForeignURLs(t *testing.T) {
	ls, _ := newStorage(t)
	assert.NoError(t, ls.DeleteFile("https://elsewhere.example/avatar.png"))
	assert.NoError(t, ls.DeleteFile("https://rollcall.test/uploads/missing.png"))
	assert.NoError(t, ls.DeleteFile(""))
}
