package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
)

// DefaultMaxImageSize caps profile picture uploads
const DefaultMaxImageSize int64 = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload rejections
var (
	ErrNoFile          = apperrors.NewValidationError("file is required")
	ErrFileTooLarge    = apperrors.NewValidationError("file is too large")
	ErrUnsupportedType = apperrors.NewValidationError("file must be a JPEG, PNG, GIF or WebP image")
)

// LocalStorage saves images to the local filesystem
type LocalStorage struct {
	basePath string
	baseURL  string
	maxSize  int64
	logger   zerolog.Logger
}

// NewLocalStorage creates basePath if needed. Stored files are addressed as baseURL/<subPath>/<name>.
func NewLocalStorage(basePath, baseURL string, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxSize:  DefaultMaxImageSize,
		logger:   logger,
	}, nil
}

// WithMaxSize overrides the upload size limit
func (ls *LocalStorage) WithMaxSize(n int64) *LocalStorage {
	ls.maxSize = n
	return ls
}

// SaveFile sniffs the content type, rejects anything but images and writes
// the upload under a fresh uuid name.
func (ls *LocalStorage) SaveFile(ctx context.Context, fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", ErrNoFile
	}
	if fileHeader.Size > ls.maxSize {
		return "", ErrFileTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	ext, ok := imageExtensions[http.DetectContentType(head[:n])]
	if !ok {
		return "", ErrUnsupportedType
	}

	dir := filepath.Join(ls.basePath, filepath.Clean("/" + subPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + ext
	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	body := io.MultiReader(strings.NewReader(string(head[:n])), src)
	written, err := io.Copy(dst, io.LimitReader(body, ls.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > ls.maxSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(dstPath)
		if errors.Is(err, ErrFileTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.urlFor(subPath, name)
	ls.logger.Info().
		Str("filename", fileHeader.Filename).
		Str("saved_as", name).
		Int64("bytes", written).
		Msg("File saved")
	return url, nil
}

// DeleteFile removes the file behind fileURL
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	path, ok := ls.pathFor(fileURL)
	if !ok {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (ls *LocalStorage) urlFor(subPath, name string) string {
	sub := strings.Trim(filepath.ToSlash(filepath.Clean("/"+subPath)), "/")
	if sub == "" {
		return ls.baseURL + "/" + name
	}
	return ls.baseURL + "/" + sub + "/" + name
}

func (ls *LocalStorage) pathFor(fileURL string) (string, bool) {
	prefix := ls.baseURL + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	rel := filepath.Clean("/" + strings.TrimPrefix(fileURL, prefix))
	if rel == "/" {
		return "", false
	}
	return filepath.Join(ls.basePath, rel), true
}
