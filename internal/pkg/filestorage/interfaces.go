package filestorage

import (
	"context"
	"mime/multipart"
)

// FileStorage stores uploaded files and hands back their public URL
type FileStorage interface {
	// SaveFile stores an upload under subPath and returns its public URL
	SaveFile(ctx context.Context, fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a previously stored file given its public URL.
	// URLs this storage did not produce are ignored.
	DeleteFile(fileURL string) error
}
