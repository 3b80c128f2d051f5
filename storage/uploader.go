package storage

import (
	"context"
	"io"
)

// UploadResult - координаты загруженного объекта в хранилище.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader абстрагирует объектное хранилище, в которое уходят
// JSON-архивы сеток перед перегенерацией.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
}
