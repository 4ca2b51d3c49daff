package storage

import (
	"context"
	"io"
	"path"
)

// Storage holds exported report workbooks.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, data io.ReadSeeker) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportKey is the object key of a report export job's workbook.
func ReportKey(prefix, gradeBookID, jobID string) string {
	return path.Join(prefix, gradeBookID, jobID+".xlsx")
}
