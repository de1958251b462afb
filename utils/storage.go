package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modusklar/modusklar/config"
)

// StoredObject describes a persisted upload.
type StoredObject struct {
	Path string // filesystem path
	URL  string // public URL served from the static route
	Size int64
}

// SaveVideoObject writes an uploaded recording under the configured upload
// directory (partitioned by date, keyed by uuid) and returns its public
// URL. The write is capped at the configured size limit.
func SaveVideoObject(src io.Reader, originalName string) (*StoredObject, error) {
	cfg := config.Get()

	now := time.Now()
	relDir := filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	baseDir := filepath.Join(cfg.UploadDir, relDir)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" {
		ext = ".webm"
	}
	key := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, key)

	out, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	maxBytes := int64(cfg.UploadMaxMB) * 1024 * 1024
	lr := &io.LimitedReader{R: src, N: maxBytes + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if written > maxBytes {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("file size exceeds %dMB", cfg.UploadMaxMB)
	}

	return &StoredObject{
		Path: dstPath,
		URL:  "/static/videos/" + filepath.ToSlash(filepath.Join(relDir, key)),
		Size: written,
	}, nil
}
