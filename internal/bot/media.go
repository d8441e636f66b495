package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"air_bot/internal/model"
)

const (
	mimePNG = "image/png"
	mimeGIF = "image/gif"
)

type openFunc func(ctx context.Context) (io.ReadCloser, error)

// acquireMedia opens a provider stream and writes it fully to name inside the
// media directory. On success the caller owns the file and must call release
// once the publish attempt is over; on error no file is left behind.
func (b *Bot) acquireMedia(ctx context.Context, name, mimeType string, open openFunc) (*model.MediaArtifact, func(), error) {
	src, err := open(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = src.Close() }()

	path := filepath.Join(b.mediaDir, name)
	f, err := os.Create(path) //nolint:gosec // path is built from a fixed pattern
	if err != nil {
		return nil, nil, fmt.Errorf("create media file: %w", err)
	}

	release := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			b.log.Error("remove media file", "path", path, "error", err)
			return
		}
		b.log.Debug("removed media file", "path", path)
	}

	n, err := io.Copy(f, src)
	if err != nil {
		_ = f.Close()
		release()
		return nil, nil, fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		release()
		return nil, nil, fmt.Errorf("close media file: %w", err)
	}

	b.log.Debug("wrote media file", "path", path, "bytes", n)
	return &model.MediaArtifact{
		Path:      path,
		MIMEType:  mimeType,
		CreatedAt: b.now(),
	}, release, nil
}
