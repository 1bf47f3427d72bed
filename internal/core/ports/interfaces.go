package ports

import (
	"context"
	"io"

	"sharegrab/internal/core/domain"
)

// ProgressFunc receives the bytes received so far and the expected total
// (-1 when the server did not announce one).
type ProgressFunc func(current, total int64)

// Resolver defines the contract for turning a share link into a ResolvedVideo.
type Resolver interface {
	// Resolve follows the share link and reads the platform metadata.
	// Anticipated failures (bad link, upstream error code, empty response)
	// come back as a failed Outcome; an unexpected payload shape or a
	// transport error is returned as error.
	Resolve(ctx context.Context, source domain.SourceType, shareURL string) (domain.Outcome[domain.ResolvedVideo], error)
}

// Downloader defines the contract for downloading media files.
type Downloader interface {
	// Download streams mediaURL into directory and returns the written path.
	// An empty fileName lets the downloader pick one.
	Download(ctx context.Context, mediaURL, directory, fileName string, progress ProgressFunc) (string, error)
}

// Storage defines the contract for persisting downloaded media.
type Storage interface {
	// EnsureDir creates the directory if it is missing.
	EnsureDir(ctx context.Context, dir string) error

	// Create opens dir/name for writing, truncating any existing file.
	// Returns the writer and the full path.
	Create(ctx context.Context, dir, name string) (io.WriteCloser, string, error)
}
