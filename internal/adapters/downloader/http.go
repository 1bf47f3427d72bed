package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"sharegrab/internal/adapters/httpclient"
	"sharegrab/internal/core/ports"
)

// ChunkSize is the read buffer size used while streaming the body.
const ChunkSize = 8 * 1024

// ErrBadStatus is returned when the media server answers with a non-2xx status.
var ErrBadStatus = errors.New("unexpected status code")

// HTTPDownloader implements ports.Downloader using standard HTTP.
type HTTPDownloader struct {
	client  *http.Client
	storage ports.Storage
	logger  *slog.Logger
}

// NewHTTPDownloader creates a new HTTPDownloader. The download request has no
// timeout; opts.Timeout is ignored.
func NewHTTPDownloader(opts httpclient.Options, storage ports.Storage, logger *slog.Logger) (*HTTPDownloader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts.Timeout = 0
	opts.DisableRedirects = false
	client, err := httpclient.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	return &HTTPDownloader{client: client, storage: storage, logger: logger}, nil
}

// Download fetches mediaURL and streams it into directory. The file name is
// fileName when given, else the Content-Disposition filename, else a random
// token with an .mp4 suffix. A failed copy leaves the partial file behind.
func (d *HTTPDownloader) Download(ctx context.Context, mediaURL, directory, fileName string, progress ports.ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	name := fileName
	if name == "" {
		name = dispositionFileName(resp.Header.Get("Content-Disposition"))
	}
	if name == "" {
		name = RandomFileName()
	}

	if err := d.storage.EnsureDir(ctx, directory); err != nil {
		return "", err
	}
	out, path, err := d.storage.Create(ctx, directory, name)
	if err != nil {
		return "", err
	}
	defer out.Close()

	total := resp.ContentLength
	if total < 0 {
		total = -1
	}

	if _, err := d.copy(out, resp.Body, total, progress); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return path, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// copy streams src into dst in ChunkSize pieces, reporting after each chunk.
func (d *HTTPDownloader) copy(dst io.Writer, src io.Reader, total int64, progress ports.ProgressFunc) (int64, error) {
	buf := make([]byte, ChunkSize)
	var received int64
	for {
		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[:nr])
			received += int64(nw)
			if ew != nil {
				return received, ew
			}
			if nw != nr {
				return received, io.ErrShortWrite
			}
			d.report(progress, received, total)
		}
		if er == io.EOF {
			return received, nil
		}
		if er != nil {
			return received, er
		}
	}
}

// report calls progress, swallowing panics so a broken reporter never aborts a download.
func (d *HTTPDownloader) report(progress ports.ProgressFunc, current, total int64) {
	if progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("progress reporter panicked", "reason", fmt.Sprint(r))
		}
	}()
	progress(current, total)
}

// RandomFileName returns a fresh hyphen-less uuid with an .mp4 suffix.
func RandomFileName() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "") + ".mp4"
}

func dispositionFileName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := strings.Trim(params["filename"], `"`)
	if name == "" {
		return ""
	}
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return ""
	}
	return name
}
