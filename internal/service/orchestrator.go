package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sharegrab/internal/core/domain"
	"sharegrab/internal/core/ports"
)

// ProgressFactory returns the progress callback for one download and a
// function to call once the download ends. Either may be nil.
type ProgressFactory func(fileName string) (ports.ProgressFunc, func())

// Orchestrator coordinates link resolution and the optional download.
type Orchestrator struct {
	resolvers  map[domain.SourceType]ports.Resolver
	downloader ports.Downloader
	progress   ProgressFactory
	logger     *slog.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	resolvers map[domain.SourceType]ports.Resolver,
	downloader ports.Downloader,
	progress ProgressFactory,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		resolvers:  resolvers,
		downloader: downloader,
		progress:   progress,
		logger:     logger,
	}
}

// RunDefault detects the platform from shareURL and runs the job.
func (o *Orchestrator) RunDefault(ctx context.Context, shareURL, downloadDir string) (*domain.JobResult, error) {
	return o.Run(ctx, string(domain.DetectSource(shareURL)), shareURL, downloadDir)
}

// Run resolves shareURL with the resolver registered for sourceTag and, when
// downloadDir is set, downloads the media to <downloadDir>/<title>.mp4.
//
// Unsupported sources and anticipated resolution failures are logged and
// reported through the result with a nil error. Unexpected payload shapes,
// transport errors and download failures are returned.
func (o *Orchestrator) Run(ctx context.Context, sourceTag, shareURL, downloadDir string) (*domain.JobResult, error) {
	source, _ := domain.ParseSourceType(sourceTag)
	job := domain.Job{
		ID:          uuid.New().String(),
		Source:      source,
		ShareURL:    shareURL,
		DownloadDir: downloadDir,
		CreatedAt:   time.Now().UTC(),
	}
	result := &domain.JobResult{Job: job}

	resolver, ok := o.resolvers[source]
	if source == domain.SourceUnknown || !ok {
		result.ErrorMessage = fmt.Sprintf("unsupported video source: %s", sourceTag)
		o.logger.Error("unsupported video source", "type", sourceTag)
		return o.finish(result), nil
	}

	outcome, err := resolver.Resolve(ctx, source, shareURL)
	if err != nil {
		result.ErrorMessage = err.Error()
		return o.finish(result), fmt.Errorf("failed to resolve %s: %w", shareURL, err)
	}
	if !outcome.OK() {
		result.ErrorMessage = outcome.Message()
		o.logger.Error("failed to resolve link", "type", source, "url", shareURL, "reason", outcome.Message())
		return o.finish(result), nil
	}

	video := outcome.Value()
	result.Video = &video
	o.logger.Info("link resolved", "type", source, "url", shareURL, "title", video.Title)

	if downloadDir == "" {
		o.logger.Info("no download directory, skipping download", "type", source, "url", video.MediaURL)
		result.Success = true
		return o.finish(result), nil
	}

	o.logger.Info("downloading", "type", source, "url", video.MediaURL, "dir", downloadDir)
	fileName := FileName(video.Title)

	var report ports.ProgressFunc
	var done func()
	if o.progress != nil {
		report, done = o.progress(fileName)
	}
	path, err := o.downloader.Download(ctx, video.MediaURL, downloadDir, fileName, report)
	if done != nil {
		done()
	}
	result.FilePath = path
	if err != nil {
		result.ErrorMessage = err.Error()
		return o.finish(result), fmt.Errorf("failed to download %s: %w", video.MediaURL, err)
	}

	o.logger.Info("download complete", "type", source, "path", path)
	result.Success = true
	return o.finish(result), nil
}

func (o *Orchestrator) finish(result *domain.JobResult) *domain.JobResult {
	result.CompletedAt = time.Now().UTC()
	return result
}

var unsafeFileChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", "\n", " ", "\r", " ", "\x00", "",
)

// FileName turns a video title into a file name with an .mp4 suffix.
// Path separators and characters reserved on common filesystems are replaced.
func FileName(title string) string {
	name := strings.TrimSpace(unsafeFileChars.Replace(title))
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name + ".mp4"
}
