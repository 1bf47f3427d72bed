package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sharegrab/internal/adapters/downloader"
	"sharegrab/internal/adapters/httpclient"
	"sharegrab/internal/adapters/localstorage"
	"sharegrab/internal/adapters/pipix"
	"sharegrab/internal/adapters/progress"
	"sharegrab/internal/config"
	"sharegrab/internal/core/domain"
	"sharegrab/internal/core/ports"
	"sharegrab/internal/service"
)

// jobRunner is the part of service.Orchestrator the commands need.
type jobRunner interface {
	Run(ctx context.Context, sourceTag, shareURL, downloadDir string) (*domain.JobResult, error)
	RunDefault(ctx context.Context, shareURL, downloadDir string) (*domain.JobResult, error)
}

// buildFunc wires a jobRunner from the loaded configuration.
type buildFunc func(cfg *config.Config, logger *slog.Logger) (jobRunner, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(buildOrchestrator, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(build buildFunc, stdout, stderr io.Writer) *cobra.Command {
	var (
		shareURL    string
		downloadDir string
		sourceTag   string
		cfg         *config.Config
		logger      *slog.Logger
		runner      jobRunner
	)

	rootCmd := &cobra.Command{
		Use:   "sharegrab",
		Short: "Resolve a short-video share link and optionally download the video",
		Long: `sharegrab follows a short-video share link (currently Pipixia,
https://h5.pipix.com/...), prints the resolved title, author, cover and
direct media URL, and downloads the video when a directory is given.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err = newLogger(cfg, stderr)
			if err != nil {
				return err
			}
			if downloadDir == "" {
				downloadDir = cfg.DownloadDir
			}
			runner, err = build(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runner.RunDefault(cmd.Context(), shareURL, downloadDir)
			printSummary(stdout, result)
			return err
		},
	}
	rootCmd.PersistentFlags().StringVarP(&shareURL, "url", "l", "", "video share link")
	rootCmd.PersistentFlags().StringVarP(&downloadDir, "dir", "s", "", "download directory; resolve only when empty")
	rootCmd.MarkPersistentFlagRequired("url")

	parseCmd := &cobra.Command{
		Use:   "parse",
		Short: "Resolve a share link from an explicitly named source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runner.Run(cmd.Context(), sourceTag, shareURL, downloadDir)
			printSummary(stdout, result)
			return err
		},
	}
	parseCmd.Flags().StringVarP(&sourceTag, "type", "t", "", "video source, e.g. pipix (皮皮虾)")
	parseCmd.MarkFlagRequired("type")

	rootCmd.AddCommand(parseCmd)
	return rootCmd
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Log.Format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Log.Format)
	}
}

func buildOrchestrator(cfg *config.Config, logger *slog.Logger) (jobRunner, error) {
	opts := httpclient.Options{
		InsecureSkipVerify: cfg.InsecureTLS,
		ProxyURL:           cfg.ProxyURL,
	}

	resolver, err := pipix.NewClient(opts, logger, pipix.WithUserAgent(cfg.UserAgent))
	if err != nil {
		return nil, err
	}
	dl, err := downloader.NewHTTPDownloader(opts, localstorage.NewLocalStorage(), logger)
	if err != nil {
		return nil, err
	}

	resolvers := map[domain.SourceType]ports.Resolver{
		domain.SourcePipix: resolver,
	}
	consoleProgress := func(fileName string) (ports.ProgressFunc, func()) {
		c := progress.NewConsole(os.Stderr, fileName)
		return c.Report, c.Finish
	}
	return service.NewOrchestrator(resolvers, dl, consoleProgress, logger), nil
}

func printSummary(w io.Writer, result *domain.JobResult) {
	if result == nil {
		return
	}
	fmt.Fprintln(w, "\n=== Job Summary ===")
	fmt.Fprintf(w, "Job ID:       %s\n", result.Job.ID)
	fmt.Fprintf(w, "Source:       %s\n", result.Job.Source)
	fmt.Fprintf(w, "Success:      %t\n", result.Success)
	if result.Video != nil {
		fmt.Fprintf(w, "Title:        %s\n", result.Video.Title)
		fmt.Fprintf(w, "Author:       %s\n", result.Video.Author)
		fmt.Fprintf(w, "Video URL:    %s\n", result.Video.MediaURL)
		fmt.Fprintf(w, "Cover URL:    %s\n", result.Video.CoverURL)
	}
	if result.FilePath != "" {
		fmt.Fprintf(w, "File:         %s\n", result.FilePath)
	}
	if result.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:        %s\n", result.ErrorMessage)
	}
	fmt.Fprintf(w, "Completed At: %s\n", result.CompletedAt.Format(time.RFC3339))
}
