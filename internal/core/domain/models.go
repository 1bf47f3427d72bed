package domain

import (
	"regexp"
	"strings"
	"time"
)

// SourceType identifies the platform a share link belongs to.
type SourceType string

const (
	// SourceUnknown is returned when no platform matches a link.
	SourceUnknown SourceType = ""
	// SourcePipix is the Pipixia short-video platform (h5.pipix.com).
	SourcePipix SourceType = "pipix"
)

var sourceAliases = map[string]SourceType{
	"pipix":    SourcePipix,
	"pipixia":  SourcePipix,
	"ppx":      SourcePipix,
	"皮皮虾":      SourcePipix,
	"皮皮虾async": SourcePipix,
}

var pipixShareURL = regexp.MustCompile(`https?://h5\.pipix\.com/\S*`)

// ParseSourceType maps a user supplied source tag to a known SourceType.
// The second return value is false when the tag names no supported platform.
func ParseSourceType(tag string) (SourceType, bool) {
	t, ok := sourceAliases[strings.ToLower(strings.TrimSpace(tag))]
	return t, ok
}

// DetectSource guesses the platform from a share link.
func DetectSource(shareURL string) SourceType {
	if pipixShareURL.MatchString(shareURL) {
		return SourcePipix
	}
	return SourceUnknown
}

// ResolvedVideo is the normalized record extracted from platform metadata.
type ResolvedVideo struct {
	Title    string `json:"title"`
	MediaURL string `json:"media_url"`
	CoverURL string `json:"cover_url"`
	Author   string `json:"author"`
}

// Job represents a single resolve (and optional download) run.
type Job struct {
	ID          string     `json:"job_id"`
	Source      SourceType `json:"source"`
	ShareURL    string     `json:"share_url"`
	DownloadDir string     `json:"download_dir,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// JobResult holds the outcome of a completed job.
type JobResult struct {
	Job          Job
	Video        *ResolvedVideo
	FilePath     string
	Success      bool
	ErrorMessage string
	CompletedAt  time.Time
}
