package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

const (
	barWidth = 30
	// spinnerType is the progressbar spinner used when the length is unknown.
	spinnerType = 14
)

// Console renders download progress as a single refreshing line. The bar is
// built on the first report because only then is the total known.
type Console struct {
	out      io.Writer
	label    string
	throttle time.Duration
	bar      *progressbar.ProgressBar
	current  int64
}

// NewConsole creates a reporter writing to out.
func NewConsole(out io.Writer, label string) *Console {
	return &Console{out: out, label: label, throttle: 65 * time.Millisecond}
}

// Report matches ports.ProgressFunc. A total of -1 switches the bar to
// spinner mode. Render errors are dropped; progress never fails a download.
func (c *Console) Report(current, total int64) {
	if c.bar == nil {
		c.bar = c.newBar(total)
	}
	c.current = current
	_ = c.bar.Set64(current)
}

func (c *Console) newBar(total int64) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(c.label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(barWidth),
		progressbar.OptionThrottle(c.throttle),
	}
	if total <= 0 {
		total = -1
		opts = append(opts, progressbar.OptionSpinnerType(spinnerType))
	}
	return progressbar.NewOptions64(total, opts...)
}

// Finish ends the progress line and prints the received size.
func (c *Console) Finish() {
	if c.bar == nil {
		return
	}
	fmt.Fprintf(c.out, "\n%s: %s\n", c.label, humanize.IBytes(uint64(c.current)))
}
