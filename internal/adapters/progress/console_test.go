package progress

import (
	"bytes"
	"strings"
	"testing"
)

func newConsole(buf *bytes.Buffer) *Console {
	c := NewConsole(buf, "clip.mp4")
	c.throttle = 0
	return c
}

func TestConsole_KnownTotal(t *testing.T) {
	var buf bytes.Buffer
	c := newConsole(&buf)

	c.Report(1024, 2048)
	c.Report(2048, 2048)
	c.Finish()

	out := buf.String()
	if !strings.Contains(out, "clip.mp4") {
		t.Errorf("missing label: %q", out)
	}
	if !strings.Contains(out, "100%") {
		t.Errorf("missing completed percentage: %q", out)
	}
	if !strings.HasSuffix(out, "clip.mp4: 2.0 KiB\n") {
		t.Errorf("expected humanized size on finish: %q", out)
	}
}

func TestConsole_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	c := newConsole(&buf)

	c.Report(100, -1)
	c.Report(2<<20, -1)
	c.Finish()

	out := buf.String()
	if !strings.Contains(out, "clip.mp4") {
		t.Errorf("missing label: %q", out)
	}
	if !strings.HasSuffix(out, "clip.mp4: 2.0 MiB\n") {
		t.Errorf("expected humanized size on finish: %q", out)
	}
}

func TestConsole_OverrunDoesNotPanic(t *testing.T) {
	var buf bytes.Buffer
	c := newConsole(&buf)

	c.Report(10, 5)
	c.Report(20, 5)
	c.Finish()

	if !strings.HasSuffix(buf.String(), "clip.mp4: 20 B\n") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestConsole_FinishWithoutReports(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, "x").Finish()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
