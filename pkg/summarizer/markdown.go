package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	b.WriteString("# Playback Summary\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Source\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&b, "| File | %s |\n", s.Source.Path)
	fmt.Fprintf(&b, "| Geometry | %dx%d |\n", s.Source.Width, s.Source.Height)
	fmt.Fprintf(&b, "| Frame Rate | %g fps |\n", s.Source.FrameRate)
	fmt.Fprintf(&b, "| Frame Size | %s |\n", formatBytes(int64(s.Source.FrameSize)))
	fmt.Fprintf(&b, "| Frames | %d |\n", s.Source.FrameCount)
	if s.Source.TrailingBytes > 0 {
		fmt.Fprintf(&b, "| Trailing Bytes | %d (ignored) |\n", s.Source.TrailingBytes)
	}
	b.WriteString("\n")

	b.WriteString("## Settings\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&b, "| Access Mode | %s |\n", orDash(s.Settings.AccessMode))
	fmt.Fprintf(&b, "| Display | %s |\n", orDash(s.Settings.Display))
	fmt.Fprintf(&b, "| Color Range | %s |\n", orDash(s.Settings.ColorRange))
	fmt.Fprintf(&b, "| Prefetch | %t |\n", s.Settings.Prefetch)
	fmt.Fprintf(&b, "| Pace | %s |\n", formatDuration(s.Settings.Pace))
	b.WriteString("\n")

	p := s.Playback
	b.WriteString("## Playback\n\n")
	if p.FramesPresented == 0 {
		b.WriteString("No frames were presented.\n")
		return b.String()
	}
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&b, "| Frames Presented | %d |\n", p.FramesPresented)
	fmt.Fprintf(&b, "| Range | %d - %d |\n", p.FirstFrame, p.LastFrame)
	fmt.Fprintf(&b, "| Wall Time | %s |\n", formatDuration(p.WallTime))
	fmt.Fprintf(&b, "| Effective FPS | %.2f |\n", p.EffectiveFPS())
	b.WriteString("\n")

	if len(p.Stages) > 0 {
		b.WriteString("### Stages\n\n")
		b.WriteString("| Stage | Count | Mean | Max |\n|-------|-------|------|-----|\n")
		for _, st := range p.Stages {
			fmt.Fprintf(&b, "| %s | %d | %s | %s |\n",
				st.Stage, st.Count, formatDuration(st.Mean()), formatDuration(st.Max))
		}
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0 ms"
	case d < time.Millisecond:
		return fmt.Sprintf("%d µs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.2f ms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2f s", d.Seconds())
	}
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
