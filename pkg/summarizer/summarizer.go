// Package summarizer formats a playback run into a human-readable report.
package summarizer

import (
	"fmt"
	"strings"

	"github.com/user/framecast/pkg/ports"
)

// Summary collects the numbers from one playback run: the engine side
// (decode/publish) and the display side (present).
type Summary struct {
	Input           string
	Device          string
	Width           int
	Height          int
	FramesDecoded   int
	FramesPublished int
	FramesPresented int
	BlankTicks      int
	TicksTotal      int
	ElapsedMs       int
}

// Text renders the summary as an aligned key-value block.
func (s Summary) Text() string {
	var b strings.Builder
	write := func(key, format string, args ...interface{}) {
		fmt.Fprintf(&b, "%-18s %s\n", key, fmt.Sprintf(format, args...))
	}

	write("Input", "%s", s.Input)
	write("Device", "%s", s.Device)
	write("Output size", "%dx%d", s.Width, s.Height)
	write("Frames decoded", "%d", s.FramesDecoded)
	write("Frames published", "%d", s.FramesPublished)
	write("Frames presented", "%d", s.FramesPresented)
	write("Blank ticks", "%d of %d", s.BlankTicks, s.TicksTotal)
	write("Elapsed", "%d ms", s.ElapsedMs)
	if s.ElapsedMs > 0 {
		write("Decode rate", "%.1f fps", float64(s.FramesDecoded)*1000/float64(s.ElapsedMs))
	}
	return b.String()
}

// Markdown renders the summary as a markdown table.
func (s Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("# Playback summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	row := func(key, format string, args ...interface{}) {
		fmt.Fprintf(&b, "| %s | %s |\n", key, fmt.Sprintf(format, args...))
	}

	row("Input", "%s", s.Input)
	row("Device", "%s", s.Device)
	row("Output size", "%dx%d", s.Width, s.Height)
	row("Frames decoded", "%d", s.FramesDecoded)
	row("Frames published", "%d", s.FramesPublished)
	row("Frames presented", "%d", s.FramesPresented)
	row("Blank ticks", "%d of %d", s.BlankTicks, s.TicksTotal)
	row("Elapsed", "%d ms", s.ElapsedMs)
	return b.String()
}

// WriteTo stores the summary at path, as markdown when the path ends in .md
// and as plain text otherwise.
func (s Summary) WriteTo(fs ports.FileSystem, path string) error {
	content := s.Text()
	if strings.HasSuffix(strings.ToLower(path), ".md") {
		content = s.Markdown()
	}
	if err := fs.WriteFile(path, []byte(content)); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}
