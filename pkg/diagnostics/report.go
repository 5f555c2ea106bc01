package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	goerrors "github.com/go-errors/errors"
)

// Reporter renders failures for the user according to a diagnostics State
type Reporter struct {
	state   State
	out     io.Writer
	styles  reportStyles
	sources map[string][]string
}

type reportStyles struct {
	title     lipgloss.Style
	location  lipgloss.Style
	function  lipgloss.Style
	marker    lipgloss.Style
	highlight lipgloss.Style
	source    lipgloss.Style
	message   lipgloss.Style
}

func newReportStyles(renderer *lipgloss.Renderer) reportStyles {
	return reportStyles{
		title:     renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		location:  renderer.NewStyle().Foreground(lipgloss.Color("6")),
		function:  renderer.NewStyle().Foreground(lipgloss.Color("3")),
		marker:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		highlight: renderer.NewStyle().Bold(true),
		source:    renderer.NewStyle().Faint(true),
		message:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	}
}

// Reporter creates a failure reporter writing to w. Colors are only used when
// w is a terminal.
func (s State) Reporter(w io.Writer) *Reporter {
	return &Reporter{
		state:   s,
		out:     w,
		styles:  newReportStyles(lipgloss.NewRenderer(w)),
		sources: make(map[string][]string),
	}
}

// Recovered converts a value recovered from a panic into an error carrying the
// stack of the panicking goroutine. It must be called from the deferred
// function that recovered v.
func Recovered(v any) error {
	if err, ok := v.(error); ok {
		return goerrors.Wrap(fmt.Errorf("panic: %w", err), 1)
	}
	return goerrors.Wrap(fmt.Errorf("panic: %v", v), 1)
}

// Report writes err to the reporter's output. Errors carrying a stack trace
// are preceded by their visible frames; verbose reports add source context
// around each frame and the chain of wrapped errors.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}

	var b strings.Builder
	if frames := r.visibleFrames(err); len(frames) > 0 {
		b.WriteString(r.styles.title.Render("Traceback (most recent call first):"))
		b.WriteByte('\n')
		for _, frame := range frames {
			r.writeFrame(&b, frame)
		}
	}
	if r.state.Verbose {
		r.writeChain(&b, err)
	}
	b.WriteString(r.styles.message.Render("Error:"))
	b.WriteString(" ")
	b.WriteString(err.Error())
	b.WriteByte('\n')

	_, _ = io.WriteString(r.out, b.String())
}

func (r *Reporter) visibleFrames(err error) []goerrors.StackFrame {
	var stacked *goerrors.Error
	if !errors.As(err, &stacked) {
		return nil
	}
	var visible []goerrors.StackFrame
	for _, frame := range stacked.StackFrames() {
		if r.state.IsSuppressed(frame.Package) {
			continue
		}
		visible = append(visible, frame)
	}
	return visible
}

func (r *Reporter) writeFrame(b *strings.Builder, frame goerrors.StackFrame) {
	location := r.styles.location.Render(frame.File + ":" + strconv.Itoa(frame.LineNumber))
	function := r.styles.function.Render(frame.Package + "." + frame.Name)
	fmt.Fprintf(b, "  %s in %s\n", location, function)

	lines := r.source(frame.File)
	if frame.LineNumber < 1 || frame.LineNumber > len(lines) {
		return
	}
	first := max(frame.LineNumber-r.state.ExtraLines, 1)
	last := min(frame.LineNumber+r.state.ExtraLines, len(lines))
	width := len(strconv.Itoa(last))
	for n := first; n <= last; n++ {
		text := strings.TrimRight(lines[n-1], "\r")
		if n == frame.LineNumber {
			fmt.Fprintf(b, "  %s %*d %s\n", r.styles.marker.Render(">"), width, n, r.styles.highlight.Render(text))
			continue
		}
		fmt.Fprintf(b, "    %*d %s\n", width, n, r.styles.source.Render(text))
	}
}

func (r *Reporter) writeChain(b *strings.Builder, err error) {
	var chain []error
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e)
	}
	if len(chain) < 2 {
		return
	}
	b.WriteString(r.styles.title.Render("Error chain:"))
	b.WriteByte('\n')
	for _, e := range chain {
		fmt.Fprintf(b, "  %s %s\n", r.styles.function.Render(fmt.Sprintf("%T", e)), e.Error())
	}
}

// source returns the lines of file, or nil when it cannot be read
func (r *Reporter) source(file string) []string {
	if lines, ok := r.sources[file]; ok {
		return lines
	}
	var lines []string
	if data, err := os.ReadFile(file); err == nil {
		lines = strings.Split(string(data), "\n")
	}
	r.sources[file] = lines
	return lines
}
