package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/pxkundu/awdx/internal/scanner"
	"github.com/pxkundu/awdx/internal/types"
)

// Progress reports each tool as it runs: a spinner while the tool works,
// then one status line when it finishes.
type Progress struct {
	mu      sync.Mutex
	w       io.Writer
	spinner *Spinner
	noColor bool
}

var _ scanner.Observer = (*Progress)(nil)

// NewProgress writes progress to w. With animate false only the status
// lines are printed, which suits non-interactive output.
func NewProgress(w io.Writer, animate, noColor bool) *Progress {
	p := &Progress{w: w, noColor: noColor}
	if animate {
		p.spinner = NewSpinner(w)
	}
	return p
}

func (p *Progress) color(code, text string) string {
	if p.noColor {
		return text
	}
	return code + text + reset
}

func (p *Progress) ToolStarted(t scanner.Tool, index, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		p.spinner.Start(fmt.Sprintf("[%d/%d] Running %s...", index+1, total, t.Title()))
	}
}

func (p *Progress) ToolFinished(t scanner.Tool, res types.ScanResult, index, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		p.spinner.Stop()
	}

	prefix := fmt.Sprintf("[%d/%d] %s:", index+1, total, t.Title())
	switch statusOf(res) {
	case statusFailed:
		fmt.Fprintf(p.w, "%s %s %s\n", p.color(red+bold, "✖"), prefix, p.color(red, "Scan failed"))
	case statusIssues:
		fmt.Fprintf(p.w, "%s %s %s\n", p.color(yellow, "▲"), prefix, severityBreakdown(res.Issues))
	default:
		fmt.Fprintf(p.w, "%s %s %s\n", p.color(green, "✔"), prefix, "No issues found")
	}
	if res.ErrorMessage != "" {
		fmt.Fprintf(p.w, "    %s\n", p.color(dim, "Error: "+singleLine(res.ErrorMessage)))
	}
}
