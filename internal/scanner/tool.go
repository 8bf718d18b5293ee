// Package scanner coordinates the ordered execution of analysis tools
// against a project and collects one ScanResult per tool.
package scanner

import "context"

// Tool is one analyzer or detector. Run returns the tool's result; a
// returned error or a panic is converted by the Coordinator into a failed
// result, so implementations need not guard against their own defects.
type Tool interface {
	Name() string
	Title() string
	Run(ctx context.Context, p *Project) (ScanResult, error)
}

// Observer receives progress notifications. The Coordinator never calls an
// Observer concurrently, even when tools run in parallel.
type Observer interface {
	ToolStarted(t Tool, index, total int)
	ToolFinished(t Tool, res ScanResult, index, total int)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) ToolStarted(Tool, int, int)              {}
func (NopObserver) ToolFinished(Tool, ScanResult, int, int) {}
