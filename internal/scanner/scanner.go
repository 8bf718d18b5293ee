package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pxkundu/awdx/internal/logging"
	"github.com/pxkundu/awdx/internal/types"
)

// DefaultPhaseTimeout bounds a whole tool phase, on top of any per-process
// timeout the tool applies itself.
const DefaultPhaseTimeout = 600 * time.Second

// Coordinator runs registered tools in registration order. One tool's
// failure never stops the remaining tools.
type Coordinator struct {
	tools        []Tool
	observer     Observer
	workers      int
	phaseTimeout time.Duration
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// New creates a Coordinator that runs tools one at a time.
func New() *Coordinator {
	return &Coordinator{
		observer:     NopObserver{},
		workers:      1,
		phaseTimeout: DefaultPhaseTimeout,
		logger:       logging.Nop(),
		now:          time.Now,
	}
}

// RegisterTool appends a tool to the run order.
func (c *Coordinator) RegisterTool(t Tool) {
	c.tools = append(c.tools, t)
}

// Tools returns the registered tools in run order.
func (c *Coordinator) Tools() []Tool {
	return c.tools
}

// SetObserver sets the progress observer. nil restores the no-op observer.
func (c *Coordinator) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	c.observer = o
}

// SetWorkers bounds how many tools run at once. Values below 2 keep the
// sequential default. Results stay in registration order either way.
func (c *Coordinator) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	c.workers = n
}

// SetPhaseTimeout sets the outer timeout applied to each tool.
func (c *Coordinator) SetPhaseTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultPhaseTimeout
	}
	c.phaseTimeout = d
}

// SetLogger sets the logger used for failure diagnostics.
func (c *Coordinator) SetLogger(l *zap.SugaredLogger) {
	c.logger = logging.OrNop(l)
}

// Run executes every registered tool against p and returns the report. The
// only error is cancellation of ctx, which aborts the whole run.
func (c *Coordinator) Run(ctx context.Context, p *Project, mode Mode) (*Report, error) {
	report := &types.Report{
		Mode:      mode,
		Root:      p.Root,
		StartedAt: c.now(),
		Results:   make([]types.ScanResult, len(c.tools)),
	}

	if c.workers <= 1 || len(c.tools) <= 1 {
		for i, t := range c.tools {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c.observer.ToolStarted(t, i, len(c.tools))
			res := c.runOne(ctx, p, t)
			report.Results[i] = res
			c.observer.ToolFinished(t, res, i, len(c.tools))
		}
	} else {
		c.runParallel(ctx, p, report.Results)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.Duration = c.now().Sub(report.StartedAt)
	return report, nil
}

func (c *Coordinator) runParallel(ctx context.Context, p *Project, results []types.ScanResult) {
	var (
		obsMu sync.Mutex
		wg    sync.WaitGroup
		sem   = make(chan struct{}, c.workers)
	)
	for i, t := range c.tools {
		i, t := i, t
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}

			obsMu.Lock()
			c.observer.ToolStarted(t, i, len(c.tools))
			obsMu.Unlock()

			res := c.runOne(ctx, p, t)
			results[i] = res

			obsMu.Lock()
			c.observer.ToolFinished(t, res, i, len(c.tools))
			obsMu.Unlock()
		}()
	}
	wg.Wait()
}

type toolOutcome struct {
	res types.ScanResult
	err error
}

// runOne runs a single tool under the phase timeout, converting errors,
// panics, and timeouts into a failed result.
func (c *Coordinator) runOne(ctx context.Context, p *Project, t Tool) types.ScanResult {
	start := c.now()
	phaseCtx, cancel := context.WithTimeout(ctx, c.phaseTimeout)
	defer cancel()

	done := make(chan toolOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- toolOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := t.Run(phaseCtx, p)
		done <- toolOutcome{res: res, err: err}
	}()

	var out toolOutcome
	select {
	case out = <-done:
	case <-phaseCtx.Done():
		if ctx.Err() != nil {
			out.err = fmt.Errorf("%s interrupted", t.Name())
		} else {
			out.err = fmt.Errorf("%s scan phase timed out after %s", t.Name(), c.phaseTimeout)
		}
	}

	elapsed := max(c.now().Sub(start), 0)
	if out.err != nil {
		c.logger.Warnf("%s failed: %v", t.Name(), out.err)
		return types.Failed(t.Name(), elapsed, out.err.Error())
	}

	res := out.res
	if res.ToolName == "" {
		res.ToolName = t.Name()
	}
	res.ScanTime = elapsed
	if !res.Success && res.ErrorMessage == "" {
		res.ErrorMessage = fmt.Sprintf("%s did not complete", t.Name())
	}
	return res
}
