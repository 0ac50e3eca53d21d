// Package exercise runs the inline code consoles and output checkers found
// on lesson pages and credits the lesson when they succeed.
package exercise

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is the result category shown next to a console or checker.
type State string

const (
	StateSuccess State = "success"
	StateWarning State = "warning"
	StateError   State = "error"
)

// Checker verdicts.
const (
	PassedMessage   = "✅ Great job! Exercise passed."
	MismatchMessage = "⚠️ Output did not match the expectation. Adjust and try again."
)

// Outcome is what one console run or check produced.
type Outcome struct {
	State  State
	Output string
	// Completed is true when this outcome newly marked the lesson complete.
	Completed bool
}

// Completer credits a lesson. *progress.Tracker satisfies it.
type Completer interface {
	CompleteLesson(ctx context.Context, lesson string) (bool, error)
}

// Block is one inline checker: starter code and its optional expectation.
type Block struct {
	Code     string
	Expected *Expectation
}

// Runner wires an Interpreter to the progress tracker.
type Runner struct {
	interp   Interpreter
	progress Completer
	logger   *zap.Logger
	limit    int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger.
func WithRunnerLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConcurrency bounds how many checks CheckAll runs at once.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.limit = n
		}
	}
}

// NewRunner returns a Runner.
func NewRunner(interp Interpreter, progress Completer, opts ...RunnerOption) *Runner {
	r := &Runner{
		interp:   interp,
		progress: progress,
		logger:   zap.NewNop(),
		limit:    4,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Console runs code from a live console on page. Any clean run counts as
// completing the lesson.
func (r *Runner) Console(ctx context.Context, page, code string) (Outcome, error) {
	out := r.execute(ctx, code)
	if out.State != StateSuccess {
		return out, nil
	}
	return r.complete(ctx, page, out)
}

// Check runs code from an inline checker on page and compares what it
// printed against exp.
func (r *Runner) Check(ctx context.Context, page, code string, exp *Expectation) (Outcome, error) {
	out := r.verify(ctx, code, exp)
	if out.State != StateSuccess {
		return out, nil
	}
	return r.complete(ctx, page, out)
}

// CheckAll runs every checker block of a page concurrently and then credits
// the lesson once if any block passed. Outcomes are returned in block order.
func (r *Runner) CheckAll(ctx context.Context, page string, blocks []Block) ([]Outcome, error) {
	outcomes := make([]Outcome, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i, b := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.verify(gctx, b.Code, b.Expected)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Completion touches the single-writer tracker, so it happens here on
	// the calling goroutine.
	for i := range outcomes {
		if outcomes[i].State != StateSuccess {
			continue
		}
		done, err := r.complete(ctx, page, outcomes[i])
		if err != nil {
			return outcomes, err
		}
		outcomes[i] = done
		break
	}
	return outcomes, nil
}

func (r *Runner) execute(ctx context.Context, code string) Outcome {
	text, err := r.interp.Run(ctx, code)
	if err != nil {
		r.logger.Debug("exercise run failed", zap.Error(err))
		return Outcome{State: StateError, Output: fmt.Sprintf("Error: %v", err)}
	}
	return Outcome{State: StateSuccess, Output: text}
}

func (r *Runner) verify(ctx context.Context, code string, exp *Expectation) Outcome {
	out := r.execute(ctx, code)
	if out.State != StateSuccess {
		return out
	}
	if !exp.Matches(out.Output) {
		return Outcome{State: StateWarning, Output: MismatchMessage}
	}
	return Outcome{State: StateSuccess, Output: PassedMessage}
}

func (r *Runner) complete(ctx context.Context, page string, out Outcome) (Outcome, error) {
	updated, err := r.progress.CompleteLesson(ctx, page)
	if err != nil {
		return out, fmt.Errorf("complete lesson: %w", err)
	}
	out.Completed = updated
	if updated {
		r.logger.Info("lesson completed", zap.String("page", page))
	}
	return out, nil
}
