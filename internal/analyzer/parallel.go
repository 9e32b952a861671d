package analyzer

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/dataflow"
	"github.com/slackhq/hakana-sub000/internal/diagnostics"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// RunID and WorkerID tag, respectively, one whole parallel analysis run
// and one worker goroutine within it, purely for correlating issues and
// dataflow nodes back to "which worker found this" in verbose output and
// in tests — spec.md §8 invariant 10 only requires the merged node/edge
// *sets* to match a single-threaded run, not these ids.
type RunID string
type WorkerID string

func newRunID() RunID       { return RunID(uuid.New().String()) }
func newWorkerID() WorkerID { return WorkerID(uuid.New().String()) }

// FileUnit is one file-grain unit of work: its path and the Script to run
// over it. A real walker would replace Script with whatever it parses
// from Path; this package only needs something runnable per file.
type FileUnit struct {
	Path   string
	Script Script
}

// WorkerResult is one file's output: the bindings its script ended
// with, the issues it raised, its slice of the dataflow graph, and any
// AnalysisError it produced (a panic recovered into a WorkerPanicError,
// or an error explicitly returned by the script — scripts never return
// errors in the current engine, but the field exists for forward
// compatibility with a real walker that can).
type WorkerResult struct {
	Path     string
	Worker   WorkerID
	Bindings map[string]*ttype.Union
	Issues   []diagnostics.Issue
	Graph    *dataflow.Graph
	Err      error
}

// RunResult is the merged outcome of a whole parallel run.
type RunResult struct {
	RunID   RunID
	Graph   *dataflow.Graph
	Issues  []diagnostics.Issue
	PerFile []WorkerResult
}

// RunParallel partitions units across up to jobs goroutines (0 meaning
// runtime.GOMAXPROCS(0)), exactly as the teacher's DiagnoseDirWithOptions
// partitions a file list with errgroup.SetLimit: each worker builds its
// own Engine sharing cb (read-only during analysis — population already
// completed single-threaded, per spec.md §5's total-order guarantee) but
// owning a private dataflow.Graph and issue slice, so no worker mutates
// shared state until the single-threaded merge after errgroup.Wait.
func RunParallel(ctx context.Context, cb *codeinfo.Codebase, combine func(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union, intersect func(a, b *ttype.Union, cb *codeinfo.Codebase) (*ttype.Union, bool), isContainedBy func(a, b ttype.Atomic) bool, units []FileUnit, jobs int) (*RunResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if len(units) == 0 {
		return &RunResult{RunID: newRunID(), Graph: dataflow.NewGraph()}, nil
	}

	results := make([]WorkerResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))

	for i, unit := range units {
		g.Go(func(i int, unit FileUnit) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				results[i] = runOneFile(cb, combine, intersect, isContainedBy, unit)
				return nil
			}
		}(i, unit))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := dataflow.NewGraph()
	var issues []diagnostics.Issue
	for _, r := range results {
		merged.Merge(r.Graph)
		issues = append(issues, r.Issues...)
	}

	return &RunResult{RunID: newRunID(), Graph: merged, Issues: issues, PerFile: results}, nil
}

// runOneFile runs unit.Script through a fresh Engine, recovering a panic
// into a WorkerPanicError the same way the teacher's parallel workers
// return an error from their closure rather than letting a panic cross
// the errgroup boundary.
func runOneFile(cb *codeinfo.Codebase, combine func(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union, intersect func(a, b *ttype.Union, cb *codeinfo.Codebase) (*ttype.Union, bool), isContainedBy func(a, b ttype.Atomic) bool, unit FileUnit) (result WorkerResult) {
	worker := newWorkerID()
	result = WorkerResult{Path: unit.Path, Worker: worker, Graph: dataflow.NewGraph()}

	defer func() {
		if r := recover(); r != nil {
			result.Err = WorkerPanicError{Worker: worker, Path: unit.Path, Cause: r}
		}
	}()

	e := NewEngine(cb, combine, intersect, isContainedBy)
	fileCtx := &Context{Scope: NewScope(), WorkerID: worker}
	Run(e, fileCtx, unit.Script)

	result.Bindings = fileCtx.Scope.Vars
	result.Issues = e.Issues
	result.Graph = e.Graph
	return result
}
