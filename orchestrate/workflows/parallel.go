package workflows

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/tau-core/observability"
	"github.com/tailored-agentic-units/tau-core/orchestrate/config"
	"github.com/tailored-agentic-units/tau-core/task"
)

// TaskProcessor processes a single item and returns a result.
//
// This function type implements the parallel processing pattern where each item is
// processed independently and concurrently. The processor is fully generic and can
// implement any processing approach:
//
//   - Direct tau-core calls (primary pattern)
//   - Hub-based multi-agent coordination
//   - Pure data transformation
//   - Mixed approaches
//
// Unlike StepProcessor in sequential chains, TaskProcessor does not receive or return
// accumulated state. Each task executes independently with no dependencies on other tasks.
//
// Example with direct agent usage:
//
//	processor := func(ctx context.Context, question string) (string, error) {
//	    response, err := agent.Chat(ctx, question)
//	    if err != nil {
//	        return "", err
//	    }
//	    return response.Content(), nil
//	}
type TaskProcessor[TItem, TResult any] func(
	ctx context.Context,
	item TItem,
) (TResult, error)

type indexedResult[TResult any] struct {
	index  int
	result TResult
	err    error
}

// ProcessParallel executes concurrent processing with result aggregation.
//
// Each item is spawned as a child task of a single root task (task.Spawn), so the
// pool is a real supervision tree rather than a bare goroutine/WaitGroup: a worker
// that panics or is halted is torn down exactly like any other task, and FailFast is
// implemented by halting the remaining children (§3's halt cascade) instead of a
// bespoke cancel() broadcast. Concurrency is still bounded to the configured worker
// count via a buffered channel semaphore acquired inside each child's body — the
// child suspends on the channel send exactly as any other blocking operation would.
// Results are collected and returned in original item order despite concurrent
// execution.
//
// Worker Pool Sizing:
//
// Worker count is determined by configuration:
//   - MaxWorkers > 0: Use exact count
//   - MaxWorkers = 0: Auto-detect min(NumCPU*2, WorkerCap, len(items))
//
// Error Handling Modes:
//
// FailFast=true (default):
//   - Halts every other unfinished child once the in-order result collection reaches the first failed item
//   - Returns ParallelError with partial results
//
// FailFast=false:
//   - Every item runs to completion regardless of sibling failures
//   - Returns error only if ALL items failed
//   - Check result.Errors for failures when no error returned
//
// Observer Integration:
//
// Emits events at key execution points:
//   - EventParallelStart: Before processing begins
//   - EventWorkerStart: Before each item processes
//   - EventWorkerComplete: After each item (success or failure)
//   - EventParallelComplete: When execution finishes
//
// Empty Input Behavior:
//
// When items slice is empty, returns immediately with empty Results/Errors, still
// emitting start/complete events for consistency.
func ProcessParallel[TItem, TResult any](
	ctx context.Context,
	cfg config.ParallelConfig,
	items []TItem,
	processor TaskProcessor[TItem, TResult],
	progress ProgressFunc[TResult],
) (ParallelResult[TItem, TResult], error) {
	if err := cfg.Validate(); err != nil {
		return ParallelResult[TItem, TResult]{}, err
	}

	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return ParallelResult[TItem, TResult]{}, fmt.Errorf("failed to resolve observer: %w", err)
	}

	if len(items) == 0 {
		observer.OnEvent(ctx, observability.Event{
			Type:      EventParallelStart,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "workflows.ProcessParallel",
			Data: map[string]any{
				"item_count":            0,
				"worker_count":          0,
				"fail_fast":             cfg.FailFast(),
				"has_progress_callback": progress != nil,
			},
		})
		observer.OnEvent(ctx, observability.Event{
			Type:      EventParallelComplete,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "workflows.ProcessParallel",
			Data: map[string]any{
				"items_processed": 0,
				"items_failed":    0,
				"error":           false,
			},
		})
		return ParallelResult[TItem, TResult]{
			Results: []TResult{},
			Errors:  []TaskError[TItem]{},
		}, nil
	}

	workerCount := calculateWorkerCount(cfg.MaxWorkers, cfg.WorkerCap, len(items))

	observer.OnEvent(ctx, observability.Event{
		Type:      EventParallelStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "workflows.ProcessParallel",
		Data: map[string]any{
			"item_count":            len(items),
			"worker_count":          workerCount,
			"fail_fast":             cfg.FailFast(),
			"has_progress_callback": progress != nil,
		},
	})

	root, runErr := task.RunDefault(ctx, func(ctx context.Context) ([]indexedResult[TResult], error) {
		sem := make(chan struct{}, workerCount)
		handles := make([]*task.Handle[indexedResult[TResult]], len(items))
		var completed atomic.Int32

		for i, item := range items {
			i, item := i, item
			h, spawnErr := task.Spawn(ctx, func(ctx context.Context) (indexedResult[TResult], error) {
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					return indexedResult[TResult]{index: i, err: ctx.Err()}, nil
				}
				defer func() { <-sem }()

				observer.OnEvent(ctx, observability.Event{
					Type:      EventWorkerStart,
					Level:     observability.LevelVerbose,
					Timestamp: time.Now(),
					Source:    "workflows.ProcessParallel",
					Data: map[string]any{
						"worker_id":   i,
						"item_index":  i,
						"total_items": len(items),
					},
				})

				result, procErr := processor(ctx, item)

				observer.OnEvent(ctx, observability.Event{
					Type:      EventWorkerComplete,
					Level:     observability.LevelVerbose,
					Timestamp: time.Now(),
					Source:    "workflows.ProcessParallel",
					Data: map[string]any{
						"worker_id":   i,
						"item_index":  i,
						"total_items": len(items),
						"error":       procErr != nil,
					},
				})

				if procErr == nil && progress != nil {
					count := completed.Add(1)
					progress(int(count), len(items), result)
				}
				return indexedResult[TResult]{index: i, result: result, err: procErr}, nil
			}, task.WithIgnoreError(true))
			if spawnErr != nil {
				return nil, spawnErr
			}
			handles[i] = h
		}

		results := make([]indexedResult[TResult], len(items))
		haltedSiblings := false
		for i, h := range handles {
			r, awaitErr := h.Await(ctx)
			// A sibling halted mid-flight (FailFast) or never acquired its
			// semaphore slot terminates with ErrHalted rather than its own
			// indexedResult: fold that into the same shape so it still lands
			// in Errors at the right index instead of reading as a silent
			// zero-value success.
			r.index = i
			if r.err == nil && awaitErr != nil {
				r.err = awaitErr
			}
			results[i] = r
			if r.err != nil && cfg.FailFast() && !haltedSiblings {
				haltedSiblings = true
				for j, other := range handles {
					if j != i {
						go other.Halt(context.Background())
					}
				}
			}
		}
		return results, nil
	}, task.WithIgnoreChildErrors(true))
	if runErr != nil {
		return ParallelResult[TItem, TResult]{}, fmt.Errorf("failed to start parallel root task: %w", runErr)
	}

	indexed, err := root.Await(ctx)
	if err != nil {
		observer.OnEvent(ctx, observability.Event{
			Type:      EventParallelComplete,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "workflows.ProcessParallel",
			Data: map[string]any{
				"items_processed": 0,
				"items_failed":    0,
				"error":           true,
			},
		})
		return ParallelResult[TItem, TResult]{}, fmt.Errorf("parallel execution failed: %w", err)
	}

	results := make([]TResult, 0, len(items))
	errs := make([]TaskError[TItem], 0)
	for _, r := range indexed {
		if r.err != nil {
			errs = append(errs, TaskError[TItem]{Index: r.index, Item: items[r.index], Err: r.err})
			continue
		}
		results = append(results, r.result)
	}

	if ctx.Err() != nil {
		observer.OnEvent(ctx, observability.Event{
			Type:      EventParallelComplete,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "workflows.ProcessParallel",
			Data: map[string]any{
				"items_processed": len(results),
				"items_failed":    len(errs),
				"error":           true,
			},
		})
		return ParallelResult[TItem, TResult]{Results: results, Errors: errs},
			fmt.Errorf("parallel execution cancelled: %w", ctx.Err())
	}

	if len(errs) > 0 && (cfg.FailFast() || len(results) == 0) {
		observer.OnEvent(ctx, observability.Event{
			Type:      EventParallelComplete,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "workflows.ProcessParallel",
			Data: map[string]any{
				"items_processed": len(results),
				"items_failed":    len(errs),
				"error":           true,
			},
		})
		return ParallelResult[TItem, TResult]{Results: results, Errors: errs}, &ParallelError[TItem]{Errors: errs}
	}

	observer.OnEvent(ctx, observability.Event{
		Type:      EventParallelComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "workflows.ProcessParallel",
		Data: map[string]any{
			"items_processed": len(results),
			"items_failed":    len(errs),
			"error":           false,
		},
	})

	return ParallelResult[TItem, TResult]{Results: results, Errors: errs}, nil
}

// calculateWorkerCount determines optimal worker pool size based on configuration.
//
// The function implements auto-detection logic when MaxWorkers is 0:
//   - Start with NumCPU * 2 (optimal for I/O-bound work)
//   - Cap at WorkerCap to prevent excessive goroutines
//   - Cap at itemCount (no point in more workers than items)
//   - Ensure at least 1 worker
//
// When MaxWorkers > 0, returns that exact count (user override).
func calculateWorkerCount(maxWorkers, workerCap, itemCount int) int {
	if maxWorkers > 0 {
		return maxWorkers
	}

	workers := min(min(runtime.NumCPU()*2, workerCap), itemCount)

	if workers <= 0 {
		workers = 1
	}

	return workers
}
