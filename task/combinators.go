package task

import (
	"context"
	"time"
)

// Outcome is one slot of an AllSettled result: exactly one of Value/Err is
// meaningful, mirroring a single task's terminal outcome.
type Outcome[T any] struct {
	Value T
	Err   error
}

// All spawns every op as a child of the calling task and awaits them in
// order. On the first error (or halt), it halts every remaining
// unfinished child before returning, implementing fail-fast fan-out — the
// Go-idiomatic analogue of orchestrate/workflows.ProcessParallel's
// FailFast mode, rebuilt here on Spawn/Halt instead of a raw
// sync.WaitGroup and channel.
func All[T any](ctx context.Context, ops ...Operation[T]) ([]T, error) {
	handles := make([]*Handle[T], len(ops))
	for i, op := range ops {
		h, err := Spawn(ctx, op)
		if err != nil {
			for j := 0; j < i; j++ {
				handles[j].Halt(context.Background())
			}
			return nil, err
		}
		handles[i] = h
	}

	results := make([]T, len(ops))
	for i, h := range handles {
		v, err := h.Await(ctx)
		if err != nil {
			for j := i + 1; j < len(handles); j++ {
				handles[j].Halt(context.Background())
			}
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// AllSettled spawns every op as a child of the calling task and waits for
// all of them to reach a terminal state, regardless of individual
// failures. It never returns a top-level error; each Outcome reports its
// own task's result.
func AllSettled[T any](ctx context.Context, ops ...Operation[T]) []Outcome[T] {
	handles := make([]*Handle[T], len(ops))
	for i, op := range ops {
		h, err := Spawn(ctx, op, WithIgnoreError(true))
		if err != nil {
			handles[i] = nil
			continue
		}
		handles[i] = h
	}

	out := make([]Outcome[T], len(ops))
	for i, h := range handles {
		if h == nil {
			out[i] = Outcome[T]{Err: ErrNotRunning}
			continue
		}
		v, err := h.Await(ctx)
		out[i] = Outcome[T]{Value: v, Err: err}
	}
	return out
}

// RaceAny spawns every op as a child of the calling task and returns the
// value (or error) of whichever reaches a terminal state first, halting
// every other child once a winner is decided.
func RaceAny[T any](ctx context.Context, ops ...Operation[T]) (T, error) {
	handles := make([]*Handle[T], len(ops))
	for i, op := range ops {
		h, err := Spawn(ctx, op)
		if err != nil {
			var zero T
			for j := 0; j < i; j++ {
				handles[j].Halt(context.Background())
			}
			return zero, err
		}
		handles[i] = h
	}

	type arrival struct {
		index int
	}
	arrived := make(chan arrival, len(handles))
	for i, h := range handles {
		i, h := i, h
		go func() {
			<-h.t.termCh
			arrived <- arrival{index: i}
		}()
	}

	select {
	case first := <-arrived:
		winner := handles[first.index]
		for i, h := range handles {
			if i != first.index {
				h.Halt(context.Background())
			}
		}
		return winner.Await(ctx)
	case <-ctx.Done():
		var zero T
		for _, h := range handles {
			h.Halt(context.Background())
		}
		return zero, ctx.Err()
	}
}

// WithTimeout spawns op as a child of the calling task bound to a deadline:
// if op has not settled within d, the child is halted and WithTimeout
// returns context.DeadlineExceeded.
func WithTimeout[T any](ctx context.Context, d time.Duration, op Operation[T]) (T, error) {
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	h, err := Spawn(ctx, op)
	if err != nil {
		var zero T
		return zero, err
	}

	v, awaitErr := h.Await(tctx)
	if awaitErr != nil && tctx.Err() != nil {
		h.Halt(context.Background())
		var zero T
		return zero, tctx.Err()
	}
	return v, awaitErr
}
