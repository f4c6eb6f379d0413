// Package task implements a structured-concurrency runtime: every unit of
// work ("task") is a node in a dynamically-growing supervision tree, with
// deterministic lifecycle rules, resource-scoped cleanup, and propagating
// failure/halt semantics.
//
// A task's body is an ordinary Go function running on its own goroutine.
// The function suspends wherever it blocks — on a channel receive, on
// ctx.Done(), or inside one of the package's instruction functions (Spawn,
// Ensure, UseResource, Call). The runtime drives that goroutine, tracks its
// children, and guarantees that no task outlives its resources or its
// supervisor.
//
//	rt := task.NewRuntime()
//	h, err := task.Run(rt, ctx, func(ctx context.Context) (int, error) {
//	    child, _ := task.Spawn(ctx, func(ctx context.Context) (int, error) {
//	        return 7, nil
//	    })
//	    n, err := child.Await(ctx)
//	    return n + 1, err
//	})
//	result, err := h.Await(ctx)
package task
