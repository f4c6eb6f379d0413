// Command taucoredemo is a small driver over the task and orchestrate/state
// packages: it runs a two-node state graph and a fan-out of independent
// operations under task.All, both as root tasks on the default Runtime, then
// prints what each supervision tree decided.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/tailored-agentic-units/tau-core/observability"
	"github.com/tailored-agentic-units/tau-core/orchestrate/config"
	"github.com/tailored-agentic-units/tau-core/orchestrate/state"
	"github.com/tailored-agentic-units/tau-core/task"
)

func main() {
	var (
		name    = flag.String("name", "world", "name to greet through the demo graph")
		verbose = flag.Bool("verbose", false, "enable verbose logging to stderr")
	)
	flag.Parse()

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := runGraph(ctx, logger, *name)
	if err != nil {
		log.Fatalf("graph run failed: %v", err)
	}
	greeting, _ := result.Get("greeting")
	fmt.Printf("Graph result: %v\n", greeting)

	sums, err := runFanOut(ctx)
	if err != nil {
		log.Fatalf("fan-out run failed: %v", err)
	}
	fmt.Printf("Fan-out results: %v\n", sums)
}

// runGraph builds a two-node graph (greet -> shout) and executes it as one
// root task, so a panicking node is recovered instead of crashing the demo.
func runGraph(ctx context.Context, logger *slog.Logger, name string) (state.State, error) {
	cfg := config.DefaultGraphConfig("taucoredemo")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return state.State{}, fmt.Errorf("new graph: %w", err)
	}

	greet := state.NewFunctionNode(func(_ context.Context, s state.State) (state.State, error) {
		return s.Set("greeting", fmt.Sprintf("Hello, %s!", name)), nil
	})
	shout := state.NewFunctionNode(func(_ context.Context, s state.State) (state.State, error) {
		g, _ := s.Get("greeting")
		return s.Set("greeting", fmt.Sprintf("%v (shouted)", g)), nil
	})

	if err := graph.AddNode("greet", greet); err != nil {
		return state.State{}, err
	}
	if err := graph.AddNode("shout", shout); err != nil {
		return state.State{}, err
	}
	if err := graph.AddEdge("greet", "shout", nil); err != nil {
		return state.State{}, err
	}
	if err := graph.SetEntryPoint("greet"); err != nil {
		return state.State{}, err
	}
	if err := graph.SetExitPoint("shout"); err != nil {
		return state.State{}, err
	}

	observer := observability.NewSlogObserver(logger)
	h, err := task.RunDefault(ctx, func(ctx context.Context) (state.State, error) {
		return graph.Execute(ctx, state.New(observer))
	})
	if err != nil {
		return state.State{}, fmt.Errorf("start graph task: %w", err)
	}
	return h.Await(ctx)
}

// runFanOut spawns three independent operations under task.All, demonstrating
// fail-fast fan-out supervision without any bespoke WaitGroup/channel plumbing.
func runFanOut(ctx context.Context) ([]int, error) {
	h, err := task.RunDefault(ctx, func(ctx context.Context) ([]int, error) {
		return task.All(ctx,
			func(ctx context.Context) (int, error) { return double(ctx, 1) },
			func(ctx context.Context) (int, error) { return double(ctx, 2) },
			func(ctx context.Context) (int, error) { return double(ctx, 3) },
		)
	})
	if err != nil {
		return nil, fmt.Errorf("start fan-out task: %w", err)
	}
	return h.Await(ctx)
}

func double(ctx context.Context, n int) (int, error) {
	select {
	case <-time.After(time.Millisecond):
		return n * 2, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
