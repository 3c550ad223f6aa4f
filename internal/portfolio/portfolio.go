// Package portfolio supervises several independent saturation runs
// concurrently, replacing go-air-gini's hand-rolled channel pool of
// copied solvers (ax.T) with golang.org/x/sync/errgroup's structured
// concurrency primitive. Each run gets its own Loop, Arena, and term
// store — saturation.Loop is single-use and none of its state is safe
// to share across goroutines, so unlike ax.T (which copies one
// inter.S lazily as load demands) every Instance here is built ahead
// of time by the caller.
//
// Deliberately thin: this is a collaborator interface, not a full
// interactive portfolio runner — no request/response exchange protocol,
// no incremental re-submission, no score-based dispatch. A caller
// assembles the Instances it wants to try and gets every outcome, or
// the first conclusive one, back.
package portfolio

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/saturation"
)

// Instance is one strategy's ready-to-run saturation attempt: a Loop
// already wired to its own Arena, Engine, and containers, plus the
// input clause ids that live in that same Arena.
type Instance struct {
	Name  string
	Loop  *saturation.Loop
	Input []clause.ID
}

// Result pairs a saturation.Result with the Instance name that
// produced it.
type Result struct {
	Name string
	saturation.Result
}

// conclusive reports whether r settles the problem one way or the
// other, as opposed to running out of some resource or giving up.
func conclusive(r saturation.Result) bool {
	return r.Reason == saturation.Refutation || r.Reason == saturation.Satisfiable
}

// Pool runs a fixed number of Instances concurrently, supervised by an
// errgroup.Group capped at Capacity active goroutines at once — the
// structured-concurrency analog of ax.T's "at most cap copies, grow
// lazily" pool. Capacity <= 0 means unbounded.
type Pool struct {
	Capacity int
}

// Run executes every instance to completion (respecting ctx
// cancellation and each Loop's own limits) and returns one Result per
// instance, in input order.
func (p *Pool) Run(ctx context.Context, instances []Instance) []Result {
	results := make([]Result, len(instances))
	g, gctx := errgroup.WithContext(ctx)
	if p.Capacity > 0 {
		g.SetLimit(p.Capacity)
	}
	for i, inst := range instances {
		i, inst := i, inst
		g.Go(func() error {
			results[i] = Result{Name: inst.Name, Result: inst.Loop.Run(gctx, inst.Input)}
			return nil
		})
	}
	_ = g.Wait() // every Instance.Loop.Run reports via Result, never an error
	return results
}

// Race runs every instance concurrently, unbounded by capacity, and
// returns as soon as one reports a conclusive Result (Refutation or
// Satisfiable), canceling every still-running instance. If every
// instance finishes inconclusively (or ctx is canceled first), Race
// returns the last Result to arrive.
func Race(ctx context.Context, instances []Instance) Result {
	gctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan Result, len(instances))
	g, gctx := errgroup.WithContext(gctx)
	for _, inst := range instances {
		inst := inst
		g.Go(func() error {
			out <- Result{Name: inst.Name, Result: inst.Loop.Run(gctx, inst.Input)}
			return nil
		})
	}
	go func() {
		g.Wait()
		close(out)
	}()

	var last Result
	for r := range out {
		last = r
		if conclusive(r.Result) {
			cancel()
			return r
		}
	}
	return last
}
