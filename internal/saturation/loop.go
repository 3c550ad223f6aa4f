// Package saturation implements the given-clause loop that
// drives the core: draining Unprocessed with forward simplification,
// selecting a given clause from Passive, backward-simplifying Active
// with it, generating its inferences, and periodically tightening LRS
// limits. It is the top-level wiring point between internal/container,
// internal/rules, internal/index, internal/limits and internal/event.
//
// Grounded on go-air-gini's top-level solve loop
// (go-air-gini/internal/xo.S's Solve: pop a decision, propagate, check
// conflicts, restart) generalized from unit propagation over a CNF
// clause set to first-order generation/simplification over a term
// algebra; the same "poll a container, act, check termination" shape
// survives the domain change.
package saturation

import (
	"context"
	"time"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/container"
	"github.com/satprove/saturnfol/internal/event"
	"github.com/satprove/saturnfol/internal/limits"
	"github.com/satprove/saturnfol/internal/options"
	"github.com/satprove/saturnfol/internal/rules"
	"github.com/satprove/saturnfol/internal/satlog"
	"github.com/satprove/saturnfol/internal/stats"
)

// Reason is the termination reason the loop reports.
type Reason string

const (
	Refutation         Reason = "refutation"
	Satisfiable        Reason = "satisfiable"
	TimeLimit          Reason = "time_limit"
	MemoryLimit        Reason = "memory_limit"
	RefutationNotFound Reason = "refutation_not_found"
	Unknown            Reason = "unknown"
)

// Result is what a run returns to its caller.
type Result struct {
	Reason   Reason
	Empty    clause.ID // valid iff Reason == Refutation
	Snapshot stats.Snapshot
}

// Loop owns every container and the rules engine that operate on one
// saturation run's Arena. A Loop is single-use: build a fresh one per
// run.
type Loop struct {
	Opts   options.Options
	Arena  *clause.Arena
	Engine *rules.Engine
	Stats  *stats.Stats
	Log    *satlog.Logger
	Bus    *event.Bus

	Unprocessed *container.Unprocessed
	Active      *container.Active
	Passive     container.Queue

	tracker    *limits.Tracker
	lrs        *container.LRSPassive
	luby       *limits.LubySchedule
	nextResim  uint64
	givenCount uint64
	decayCount uint64

	clock       func() time.Time
	deadline    time.Time
	hasDeadline bool
}

// resimUnit scales a LubySchedule step into a given-clause count: the
// teacher's RestartFactor plays the analogous role for SAT restarts,
// scaled down here since LRS resimulation is far cheaper than a full
// solver restart and should run much more often.
const resimUnit = 4

// New wires a Loop's containers around the given engine per the
// configured algorithm and passive-selection options. niceness is only
// consulted when SplitQueueRatios/Cutoffs are configured; pass nil
// otherwise.
func New(opts options.Options, eng *rules.Engine, bus *event.Bus, st *stats.Stats, log *satlog.Logger, niceness container.NicenessFunc, clock func() time.Time) *Loop {
	arena := eng.Arena
	idx := eng.Idx

	// Index maintenance is event-driven and scoped to Active membership
	// only: Unprocessed/Passive also fire Added/Removed for their own
	// bookkeeping, but only a clause currently tagged Active should ever
	// gain a position in the term/literal indexes. A deactivated clause
	// keeps its positions until Active.ReapDeactivated fires its deferred
	// Removed, which is passed through here as well.
	bus.SubscribeClause(func(k event.Kind, c *clause.Clause) {
		if c.StoreTag != clause.Active && !(k == event.Removed && c.StoreTag == clause.Reactivated) {
			return
		}
		switch k {
		case event.Added:
			idx.OnAdded(c)
		case event.Removed:
			idx.OnRemoved(c)
		}
	})

	l := &Loop{
		Opts:        opts,
		Arena:       arena,
		Engine:      eng,
		Stats:       st,
		Log:         log,
		Bus:         bus,
		Unprocessed: container.NewUnprocessed(arena, bus, container.FIFO),
		Active:      container.NewActive(arena, eng.Lits, bus),
		clock:       clock,
	}
	if l.clock == nil {
		l.clock = time.Now
	}
	if opts.TimeLimitMS > 0 {
		l.deadline = l.clock().Add(time.Duration(opts.TimeLimitMS) * time.Millisecond)
		l.hasDeadline = true
	}

	switch {
	case len(opts.SplitQueueCutoffs) > 0:
		l.Passive = container.NewPredicateSplitPassive(arena, bus, opts.SplitQueueCutoffs, opts.SplitQueueRatios, niceness, opts.SplitQueueFadeIn)
	case opts.SaturationAlgorithm == options.LRS:
		l.tracker = limits.New(bus)
		lrsAge, lrsWeight := ageWeightRatio(opts)
		l.lrs = container.NewLRSPassive(arena, bus, l.tracker, lrsAge, lrsWeight)
		l.Passive = l.lrs
		l.luby = limits.NewLubySchedule()
		l.nextResim = l.luby.Next() * resimUnit
	default:
		age, weight := ageWeightRatio(opts)
		l.Passive = container.NewPassive(arena, bus, age, weight)
	}
	return l
}

func ageWeightRatio(opts options.Options) (age, weight int) {
	age, weight = opts.AgeWeightRatioAge, opts.AgeWeightRatioWeight
	if age <= 0 && weight <= 0 {
		return 1, 1
	}
	return age, weight
}

// Run drives the loop until termination. ctx cancellation
// and the configured time limit are both observed only between steps,
// never mid-inference.
func (l *Loop) Run(ctx context.Context, inputs []clause.ID) Result {
	// Inferred clauses are selected at birth by rules.Engine.newChild;
	// input clauses never go through newChild, so they are selected here,
	// the first moment they enter the loop at all.
	for _, id := range inputs {
		c := l.Arena.Get(id)
		l.Engine.Select(l.Engine.Lits, l.Engine.KBO, c)
		l.Unprocessed.Add(id)
	}

	for {
		select {
		case <-ctx.Done():
			return l.finish(TimeLimit, clause.Null)
		default:
		}
		if l.hasDeadline && !l.clock().Before(l.deadline) {
			return l.finish(TimeLimit, clause.Null)
		}

		if reason, empty, ok := l.drainUnprocessed(); ok {
			return l.finish(reason, empty)
		}

		if l.Passive.IsEmpty() {
			if l.Opts.Complete {
				return l.finish(Satisfiable, clause.Null)
			}
			return l.finish(RefutationNotFound, clause.Null)
		}

		gid, ok := l.Passive.PopSelected()
		if !ok {
			continue
		}
		g := l.Arena.Get(gid)
		l.Active.Add(gid)

		l.backwardSimplify(g)
		l.generate(g)
		l.maybeTightenLRS()
		l.maybeDecayActivity()
	}
}

// activityDecayPeriod and activityDecayFactor set the cadence and the
// geometric factor clause activity decays by: every activityDecayPeriod
// given clauses, every live Active member's Activity is scaled down so
// that bumps from long ago stop dominating a fresh (age,weight) tie.
// Deactivated clauses are reaped on the same cadence, bounding how long
// a lazily-retracted clause's index entries outlive it.
const (
	activityDecayPeriod = 64
	activityDecayFactor = 0.98
)

func (l *Loop) maybeDecayActivity() {
	l.decayCount++
	if l.decayCount%activityDecayPeriod != 0 {
		return
	}
	l.Arena.DecayActivity(l.Active.All(), activityDecayFactor)
	l.Active.ReapDeactivated()
}

// drainUnprocessed drains Unprocessed into Passive. It returns ok=true only
// when the run terminates outright (the empty clause surfaced).
func (l *Loop) drainUnprocessed() (Reason, clause.ID, bool) {
	for {
		id, ok := l.Unprocessed.Pop()
		if !ok {
			return Unknown, clause.Null, false
		}
		c := l.Arena.Get(id)
		if c.IsEmpty() {
			return Refutation, id, true
		}
		if l.Engine.IsTautology(c) {
			l.Stats.Discards.Tautology++
			continue
		}

		rewrittenID, changed := l.Engine.ForwardDemodulate(c)
		if changed {
			l.Unprocessed.Add(rewrittenID)
			continue
		}

		if l.Opts.Condensation != options.Off {
			c = l.condenseToFixpoint(c)
		}

		if _, subsumed := l.Engine.ForwardSubsumed(c); subsumed {
			l.Stats.Discards.ForwardSubsumption++
			continue
		}

		if resolvedID, changed := l.Engine.SubsumptionResolve(c); changed {
			l.Unprocessed.Add(resolvedID)
			continue
		}

		if !l.Passive.Add(c.ID) {
			l.Stats.Discards.LRSAdmission++
		}
	}
}

func (l *Loop) condenseToFixpoint(c *clause.Clause) *clause.Clause {
	for {
		id, changed := l.Engine.Condense(c)
		if !changed {
			return c
		}
		c = l.Arena.Get(id)
	}
}

// backwardSimplify runs backward simplification: g, having just entered
// Active, may rewrite or subsume other Active members.
func (l *Loop) backwardSimplify(g *clause.Clause) {
	if l.Opts.BackwardDemodulation != options.Off {
		for _, rw := range l.Engine.BackwardDemodulate(g) {
			// Old is replaced by a strictly smaller rewritten instance, not
			// gone for good in any logical sense, so it is lazily retracted
			// rather than spliced out of every index immediately.
			l.Active.Deactivate(rw.Old)
			l.Unprocessed.Add(rw.New)
		}
	}
	if l.backwardSubsumptionApplies(g) {
		for _, id := range l.Engine.BackwardSubsumed(g) {
			l.Active.Remove(id)
			l.Stats.Discards.BackwardSubsumption++
		}
	}
}

func (l *Loop) backwardSubsumptionApplies(g *clause.Clause) bool {
	switch l.Opts.BackwardSubsumption {
	case options.Off:
		return false
	case options.Unit:
		return len(g.Lits) == 1
	default:
		return true
	}
}

// generate runs the generating inference rules, guarded by the LRS
// children-potentially-fulfil check when running under LRS.
func (l *Loop) generate(g *clause.Clause) {
	if l.tracker != nil {
		est := l.tracker.Current()
		if !est.ChildrenPotentiallyFulfil(g.Weight, minSymbolWeight) {
			return
		}
	}
	for _, id := range l.Engine.Generate(g) {
		l.Unprocessed.Add(id)
	}
}

// minSymbolWeight is the smallest possible weight an inference's
// simplification could ever bring a child down to; used only as the
// lower bound in the LRS admission heuristic.
const minSymbolWeight = 1

// maybeTightenLRS re-runs the LRS reservoir simulation, on the
// Luby-sequenced cadence set up in New.
func (l *Loop) maybeTightenLRS() {
	if l.lrs == nil {
		return
	}
	l.givenCount++
	if l.givenCount < l.nextResim {
		return
	}
	l.nextResim += l.luby.Next() * resimUnit

	budget := l.lrs.SizeEstimate()/2 + 1
	l.lrs.SimulationInit(budget)
	for l.lrs.SimulationHasNext() {
		l.lrs.SimulationPopSelected()
	}
	l.lrs.SetLimitsFromSimulation()
	if l.Log != nil {
		l.Log.WithRule("lrs-resim").Infof("tightened limits after %d given clauses", l.givenCount)
	}
}

func (l *Loop) finish(reason Reason, empty clause.ID) Result {
	if l.Log != nil {
		l.Log.WithClause(uint32(empty)).Infof("saturation terminated: %s", reason)
	}
	snap := stats.Snapshot{}
	if l.Stats != nil {
		snap = l.Stats.Snapshot()
	}
	return Result{Reason: reason, Empty: empty, Snapshot: snap}
}
