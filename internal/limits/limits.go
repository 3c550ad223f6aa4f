// Package limits implements the age/weight bound estimate the limited
// resource strategy (LRS) tightens over the run. The
// estimate itself is a pair of plain counters; this package's job is
// just to own the canonical current value and broadcast every change
// through the shared event bus so the LRS Passive container and the
// Active self-pruning check stay in step without a direct dependency
// between them.
//
// Grounded on go-air-gini/internal/xo.S's Lim/conflict-budget fields threaded through
// internal/xo.S (a handful of plain counters the solver consults before
// every decision), generalized from a single consumer to the bus
// fan-out described in internal/event.
package limits

import "github.com/satprove/saturnfol/internal/event"

// Unset means "no bound yet" — every clause passes that limit check
// until the first estimate is computed.
const Unset = ^uint32(0)

// Estimate is the current best guess at the maximum age and weight a
// clause can have and still possibly be selected before resources run
// out, per the Discount/LRS reservoir simulation.
type Estimate struct {
	Age    uint32
	Weight uint32
}

// Tracker owns the current Estimate and republishes changes to it on a
// Bus.
type Tracker struct {
	bus   *event.Bus
	cur   Estimate
	ever  bool
}

func New(bus *event.Bus) *Tracker {
	return &Tracker{bus: bus, cur: Estimate{Age: Unset, Weight: Unset}}
}

func (t *Tracker) Current() Estimate { return t.cur }

// Tighten lowers the bound to e and fires LimitsChanged(Tightened=true)
// if either component actually shrank (or this is the first estimate).
// The estimate only ever tightens during a run except for the one reset
// case Loosen handles.
func (t *Tracker) Tighten(e Estimate) {
	changed := !t.ever || e.Age < t.cur.Age || e.Weight < t.cur.Weight
	if !changed {
		return
	}
	if t.ever {
		if e.Age > t.cur.Age {
			e.Age = t.cur.Age
		}
		if e.Weight > t.cur.Weight {
			e.Weight = t.cur.Weight
		}
	}
	t.cur = e
	t.ever = true
	t.bus.FireLimits(event.LimitsChanged{Age: e.Age, Weight: e.Weight, Tightened: true})
}

// Loosen resets the estimate to Unset, used when the strategy restarts
// its simulation from scratch (e.g. after a round produced the empty
// clause check was premature and resources remain).
func (t *Tracker) Loosen() {
	t.cur = Estimate{Age: Unset, Weight: Unset}
	t.ever = false
	t.bus.FireLimits(event.LimitsChanged{Age: Unset, Weight: Unset, Tightened: false})
}

// AgeLimited reports whether age exceeds the current age bound; Unset
// never limits.
func (e Estimate) AgeLimited(age uint32) bool {
	return e.Age != Unset && age > e.Age
}

// WeightLimited reports whether weight exceeds the current weight
// bound; Unset never limits.
func (e Estimate) WeightLimited(weight uint32) bool {
	return e.Weight != Unset && weight > e.Weight
}

// FulfilsAgeLimit is the admission test the LRS Passive container runs
// when a clause is added, and again when it discards clauses that violate
// a tightened limit.
func (e Estimate) FulfilsAgeLimit(age uint32) bool {
	return !e.AgeLimited(age)
}

// FulfilsWeightLimit is the companion weight-side admission test.
func (e Estimate) FulfilsWeightLimit(weight uint32) bool {
	return !e.WeightLimited(weight)
}

// LubySchedule produces the classic Luby restart sequence (1, 1, 2, 1, 1,
// 2, 4, ...), grounded on go-air-gini/internal/xo.S's xo.Luby (used there to schedule
// SAT restarts) and repurposed here to schedule when the LRS reservoir
// simulation re-runs: dense resimulation early in a run, sparser later,
// rather than a fixed period.
type LubySchedule struct {
	i uint64
}

func NewLubySchedule() *LubySchedule { return &LubySchedule{} }

// Next advances the sequence by one step and returns its value.
func (l *LubySchedule) Next() uint64 {
	l.i++
	return lubyValue(l.i)
}

// lubyValue computes the i-th term (1-indexed) of the Luby sequence:
// t(2^k-1) = 2^(k-1), and t(i) = t(i - 2^(k-1) + 1) for 2^(k-1) <= i < 2^k-1.
func lubyValue(i uint64) uint64 {
	k := uint64(1)
	for (uint64(1)<<k)-1 < i {
		k++
	}
	if i == (uint64(1)<<k)-1 {
		return uint64(1) << (k - 1)
	}
	return lubyValue(i - (uint64(1)<<(k-1)) + 1)
}

// ChildrenPotentiallyFulfil reports whether a clause with weight w could
// still produce a child that fulfils the weight limit, given that
// inference never increases weight below minChildWeight.
func (e Estimate) ChildrenPotentiallyFulfil(w, minChildWeight uint32) bool {
	if e.Weight == Unset {
		return true
	}
	return minChildWeight <= e.Weight || w <= e.Weight
}
