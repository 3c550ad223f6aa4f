package container

import (
	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/event"
	"github.com/satprove/saturnfol/internal/limits"
)

// LRSPassive is the age-weight queue variant that also runs the
// reservoir simulation the limited-resource strategy needs.
// It subscribes to Limits itself (rather than only reacting passively,
// the way Active does) because it is also the thing that *computes* the
// next tightened estimate by walking its own queue virtually.
type LRSPassive struct {
	*Passive
	tracker *limits.Tracker

	sim      simulation
	simming  bool
}

// simulation is the virtual-walk state simulation_init/has_next/pop use;
// it never mutates the real heaps, only a scratch copy of their id
// lists, so the real queue stays untouched until set_limits_from_simulation
// commits the result.
type simulation struct {
	remaining []clause.ID
	budget    int
	popped    int
	worstAge  uint32
	worstW    uint32
}

func NewLRSPassive(arena *clause.Arena, bus *event.Bus, tracker *limits.Tracker, ratioAge, ratioWeight int) *LRSPassive {
	l := &LRSPassive{Passive: NewPassive(arena, bus, ratioAge, ratioWeight), tracker: tracker}
	bus.SubscribeLimits(l.onLimitsChanged)
	return l
}

// onLimitsChanged lets LRSPassive react to a limits change fired by some
// other source (a tightening, or a strategy-level reset via
// Tracker.Loosen) the same way Active does, independent of the
// simulation it runs itself.
func (l *LRSPassive) onLimitsChanged(ev event.LimitsChanged) {
	if !ev.Tightened {
		l.SetLimitsToMax()
		return
	}
	l.SetBound(limits.Estimate{Age: ev.Age, Weight: ev.Weight})
	l.DiscardViolating()
}

// SimulationInit starts a virtual walk with budget future pops
// available; budget is a pop count supplied by the caller. The
// saturation loop passes half the current size estimate plus one; the
// budget is not derived from the remaining clock time or from an
// observed pop rate.
func (l *LRSPassive) SimulationInit(budget int) {
	ids := make([]clause.ID, 0, len(l.present))
	for id := range l.present {
		ids = append(ids, id)
	}
	l.sim = simulation{remaining: ids, budget: budget, worstAge: 0, worstW: 0}
	l.simming = true
}

func (l *LRSPassive) SimulationHasNext() bool {
	return l.simming && l.sim.popped < l.sim.budget && len(l.sim.remaining) > 0
}

// SimulationPopSelected advances the virtual walk by one pop, using the
// same age:weight ratio discipline PopSelected uses, tracking the worst
// (largest) age and weight selected so far — the values that become the
// tightened limits once the simulation completes.
func (l *LRSPassive) SimulationPopSelected() {
	if !l.SimulationHasNext() {
		return
	}
	total := l.ratioAge + l.ratioW
	fromAge := l.sim.popped%total < l.ratioAge
	idx := l.simPick(fromAge)
	if idx < 0 {
		idx = l.simPick(!fromAge)
	}
	if idx < 0 {
		l.sim.remaining = nil
		return
	}
	id := l.sim.remaining[idx]
	c := l.Arena.Get(id)
	if c.Age > l.sim.worstAge {
		l.sim.worstAge = c.Age
	}
	if c.Weight > l.sim.worstW {
		l.sim.worstW = c.Weight
	}
	l.sim.remaining = append(l.sim.remaining[:idx], l.sim.remaining[idx+1:]...)
	l.sim.popped++
}

func (l *LRSPassive) simPick(byAge bool) int {
	best := -1
	for i, id := range l.sim.remaining {
		c := l.Arena.Get(id)
		if best == -1 {
			best = i
			continue
		}
		bc := l.Arena.Get(l.sim.remaining[best])
		if byAge {
			if c.Age < bc.Age || (c.Age == bc.Age && c.Weight < bc.Weight) {
				best = i
			}
		} else {
			if c.Weight < bc.Weight || (c.Weight == bc.Weight && c.Age < bc.Age) {
				best = i
			}
		}
	}
	return best
}

// SetLimitsFromSimulation commits the worst age/weight the just-run
// simulation popped as the new tightened bound, discards now-violating
// present clauses, and republishes the change through the shared
// tracker so Active self-prunes too.
func (l *LRSPassive) SetLimitsFromSimulation() {
	l.simming = false
	l.tracker.Tighten(limits.Estimate{Age: l.sim.worstAge, Weight: l.sim.worstW})
}
