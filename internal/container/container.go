// Package container implements the three clause stores the given-clause
// loop drives clauses through — Unprocessed, Passive, Active — and the
// event notifications that keep the term/literal indexes (internal/index)
// in sync with Active membership.
//
// Grounded on go-air-gini's free-list-backed Active set
// (internal/xo.Active: a slice of live ids plus a free list of recycled
// slots) generalized from a fixed-size variable array to an arbitrary
// clause population, and on the Cdb occurrence bookkeeping for the
// add/remove event shape.
package container

import (
	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/event"
	"github.com/satprove/saturnfol/internal/limits"
	"github.com/satprove/saturnfol/internal/term"
)

// Order selects Unprocessed's pop discipline; strategy-configurable per
// a FIFO or LIFO discipline, strategy-configurable.
type Order uint8

const (
	FIFO Order = iota
	LIFO
)

// Unprocessed is the queue every newly created clause enters immediately,
// before forward simplification has had a chance to look at it.
type Unprocessed struct {
	Arena *clause.Arena
	Bus   *event.Bus
	order Order
	q     []clause.ID
}

func NewUnprocessed(arena *clause.Arena, bus *event.Bus, order Order) *Unprocessed {
	return &Unprocessed{Arena: arena, Bus: bus, order: order}
}

func (u *Unprocessed) Add(id clause.ID) {
	u.Arena.SetStore(id, clause.Unprocessed)
	u.q = append(u.q, id)
	u.Bus.FireClause(event.Added, u.Arena.Get(id))
}

// Pop removes and returns the next clause per the configured order,
// firing the `selected` event (distinct from the
// given-clause Selected event the loop fires on the Passive side).
func (u *Unprocessed) Pop() (clause.ID, bool) {
	if len(u.q) == 0 {
		return clause.Null, false
	}
	var id clause.ID
	if u.order == LIFO {
		id = u.q[len(u.q)-1]
		u.q = u.q[:len(u.q)-1]
	} else {
		id = u.q[0]
		u.q = u.q[1:]
	}
	u.Bus.FireClause(event.Selected, u.Arena.Get(id))
	return id, true
}

func (u *Unprocessed) IsEmpty() bool { return len(u.q) == 0 }
func (u *Unprocessed) Size() int     { return len(u.q) }

// Active is the set of clauses currently participating in generating
// inferences. It self-prunes on every LRS tightening: a
// clause is discarded once both its age and its weight-minus-heaviest-
// selected-literal exceed the current limits, since no future
// inference involving it could still be selected.
type Active struct {
	Arena     *clause.Arena
	Lits      *term.LitStore
	Bus       *event.Bus
	members   map[clause.ID]struct{}
	deactived map[clause.ID]struct{} // lazily retracted: index entries still live, see Deactivate
}

func NewActive(arena *clause.Arena, lits *term.LitStore, bus *event.Bus) *Active {
	a := &Active{
		Arena:     arena,
		Lits:      lits,
		Bus:       bus,
		members:   make(map[clause.ID]struct{}, 256),
		deactived: make(map[clause.ID]struct{}),
	}
	bus.SubscribeLimits(a.onLimitsChanged)
	return a
}

func (a *Active) Add(id clause.ID) {
	a.members[id] = struct{}{}
	a.Arena.SetStore(id, clause.Active)
	a.Bus.FireClause(event.Added, a.Arena.Get(id))
}

// Remove is an immediate, permanent removal: it fires Removed so every
// index drops id's occurrences right away. Use this for clauses that are
// really gone (e.g. backward-subsumed); use Deactivate for a clause
// superseded by a rewritten replacement, which may be worth keeping
// indexed a little longer.
func (a *Active) Remove(id clause.ID) {
	a.Bus.FireClause(event.Removed, a.Arena.Get(id))
	delete(a.members, id)
	delete(a.deactived, id)
	a.Arena.SetStore(id, clause.None)
}

// Deactivate lazily retracts id without touching the term/literal
// indexes: id's occurrences stay exactly where index.Set put them, id
// stops counting toward Size/All/Contains, and rules.Engine checks
// isLive before treating any index hit naming id as a usable premise.
// The deferred physical removal happens in ReapDeactivated.
func (a *Active) Deactivate(id clause.ID) {
	if _, ok := a.members[id]; !ok {
		return
	}
	delete(a.members, id)
	a.deactived[id] = struct{}{}
	a.Arena.SetStore(id, clause.Reactivated)
}

// Reactivate restores a clause Deactivate lazily retracted, at no
// reinsertion cost since its index entries were never removed.
func (a *Active) Reactivate(id clause.ID) bool {
	if _, ok := a.deactived[id]; !ok {
		return false
	}
	delete(a.deactived, id)
	a.members[id] = struct{}{}
	a.Arena.SetStore(id, clause.Active)
	return true
}

// ReapDeactivated physically removes every clause still sitting in the
// deactivated set, the deferred half of Deactivate's lazy removal.
// Called periodically by the saturation loop rather than inline on every
// Deactivate, so a clause rewritten away and immediately superseded
// again doesn't pay for an index removal it turns out not to need.
func (a *Active) ReapDeactivated() {
	for id := range a.deactived {
		a.Bus.FireClause(event.Removed, a.Arena.Get(id))
		a.Arena.SetStore(id, clause.None)
	}
	a.deactived = make(map[clause.ID]struct{})
}

func (a *Active) Contains(id clause.ID) bool { _, ok := a.members[id]; return ok }
func (a *Active) Size() int                  { return len(a.members) }

// All returns every member id. Its caller is the saturation loop's
// periodic activity decay, which scans Active directly rather than
// through an index.
func (a *Active) All() []clause.ID {
	out := make([]clause.ID, 0, len(a.members))
	for id := range a.members {
		out = append(out, id)
	}
	return out
}

func (a *Active) onLimitsChanged(ev event.LimitsChanged) {
	if !ev.Tightened {
		return
	}
	est := limits.Estimate{Age: ev.Age, Weight: ev.Weight}
	var doomed []clause.ID
	for id := range a.members {
		c := a.Arena.Get(id)
		eff := effectiveWeight(c, a.maxSelectedWeight(c))
		if est.AgeLimited(c.Age) && est.WeightLimited(eff) {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		a.Remove(id)
	}
}

func (a *Active) maxSelectedWeight(c *clause.Clause) uint32 {
	var mx uint32
	for _, l := range clause.SelectedLits(c) {
		if w := a.Lits.Weight(l); w > mx {
			mx = w
		}
	}
	return mx
}

func effectiveWeight(c *clause.Clause, maxSelected uint32) uint32 {
	if c.Weight <= maxSelected {
		return 0
	}
	return c.Weight - maxSelected
}
