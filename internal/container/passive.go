package container

import (
	"container/heap"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/event"
	"github.com/satprove/saturnfol/internal/limits"
)

// Queue is the common shape every Passive variant presents to the
// given-clause loop.
type Queue interface {
	Add(id clause.ID) bool // false if refused admission under current limits
	Remove(id clause.ID)
	PopSelected() (clause.ID, bool)
	IsEmpty() bool
	SizeEstimate() int
}

// idHeap is a container/heap.Interface over clause ids, ordered by
// whichever of (age, weight) byAge selects, with the other field as
// tiebreaker. Shared by the age-side and weight-side heaps of an
// age-weight queue.
type idHeap struct {
	ids   []clause.ID
	arena *clause.Arena
	byAge bool
}

func (h *idHeap) Len() int { return len(h.ids) }
func (h *idHeap) Less(i, j int) bool {
	ci, cj := h.arena.Get(h.ids[i]), h.arena.Get(h.ids[j])
	if h.byAge {
		if ci.Age != cj.Age {
			return ci.Age < cj.Age
		}
		if ci.Weight != cj.Weight {
			return ci.Weight < cj.Weight
		}
		return ci.Activity > cj.Activity
	}
	if ci.Weight != cj.Weight {
		return ci.Weight < cj.Weight
	}
	if ci.Age != cj.Age {
		return ci.Age < cj.Age
	}
	return ci.Activity > cj.Activity
}
func (h *idHeap) Swap(i, j int) { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *idHeap) Push(x any)    { h.ids = append(h.ids, x.(clause.ID)) }
func (h *idHeap) Pop() any {
	n := len(h.ids)
	id := h.ids[n-1]
	h.ids = h.ids[:n-1]
	return id
}

// Passive is the default age-weight queue: two heaps over
// the same clause population, one ordered by age, one by weight, popped
// from according to a configured age:weight ratio. Removal is lazy — a
// removed id is tombstoned and skipped when it surfaces at either heap's
// root, rather than searched for and spliced out, since clause.ID gives
// no O(log n) heap position to splice from directly.
type Passive struct {
	Arena *clause.Arena
	Bus   *event.Bus

	ageH, weightH    *idHeap
	present          map[clause.ID]struct{}
	tombstoned       map[clause.ID]struct{}
	ratioAge, ratioW int
	cycle            int
	bound            limits.Estimate
}

func NewPassive(arena *clause.Arena, bus *event.Bus, ratioAge, ratioWeight int) *Passive {
	if ratioAge <= 0 {
		ratioAge = 1
	}
	if ratioWeight <= 0 {
		ratioWeight = 1
	}
	return &Passive{
		Arena:      arena,
		Bus:        bus,
		ageH:       &idHeap{arena: arena, byAge: true},
		weightH:    &idHeap{arena: arena, byAge: false},
		present:    make(map[clause.ID]struct{}, 256),
		tombstoned: make(map[clause.ID]struct{}),
		ratioAge:   ratioAge,
		ratioW:     ratioWeight,
		bound:      limits.Estimate{Age: limits.Unset, Weight: limits.Unset},
	}
}

func (p *Passive) Add(id clause.ID) bool {
	c := p.Arena.Get(id)
	if !p.FulfilsAgeLimit(c) || !p.FulfilsWeightLimit(c) {
		return false
	}
	p.Arena.SetStore(id, clause.Passive)
	p.present[id] = struct{}{}
	heap.Push(p.ageH, id)
	heap.Push(p.weightH, id)
	p.Bus.FireClause(event.Added, c)
	return true
}

func (p *Passive) Remove(id clause.ID) {
	if _, ok := p.present[id]; !ok {
		return
	}
	delete(p.present, id)
	p.tombstoned[id] = struct{}{}
	p.Bus.FireClause(event.Removed, p.Arena.Get(id))
}

// PopSelected pops from the age heap ratioAge times out of every
// (ratioAge+ratioW) pops and from the weight heap the rest, the
// deterministic interleaving the configured age_weight_ratio describes.
func (p *Passive) PopSelected() (clause.ID, bool) {
	total := p.ratioAge + p.ratioW
	fromAge := p.cycle%total < p.ratioAge
	p.cycle++
	id, ok := p.popFrom(fromAge)
	if !ok {
		id, ok = p.popFrom(!fromAge)
	}
	if !ok {
		return clause.Null, false
	}
	delete(p.present, id)
	p.discardTombstone(p.ageH, id)
	p.discardTombstone(p.weightH, id)
	p.Bus.FireClause(event.Selected, p.Arena.Get(id))
	return id, true
}

func (p *Passive) popFrom(fromAge bool) (clause.ID, bool) {
	h := p.weightH
	if fromAge {
		h = p.ageH
	}
	for h.Len() > 0 {
		id := heap.Pop(h).(clause.ID)
		if _, dead := p.tombstoned[id]; dead {
			delete(p.tombstoned, id)
			continue
		}
		if _, live := p.present[id]; !live {
			continue
		}
		return id, true
	}
	return clause.Null, false
}

// discardTombstone drains tombstoned/stale ids sitting at the root of h
// so the other heap (the one PopSelected did not pop from this call)
// does not accumulate an unbounded backlog of dead roots.
func (p *Passive) discardTombstone(h *idHeap, justPopped clause.ID) {
	for h.Len() > 0 {
		id := h.ids[0]
		if id == justPopped {
			heap.Pop(h)
			continue
		}
		if _, dead := p.tombstoned[id]; dead {
			heap.Pop(h)
			delete(p.tombstoned, id)
			continue
		}
		if _, live := p.present[id]; !live {
			heap.Pop(h)
			continue
		}
		return
	}
}

func (p *Passive) IsEmpty() bool     { return len(p.present) == 0 }
func (p *Passive) SizeEstimate() int { return len(p.present) }

// --- LRS hooks, usable on the base queue too: with bound
// left at Unset (the constructor default) they never restrict anything,
// which is exactly Otter/Discount's behavior — LRSPassive is what
// actually drives bound away from Unset.

func (p *Passive) AgeLimited(age uint32) bool    { return p.bound.AgeLimited(age) }
func (p *Passive) WeightLimited(w uint32) bool   { return p.bound.WeightLimited(w) }
func (p *Passive) FulfilsAgeLimit(c *clause.Clause) bool {
	return p.bound.FulfilsAgeLimit(c.Age)
}
func (p *Passive) FulfilsWeightLimit(c *clause.Clause) bool {
	return p.bound.FulfilsWeightLimit(c.Weight)
}
func (p *Passive) SetLimitsToMax() { p.bound = limits.Estimate{Age: limits.Unset, Weight: limits.Unset} }
func (p *Passive) SetBound(e limits.Estimate) { p.bound = e }
func (p *Passive) Bound() limits.Estimate     { return p.bound }

// DiscardViolating removes every present clause that no longer fulfils
// bound — the "already-present violating clauses may be discarded
// opportunistically" half of the LRSPassive contract.
func (p *Passive) DiscardViolating() []clause.ID {
	var gone []clause.ID
	for id := range p.present {
		c := p.Arena.Get(id)
		if !p.FulfilsAgeLimit(c) || !p.FulfilsWeightLimit(c) {
			gone = append(gone, id)
		}
	}
	for _, id := range gone {
		p.Remove(id)
	}
	return gone
}
