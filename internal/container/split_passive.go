package container

import (
	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/event"
)

// NicenessFunc scores a clause in [0,1] estimating how likely it is to
// be useful, typically the fraction of its ancestors that are background
// theory axioms rather than the conjecture. Supplied by the caller since computing it needs
// the full ancestry, which lives above this package in the rules layer.
type NicenessFunc func(c *clause.Clause) float64

// PredicateSplitPassive buckets clauses into N sub-queues by niceness
// cutoff and pops from them via weighted round-robin. Each
// sub-queue is itself a plain age-weight Passive; only the bucketing and
// the round-robin pop policy are specific to this variant.
type PredicateSplitPassive struct {
	Arena    *clause.Arena
	Bus      *event.Bus
	subs     []*Passive
	cutoffs  []float64
	ratios   []int // input ratios as given by split_queue_ratios
	scaled   []int // lcm(ratios) / ratios[i]
	balance  []int
	niceness NicenessFunc
	fadeIn   bool
	members  map[clause.ID][]int // clause -> indices of sub-queues holding it
}

// NewPredicateSplitPassive builds a split queue with the given per-queue
// cutoffs (ascending, last element 1.0) and ratios (same length, both
// >= 2 entries — enforced by the options layer, not here).
func NewPredicateSplitPassive(arena *clause.Arena, bus *event.Bus, cutoffs []float64, ratios []int, niceness NicenessFunc, fadeIn bool) *PredicateSplitPassive {
	if niceness == nil {
		// A caller that configures split_queue_cutoffs without wiring a
		// real NicenessFunc gets every clause scored neutral (0.5) rather
		// than a nil-pointer panic the first time Add runs.
		niceness = func(*clause.Clause) float64 { return 0.5 }
	}
	subs := make([]*Passive, len(cutoffs))
	for i := range subs {
		subs[i] = NewPassive(arena, bus, 1, 1) // even age-weight mix inside each sub-queue; the ratio mixing this variant adds happens at the round-robin level, between sub-queues
	}
	p := &PredicateSplitPassive{
		Arena:    arena,
		Bus:      bus,
		subs:     subs,
		cutoffs:  cutoffs,
		ratios:   ratios,
		scaled:   scaleRatios(ratios),
		balance:  make([]int, len(ratios)),
		niceness: niceness,
		fadeIn:   fadeIn,
		members:  make(map[clause.ID][]int, 256),
	}
	return p
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

func lcm(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}

func scaleRatios(ratios []int) []int {
	l := 1
	for _, r := range ratios {
		if r <= 0 {
			r = 1
		}
		l = lcm(l, r)
	}
	scaled := make([]int, len(ratios))
	for i, r := range ratios {
		if r <= 0 {
			r = 1
		}
		scaled[i] = l / r
	}
	return scaled
}

func (p *PredicateSplitPassive) niceOf(c *clause.Clause) float64 {
	n := p.niceness(c)
	if p.fadeIn {
		// Soften the cutoff boundary, per the configured
		// split_queue_fade_in: every clause's niceness is pulled halfway
		// toward the middle of [0,1] instead of pinned at its raw extreme.
		// The same factor applies to every clause; it does not depend on
		// how many ancestors the clause has.
		n = 0.5 + (n-0.5)*0.5
	}
	return n
}

func (p *PredicateSplitPassive) Add(id clause.ID) bool {
	c := p.Arena.Get(id)
	n := p.niceOf(c)
	var idxs []int
	added := false
	for i, cutoff := range p.cutoffs {
		if cutoff >= n {
			if p.subs[i].Add(id) {
				idxs = append(idxs, i)
				added = true
			}
		}
	}
	if !added {
		return false
	}
	p.members[id] = idxs
	return true
}

func (p *PredicateSplitPassive) Remove(id clause.ID) {
	for _, i := range p.members[id] {
		p.subs[i].Remove(id)
	}
	delete(p.members, id)
}

// PopSelected implements the weighted round-robin: pick the sub-queue
// with the smallest balance, credit it its scaled ratio, then pop from
// the first non-empty sub-queue at or after that index, falling back
// leftward if every queue from there rightward is empty.
func (p *PredicateSplitPassive) PopSelected() (clause.ID, bool) {
	if len(p.subs) == 0 {
		return clause.Null, false
	}
	chosen := 0
	for i := 1; i < len(p.balance); i++ {
		if p.balance[i] < p.balance[chosen] {
			chosen = i
		}
	}
	p.balance[chosen] += p.scaled[chosen]

	idx := -1
	for i := chosen; i < len(p.subs); i++ {
		if !p.subs[i].IsEmpty() {
			idx = i
			break
		}
	}
	if idx == -1 {
		for i := chosen - 1; i >= 0; i-- {
			if !p.subs[i].IsEmpty() {
				idx = i
				break
			}
		}
	}
	if idx == -1 {
		return clause.Null, false
	}
	id, ok := p.subs[idx].PopSelected()
	if !ok {
		return clause.Null, false
	}
	for _, i := range p.members[id] {
		if i != idx {
			p.subs[i].Remove(id)
		}
	}
	delete(p.members, id)
	return id, true
}

func (p *PredicateSplitPassive) IsEmpty() bool {
	for _, s := range p.subs {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

func (p *PredicateSplitPassive) SizeEstimate() int { return len(p.members) }
