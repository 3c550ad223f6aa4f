// Package rules implements the generating inferences (superposition,
// binary resolution, factoring, equality resolution, equality factoring)
// and simplifying inferences (demodulation, subsumption, subsumption
// resolution, tautology deletion, condensation) the given-clause loop
// drives.
//
// Every clause's variables are allocated from the term store's single
// global FreshVar counter (internal/term), so two distinct clauses
// already held by the store never share a variable id. Combining
// literals from two different persisted clauses — as every rule here
// does — therefore never needs an explicit "rename apart" step. The
// input reader (internal/cnfio) maps a source file's per-clause local
// variable names onto fresh store variables through FreshVar;
// subst.Rename has no caller outside its own tests.
//
// go-air-gini has no direct analog for this package (its resolution is
// Boolean unit propagation, not first-order inference); built from the
// Bachmair-Ganzinger superposition calculus, in go-air-gini's general
// style of small structs with an explicit arena/index
// dependency rather than a visitor or plugin object model.
package rules

import (
	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/index"
	"github.com/satprove/saturnfol/internal/order"
	"github.com/satprove/saturnfol/internal/stats"
	"github.com/satprove/saturnfol/internal/subst"
	"github.com/satprove/saturnfol/internal/term"
)

// Engine owns the shared handles every rule needs: the clause arena, the
// literal/term stores, the ordering, the index set, the configured
// selection function, and statistics counters.
type Engine struct {
	Arena  *clause.Arena
	Lits   *term.LitStore
	Terms  *term.Store
	KBO    *order.KBO
	Idx    *index.Set
	Select clause.SelectionFunc
	Stats  *stats.Stats
}

func New(arena *clause.Arena, lits *term.LitStore, terms *term.Store, kbo *order.KBO, idx *index.Set, sel clause.SelectionFunc, st *stats.Stats) *Engine {
	return &Engine{Arena: arena, Lits: lits, Terms: terms, KBO: kbo, Idx: idx, Select: sel, Stats: st}
}

func (e *Engine) applyLit(sigma *subst.Subst, l term.Literal) term.Literal {
	args := e.Lits.Args(l)
	newArgs := make([]term.Term, len(args))
	for i, a := range args {
		newArgs[i] = subst.Apply(e.Terms, sigma, a)
	}
	if e.Lits.IsEquality(l) {
		return e.Lits.Equality(e.Lits.Positive(l), newArgs[0], newArgs[1], e.KBO.Cmp)
	}
	return e.Lits.Atom(e.Lits.Pred(l), e.Lits.Positive(l), newArgs...)
}

// newChild canonicalizes lits, records the inference, and selects the
// new clause's literal prefix — every generating/simplifying rule
// funnels its result through here so no child ever escapes without a
// selection.
func (e *Engine) newChild(rule clause.Rule, parents []clause.ID, lits []term.Literal, age uint32) clause.ID {
	canon := clause.Canonicalize(lits)
	id := e.Arena.New(canon, age, clause.Inference{Rule: rule, Parents: parents})
	c := e.Arena.Get(id)
	e.Select(e.Lits, e.KBO, c)
	e.Arena.SetFromGoal(id, anyFromGoal(e.Arena, parents))
	for _, p := range parents {
		e.Arena.BumpActivity(p, 1)
	}
	if e.Stats != nil {
		e.Stats.Inc(rule)
	}
	return id
}

// isLive reports whether c is still a live Active member. A clause
// lazily retracted by container.Active.Deactivate keeps its index
// entries in place but is tagged clause.Reactivated until either
// reactivated or physically reaped, so every rule consulting an index
// must re-check this before treating a query hit as a usable premise.
func (e *Engine) isLive(c *clause.Clause) bool { return c.StoreTag == clause.Active }

func anyFromGoal(arena *clause.Arena, parents []clause.ID) bool {
	for _, p := range parents {
		if arena.Get(p).FromGoal {
			return true
		}
	}
	return false
}

func maxAge(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// matchLits is the multi-literal matching search subsumption and
// condensation both need: is there a substitution, extending sigma,
// under which every literal of pattern appears (possibly reordered)
// among pool's literals?
func matchLits(terms *term.Store, lits *term.LitStore, pattern, pool []term.Literal, sigma *subst.Subst) bool {
	if len(pattern) == 0 {
		return true
	}
	l := pattern[0]
	for _, m := range pool {
		if lits.Pred(l) != lits.Pred(m) || lits.Positive(l) != lits.Positive(m) || lits.IsEquality(l) != lits.IsEquality(m) {
			continue
		}
		trial, ok := matchLitArgs(terms, lits, l, m, sigma.Clone())
		if ok && matchLits(terms, lits, pattern[1:], pool, trial) {
			return true
		}
	}
	return false
}

func matchLitArgs(terms *term.Store, lits *term.LitStore, pattern, instance term.Literal, sigma *subst.Subst) (*subst.Subst, bool) {
	pa, ia := lits.Args(pattern), lits.Args(instance)
	if len(pa) != len(ia) {
		return sigma, false
	}
	var ok bool
	for i := range pa {
		sigma, ok = subst.Match(terms, sigma, pa[i], ia[i])
		if !ok {
			return sigma, false
		}
	}
	return sigma, true
}

func removeOne(lits []term.Literal, target term.Literal) []term.Literal {
	out := make([]term.Literal, 0, len(lits)-1)
	removed := false
	for _, l := range lits {
		if !removed && l == target {
			removed = true
			continue
		}
		out = append(out, l)
	}
	return out
}
