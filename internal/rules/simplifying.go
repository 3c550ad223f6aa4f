package rules

import (
	"sort"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/order"
	"github.com/satprove/saturnfol/internal/subst"
	"github.com/satprove/saturnfol/internal/term"
)

// IsTautology reports whether c contains a pair of complementary
// literals or a reflexive positive equality — redundant under every
// interpretation, dropped locally as part of the core's recovery policy.
func (e *Engine) IsTautology(c *clause.Clause) bool {
	for _, l := range c.Lits {
		if e.Lits.IsEquality(l) && e.Lits.Positive(l) {
			s, t := e.Lits.Sides(l)
			if s == t {
				return true
			}
		}
		neg := e.Lits.Negate(l)
		for _, m := range c.Lits {
			if m == neg {
				return true
			}
		}
	}
	return false
}

// ForwardDemodulate rewrites c's literals to a fixpoint using Active's
// oriented unit equalities (DemodulationLHS), returning the rewritten
// clause and true if anything changed. maxRewrites bounds the fixpoint
// loop; a well-founded simplification ordering guarantees termination in
// principle, but a cap keeps a malformed ordering configuration from
// looping the loop itself.
const maxRewrites = 64

func (e *Engine) ForwardDemodulate(c *clause.Clause) (clause.ID, bool) {
	lits := append([]term.Literal{}, c.Lits...)
	changedAny := false
	witnesses := map[clause.ID]bool{}
	for i, l := range lits {
		rewritten, used, changed := e.demodulateToFixpoint(l)
		if changed {
			lits[i] = rewritten
			changedAny = true
			for _, w := range used {
				witnesses[w] = true
			}
		}
	}
	if !changedAny {
		return c.ID, false
	}
	parents := append([]clause.ID{c.ID}, sortedKeys(witnesses)...)
	return e.newChild(clause.RuleDemodulationFwd, parents, lits, c.Age), true
}

func sortedKeys(m map[clause.ID]bool) []clause.ID {
	out := make([]clause.ID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// demodulateToFixpoint rewrites l to a fixpoint, recording every distinct
// unit equality clause that contributed a rewrite step so the resulting
// clause's Inference.Parents names every premise a soundness check needs
// (see internal/proof), not just the clause being simplified.
func (e *Engine) demodulateToFixpoint(l term.Literal) (term.Literal, []clause.ID, bool) {
	changedAny := false
	var used []clause.ID
	for i := 0; i < maxRewrites; i++ {
		rewritten, witness, ok := e.rewriteOnce(l)
		if !ok {
			break
		}
		l = rewritten
		used = append(used, witness)
		changedAny = true
	}
	return l, used, changedAny
}

// rewriteOnce finds the first subterm of l that is an instance of some
// indexed unit equality's oriented left side and rewrites it, strictly
// decreasing l under the ordering.
func (e *Engine) rewriteOnce(l term.Literal) (term.Literal, clause.ID, bool) {
	var result term.Literal
	var witness clause.ID
	found := false
	for _, arg := range e.Lits.Args(l) {
		e.Terms.NonVarSubterms(arg, func(u term.Term) bool {
			seq := e.Idx.DemodulationLHS.QueryGeneralizations(u)
			for {
				res, ok := seq.Next()
				if !ok {
					break
				}
				if !e.isLive(e.Arena.Get(clause.ID(res.Ref.Clause))) {
					continue
				}
				lhs, rhs := e.Lits.Sides(res.Ref.Literal)
				other := rhs
				if res.Ref.Term == rhs {
					other = lhs
				}
				rewrittenSide := subst.Apply(e.Terms, res.Subst, other)
				old := subst.Apply(e.Terms, res.Subst, res.Ref.Term)
				if e.KBO.Compare(old, rewrittenSide) != order.Greater {
					continue
				}
				result = e.Lits.ReplaceTerm(l, u, rewrittenSide, e.KBO.Cmp)
				witness = clause.ID(res.Ref.Clause)
				found = true
				return false
			}
			return true
		})
		if found {
			break
		}
	}
	return result, witness, found
}

// Rewrite pairs a backward-demodulation target with its replacement, so
// the saturation loop knows to retract Old from Active and enqueue New
// in Unprocessed rather than guessing which Active member changed.
type Rewrite struct {
	Old clause.ID
	New clause.ID
}

// BackwardDemodulate uses g, a just-activated unit positive equality,
// to rewrite other Active clauses holding a matching subterm
// (DemodulationSubterm); the caller deactivates each Rewrite.Old in
// Active (a lazy retraction, reaped later) and enqueues each Rewrite.New
// in Unprocessed.
func (e *Engine) BackwardDemodulate(g *clause.Clause) []Rewrite {
	if len(g.Lits) != 1 || !e.Lits.IsEquality(g.Lits[0]) || !e.Lits.Positive(g.Lits[0]) {
		return nil
	}
	lhs, rhs := e.Lits.Sides(g.Lits[0])
	switch e.KBO.Compare(lhs, rhs) {
	case order.Greater:
	case order.Less:
		lhs, rhs = rhs, lhs
	default:
		return nil
	}
	results := e.Idx.DemodulationSubterm.QueryInstances(lhs).Drain()
	seen := map[clause.ID]bool{}
	var out []Rewrite
	for _, res := range results {
		cid := clause.ID(res.Ref.Clause)
		if cid == g.ID || seen[cid] {
			continue
		}
		seen[cid] = true
		target := e.Arena.Get(cid)
		if !e.isLive(target) {
			continue
		}
		newLits := make([]term.Literal, len(target.Lits))
		changed := false
		for i, l := range target.Lits {
			if l == res.Ref.Literal {
				rewrittenSide := subst.Apply(e.Terms, res.Subst, rhs)
				newLits[i] = e.Lits.ReplaceTerm(l, res.Ref.Term, rewrittenSide, e.KBO.Cmp)
				changed = true
			} else {
				newLits[i] = l
			}
		}
		if changed {
			newID := e.newChild(clause.RuleDemodulationBwd, []clause.ID{g.ID, cid}, newLits, maxAge(g.Age, target.Age)+1)
			out = append(out, Rewrite{Old: cid, New: newID})
		}
	}
	return out
}

// ForwardSubsumed reports whether some Active clause subsumes c.
func (e *Engine) ForwardSubsumed(c *clause.Clause) (clause.ID, bool) {
	if len(c.Lits) == 0 {
		return clause.Null, false
	}
	seen := map[clause.ID]bool{}
	for _, l := range c.Lits {
		for _, cand := range e.Idx.SubsumptionIndex.QuerySubsumingCandidates(l) {
			cid := clause.ID(cand.Ref.Clause)
			if cid == c.ID || seen[cid] {
				continue
			}
			seen[cid] = true
			d := e.Arena.Get(cid)
			if !e.isLive(d) {
				continue
			}
			if len(d.Lits) > len(c.Lits) {
				continue
			}
			if matchLits(e.Terms, e.Lits, d.Lits, c.Lits, subst.New()) {
				return cid, true
			}
		}
	}
	return clause.Null, false
}

// BackwardSubsumed returns every Active clause g subsumes.
func (e *Engine) BackwardSubsumed(g *clause.Clause) []clause.ID {
	seen := map[clause.ID]bool{}
	var out []clause.ID
	for _, l := range g.Lits {
		for _, cand := range e.Idx.SubsumptionIndex.QuerySubsumingCandidates(l) {
			cid := clause.ID(cand.Ref.Clause)
			if cid == g.ID || seen[cid] {
				continue
			}
			seen[cid] = true
			c := e.Arena.Get(cid)
			if !e.isLive(c) {
				continue
			}
			if len(g.Lits) > len(c.Lits) {
				continue
			}
			if matchLits(e.Terms, e.Lits, g.Lits, c.Lits, subst.New()) {
				out = append(out, cid)
			}
		}
	}
	return out
}

// SubsumptionResolve looks for an Active clause D = D' ∨ L such that
// D'σ ⊆ c and Lσ is the complement of some literal of c, and if found
// returns c with that literal dropped.
func (e *Engine) SubsumptionResolve(c *clause.Clause) (clause.ID, bool) {
	for _, l := range c.Lits {
		neg := e.Lits.Negate(l)
		for _, cand := range e.Idx.SubsumptionIndex.QuerySubsumingCandidates(neg) {
			cid := clause.ID(cand.Ref.Clause)
			if cid == c.ID {
				continue
			}
			d := e.Arena.Get(cid)
			if !e.isLive(d) {
				continue
			}
			for _, dl := range d.Lits {
				if dl != neg {
					continue
				}
				rest := removeOne(d.Lits, dl)
				if matchLits(e.Terms, e.Lits, rest, c.Lits, subst.New()) {
					newLits := removeOne(c.Lits, l)
					return e.newChild(clause.RuleSubsumptionResolution, []clause.ID{c.ID, cid}, newLits, c.Age), true
				}
			}
		}
	}
	return c.ID, false
}

// Condense drops one literal of c that is a matching-instance of
// another literal in c when doing so still leaves a clause that
// subsumes the original — one step of condensation; the saturation
// loop calls this to a fixpoint.
func (e *Engine) Condense(c *clause.Clause) (clause.ID, bool) {
	for i, li := range c.Lits {
		for j, lj := range c.Lits {
			if i == j {
				continue
			}
			if e.Lits.Pred(li) != e.Lits.Pred(lj) || e.Lits.Positive(li) != e.Lits.Positive(lj) {
				continue
			}
			sigma, ok := matchLitArgs(e.Terms, e.Lits, li, lj, subst.New())
			if !ok {
				continue
			}
			candidate := make([]term.Literal, 0, len(c.Lits)-1)
			for k, l := range c.Lits {
				if k == j {
					continue
				}
				candidate = append(candidate, e.applyLit(sigma, l))
			}
			if matchLits(e.Terms, e.Lits, candidate, c.Lits, subst.New()) {
				return e.newChild(clause.RuleCondensation, []clause.ID{c.ID}, candidate, c.Age), true
			}
		}
	}
	return c.ID, false
}
