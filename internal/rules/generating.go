package rules

import (
	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/order"
	"github.com/satprove/saturnfol/internal/subst"
	"github.com/satprove/saturnfol/internal/term"
)

// Generate runs every generating inference between g and the rest of
// Active (reached through the index set; g is already indexed by then, so
// each rule skips any result whose stored side is g itself — g is queried
// as the probe, other clauses as the stored side) and returns every child
// clause produced, already canonicalized and selected.
func (e *Engine) Generate(g *clause.Clause) []clause.ID {
	var out []clause.ID
	out = append(out, e.superposeFrom(g)...)
	out = append(out, e.superposeInto(g)...)
	out = append(out, e.resolution(g)...)
	out = append(out, e.factoring(g)...)
	out = append(out, e.eqResolution(g)...)
	out = append(out, e.eqFactoring(g)...)
	return out
}

// superposeFrom treats g as the equation-providing ("from") premise:
// for each selected positive equality in g, it rewrites a matching
// non-variable subterm found in some other Active clause (forward
// superposition, via the SuperpositionSubterm index).
func (e *Engine) superposeFrom(g *clause.Clause) []clause.ID {
	var out []clause.ID
	for _, l := range clause.SelectedLits(g) {
		if !e.Lits.IsEquality(l) || !e.Lits.Positive(l) {
			continue
		}
		lhs, rhs := e.Lits.Sides(l)
		for _, dir := range [2][2]term.Term{{lhs, rhs}, {rhs, lhs}} {
			s, t := dir[0], dir[1]
			if e.KBO.Compare(t, s) == order.Greater {
				continue
			}
			seq := e.Idx.SuperpositionSubterm.QueryUnify(s)
			for {
				res, ok := seq.Next()
				if !ok {
					break
				}
				if res.Ref.Clause == uint32(g.ID) {
					continue
				}
				into := e.Arena.Get(clause.ID(res.Ref.Clause))
				if !e.isLive(into) {
					continue
				}
				out = append(out, e.buildSuperposition(clause.RuleSuperpositionFwd, g, l, t, into, res.Ref.Literal, res.Ref.Term, res.Subst))
			}
		}
	}
	return out
}

// superposeInto treats g as the rewrite-target ("into") premise: for
// each non-variable subterm of a selected literal of g, it looks for a
// unifiable maximal equality side held by some other Active clause
// (backward superposition).
func (e *Engine) superposeInto(g *clause.Clause) []clause.ID {
	var out []clause.ID
	for _, l := range clause.SelectedLits(g) {
		for _, arg := range e.Lits.Args(l) {
			e.Terms.NonVarSubterms(arg, func(u term.Term) bool {
				seq := e.Idx.SuperpositionLHS.QueryUnify(u)
				for {
					res, ok := seq.Next()
					if !ok {
						break
					}
					if res.Ref.Clause == uint32(g.ID) {
						continue
					}
					from := e.Arena.Get(clause.ID(res.Ref.Clause))
					if !e.isLive(from) {
						continue
					}
					lhsSide, rhsSide := e.Lits.Sides(res.Ref.Literal)
					t := rhsSide
					if res.Ref.Term == rhsSide {
						t = lhsSide
					}
					out = append(out, e.buildSuperposition(clause.RuleSuperpositionBwd, from, res.Ref.Literal, t, g, l, u, res.Subst))
				}
				return true
			})
		}
	}
	return out
}

// buildSuperposition constructs the superposition conclusion: from's
// other literals, into's other literals, and intoLit with the matched
// occurrence rewritten to t, all under sigma.
func (e *Engine) buildSuperposition(rule clause.Rule, from *clause.Clause, fromEqLit term.Literal, t term.Term, into *clause.Clause, intoLit term.Literal, matched term.Term, sigma *subst.Subst) clause.ID {
	su := subst.Apply(e.Terms, sigma, matched)
	st := subst.Apply(e.Terms, sigma, t)
	sigmaIntoLit := e.applyLit(sigma, intoLit)
	rewritten := e.Lits.ReplaceTerm(sigmaIntoLit, su, st, e.KBO.Cmp)

	lits := make([]term.Literal, 0, len(from.Lits)+len(into.Lits))
	for _, l := range from.Lits {
		if l == fromEqLit {
			continue
		}
		lits = append(lits, e.applyLit(sigma, l))
	}
	for _, l := range into.Lits {
		if l == intoLit {
			continue
		}
		lits = append(lits, e.applyLit(sigma, l))
	}
	lits = append(lits, rewritten)
	return e.newChild(rule, []clause.ID{from.ID, into.ID}, lits, maxAge(from.Age, into.Age)+1)
}

// resolution is ordinary binary resolution between two selected,
// complementary, non-equality literals.
func (e *Engine) resolution(g *clause.Clause) []clause.ID {
	var out []clause.ID
	for _, l := range clause.SelectedLits(g) {
		if e.Lits.IsEquality(l) {
			continue
		}
		for _, res := range e.Idx.GeneratingLiteralIndex.QueryComplementaryUnify(l) {
			if res.Ref.Clause == uint32(g.ID) {
				continue
			}
			other := e.Arena.Get(clause.ID(res.Ref.Clause))
			if !e.isLive(other) {
				continue
			}
			out = append(out, e.buildResolvent(g, l, other, res.Lit, res.Subst))
		}
	}
	return out
}

func (e *Engine) buildResolvent(g *clause.Clause, l term.Literal, other *clause.Clause, otherLit term.Literal, sigma *subst.Subst) clause.ID {
	lits := make([]term.Literal, 0, len(g.Lits)+len(other.Lits))
	for _, x := range g.Lits {
		if x == l {
			continue
		}
		lits = append(lits, e.applyLit(sigma, x))
	}
	for _, x := range other.Lits {
		if x == otherLit {
			continue
		}
		lits = append(lits, e.applyLit(sigma, x))
	}
	return e.newChild(clause.RuleResolution, []clause.ID{g.ID, other.ID}, lits, maxAge(g.Age, other.Age)+1)
}

// factoring merges two selected literals of g that share predicate and
// polarity and unify with each other.
func (e *Engine) factoring(g *clause.Clause) []clause.ID {
	sel := clause.SelectedLits(g)
	var out []clause.ID
	for i := 0; i < len(sel); i++ {
		for j := i + 1; j < len(sel); j++ {
			li, lj := sel[i], sel[j]
			if e.Lits.IsEquality(li) || e.Lits.IsEquality(lj) {
				continue
			}
			if e.Lits.Pred(li) != e.Lits.Pred(lj) || e.Lits.Positive(li) != e.Lits.Positive(lj) {
				continue
			}
			sigma, ok := unifyLitArgs(e.Terms, e.Lits, li, lj)
			if !ok {
				continue
			}
			lits := make([]term.Literal, 0, len(g.Lits))
			for _, x := range g.Lits {
				if x == lj {
					continue
				}
				lits = append(lits, e.applyLit(sigma, x))
			}
			out = append(out, e.newChild(clause.RuleFactoring, []clause.ID{g.ID}, lits, g.Age+1))
		}
	}
	return out
}

func unifyLitArgs(terms *term.Store, lits *term.LitStore, a, b term.Literal) (*subst.Subst, bool) {
	aa, ba := lits.Args(a), lits.Args(b)
	if len(aa) != len(ba) {
		return nil, false
	}
	sigma := subst.New()
	for i := range aa {
		var ok bool
		sigma, ok = subst.Unify(terms, sigma, aa[i], ba[i])
		if !ok {
			return nil, false
		}
	}
	return sigma, true
}

// eqResolution removes a selected negative equality literal whose sides
// unify, applying the unifier to the rest of the clause.
func (e *Engine) eqResolution(g *clause.Clause) []clause.ID {
	var out []clause.ID
	for _, l := range clause.SelectedLits(g) {
		if !e.Lits.IsEquality(l) || e.Lits.Positive(l) {
			continue
		}
		s, t := e.Lits.Sides(l)
		sigma, ok := subst.Unify(e.Terms, subst.New(), s, t)
		if !ok {
			continue
		}
		lits := make([]term.Literal, 0, len(g.Lits)-1)
		for _, x := range g.Lits {
			if x == l {
				continue
			}
			lits = append(lits, e.applyLit(sigma, x))
		}
		out = append(out, e.newChild(clause.RuleEqResolution, []clause.ID{g.ID}, lits, g.Age+1))
	}
	return out
}

// eqFactoring implements the Bachmair-Ganzinger equality factoring rule:
// given two selected positive equalities s=t and s'=t' whose large sides
// s, s' unify, it drops s=t and adds the disequality tσ ≠ t'σ alongside
// the surviving (s'=t')σ.
func (e *Engine) eqFactoring(g *clause.Clause) []clause.ID {
	sel := clause.SelectedLits(g)
	var out []clause.ID
	for i := range sel {
		for j := range sel {
			if i == j {
				continue
			}
			li, lj := sel[i], sel[j]
			if !e.Lits.IsEquality(li) || !e.Lits.Positive(li) {
				continue
			}
			if !e.Lits.IsEquality(lj) || !e.Lits.Positive(lj) {
				continue
			}
			s, t := e.Lits.Sides(li)
			sp, tp := e.Lits.Sides(lj)
			sigma, ok := subst.Unify(e.Terms, subst.New(), s, sp)
			if !ok {
				continue
			}
			lits := make([]term.Literal, 0, len(g.Lits)+1)
			for _, x := range g.Lits {
				if x == li {
					continue
				}
				if x == lj {
					lits = append(lits, e.applyLit(sigma, lj))
					continue
				}
				lits = append(lits, e.applyLit(sigma, x))
			}
			neg := e.Lits.Equality(false, subst.Apply(e.Terms, sigma, t), subst.Apply(e.Terms, sigma, tp), e.KBO.Cmp)
			lits = append(lits, neg)
			out = append(out, e.newChild(clause.RuleEqFactoring, []clause.ID{g.ID}, lits, g.Age+1))
		}
	}
	return out
}
