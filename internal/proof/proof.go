// Package proof walks and rechecks the inference DAG rooted at an empty
// clause, directly re-deriving every step to confirm each derived clause
// is a logical consequence of its recorded parents.
//
// Grounded on go-air-gini/internal/xo.S's reason-graph walk (final/
// finalRec: mark a literal's variable visited, recurse into its BCP
// reason clause's other literals, collect the unreasoned leaves) —
// generalized from a flat reason-clause array addressed by CLoc to the
// arena's richer Clause.Inference.Parents, and from "collect the leaves"
// to "replay every internal node against the term store".
package proof

import (
	"fmt"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/order"
	"github.com/satprove/saturnfol/internal/rules"
	"github.com/satprove/saturnfol/internal/subst"
	"github.com/satprove/saturnfol/internal/term"
)

// Step is one node of a replayed proof DAG.
type Step struct {
	ID      clause.ID
	Rule    clause.Rule
	Parents []clause.ID
}

// Record is the inference DAG rooted at Root, in dependency order: every
// Step's parents appear earlier in Steps than the step itself.
type Record struct {
	Root  clause.ID
	Steps []Step
}

// Walk collects the proof DAG rooted at root, the derived empty clause a
// refutation result carries, from which the rest of the DAG is
// reachable via Parents. Grounded on xo.S.finalRec's marks-based
// recursive reason-graph walk.
func Walk(arena *clause.Arena, root clause.ID) *Record {
	marks := make(map[clause.ID]bool)
	var steps []Step
	var visit func(id clause.ID)
	visit = func(id clause.ID) {
		if marks[id] {
			return
		}
		marks[id] = true
		c := arena.Get(id)
		for _, p := range c.Inference.Parents {
			visit(p)
		}
		steps = append(steps, Step{ID: id, Rule: c.Inference.Rule, Parents: c.Inference.Parents})
	}
	visit(root)
	return &Record{Root: root, Steps: steps}
}

// Check re-derives every non-input step of rec from scratch, using only
// that step's own recorded parents and the run's term/literal stores and
// ordering — never the Active index, since a step's soundness does not
// depend on what else happened to be Active when it originally ran, only
// on its own premises. It reports the first step it cannot reconstruct.
func Check(eng *rules.Engine, rec *Record) error {
	for _, st := range rec.Steps {
		if st.Rule == clause.RuleInput {
			continue
		}
		if err := checkStep(eng, st); err != nil {
			return fmt.Errorf("proof: step c%d (%s): %w", st.ID, st.Rule, err)
		}
	}
	return nil
}

func checkStep(eng *rules.Engine, st Step) error {
	child := eng.Arena.Get(st.ID)
	switch st.Rule {
	case clause.RuleResolution:
		return checkTwoParent(eng, st, child, tryResolutions)
	case clause.RuleSuperpositionFwd, clause.RuleSuperpositionBwd:
		return checkTwoParent(eng, st, child, trySuperpositions)
	case clause.RuleSubsumptionResolution:
		return checkTwoParent(eng, st, child, trySubsumptionResolutions)
	case clause.RuleFactoring:
		return checkOneParent(eng, st, child, tryFactorings)
	case clause.RuleEqResolution:
		return checkOneParent(eng, st, child, tryEqResolutions)
	case clause.RuleEqFactoring:
		return checkOneParent(eng, st, child, tryEqFactorings)
	case clause.RuleCondensation:
		return checkOneParent(eng, st, child, tryCondensations)
	case clause.RuleDemodulationFwd:
		return checkDemodulationFwd(eng, st, child)
	case clause.RuleDemodulationBwd:
		return checkTwoParent(eng, st, child, trySingleDemodulationStep)
	default:
		return fmt.Errorf("unrecognized inference rule %q", st.Rule)
	}
}

func checkOneParent(eng *rules.Engine, st Step, child *clause.Clause, try func(*rules.Engine, *clause.Clause) [][]term.Literal) error {
	if len(st.Parents) != 1 {
		return fmt.Errorf("expected exactly one parent, got %d", len(st.Parents))
	}
	parent := eng.Arena.Get(st.Parents[0])
	for _, cand := range try(eng, parent) {
		if sameLits(cand, child.Lits) {
			return nil
		}
	}
	return fmt.Errorf("no valid derivation from parent c%d reproduces this clause", st.Parents[0])
}

func checkTwoParent(eng *rules.Engine, st Step, child *clause.Clause, try func(*rules.Engine, *clause.Clause, *clause.Clause) [][]term.Literal) error {
	if len(st.Parents) != 2 {
		return fmt.Errorf("expected exactly two parents, got %d", len(st.Parents))
	}
	a := eng.Arena.Get(st.Parents[0])
	b := eng.Arena.Get(st.Parents[1])
	for _, cand := range try(eng, a, b) {
		if sameLits(cand, child.Lits) {
			return nil
		}
	}
	return fmt.Errorf("no valid derivation from parents c%d, c%d reproduces this clause", st.Parents[0], st.Parents[1])
}

// checkDemodulationFwd replays the fixpoint rewrite using only the
// witness unit equalities internal/rules.ForwardDemodulate itself
// recorded as parents (parents[1:]; parents[0] is the simplified
// clause), rather than an index query, since the index's contents at
// derivation time are not otherwise recoverable after the run.
func checkDemodulationFwd(eng *rules.Engine, st Step, child *clause.Clause) error {
	if len(st.Parents) < 1 {
		return fmt.Errorf("expected at least one parent, got 0")
	}
	parent := eng.Arena.Get(st.Parents[0])
	witnesses := make([]*clause.Clause, 0, len(st.Parents)-1)
	for _, id := range st.Parents[1:] {
		witnesses = append(witnesses, eng.Arena.Get(id))
	}
	lits := make([]term.Literal, len(parent.Lits))
	for i, l := range parent.Lits {
		lits[i] = demodulateWith(eng, l, witnesses)
	}
	if sameLits(lits, child.Lits) {
		return nil
	}
	return fmt.Errorf("rewriting parent c%d with its cited witnesses does not reproduce this clause", st.Parents[0])
}

func demodulateWith(eng *rules.Engine, l term.Literal, witnesses []*clause.Clause) term.Literal {
	for i := 0; i < maxReplayRewrites; i++ {
		rewritten, ok := rewriteOnceWith(eng, l, witnesses)
		if !ok {
			return l
		}
		l = rewritten
	}
	return l
}

// maxReplayRewrites mirrors internal/rules.maxRewrites: a cap on the
// fixpoint loop, not a meaningful termination bound on its own.
const maxReplayRewrites = 64

func rewriteOnceWith(eng *rules.Engine, l term.Literal, witnesses []*clause.Clause) (term.Literal, bool) {
	var result term.Literal
	found := false
	for _, arg := range eng.Lits.Args(l) {
		eng.Terms.NonVarSubterms(arg, func(u term.Term) bool {
			for _, w := range witnesses {
				if len(w.Lits) != 1 || !eng.Lits.IsEquality(w.Lits[0]) || !eng.Lits.Positive(w.Lits[0]) {
					continue
				}
				lhs, rhs := eng.Lits.Sides(w.Lits[0])
				for _, dir := range [2][2]term.Term{{lhs, rhs}, {rhs, lhs}} {
					s, t := dir[0], dir[1]
					sigma, ok := subst.Match(eng.Terms, subst.New(), s, u)
					if !ok {
						continue
					}
					rewrittenSide := subst.Apply(eng.Terms, sigma, t)
					if eng.KBO.Compare(u, rewrittenSide) != order.Greater {
						continue
					}
					result = eng.Lits.ReplaceTerm(l, u, rewrittenSide, eng.KBO.Cmp)
					found = true
					return false
				}
			}
			return true
		})
		if found {
			break
		}
	}
	return result, found
}

func trySingleDemodulationStep(eng *rules.Engine, g, target *clause.Clause) [][]term.Literal {
	if len(g.Lits) != 1 || !eng.Lits.IsEquality(g.Lits[0]) || !eng.Lits.Positive(g.Lits[0]) {
		return nil
	}
	lhs, rhs := eng.Lits.Sides(g.Lits[0])
	switch eng.KBO.Compare(lhs, rhs) {
	case order.Greater:
	case order.Less:
		lhs, rhs = rhs, lhs
	default:
		return nil
	}
	var out [][]term.Literal
	for _, l := range target.Lits {
		for _, arg := range eng.Lits.Args(l) {
			eng.Terms.NonVarSubterms(arg, func(u term.Term) bool {
				sigma, ok := subst.Match(eng.Terms, subst.New(), lhs, u)
				if !ok {
					return true
				}
				rewrittenSide := subst.Apply(eng.Terms, sigma, rhs)
				newLit := eng.Lits.ReplaceTerm(l, u, rewrittenSide, eng.KBO.Cmp)
				newLits := make([]term.Literal, len(target.Lits))
				for i, x := range target.Lits {
					if x == l {
						newLits[i] = newLit
					} else {
						newLits[i] = x
					}
				}
				out = append(out, newLits)
				return true
			})
		}
	}
	return out
}

func tryResolutions(eng *rules.Engine, g, other *clause.Clause) [][]term.Literal {
	var out [][]term.Literal
	for _, l := range clause.SelectedLits(g) {
		if eng.Lits.IsEquality(l) {
			continue
		}
		for _, m := range clause.SelectedLits(other) {
			if eng.Lits.IsEquality(m) || eng.Lits.Positive(l) == eng.Lits.Positive(m) || eng.Lits.Pred(l) != eng.Lits.Pred(m) {
				continue
			}
			sigma, ok := unifyArgs(eng, l, m)
			if !ok {
				continue
			}
			lits := make([]term.Literal, 0, len(g.Lits)+len(other.Lits))
			for _, x := range g.Lits {
				if x == l {
					continue
				}
				lits = append(lits, applyLit(eng, sigma, x))
			}
			for _, x := range other.Lits {
				if x == m {
					continue
				}
				lits = append(lits, applyLit(eng, sigma, x))
			}
			out = append(out, lits)
		}
	}
	return out
}

func trySuperpositions(eng *rules.Engine, from, into *clause.Clause) [][]term.Literal {
	var out [][]term.Literal
	for _, l := range clause.SelectedLits(from) {
		if !eng.Lits.IsEquality(l) || !eng.Lits.Positive(l) {
			continue
		}
		lhs, rhs := eng.Lits.Sides(l)
		for _, dir := range [2][2]term.Term{{lhs, rhs}, {rhs, lhs}} {
			s, t := dir[0], dir[1]
			for _, m := range clause.SelectedLits(into) {
				for _, arg := range eng.Lits.Args(m) {
					eng.Terms.NonVarSubterms(arg, func(u term.Term) bool {
						sigma, ok := subst.Unify(eng.Terms, subst.New(), s, u)
						if !ok {
							return true
						}
						su, st := subst.Apply(eng.Terms, sigma, s), subst.Apply(eng.Terms, sigma, t)
						rewritten := eng.Lits.ReplaceTerm(applyLit(eng, sigma, m), su, st, eng.KBO.Cmp)
						lits := make([]term.Literal, 0, len(from.Lits)+len(into.Lits))
						for _, x := range from.Lits {
							if x == l {
								continue
							}
							lits = append(lits, applyLit(eng, sigma, x))
						}
						for _, x := range into.Lits {
							if x == m {
								continue
							}
							lits = append(lits, applyLit(eng, sigma, x))
						}
						lits = append(lits, rewritten)
						out = append(out, lits)
						return true
					})
				}
			}
		}
	}
	return out
}

func tryFactorings(eng *rules.Engine, g *clause.Clause) [][]term.Literal {
	sel := clause.SelectedLits(g)
	var out [][]term.Literal
	for i := 0; i < len(sel); i++ {
		for j := i + 1; j < len(sel); j++ {
			li, lj := sel[i], sel[j]
			if eng.Lits.IsEquality(li) || eng.Lits.IsEquality(lj) {
				continue
			}
			if eng.Lits.Pred(li) != eng.Lits.Pred(lj) || eng.Lits.Positive(li) != eng.Lits.Positive(lj) {
				continue
			}
			sigma, ok := unifyArgs(eng, li, lj)
			if !ok {
				continue
			}
			lits := make([]term.Literal, 0, len(g.Lits))
			for _, x := range g.Lits {
				if x == lj {
					continue
				}
				lits = append(lits, applyLit(eng, sigma, x))
			}
			out = append(out, lits)
		}
	}
	return out
}

func tryEqResolutions(eng *rules.Engine, g *clause.Clause) [][]term.Literal {
	var out [][]term.Literal
	for _, l := range clause.SelectedLits(g) {
		if !eng.Lits.IsEquality(l) || eng.Lits.Positive(l) {
			continue
		}
		s, t := eng.Lits.Sides(l)
		sigma, ok := subst.Unify(eng.Terms, subst.New(), s, t)
		if !ok {
			continue
		}
		lits := make([]term.Literal, 0, len(g.Lits)-1)
		for _, x := range g.Lits {
			if x == l {
				continue
			}
			lits = append(lits, applyLit(eng, sigma, x))
		}
		out = append(out, lits)
	}
	return out
}

func tryEqFactorings(eng *rules.Engine, g *clause.Clause) [][]term.Literal {
	sel := clause.SelectedLits(g)
	var out [][]term.Literal
	for i := range sel {
		for j := range sel {
			if i == j {
				continue
			}
			li, lj := sel[i], sel[j]
			if !eng.Lits.IsEquality(li) || !eng.Lits.Positive(li) {
				continue
			}
			if !eng.Lits.IsEquality(lj) || !eng.Lits.Positive(lj) {
				continue
			}
			s, t := eng.Lits.Sides(li)
			sp, tp := eng.Lits.Sides(lj)
			sigma, ok := subst.Unify(eng.Terms, subst.New(), s, sp)
			if !ok {
				continue
			}
			lits := make([]term.Literal, 0, len(g.Lits)+1)
			for _, x := range g.Lits {
				if x == li {
					continue
				}
				if x == lj {
					lits = append(lits, applyLit(eng, sigma, lj))
					continue
				}
				lits = append(lits, applyLit(eng, sigma, x))
			}
			neg := eng.Lits.Equality(false, subst.Apply(eng.Terms, sigma, t), subst.Apply(eng.Terms, sigma, tp), eng.KBO.Cmp)
			lits = append(lits, neg)
			out = append(out, lits)
		}
	}
	return out
}

func tryCondensations(eng *rules.Engine, c *clause.Clause) [][]term.Literal {
	var out [][]term.Literal
	for i, li := range c.Lits {
		for j, lj := range c.Lits {
			if i == j {
				continue
			}
			if eng.Lits.Pred(li) != eng.Lits.Pred(lj) || eng.Lits.Positive(li) != eng.Lits.Positive(lj) {
				continue
			}
			sigma, ok := matchLitArgs(eng, li, lj, subst.New())
			if !ok {
				continue
			}
			candidate := make([]term.Literal, 0, len(c.Lits)-1)
			for k, l := range c.Lits {
				if k == j {
					continue
				}
				candidate = append(candidate, applyLit(eng, sigma, l))
			}
			out = append(out, candidate)
		}
	}
	return out
}

func trySubsumptionResolutions(eng *rules.Engine, c, d *clause.Clause) [][]term.Literal {
	var out [][]term.Literal
	for _, l := range c.Lits {
		neg := eng.Lits.Negate(l)
		for _, dl := range d.Lits {
			if dl != neg {
				continue
			}
			rest := removeOne(d.Lits, dl)
			if matchLits(eng, rest, c.Lits, subst.New()) {
				out = append(out, removeOne(c.Lits, l))
			}
		}
	}
	return out
}

func unifyArgs(eng *rules.Engine, a, b term.Literal) (*subst.Subst, bool) {
	aa, ba := eng.Lits.Args(a), eng.Lits.Args(b)
	if len(aa) != len(ba) {
		return nil, false
	}
	sigma := subst.New()
	for i := range aa {
		var ok bool
		sigma, ok = subst.Unify(eng.Terms, sigma, aa[i], ba[i])
		if !ok {
			return nil, false
		}
	}
	return sigma, true
}

func matchLitArgs(eng *rules.Engine, pattern, instance term.Literal, sigma *subst.Subst) (*subst.Subst, bool) {
	pa, ia := eng.Lits.Args(pattern), eng.Lits.Args(instance)
	if len(pa) != len(ia) {
		return sigma, false
	}
	var ok bool
	for i := range pa {
		sigma, ok = subst.Match(eng.Terms, sigma, pa[i], ia[i])
		if !ok {
			return sigma, false
		}
	}
	return sigma, true
}

// matchLits is the multi-literal matching search condensation and
// subsumption-resolution replay both need: is there a substitution,
// extending sigma, under which every literal of pattern appears among
// pool's literals?
func matchLits(eng *rules.Engine, pattern, pool []term.Literal, sigma *subst.Subst) bool {
	if len(pattern) == 0 {
		return true
	}
	l := pattern[0]
	for _, m := range pool {
		if eng.Lits.Pred(l) != eng.Lits.Pred(m) || eng.Lits.Positive(l) != eng.Lits.Positive(m) || eng.Lits.IsEquality(l) != eng.Lits.IsEquality(m) {
			continue
		}
		trial, ok := matchLitArgs(eng, l, m, sigma.Clone())
		if ok && matchLits(eng, pattern[1:], pool, trial) {
			return true
		}
	}
	return false
}

func applyLit(eng *rules.Engine, sigma *subst.Subst, l term.Literal) term.Literal {
	args := eng.Lits.Args(l)
	newArgs := make([]term.Term, len(args))
	for i, a := range args {
		newArgs[i] = subst.Apply(eng.Terms, sigma, a)
	}
	if eng.Lits.IsEquality(l) {
		return eng.Lits.Equality(eng.Lits.Positive(l), newArgs[0], newArgs[1], eng.KBO.Cmp)
	}
	return eng.Lits.Atom(eng.Lits.Pred(l), eng.Lits.Positive(l), newArgs...)
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

func sameLits(a, b []term.Literal) bool {
	ca, cb := clause.Canonicalize(a), clause.Canonicalize(b)
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if ca[i] != cb[i] {
			return false
		}
	}
	return true
}
