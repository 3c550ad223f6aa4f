// Package order implements the simplification ordering used throughout
// the core: a Knuth-Bendix-style (KBO) ordering on terms, lifted to
// literals as a multiset comparison on equality sides and by sign/weight
// for non-equality atoms.
//
// go-air-gini has no direct analog for this (a SAT solver's variables
// carry no term structure), so this package is grounded on the general
// "compare with a precedence, break ties deterministically" shape found
// in go-air-gini/bench/cmp.go, generalized from solver comparison to
// term comparison.
package order

import (
	"github.com/satprove/saturnfol/internal/symbol"
	"github.com/satprove/saturnfol/internal/term"
)

// Rel is the result of a comparison: Greater, Less, Equal, or Incomparable
// when the ordering — being only a partial order on non-ground terms —
// cannot decide.
type Rel int8

const (
	Incomparable Rel = iota
	Greater
	Less
	Equal
)

func (r Rel) String() string {
	switch r {
	case Greater:
		return ">"
	case Less:
		return "<"
	case Equal:
		return "="
	default:
		return "?"
	}
}

func (r Rel) Flip() Rel {
	switch r {
	case Greater:
		return Less
	case Less:
		return Greater
	default:
		return r
	}
}

// KBO is a Knuth-Bendix ordering parameterised by a total symbol
// precedence and per-symbol weights (already stored on symbol.Symbol).
type KBO struct {
	Terms      *term.Store
	precedence map[symbol.ID]int // function precedence, higher = more senior
	varWeight  uint32
}

// New builds a KBO ordering from an explicit precedence list (most senior
// first). Symbols not listed get precedence below every listed symbol, in
// table order, so the ordering is always total on function symbols —
// required for KBO to be total on ground terms.
func New(ts *term.Store, precedence []symbol.ID) *KBO {
	k := &KBO{Terms: ts, precedence: make(map[symbol.ID]int, len(precedence)), varWeight: 1}
	n := len(precedence)
	for i, id := range precedence {
		k.precedence[id] = n - i
	}
	return k
}

// Precedence compares two function symbols; higher return value is more
// senior in the ordering. Unlisted symbols compare by ID as a stable
// fallback so Precedence is always a total order.
func (k *KBO) Precedence(a, b symbol.ID) int {
	pa, oka := k.precedence[a]
	pb, okb := k.precedence[b]
	if oka && okb {
		if pa != pb {
			return pa - pb
		}
		return 0
	}
	if oka != okb {
		if oka {
			return 1
		}
		return -1
	}
	return int(a) - int(b)
}

// Compare implements the KBO comparison on terms: first by weight
// (variable-counted, via Store.Weight which already excludes the
// variable-occurrence balance check — see varBalance), then, on a weight
// tie, by recursive comparison of the first argument position where the
// two terms diverge, guided by symbol precedence.
func (k *KBO) Compare(s, t term.Term) Rel {
	if s == t {
		return Equal
	}
	ts := k.Terms
	// KBO precondition: every variable in t occurs at least as often in s
	// for s > t to hold (and symmetrically). This partial order is where
	// non-ground terms become Incomparable.
	balOK, balRevOK := varBalance(ts, s, t)
	if !balOK && !balRevOK {
		return Incomparable
	}
	ws, wt := int64(ts.Weight(s)), int64(ts.Weight(t))
	if ws != wt {
		if ws > wt && balOK {
			return Greater
		}
		if wt > ws && balRevOK {
			return Less
		}
		return Incomparable
	}
	return k.compareSameWeight(s, t, balOK, balRevOK)
}

func (k *KBO) compareSameWeight(s, t term.Term, balOK, balRevOK bool) Rel {
	ts := k.Terms
	sVar, tVar := ts.IsVar(s), ts.IsVar(t)
	if sVar || tVar {
		// equal weight forces s==t for a variable to compare against
		// anything but another identical variable, which is handled above.
		return Incomparable
	}
	fs, ft := ts.Functor(s), ts.Functor(t)
	if fs == ft {
		sa, ta := ts.Args(s), ts.Args(t)
		for i := range sa {
			switch k.compareLexArg(sa[i], ta[i]) {
			case Greater:
				if balOK {
					return Greater
				}
				return Incomparable
			case Less:
				if balRevOK {
					return Less
				}
				return Incomparable
			}
		}
		return Equal
	}
	switch {
	case k.Precedence(fs, ft) > 0 && balOK:
		return Greater
	case k.Precedence(fs, ft) < 0 && balRevOK:
		return Less
	default:
		return Incomparable
	}
}

// compareLexArg compares one argument pair purely to find the first
// divergence; it does not itself re-check the weight/precedence
// preconditions, which is the caller's job.
func (k *KBO) compareLexArg(a, b term.Term) Rel {
	if a == b {
		return Equal
	}
	return k.Compare(a, b)
}

// varBalance checks the KBO variable-count side condition for s>t (fwd)
// and t>s (rev) independently: every variable must occur in s at least as
// often as in t (resp. t in s).
func varBalance(ts *term.Store, s, t term.Term) (fwd, rev bool) {
	cs := make(map[term.Var]int)
	ct := make(map[term.Var]int)
	countVars(ts, s, cs)
	countVars(ts, t, ct)
	fwd, rev = true, true
	for v, n := range ct {
		if cs[v] < n {
			fwd = false
		}
	}
	for v, n := range cs {
		if ct[v] < n {
			rev = false
		}
	}
	return
}

func countVars(ts *term.Store, t term.Term, dst map[term.Var]int) {
	if ts.IsVar(t) {
		dst[ts.AsVar(t)]++
		return
	}
	for _, a := range ts.Args(t) {
		countVars(ts, a, dst)
	}
}

// Cmp adapts Compare to the `cmp(a,b) int` shape term.LitStore.Equality
// and ReplaceTerm need for canonical equality-side orientation: 1 if a
// is definitely larger, -1 if b is, 0 if the ordering cannot decide.
func (k *KBO) Cmp(a, b term.Term) int {
	switch k.Compare(a, b) {
	case Greater:
		return 1
	case Less:
		return -1
	default:
		return 0
	}
}

// CompareLiterals orders two non-equality literals by (weight, sign);
// equalities are compared as the {max,min} multiset of their sides.
func (k *KBO) CompareLiterals(lits *term.LitStore, a, b term.Literal) Rel {
	wa, wb := lits.Weight(a), lits.Weight(b)
	if lits.IsEquality(a) && lits.IsEquality(b) {
		return k.compareEqualityMultisets(lits, a, b)
	}
	if wa == wb {
		if lits.Positive(a) == lits.Positive(b) {
			return Equal
		}
		return Incomparable
	}
	if wa > wb {
		return Greater
	}
	return Less
}

func (k *KBO) compareEqualityMultisets(lits *term.LitStore, a, b term.Literal) Rel {
	al, ar := lits.Sides(a)
	bl, br := lits.Sides(b)
	// Multiset extension: compare the two {lhs,rhs} bags. Sufficient for
	// our purposes to compare the max-of-each then the min-of-each.
	amax, amin := maxMin(k, al, ar)
	bmax, bmin := maxMin(k, bl, br)
	switch k.Compare(amax, bmax) {
	case Greater:
		return Greater
	case Less:
		return Less
	case Equal:
		return k.Compare(amin, bmin)
	default:
		return Incomparable
	}
}

func maxMin(k *KBO, a, b term.Term) (mx, mn term.Term) {
	if k.Compare(a, b) == Less {
		return b, a
	}
	return a, b
}
