package index

import (
	"github.com/satprove/saturnfol/internal/subst"
	"github.com/satprove/saturnfol/internal/term"
)

// LiteralRef is a back-reference to one literal occurrence of one clause.
type LiteralRef struct {
	Clause  uint32
	Literal term.Literal
}

type litKey struct {
	pred     uint64
	positive bool
}

type litEntry struct {
	lit term.Literal
	ref LiteralRef
}

// LiteralTree indexes whole literals (used by GeneratingLiteralIndex and
// SubsumptionIndex), bucketed by (predicate, polarity) the same way Tree
// buckets terms by top symbol.
type LiteralTree struct {
	Lits    *term.LitStore
	buckets map[litKey][]litEntry
	size    int
}

func NewLiteralTree(lits *term.LitStore) *LiteralTree {
	return &LiteralTree{Lits: lits, buckets: make(map[litKey][]litEntry, 16)}
}

func (lt *LiteralTree) key(l term.Literal) litKey {
	return litKey{pred: uint64(lt.Lits.Pred(l)), positive: lt.Lits.Positive(l)}
}

func (lt *LiteralTree) Insert(l term.Literal, ref LiteralRef) {
	k := lt.key(l)
	lt.buckets[k] = append(lt.buckets[k], litEntry{lit: l, ref: ref})
	lt.size++
}

func (lt *LiteralTree) Remove(l term.Literal, pred func(LiteralRef) bool) {
	k := lt.key(l)
	bs := lt.buckets[k]
	out := bs[:0]
	for _, e := range bs {
		if pred(e.ref) {
			lt.size--
			continue
		}
		out = append(out, e)
	}
	lt.buckets[k] = out
}

func (lt *LiteralTree) Size() int { return lt.size }

// LiteralResult pairs a matched literal occurrence with the substitution
// that realizes the relation.
type LiteralResult struct {
	Ref   LiteralRef
	Lit   term.Literal
	Subst *subst.Subst
}

// QueryComplementaryUnify finds every indexed literal with the opposite
// polarity of query whose arguments unify with query's (the relation
// binary resolution and equality resolution need).
func (lt *LiteralTree) QueryComplementaryUnify(query term.Literal) []LiteralResult {
	k := litKey{pred: uint64(lt.Lits.Pred(query)), positive: !lt.Lits.Positive(query)}
	var out []LiteralResult
	for _, e := range lt.buckets[k] {
		if sg, ok := unifyArgs(query, e.lit, lt.Lits); ok {
			out = append(out, LiteralResult{Ref: e.ref, Lit: e.lit, Subst: sg})
		}
	}
	return out
}

// Candidate is a raw (literal, back-ref) pair, without a precomputed
// substitution — used where the caller runs a different relation (e.g.
// Match, not Unify) against each candidate itself.
type Candidate struct {
	Lit term.Literal
	Ref LiteralRef
}

// QuerySubsumingCandidates returns every indexed literal with the same
// polarity and predicate as query — the pool subsumption checks its
// per-literal matching against.
func (lt *LiteralTree) QuerySubsumingCandidates(query term.Literal) []Candidate {
	bs := lt.buckets[lt.key(query)]
	out := make([]Candidate, len(bs))
	for i, e := range bs {
		out[i] = Candidate{Lit: e.lit, Ref: e.ref}
	}
	return out
}

// All returns every indexed literal regardless of bucket — used by
// subsumption's first-literal selection, which must consider every
// literal of a candidate subsumer clause.
func (lt *LiteralTree) All() []Candidate {
	var out []Candidate
	for _, bs := range lt.buckets {
		for _, e := range bs {
			out = append(out, Candidate{Lit: e.lit, Ref: e.ref})
		}
	}
	return out
}

func unifyArgs(a, b term.Literal, lits *term.LitStore) (*subst.Subst, bool) {
	aa, ba := lits.Args(a), lits.Args(b)
	if len(aa) != len(ba) {
		return nil, false
	}
	sg := subst.New()
	for i := range aa {
		var ok bool
		sg, ok = subst.Unify(lits.Terms, sg, aa[i], ba[i])
		if !ok {
			return nil, false
		}
	}
	return sg, true
}
