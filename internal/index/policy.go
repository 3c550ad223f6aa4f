package index

import (
	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/order"
	"github.com/satprove/saturnfol/internal/term"
)

// Policy names one of the six owning-index policies.
type Policy string

const (
	PolicySuperpositionSubterm   Policy = "superposition-subterm"
	PolicySuperpositionLHS       Policy = "superposition-lhs"
	PolicyDemodulationSubterm    Policy = "demodulation-subterm"
	PolicyDemodulationLHS        Policy = "demodulation-lhs"
	PolicyGeneratingLiteralIndex Policy = "generating-literal-index"
	PolicySubsumptionIndex       Policy = "subsumption-index"
)

// Set bundles every index the core maintains, each owned by exactly one
// policy, kept in sync with the Active container via events.
type Set struct {
	Lits *term.LitStore
	KBO  *order.KBO

	SuperpositionSubterm *Tree // non-var subterms of selected literals
	SuperpositionLHS      *Tree // maximal sides of selected positive equalities
	DemodulationSubterm   *Tree // all non-var subterms of all literals
	DemodulationLHS       *Tree // unit positive equalities' maximal side
	GeneratingLiteralIndex *LiteralTree
	SubsumptionIndex       *LiteralTree
}

func NewSet(lits *term.LitStore, kbo *order.KBO) *Set {
	return &Set{
		Lits:                   lits,
		KBO:                    kbo,
		SuperpositionSubterm:   NewTree(lits.Terms),
		SuperpositionLHS:       NewTree(lits.Terms),
		DemodulationSubterm:    NewTree(lits.Terms),
		DemodulationLHS:        NewTree(lits.Terms),
		GeneratingLiteralIndex: NewLiteralTree(lits),
		SubsumptionIndex:       NewLiteralTree(lits),
	}
}

// OnAdded inserts every position each policy owns for a newly Active
// clause c.
func (s *Set) OnAdded(c *clause.Clause) {
	cid := uint32(c.ID)
	for i, l := range c.Lits {
		selected := i < c.Selected
		s.SubsumptionIndex.Insert(l, LiteralRef{Clause: cid, Literal: l})
		if selected {
			s.GeneratingLiteralIndex.Insert(l, LiteralRef{Clause: cid, Literal: l})
		}
		for _, arg := range s.Lits.Args(l) {
			s.Lits.Terms.NonVarSubterms(arg, func(t term.Term) bool {
				s.DemodulationSubterm.Insert(t, Ref{Clause: cid, Literal: l, Term: t})
				if selected {
					s.SuperpositionSubterm.Insert(t, Ref{Clause: cid, Literal: l, Term: t})
				}
				return true
			})
		}
		if !s.Lits.IsEquality(l) {
			continue
		}
		lhs, rhs := s.Lits.Sides(l)
		if selected && s.Lits.Positive(l) {
			s.insertMaximalSide(s.SuperpositionLHS, l, lhs, rhs, cid)
		}
		if len(c.Lits) == 1 && s.Lits.Positive(l) {
			s.insertMaximalSide(s.DemodulationLHS, l, lhs, rhs, cid)
		}
	}
}

// insertMaximalSide indexes whichever side of an equality is not smaller
// than its partner under the ordering; if the ordering
// cannot decide, both sides are indexed since either could be the rewrite
// source in some ground instance.
func (s *Set) insertMaximalSide(t *Tree, l term.Literal, lhs, rhs term.Term, cid uint32) {
	switch s.KBO.Compare(lhs, rhs) {
	case order.Less:
		t.Insert(rhs, Ref{Clause: cid, Literal: l, Term: rhs})
	case order.Greater:
		t.Insert(lhs, Ref{Clause: cid, Literal: l, Term: lhs})
	default:
		t.Insert(lhs, Ref{Clause: cid, Literal: l, Term: lhs})
		t.Insert(rhs, Ref{Clause: cid, Literal: l, Term: rhs})
	}
}

// OnRemoved deletes every position c contributed across every owned
// index, mirroring the removed(c) event.
func (s *Set) OnRemoved(c *clause.Clause) {
	cid := uint32(c.ID)
	same := func(r Ref) bool { return r.Clause == cid }
	sameLit := func(r LiteralRef) bool { return r.Clause == cid }
	for _, l := range c.Lits {
		s.SubsumptionIndex.Remove(l, sameLit)
		s.GeneratingLiteralIndex.Remove(l, sameLit)
		for _, arg := range s.Lits.Args(l) {
			s.Lits.Terms.NonVarSubterms(arg, func(t term.Term) bool {
				s.DemodulationSubterm.Remove(t, same)
				s.SuperpositionSubterm.Remove(t, same)
				return true
			})
		}
		if s.Lits.IsEquality(l) {
			lhs, rhs := s.Lits.Sides(l)
			s.SuperpositionLHS.Remove(lhs, same)
			s.SuperpositionLHS.Remove(rhs, same)
			s.DemodulationLHS.Remove(lhs, same)
			s.DemodulationLHS.Remove(rhs, same)
		}
	}
}
