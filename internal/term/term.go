// Package term implements a hash-consed term store: the engine's terms and
// literals are plain interned ids, and two terms are structurally equal iff
// they are the same id. This mirrors the "strash" (structural hashing)
// technique used to build shared combinational circuits, generalized here
// from a fixed binary AND-gate shape to n-ary function application.
package term

import (
	"fmt"

	"github.com/satprove/saturnfol/internal/symbol"
)

// Term is an interned node id. The zero value is never a valid term.
type Term uint32

const Null Term = 0

// Var is a variable id, distinct from the function-symbol namespace.
type Var uint32

type kind uint8

const (
	kindVar kind = iota
	kindApp
)

type node struct {
	k      kind
	vr     Var       // valid when k == kindVar
	fn     symbol.ID // valid when k == kindApp
	args   []Term    // valid when k == kindApp
	weight uint32
	ground bool
	next   uint32 // strash collision chain, index into store.nodes (+1), 0 = end
}

// Store is the hash-consing arena for one run's terms. All Store methods
// assume single-threaded access from the saturation loop, as the rest of
// the core does.
type Store struct {
	Syms   *symbol.Table
	nodes  []node
	strash map[uint64]uint32 // hash -> index of first node in the chain (+1)
	fresh  Var               // next var for skolemisation / internal renaming
}

// NewStore creates an empty term store bound to sym for weight lookups.
func NewStore(sym *symbol.Table) *Store {
	s := &Store{
		Syms:   sym,
		nodes:  make([]node, 1, 1024), // index 0 reserved, Term ids are 1-based
		strash: make(map[uint64]uint32, 1024),
	}
	return s
}

// Variable interns (trivially — variables are not structurally shared
// across distinct ids) a variable term.
func (s *Store) Variable(v Var) Term {
	// Variables still go through the node table so every Term, variable or
	// compound, can be dereferenced uniformly; they are just never merged
	// by the strash since distinct variables are, by construction, not
	// structurally equal.
	s.nodes = append(s.nodes, node{k: kindVar, vr: v, weight: 1, ground: false})
	return Term(len(s.nodes) - 1)
}

// FreshVar allocates a variable id guaranteed unused by any clause parsed
// or generated so far in this store (used by substitution-tree internal
// variables and by renaming apart during unification/superposition).
func (s *Store) FreshVar() Var {
	s.fresh++
	return s.fresh
}

// BumpFresh ensures subsequent FreshVar calls do not collide with any
// variable id up to and including max. No package in this module calls
// it; the input reader mints its variables through FreshVar.
func (s *Store) BumpFresh(max Var) {
	if max > s.fresh {
		s.fresh = max
	}
}

// App interns a compound term, sharing structure with any existing term
// with the same functor and argument ids.
func (s *Store) App(fn symbol.ID, args ...Term) Term {
	h := hashApp(fn, args)
	if chain, ok := s.strash[h]; ok {
		for idx := chain; idx != 0; {
			n := &s.nodes[idx]
			if n.k == kindApp && n.fn == fn && sameArgs(n.args, args) {
				return Term(idx)
			}
			idx = n.next
		}
		return s.insertApp(fn, args, h, chain)
	}
	return s.insertApp(fn, args, h, 0)
}

func (s *Store) insertApp(fn symbol.ID, args []Term, h uint64, chain uint32) Term {
	w := s.Syms.Func(fn).Weight
	ground := true
	owned := make([]Term, len(args))
	for i, a := range args {
		an := &s.nodes[a]
		w += an.weight
		if !an.ground {
			ground = false
		}
		owned[i] = a
	}
	s.nodes = append(s.nodes, node{
		k: kindApp, fn: fn, args: owned, weight: w, ground: ground, next: chain,
	})
	idx := uint32(len(s.nodes) - 1)
	s.strash[h] = idx
	return Term(idx)
}

func hashApp(fn symbol.ID, args []Term) uint64 {
	h := uint64(fn) * 1099511628211
	for _, a := range args {
		h ^= uint64(a) * 2654435761
		h = h*1099511628211 + 0x9e3779b97f4a7c15
	}
	return h
}

func sameArgs(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsVar reports whether t denotes a variable.
func (s *Store) IsVar(t Term) bool { return s.nodes[t].k == kindVar }

// AsVar returns the variable id of t; only valid if IsVar(t).
func (s *Store) AsVar(t Term) Var { return s.nodes[t].vr }

// Functor returns the head symbol of a compound term; only valid if
// !IsVar(t).
func (s *Store) Functor(t Term) symbol.ID { return s.nodes[t].fn }

// Args returns the argument terms of a compound term (empty for a
// constant). The returned slice is shared store state and must not be
// mutated.
func (s *Store) Args(t Term) []Term { return s.nodes[t].args }

// Weight is the sum of symbol weights over t, cached at construction.
func (s *Store) Weight(t Term) uint32 { return s.nodes[t].weight }

// Ground reports whether t contains no variables.
func (s *Store) Ground(t Term) bool { return s.nodes[t].ground }

// Equal is pointer (id) equality — the hash-consing law: for non-variable
// terms, structural equality implies id equality and vice versa. Variables
// are not hash-consed (each Variable call yields a new id), so two
// variable terms over the same Var are not Equal.
func Equal(a, b Term) bool { return a == b }

// String renders a term for diagnostics.
func (s *Store) String(t Term) string {
	n := &s.nodes[t]
	if n.k == kindVar {
		return fmt.Sprintf("X%d", n.vr)
	}
	sym := s.Syms.Func(n.fn)
	if len(n.args) == 0 {
		return sym.Name
	}
	out := sym.Name + "("
	for i, a := range n.args {
		if i > 0 {
			out += ","
		}
		out += s.String(a)
	}
	return out + ")"
}

// Subterms calls visit on t and every subterm (including t itself),
// pre-order, stopping early if visit returns false.
func (s *Store) Subterms(t Term, visit func(Term) bool) {
	if !visit(t) {
		return
	}
	if s.IsVar(t) {
		return
	}
	for _, a := range s.Args(t) {
		s.Subterms(a, visit)
	}
}

// NonVarSubterms visits every subterm of t that is not itself a bare
// variable — the positions demodulation and superposition rewrite into.
func (s *Store) NonVarSubterms(t Term, visit func(Term) bool) {
	s.Subterms(t, func(u Term) bool {
		if s.IsVar(u) {
			return true
		}
		return visit(u)
	})
}

// Replace interns a copy of t with every occurrence of the subterm id
// `from` rewritten to `to`. Because terms are hash-consed, "every
// occurrence" means every subterm structurally equal to from — there is
// no separate notion of "this one position" to target more narrowly,
// which is the simplification superposition/demodulation rewriting in
// this store makes (see internal/rules).
func (s *Store) Replace(t, from, to Term) Term {
	if t == from {
		return to
	}
	if s.IsVar(t) {
		return t
	}
	args := s.Args(t)
	if len(args) == 0 {
		return t
	}
	newArgs := make([]Term, len(args))
	changed := false
	for i, a := range args {
		newArgs[i] = s.Replace(a, from, to)
		if newArgs[i] != a {
			changed = true
		}
	}
	if !changed {
		return t
	}
	return s.App(s.Functor(t), newArgs...)
}
