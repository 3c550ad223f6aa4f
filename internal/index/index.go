// Package index implements the term/literal indexing layer: indexes that
// answer unification, generalization and instance queries over the terms
// and literals currently held by the clause containers.
//
// A substitution tree would be the textbook choice. This implementation uses a
// shallow discrimination index instead: terms are bucketed by their
// top-level symbol (or a wildcard bucket for bare variables), and within a
// bucket the real unification/matching relation is checked directly
// against each stored term. This is the same filter-then-verify shape a
// substitution tree gives — cheap pruning before the real (more
// expensive) relation check — just with one level of discrimination
// instead of a full recursive tree over the skeleton. The trade-off
// (less pruning depth, much simpler and easier to get right than a full
// substitution tree) is recorded in DESIGN.md. The external shape —
// single-pass lazy query sequences, named owning policies, event-driven
// maintenance — does not depend on which internal
// structure backs it, so an index can be swapped for a deeper tree later
// without touching a single call site in rules/container.
package index

import (
	"github.com/satprove/saturnfol/internal/subst"
	"github.com/satprove/saturnfol/internal/term"
)

// Ref is a back-reference stored in the index: which literal of which
// clause a term occurred in. Clause is an untyped clause.ID to avoid an
// import cycle between index and clause.
type Ref struct {
	Clause  uint32
	Literal term.Literal
	Term    term.Term
}

type bucketKey struct {
	wildcard bool
	fn       uint64
}

func keyOf(store *term.Store, tm term.Term) bucketKey {
	if store.IsVar(tm) {
		return bucketKey{wildcard: true}
	}
	return bucketKey{fn: uint64(store.Functor(tm))}
}

type entry struct {
	tm  term.Term
	ref Ref
}

// Tree is one discrimination index over terms (the name is kept aligned
// with the substitution-tree-backed indexes this stands in for, even
// though the implementation is the shallower bucketed structure
// described above).
type Tree struct {
	Store   *term.Store
	buckets map[bucketKey][]entry
	// wildcard-keyed entries are visited by every query regardless of the
	// query's own top symbol, since an indexed bare variable can bind to
	// anything.
	size int
}

func NewTree(store *term.Store) *Tree {
	return &Tree{Store: store, buckets: make(map[bucketKey][]entry, 16)}
}

func (t *Tree) Size() int { return t.size }

// Insert adds ref under key tm.
func (t *Tree) Insert(tm term.Term, ref Ref) {
	k := keyOf(t.Store, tm)
	t.buckets[k] = append(t.buckets[k], entry{tm: tm, ref: ref})
	t.size++
}

// Remove deletes every entry at key tm whose ref satisfies pred.
func (t *Tree) Remove(tm term.Term, pred func(Ref) bool) {
	k := keyOf(t.Store, tm)
	bs := t.buckets[k]
	out := bs[:0]
	for _, e := range bs {
		if pred(e.ref) {
			t.size--
			continue
		}
		out = append(out, e)
	}
	t.buckets[k] = out
}

// Result is one answer from a query, paired with the substitution that
// makes the relation hold.
type Result struct {
	Ref   Ref
	Subst *subst.Subst
}

// Seq is the single-pass lazy sequence query results come back as.
type Seq struct {
	items []Result
	i     int
}

func (s *Seq) Next() (Result, bool) {
	if s.i >= len(s.items) {
		return Result{}, false
	}
	r := s.items[s.i]
	s.i++
	return r, true
}

// Drain materializes every remaining result — used by backward
// simplification, which per the Design Notes must buffer results before
// mutating the very index it queried.
func (s *Seq) Drain() []Result {
	rest := s.items[s.i:]
	s.i = len(s.items)
	return rest
}

// candidates returns every entry that could possibly relate to query. A
// bare-variable query can relate to any entry, so it gets all of them;
// any other query gets its own top-symbol bucket plus the wildcard bucket.
func (t *Tree) candidates(query term.Term) []entry {
	k := keyOf(t.Store, query)
	if k.wildcard {
		return t.all()
	}
	return append(append([]entry{}, t.buckets[k]...), t.buckets[bucketKey{wildcard: true}]...)
}

// QueryUnify finds every indexed term that unifies with query.
func (t *Tree) QueryUnify(query term.Term) *Seq {
	var out []Result
	for _, e := range t.candidates(query) {
		if sg, ok := subst.Unify(t.Store, subst.New(), query, e.tm); ok {
			out = append(out, Result{Ref: e.ref, Subst: sg})
		}
	}
	return &Seq{items: out}
}

// QueryGeneralizations finds every indexed term t' such that query is an
// instance of t' (t' is a generalization of query). Every bucket must be
// visited: an indexed generalization may have a variable at the head, so
// it can live in the wildcard bucket even when query's head is a symbol.
func (t *Tree) QueryGeneralizations(query term.Term) *Seq {
	var out []Result
	for _, e := range t.all() {
		if sg, ok := subst.IsGeneralization(t.Store, e.tm, query); ok {
			out = append(out, Result{Ref: e.ref, Subst: sg})
		}
	}
	return &Seq{items: out}
}

// QueryInstances finds every indexed term t' that is an instance of
// query.
func (t *Tree) QueryInstances(query term.Term) *Seq {
	var out []Result
	for _, e := range t.candidates(query) {
		if sg, ok := subst.IsInstance(t.Store, query, e.tm); ok {
			out = append(out, Result{Ref: e.ref, Subst: sg})
		}
	}
	return &Seq{items: out}
}

func (t *Tree) all() []entry {
	var out []entry
	for _, bs := range t.buckets {
		out = append(out, bs...)
	}
	return out
}
