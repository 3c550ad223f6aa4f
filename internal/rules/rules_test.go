package rules

import (
	"testing"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/index"
	"github.com/satprove/saturnfol/internal/order"
	"github.com/satprove/saturnfol/internal/symbol"
	"github.com/satprove/saturnfol/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	syms  *symbol.Table
	ts    *term.Store
	lits  *term.LitStore
	kbo   *order.KBO
	idx   *index.Set
	arena *clause.Arena
	eng   *Engine
}

func newFixture(precedence ...string) *fixture {
	syms := symbol.NewTable()
	ts := term.NewStore(syms)
	lits := term.NewLitStore(ts, syms)
	var ids []symbol.ID
	for _, name := range precedence {
		// A precedence name may be used as a constant or as a unary
		// function symbol, so both arities are listed, side by side.
		ids = append(ids, syms.Intern(symbol.Function, name, 0).ID, syms.Intern(symbol.Function, name, 1).ID)
	}
	kbo := order.New(ts, ids)
	idx := index.NewSet(lits, kbo)
	arena := clause.NewArena(lits)
	eng := New(arena, lits, ts, kbo, idx, clause.SelectAll, nil)
	return &fixture{syms: syms, ts: ts, lits: lits, kbo: kbo, idx: idx, arena: arena, eng: eng}
}

// activate mirrors what internal/saturation will do: add to the arena,
// select, then feed the index set the Added event.
func (f *fixture) activate(lits []term.Literal) *clause.Clause {
	id := f.arena.New(clause.Canonicalize(lits), 0, clause.Inference{Rule: clause.RuleInput})
	c := f.arena.Get(id)
	f.eng.Select(f.lits, f.kbo, c)
	f.arena.SetStore(id, clause.Active)
	f.idx.OnAdded(c)
	return c
}

func (f *fixture) fn(name string, args ...term.Term) term.Term {
	s := f.syms.Intern(symbol.Function, name, len(args))
	return f.ts.App(s.ID, args...)
}

func (f *fixture) v() term.Term {
	return f.ts.Variable(f.ts.FreshVar())
}

func (f *fixture) pred(name string, positive bool, args ...term.Term) term.Literal {
	p := f.syms.Intern(symbol.Predicate, name, len(args))
	return f.lits.Atom(p.ID, positive, args...)
}

func (f *fixture) eq(positive bool, lhs, rhs term.Term) term.Literal {
	return f.lits.Equality(positive, lhs, rhs, f.kbo.Cmp)
}

func TestResolutionProducesEmptyClauseFromComplementaryUnitClauses(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	p := f.activate([]term.Literal{f.pred("P", true, a)})
	f.activate([]term.Literal{f.pred("P", false, a)})

	out := f.eng.Generate(p)
	require.NotEmpty(t, out)
	found := false
	for _, id := range out {
		if f.arena.Get(id).IsEmpty() {
			found = true
		}
	}
	assert.True(t, found, "resolving P(a) against ~P(a) should yield the empty clause")
}

func TestFactoringMergesTwoUnifiableLiteralsOfTheSameClause(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	x := f.v()
	// P(a) | P(X): factoring should unify X with a and drop the duplicate.
	c := f.activate([]term.Literal{f.pred("P", true, a), f.pred("P", true, x)})

	out := f.eng.Generate(c)
	require.NotEmpty(t, out)
	seen := false
	for _, id := range out {
		child := f.arena.Get(id)
		if len(child.Lits) == 1 {
			seen = true
		}
	}
	assert.True(t, seen, "factoring P(a)|P(X) should yield a single-literal clause")
}

func TestEqResolutionRemovesUnifiableDisequality(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	x := f.v()
	// a != X | P(X): unifying a and X should leave just P(a).
	c := f.activate([]term.Literal{f.eq(false, a, x), f.pred("P", true, x)})

	out := f.eng.eqResolution(c)
	require.Len(t, out, 1)
	child := f.arena.Get(out[0])
	require.Len(t, child.Lits, 1)
	assert.True(t, f.lits.Positive(child.Lits[0]))
}

func TestSuperpositionRewritesIntoClauseUsingOrientedEquation(t *testing.T) {
	f := newFixture("f", "g", "a")
	a := f.fn("a")
	gA := f.fn("g", a)
	fGA := f.fn("f", gA)
	fA := f.fn("f", a)

	// g(a) = a, from which Active; P(f(g(a))), into which Active.
	from := f.activate([]term.Literal{f.eq(true, gA, a)})
	into := f.activate([]term.Literal{f.pred("P", true, fGA)})

	out := f.eng.Generate(from)
	out = append(out, f.eng.Generate(into)...)
	require.NotEmpty(t, out)

	found := false
	for _, id := range out {
		child := f.arena.Get(id)
		for _, l := range child.Lits {
			args := f.lits.Args(l)
			if len(args) == 1 && args[0] == fA {
				found = true
			}
		}
	}
	assert.True(t, found, "superposition should rewrite f(g(a)) to f(a) using g(a)=a")
}

func TestIsTautologyDetectsComplementaryLiterals(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	c := f.activate([]term.Literal{f.pred("P", true, a), f.pred("P", false, a)})
	assert.True(t, f.eng.IsTautology(c))
}

func TestIsTautologyDetectsReflexiveEquality(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	c := f.activate([]term.Literal{f.eq(true, a, a)})
	assert.True(t, f.eng.IsTautology(c))
}

func TestIsTautologyAcceptsNonTautologousClause(t *testing.T) {
	f := newFixture()
	a, b := f.fn("a"), f.fn("b")
	c := f.activate([]term.Literal{f.pred("P", true, a), f.pred("Q", false, b)})
	assert.False(t, f.eng.IsTautology(c))
}

func TestForwardDemodulateRewritesUsingUnitEquation(t *testing.T) {
	f := newFixture("f", "a", "b")
	a, b := f.fn("a"), f.fn("b")
	fA := f.fn("f", a)

	f.activate([]term.Literal{f.eq(true, a, b)})
	target := f.activate([]term.Literal{f.pred("P", true, fA)})

	rewritten, changed := f.eng.ForwardDemodulate(target)
	require.True(t, changed)
	child := f.arena.Get(rewritten)
	fB := f.fn("f", b)
	require.Len(t, child.Lits, 1)
	assert.Equal(t, []term.Term{fB}, f.lits.Args(child.Lits[0]))
}

func TestForwardDemodulateLeavesClauseUnchangedWithoutAMatchingEquation(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	c := f.activate([]term.Literal{f.pred("P", true, a)})
	_, changed := f.eng.ForwardDemodulate(c)
	assert.False(t, changed)
}

func TestBackwardDemodulateRewritesAMatchingActiveClause(t *testing.T) {
	f := newFixture("a", "b")
	a, b := f.fn("a"), f.fn("b")
	target := f.activate([]term.Literal{f.pred("P", true, a)})
	given := f.activate([]term.Literal{f.eq(true, a, b)})

	out := f.eng.BackwardDemodulate(given)
	require.Len(t, out, 1)
	assert.Equal(t, target.ID, out[0].Old)
	rewritten := f.arena.Get(out[0].New)
	assert.Equal(t, []term.Term{b}, f.lits.Args(rewritten.Lits[0]))
}

func TestBackwardDemodulateSkipsALazilyDeactivatedClause(t *testing.T) {
	f := newFixture("a", "b")
	a, b := f.fn("a"), f.fn("b")
	target := f.activate([]term.Literal{f.pred("P", true, a)})
	f.arena.SetStore(target.ID, clause.Reactivated) // lazily retracted, index entries still present
	given := f.activate([]term.Literal{f.eq(true, a, b)})

	out := f.eng.BackwardDemodulate(given)
	assert.Empty(t, out, "a deactivated clause must not be rewritten even though its index entries remain")
}

func TestBackwardSubsumedSkipsALazilyDeactivatedClause(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	x := f.v()
	specific := f.activate([]term.Literal{f.pred("P", true, a), f.pred("Q", true, a)})
	f.arena.SetStore(specific.ID, clause.Reactivated)
	general := f.activate([]term.Literal{f.pred("P", true, x)})

	out := f.eng.BackwardSubsumed(general)
	assert.Empty(t, out, "a deactivated clause must not be reported as backward-subsumed")
}

func TestForwardSubsumedFindsMoreGeneralActiveClause(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	x := f.v()
	f.activate([]term.Literal{f.pred("P", true, x)})
	specific := f.activate([]term.Literal{f.pred("P", true, a), f.pred("Q", true, a)})

	_, subsumed := f.eng.ForwardSubsumed(specific)
	assert.True(t, subsumed)
}

func TestForwardSubsumedRejectsUnrelatedClause(t *testing.T) {
	f := newFixture()
	a, b := f.fn("a"), f.fn("b")
	f.activate([]term.Literal{f.pred("P", true, a)})
	other := f.activate([]term.Literal{f.pred("Q", true, b)})

	_, subsumed := f.eng.ForwardSubsumed(other)
	assert.False(t, subsumed)
}

func TestCondenseDropsMatchingInstanceLiteral(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	x := f.v()
	// P(a) | P(X): X -> a condenses this to the single literal P(a).
	c := f.activate([]term.Literal{f.pred("P", true, a), f.pred("P", true, x)})

	condensed, ok := f.eng.Condense(c)
	require.True(t, ok)
	assert.Len(t, f.arena.Get(condensed).Lits, 1)
}
