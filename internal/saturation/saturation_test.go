package saturation

import (
	"context"
	"testing"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/event"
	"github.com/satprove/saturnfol/internal/index"
	"github.com/satprove/saturnfol/internal/limits"
	"github.com/satprove/saturnfol/internal/options"
	"github.com/satprove/saturnfol/internal/order"
	"github.com/satprove/saturnfol/internal/rules"
	"github.com/satprove/saturnfol/internal/stats"
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
	eng   *rules.Engine
	bus   *event.Bus
	st    *stats.Stats
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
	st := stats.New(nil)
	eng := rules.New(arena, lits, ts, kbo, idx, clause.SelectAll, st)
	return &fixture{syms: syms, ts: ts, lits: lits, kbo: kbo, idx: idx, arena: arena, eng: eng, bus: event.New(), st: st}
}

func (f *fixture) fn(name string, args ...term.Term) term.Term {
	s := f.syms.Intern(symbol.Function, name, len(args))
	return f.ts.App(s.ID, args...)
}

func (f *fixture) pred(name string, positive bool, args ...term.Term) term.Literal {
	p := f.syms.Intern(symbol.Predicate, name, len(args))
	return f.lits.Atom(p.ID, positive, args...)
}

func (f *fixture) input(lits ...term.Literal) clause.ID {
	return f.arena.New(clause.Canonicalize(lits), 0, clause.Inference{Rule: clause.RuleInput})
}

func TestRunFindsRefutationFromUnitContradiction(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	p1 := f.input(f.pred("P", true, a))
	p2 := f.input(f.pred("P", false, a))

	l := New(options.Default(), f.eng, f.bus, f.st, nil, nil, nil)
	res := l.Run(context.Background(), []clause.ID{p1, p2})

	require.Equal(t, Refutation, res.Reason)
	assert.True(t, f.arena.Get(res.Empty).IsEmpty())
}

func TestRunReportsRefutationNotFoundWhenClausesShareNoPredicate(t *testing.T) {
	f := newFixture()
	a, b := f.fn("a"), f.fn("b")
	p := f.input(f.pred("P", true, a))
	q := f.input(f.pred("Q", true, b))

	opts := options.Default()
	opts.Complete = false
	l := New(opts, f.eng, f.bus, f.st, nil, nil, nil)
	res := l.Run(context.Background(), []clause.ID{p, q})

	assert.Equal(t, RefutationNotFound, res.Reason)
}

func TestRunReportsSatisfiableWhenCompleteAndClausesShareNoPredicate(t *testing.T) {
	f := newFixture()
	a, b := f.fn("a"), f.fn("b")
	p := f.input(f.pred("P", true, a))
	q := f.input(f.pred("Q", true, b))

	opts := options.Default()
	opts.Complete = true
	l := New(opts, f.eng, f.bus, f.st, nil, nil, nil)
	res := l.Run(context.Background(), []clause.ID{p, q})

	assert.Equal(t, Satisfiable, res.Reason)
}

func (f *fixture) eq(positive bool, lhs, rhs term.Term) term.Literal {
	return f.lits.Equality(positive, lhs, rhs, f.kbo.Cmp)
}

func TestBackwardSimplifyLazilyDeactivatesARewrittenClauseInsteadOfRemovingIt(t *testing.T) {
	f := newFixture("a", "b")
	a, b := f.fn("a"), f.fn("b")
	l := New(options.Default(), f.eng, f.bus, f.st, nil, nil, nil)

	target := f.input(f.pred("P", true, a)) // P(a), rewritten once a=b is given
	f.eng.Select(f.eng.Lits, f.eng.KBO, f.arena.Get(target))
	l.Active.Add(target)

	given := f.input(f.eq(true, a, b)) // a = b: backward-rewrites P(a) to P(b)
	g := f.arena.Get(given)
	f.eng.Select(f.eng.Lits, f.eng.KBO, g)

	l.backwardSimplify(g)

	assert.Equal(t, clause.Reactivated, f.arena.Get(target).StoreTag,
		"a clause replaced by a rewritten instance is lazily retracted, not physically removed")
	assert.False(t, l.Active.Contains(target))
}

func TestRunDiscardsOverweightClausesUnderATightenedLRSLimit(t *testing.T) {
	f := newFixture()
	a := f.fn("a")
	heavy := f.input(f.pred("P", true, a)) // weight 2: predicate(1) + a(1)

	opts := options.Default()
	opts.Complete = false
	opts.SaturationAlgorithm = options.LRS
	l := New(opts, f.eng, f.bus, f.st, nil, nil, nil)
	require.NotNil(t, l.tracker)
	l.tracker.Tighten(limits.Estimate{Age: 0, Weight: 1})

	res := l.Run(context.Background(), []clause.ID{heavy})

	assert.Equal(t, RefutationNotFound, res.Reason)
	assert.Equal(t, int64(1), f.st.Discards.LRSAdmission)
}
