package clause

import (
	"testing"

	"github.com/satprove/saturnfol/internal/symbol"
	"github.com/satprove/saturnfol/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() (*symbol.Table, *term.Store, *term.LitStore, *Arena) {
	syms := symbol.NewTable()
	ts := term.NewStore(syms)
	ls := term.NewLitStore(ts, syms)
	return syms, ts, ls, NewArena(ls)
}

func TestNewAssignsSequentialIDsAndComputesWeight(t *testing.T) {
	syms, _, ls, arena := fixture()
	p := syms.Intern(symbol.Predicate, "p", 0)
	l := ls.Atom(p.ID, true)

	id1 := arena.New([]term.Literal{l}, 0, Inference{Rule: RuleInput})
	id2 := arena.New([]term.Literal{l}, 0, Inference{Rule: RuleInput})
	require.NotEqual(t, Null, id1)
	assert.NotEqual(t, id1, id2)

	c := arena.Get(id1)
	assert.Equal(t, ls.Weight(l), c.Weight)
	assert.Equal(t, id1, c.ID)
}

func TestIsEmptyIsTrueOnlyForTheEmptyClause(t *testing.T) {
	syms, _, ls, arena := fixture()
	p := syms.Intern(symbol.Predicate, "p", 0)
	l := ls.Atom(p.ID, true)

	nonEmpty := arena.Get(arena.New([]term.Literal{l}, 0, Inference{Rule: RuleInput}))
	empty := arena.Get(arena.New(nil, 0, Inference{Rule: RuleResolution}))
	assert.False(t, nonEmpty.IsEmpty())
	assert.True(t, empty.IsEmpty())
}

func TestSetFromGoalAndSetStoreMutateTheStoredClause(t *testing.T) {
	syms, _, ls, arena := fixture()
	p := syms.Intern(symbol.Predicate, "p", 0)
	l := ls.Atom(p.ID, true)
	id := arena.New([]term.Literal{l}, 0, Inference{Rule: RuleInput})

	arena.SetFromGoal(id, true)
	arena.SetStore(id, Active)

	c := arena.Get(id)
	assert.True(t, c.FromGoal)
	assert.Equal(t, Active, c.StoreTag)
}

func TestCanonicalizeDeduplicatesAndSortsLiterals(t *testing.T) {
	syms, _, ls, _ := fixture()
	p := syms.Intern(symbol.Predicate, "p", 0)
	q := syms.Intern(symbol.Predicate, "q", 0)
	lp := ls.Atom(p.ID, true)
	lq := ls.Atom(q.ID, true)

	out := Canonicalize([]term.Literal{lq, lp, lp, lq})
	require.Len(t, out, 2)
	assert.True(t, out[0] < out[1], "canonical order is ascending by literal id")
}

func TestStoreStringCoversEveryTagIncludingUnknown(t *testing.T) {
	assert.Equal(t, "unprocessed", Unprocessed.String())
	assert.Equal(t, "passive", Passive.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "reactivated", Reactivated.String())
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "none", Store(255).String())
}

func TestClauseStringJoinsLiteralsWithBar(t *testing.T) {
	syms, _, ls, arena := fixture()
	p := syms.Intern(symbol.Predicate, "p", 0)
	q := syms.Intern(symbol.Predicate, "q", 0)
	lp := ls.Atom(p.ID, true)
	lq := ls.Atom(q.ID, false)
	id := arena.New(Canonicalize([]term.Literal{lp, lq}), 0, Inference{Rule: RuleInput})

	s := arena.Get(id).String(ls)
	assert.Contains(t, s, "|")
	assert.Contains(t, s, "p")
	assert.Contains(t, s, "~q")
}

func TestClauseStringOfAnEmptyClauseIsBrackets(t *testing.T) {
	_, _, ls, arena := fixture()
	id := arena.New(nil, 0, Inference{Rule: RuleResolution})
	assert.Equal(t, "[]", arena.Get(id).String(ls))
}

func TestNewInitializesActivityToABaseline(t *testing.T) {
	syms, _, ls, arena := fixture()
	p := syms.Intern(symbol.Predicate, "p", 0)
	l := ls.Atom(p.ID, true)
	id := arena.New([]term.Literal{l}, 0, Inference{Rule: RuleInput})
	assert.Equal(t, float64(1), arena.Get(id).Activity)
}

func TestBumpActivityAccumulatesAcrossMultipleCalls(t *testing.T) {
	syms, _, ls, arena := fixture()
	p := syms.Intern(symbol.Predicate, "p", 0)
	l := ls.Atom(p.ID, true)
	id := arena.New([]term.Literal{l}, 0, Inference{Rule: RuleInput})

	arena.BumpActivity(id, 1)
	arena.BumpActivity(id, 2)
	assert.Equal(t, float64(4), arena.Get(id).Activity)
}

func TestDecayActivityScalesOnlyTheGivenIDsAndLeavesOthersUntouched(t *testing.T) {
	syms, _, ls, arena := fixture()
	p := syms.Intern(symbol.Predicate, "p", 0)
	l := ls.Atom(p.ID, true)
	a := arena.New([]term.Literal{l}, 0, Inference{Rule: RuleInput})
	b := arena.New([]term.Literal{l}, 0, Inference{Rule: RuleInput})
	arena.BumpActivity(a, 1) // a.Activity == 2
	arena.BumpActivity(b, 1) // b.Activity == 2

	arena.DecayActivity([]ID{a}, 0.5)
	assert.Equal(t, float64(1), arena.Get(a).Activity)
	assert.Equal(t, float64(2), arena.Get(b).Activity)
}

func TestArenaStringIncludesBookkeepingFields(t *testing.T) {
	syms, _, ls, arena := fixture()
	p := syms.Intern(symbol.Predicate, "p", 0)
	l := ls.Atom(p.ID, true)
	id := arena.New([]term.Literal{l}, 3, Inference{Rule: RuleInput})
	arena.SetStore(id, Passive)

	s := arena.String(id)
	assert.Contains(t, s, "age=3")
	assert.Contains(t, s, "store=passive")
}
