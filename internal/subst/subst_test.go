package subst

import (
	"testing"

	"github.com/satprove/saturnfol/internal/symbol"
	"github.com/satprove/saturnfol/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() (*symbol.Table, *term.Store) {
	syms := symbol.NewTable()
	return syms, term.NewStore(syms)
}

func TestBindAndLookupRoundTrip(t *testing.T) {
	s := New()
	syms, ts := fixture()
	v := ts.FreshVar()
	tm := ts.App(syms.Intern(symbol.Function, "a", 0).ID)

	_, ok := s.Lookup(v)
	assert.False(t, ok)

	s.Bind(v, tm)
	got, ok := s.Lookup(v)
	require.True(t, ok)
	assert.Equal(t, tm, got)
	assert.Equal(t, 1, s.Len())
}

func TestCloneIsIndependentOfTheOriginal(t *testing.T) {
	_, ts := fixture()
	s := New()
	v := ts.FreshVar()
	s.Bind(v, ts.Variable(ts.FreshVar()))

	c := s.Clone()
	other := ts.FreshVar()
	c.Bind(other, ts.Variable(ts.FreshVar()))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len())
}

func TestApplySubstitutesBoundVariablesHereditarily(t *testing.T) {
	syms, ts := fixture()
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	f := syms.Intern(symbol.Function, "f", 1)
	x := ts.FreshVar()
	y := ts.FreshVar()

	sigma := New()
	sigma.Bind(x, ts.Variable(y))
	sigma.Bind(y, a)

	term1 := ts.App(f.ID, ts.Variable(x))
	result := Apply(ts, sigma, term1)
	assert.Equal(t, ts.App(f.ID, a), result)
}

func TestApplyLeavesUnboundVariablesUntouched(t *testing.T) {
	_, ts := fixture()
	x := ts.FreshVar()
	xt := ts.Variable(x)
	sigma := New()
	assert.Equal(t, xt, Apply(ts, sigma, xt))
}

func TestUnifyOccursCheckRejectsACyclicBinding(t *testing.T) {
	syms, ts := fixture()
	f := syms.Intern(symbol.Function, "f", 1)
	x := ts.FreshVar()
	xt := ts.Variable(x)
	fx := ts.App(f.ID, xt)

	_, ok := Unify(ts, New(), xt, fx)
	assert.False(t, ok)
}

func TestUnifyBindsAVariableToAConstant(t *testing.T) {
	syms, ts := fixture()
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	x := ts.FreshVar()
	xt := ts.Variable(x)

	sigma, ok := Unify(ts, New(), xt, a)
	require.True(t, ok)
	bound, ok := sigma.Lookup(x)
	require.True(t, ok)
	assert.Equal(t, a, bound)
}

func TestUnifyFailsOnAClashingFunctor(t *testing.T) {
	syms, ts := fixture()
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	b := ts.App(syms.Intern(symbol.Function, "b", 0).ID)

	_, ok := Unify(ts, New(), a, b)
	assert.False(t, ok)
}

func TestUnifyOfStructurallyEqualTermsSucceedsWithNoNewBindings(t *testing.T) {
	syms, ts := fixture()
	f := syms.Intern(symbol.Function, "f", 1)
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	fa := ts.App(f.ID, a)

	sigma, ok := Unify(ts, New(), fa, fa)
	require.True(t, ok)
	assert.Equal(t, 0, sigma.Len())
}

func TestUnifyPropagatesABindingThroughSharedStructure(t *testing.T) {
	syms, ts := fixture()
	f := syms.Intern(symbol.Function, "f", 2)
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	x := ts.FreshVar()
	xt := ts.Variable(x)

	// f(x, x) unified with f(a, a) must bind x to a once and reuse it.
	lhs := ts.App(f.ID, xt, xt)
	rhs := ts.App(f.ID, a, a)

	sigma, ok := Unify(ts, New(), lhs, rhs)
	require.True(t, ok)
	bound, ok := sigma.Lookup(x)
	require.True(t, ok)
	assert.Equal(t, a, bound)
}

func TestUnifyPropagatesABindingThroughSharedStructureWithAMismatch(t *testing.T) {
	syms, ts := fixture()
	f := syms.Intern(symbol.Function, "f", 2)
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	b := ts.App(syms.Intern(symbol.Function, "b", 0).ID)
	x := ts.FreshVar()
	xt := ts.Variable(x)

	lhs := ts.App(f.ID, xt, xt)
	rhs := ts.App(f.ID, a, b)

	_, ok := Unify(ts, New(), lhs, rhs)
	assert.False(t, ok, "x cannot be both a and b")
}

func TestIsGeneralizationAcceptsAVariablePatternOverAGroundInstance(t *testing.T) {
	syms, ts := fixture()
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	x := ts.FreshVar()
	xt := ts.Variable(x)

	sigma, ok := IsGeneralization(ts, xt, a)
	require.True(t, ok)
	bound, ok := sigma.Lookup(x)
	require.True(t, ok)
	assert.Equal(t, a, bound)
}

func TestIsGeneralizationRejectsWhenInstanceHasAVariableWherePatternIsGround(t *testing.T) {
	syms, ts := fixture()
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	x := ts.FreshVar()
	xt := ts.Variable(x)

	_, ok := IsGeneralization(ts, a, xt)
	assert.False(t, ok, "a ground pattern cannot generalize a variable instance")
}

func TestIsGeneralizationRejectsInconsistentRepeatedVariableBindings(t *testing.T) {
	syms, ts := fixture()
	f := syms.Intern(symbol.Function, "f", 2)
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	b := ts.App(syms.Intern(symbol.Function, "b", 0).ID)
	x := ts.FreshVar()
	xt := ts.Variable(x)

	pattern := ts.App(f.ID, xt, xt)
	instance := ts.App(f.ID, a, b)

	_, ok := IsGeneralization(ts, pattern, instance)
	assert.False(t, ok)
}

func TestIsInstanceIsTheSameRelationAsIsGeneralization(t *testing.T) {
	syms, ts := fixture()
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	x := ts.FreshVar()
	xt := ts.Variable(x)

	_, generalizes := IsGeneralization(ts, xt, a)
	_, isInstance := IsInstance(ts, xt, a)
	assert.Equal(t, generalizes, isInstance)
}

func TestRenameProducesFreshVariablesAndReusesThemForRepeatedOccurrences(t *testing.T) {
	syms, ts := fixture()
	f := syms.Intern(symbol.Function, "f", 2)
	x := ts.FreshVar()
	xt := ts.Variable(x)
	original := ts.App(f.ID, xt, xt)

	sigma := New()
	renamedTerm := Rename(ts, sigma, original)
	require.NotEqual(t, original, renamedTerm)

	args := ts.Args(renamedTerm)
	assert.True(t, ts.IsVar(args[0]))
	assert.Equal(t, args[0], args[1], "both occurrences of x rename to the same fresh variable")
	assert.NotEqual(t, xt, args[0])
}

func TestRenameLeavesGroundTermsUnchanged(t *testing.T) {
	syms, ts := fixture()
	a := ts.App(syms.Intern(symbol.Function, "a", 0).ID)
	renamed := Rename(ts, New(), a)
	assert.Equal(t, a, renamed)
}
