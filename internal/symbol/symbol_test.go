package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternReturnsTheSameSymbolForRepeatedSightings(t *testing.T) {
	tab := NewTable()
	a := tab.Intern(Function, "f", 2)
	b := tab.Intern(Function, "f", 2)
	assert.Same(t, a, b)
	assert.Equal(t, 1, tab.NumFuncs())
}

func TestInternDistinguishesByKindNameAndArity(t *testing.T) {
	tab := NewTable()
	f1 := tab.Intern(Function, "p", 1)
	f2 := tab.Intern(Function, "p", 2)
	pred := tab.Intern(Predicate, "p", 1)

	assert.NotEqual(t, f1.ID, f2.ID)
	assert.Equal(t, ID(0), f1.ID)
	assert.Equal(t, ID(1), f2.ID)
	assert.Equal(t, ID(0), pred.ID, "predicate namespace has its own id sequence")
	assert.Equal(t, 1, tab.NumPreds())
	assert.Equal(t, 2, tab.NumFuncs())
}

func TestInternedSymbolsGetDefaultSortsAndWeight(t *testing.T) {
	tab := NewTable()
	s := tab.Intern(Function, "f", 3)
	require.Len(t, s.Args, 3)
	for _, a := range s.Args {
		assert.Equal(t, DefaultSort, a)
	}
	assert.Equal(t, DefaultSort, s.Result)
	assert.Equal(t, uint32(1), s.Weight)
}

func TestFuncAndPredLookupByID(t *testing.T) {
	tab := NewTable()
	f := tab.Intern(Function, "g", 1)
	p := tab.Intern(Predicate, "P", 2)

	assert.Same(t, f, tab.Func(f.ID))
	assert.Same(t, p, tab.Pred(p.ID))
}

func TestSortInterningIsStableAndSeedsTheDefaultSort(t *testing.T) {
	tab := NewTable()
	assert.Equal(t, DefaultSort, tab.Sort("$i"))

	a := tab.Sort("nat")
	b := tab.Sort("nat")
	c := tab.Sort("bool")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, DefaultSort, a)
}

func TestFlagsIsChecksABitIsSet(t *testing.T) {
	s := &Symbol{Flags: Introduced | ColorLeft}
	assert.True(t, s.Is(Introduced))
	assert.True(t, s.Is(ColorLeft))
	assert.False(t, s.Is(Interpreted))
	assert.False(t, s.Is(ColorRight))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "func", Function.String())
	assert.Equal(t, "pred", Predicate.String())
}

func TestSymbolStringIsNameSlashArity(t *testing.T) {
	tab := NewTable()
	s := tab.Intern(Function, "cons", 2)
	assert.Equal(t, "cons/2", s.String())
}

func TestFuncsAndPredsExposeInsertionOrder(t *testing.T) {
	tab := NewTable()
	f1 := tab.Intern(Function, "a", 0)
	f2 := tab.Intern(Function, "b", 0)
	require.Equal(t, []*Symbol{f1, f2}, tab.Funcs())
}
