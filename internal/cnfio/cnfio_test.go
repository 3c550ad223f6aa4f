package cnfio

import (
	"strings"
	"testing"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/symbol"
	"github.com/satprove/saturnfol/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReader() (*Reader, *clause.Arena) {
	syms := symbol.NewTable()
	ts := term.NewStore(syms)
	lits := term.NewLitStore(ts, syms)
	arena := clause.NewArena(lits)
	return NewReader(ts, lits, syms), arena
}

func TestReadClausesParsesPlainPredicateClause(t *testing.T) {
	rd, arena := newReader()
	ids, err := rd.ReadClauses(strings.NewReader("p(a) -q(X,a) 0\n"), arena)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	c := arena.Get(ids[0])
	assert.Len(t, c.Lits, 2)
	assert.False(t, c.FromGoal)
	assert.Equal(t, clause.RuleInput, c.Inference.Rule)
}

func TestReadClausesMarksGoalClauses(t *testing.T) {
	rd, arena := newReader()
	ids, err := rd.ReadClauses(strings.NewReader("g -p(a) 0\n"), arena)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.True(t, arena.Get(ids[0]).FromGoal)
}

func TestReadClausesSkipsBlankAndCommentLines(t *testing.T) {
	rd, arena := newReader()
	ids, err := rd.ReadClauses(strings.NewReader("c this is a comment\n\np(a) 0\n"), arena)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestReadClausesParsesEquality(t *testing.T) {
	rd, arena := newReader()
	ids, err := rd.ReadClauses(strings.NewReader("f(X)=a -g(X)=b 0\n"), arena)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	c := arena.Get(ids[0])
	require.Len(t, c.Lits, 2)
	eqCount := 0
	for _, l := range c.Lits {
		if arena.Lits.IsEquality(l) {
			eqCount++
		}
	}
	assert.Equal(t, 2, eqCount)
}

func TestReadClausesGivesEachLineFreshVariables(t *testing.T) {
	rd, arena := newReader()
	ids, err := rd.ReadClauses(strings.NewReader("p(X) 0\nq(X) 0\n"), arena)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	c1 := arena.Get(ids[0])
	c2 := arena.Get(ids[1])
	v1 := rd.Terms.AsVar(rd.Lits.Args(c1.Lits[0])[0])
	v2 := rd.Terms.AsVar(rd.Lits.Args(c2.Lits[0])[0])
	assert.NotEqual(t, v1, v2)
}

func TestReadClausesSameVariableWithinALineSharesAnId(t *testing.T) {
	rd, arena := newReader()
	ids, err := rd.ReadClauses(strings.NewReader("p(X,X) 0\n"), arena)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	c := arena.Get(ids[0])
	args := rd.Lits.Args(c.Lits[0])
	assert.Equal(t, args[0], args[1])
}

func TestReadClausesRejectsMissingTerminator(t *testing.T) {
	rd, arena := newReader()
	_, err := rd.ReadClauses(strings.NewReader("p(a)\n"), arena)
	assert.Error(t, err)
}

func TestReadClausesRejectsUnbalancedParentheses(t *testing.T) {
	rd, arena := newReader()
	_, err := rd.ReadClauses(strings.NewReader("p(a 0\n"), arena)
	assert.Error(t, err)
}
