package clause

import (
	"github.com/satprove/saturnfol/internal/order"
	"github.com/satprove/saturnfol/internal/term"
)

// SelectionFunc assigns the Selected prefix count of c in place, by
// permuting c.Lits so the selected literals are a leading prefix (a
// selection function always returns a non-empty prefix).
type SelectionFunc func(lits *term.LitStore, kbo *order.KBO, c *Clause)

// Table is the fixed list of selection functions the `selection` option
// indexes into. Index 0 is "select everything" (total
// selection), matching go-air-gini's small fixed-enum option constants.
var Table = []SelectionFunc{
	SelectAll,
	SelectMaximalNegative,
	SelectStrictlyMaximal,
}

// SelectAll selects every literal — the simplest admissible policy.
func SelectAll(lits *term.LitStore, kbo *order.KBO, c *Clause) {
	moveSelectedFront(lits, kbo, c, func(term.Literal) bool { return true })
	c.Selected = len(c.Lits)
}

// SelectMaximalNegative selects a single maximal negative literal if one
// exists, otherwise falls back to SelectStrictlyMaximal — the two
// admissible shapes a selection scheme needs to support.
func SelectMaximalNegative(lits *term.LitStore, kbo *order.KBO, c *Clause) {
	best := -1
	for i, l := range c.Lits {
		if lits.Positive(l) {
			continue
		}
		if best == -1 || kbo.CompareLiterals(lits, l, c.Lits[best]) == order.Greater {
			best = i
		}
	}
	if best == -1 {
		SelectStrictlyMaximal(lits, kbo, c)
		return
	}
	c.Lits[0], c.Lits[best] = c.Lits[best], c.Lits[0]
	c.Selected = 1
}

// SelectStrictlyMaximal selects every literal that is strictly maximal
// under the clause ordering (no other literal in the clause is >= it) —
// the default admissible shape when no maximal negative literal exists.
func SelectStrictlyMaximal(lits *term.LitStore, kbo *order.KBO, c *Clause) {
	isMax := make([]bool, len(c.Lits))
	for i, li := range c.Lits {
		isMax[i] = true
		for j, lj := range c.Lits {
			if i == j {
				continue
			}
			r := kbo.CompareLiterals(lits, lj, li)
			if r == order.Greater || (r == order.Equal && j < i) {
				isMax[i] = false
				break
			}
		}
	}
	moveSelectedFront(lits, kbo, c, func(l term.Literal) bool {
		for i, li := range c.Lits {
			if li == l {
				return isMax[i]
			}
		}
		return false
	})
	n := 0
	for _, ok := range isMax {
		if ok {
			n++
		}
	}
	if n == 0 {
		n = 1
	}
	c.Selected = n
}

func moveSelectedFront(lits *term.LitStore, kbo *order.KBO, c *Clause, pred func(term.Literal) bool) {
	sel := make([]term.Literal, 0, len(c.Lits))
	rest := make([]term.Literal, 0, len(c.Lits))
	for _, l := range c.Lits {
		if pred(l) {
			sel = append(sel, l)
		} else {
			rest = append(rest, l)
		}
	}
	c.Lits = append(sel, rest...)
}

// SelectedLits returns the selected prefix of c.
func SelectedLits(c *Clause) []term.Literal { return c.Lits[:c.Selected] }
