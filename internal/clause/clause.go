// Package clause implements the Clause value and a ClauseID-indexed arena
// that owns every clause created during a run. Using an arena of integer
// ids rather than owning pointers sidesteps ownership ambiguity: a clause's
// parents are prior ids, so the inference DAG can never cycle, and no
// reference counting is needed.
//
// Grounded on go-air-gini's flat CLoc-addressed clause database
// (go-air-gini/internal/xo: Cdb, CLoc) generalized from a packed literal
// array to a slice of term.Literal plus the richer per-clause bookkeeping
// (age/weight/selection/inference) a first-order saturation run requires.
package clause

import (
	"fmt"
	"sort"

	"github.com/satprove/saturnfol/internal/term"
)

// ID is a stable handle into an Arena. The zero ID is never valid.
type ID uint32

const Null ID = 0

// Store is the lifecycle tag of a clause.
type Store uint8

const (
	None Store = iota
	Unprocessed
	Passive
	Active
	Reactivated
)

func (s Store) String() string {
	switch s {
	case Unprocessed:
		return "unprocessed"
	case Passive:
		return "passive"
	case Active:
		return "active"
	case Reactivated:
		return "reactivated"
	default:
		return "none"
	}
}

// Rule names every inference the engine implements, generating or
// simplifying, for proof records and statistics.
type Rule string

const (
	RuleInput                Rule = "input"
	RuleSuperpositionFwd     Rule = "superposition-fwd"
	RuleSuperpositionBwd     Rule = "superposition-bwd"
	RuleResolution           Rule = "resolution"
	RuleFactoring            Rule = "factoring"
	RuleEqResolution         Rule = "eq-resolution"
	RuleEqFactoring          Rule = "eq-factoring"
	RuleDemodulationFwd      Rule = "demodulation-fwd"
	RuleDemodulationBwd      Rule = "demodulation-bwd"
	RuleSubsumptionFwd       Rule = "subsumption-fwd"
	RuleSubsumptionBwd       Rule = "subsumption-bwd"
	RuleSubsumptionResolution Rule = "subsumption-resolution"
	RuleTautologyDeletion    Rule = "tautology-deletion"
	RuleCondensation         Rule = "condensation"
)

// Inference records how a clause came to exist, for proof reconstruction
//.
type Inference struct {
	Rule    Rule
	Parents []ID
}

// Clause is an ordered, de-duplicated sequence of literals plus the
// bookkeeping fields a first-order clause needs.
type Clause struct {
	ID        ID
	Lits      []term.Literal
	Age       uint32
	Weight    uint32
	Selected  int // count of leading literals participating as selected
	StoreTag  Store
	Inference Inference
	SplitSet  []uint32 // AVATAR-style split labels; never populated in this build
	Activity  float64  // bumped each time this clause parents an inference, decayed periodically
	Redundant bool     // never set in this build; a lazily replaced clause is tagged StoreTag Reactivated instead
	FromGoal  bool     // true if this clause or any ancestor came from the negated conjecture
}

func (c *Clause) IsEmpty() bool { return len(c.Lits) == 0 }

func (c *Clause) String(lits *term.LitStore) string {
	if len(c.Lits) == 0 {
		return "[]"
	}
	out := ""
	for i, l := range c.Lits {
		if i > 0 {
			out += " | "
		}
		out += lits.String(l)
	}
	return out
}

// Arena owns every Clause created this run, indexed by ID.
type Arena struct {
	Lits    *term.LitStore
	clauses []*Clause
}

func NewArena(lits *term.LitStore) *Arena {
	return &Arena{Lits: lits, clauses: make([]*Clause, 1, 1024)} // id 0 reserved
}

// New creates and stores a clause from already-deduplicated, canonically
// ordered literals (see Canonicalize) with the given age, computing its
// Weight, and returns its ID.
func (a *Arena) New(lits []term.Literal, age uint32, inf Inference) ID {
	w := uint32(0)
	for _, l := range lits {
		w += a.Lits.Weight(l)
	}
	c := &Clause{
		Lits:      lits,
		Age:       age,
		Weight:    w,
		Selected:  0,
		StoreTag:  None,
		Inference: inf,
		Activity:  1,
	}
	a.clauses = append(a.clauses, c)
	c.ID = ID(len(a.clauses) - 1)
	return c.ID
}

func (a *Arena) Get(id ID) *Clause { return a.clauses[id] }

// BumpActivity raises id's Activity by amount, called once per inference
// step for every parent clause an inference rule consumed. Mirrors VSIDS
// bumping: clauses that keep feeding inferences stay near the front of a
// weight tie.
func (a *Arena) BumpActivity(id ID, amount float64) {
	a.clauses[id].Activity += amount
}

// DecayActivity multiplies every given clause's Activity by factor (in
// (0,1)), called periodically by the saturation loop so that bumps from
// long ago stop dominating fresh ties.
func (a *Arena) DecayActivity(ids []ID, factor float64) {
	for _, id := range ids {
		a.clauses[id].Activity *= factor
	}
}

// SetFromGoal marks id as tracing back to the negated conjecture, either
// because it was read from the conjecture directly (internal/cnfio) or
// because an inference derived it from a clause that does (see
// internal/rules.newChild, which ORs its parents' flags).
func (a *Arena) SetFromGoal(id ID, v bool) { a.clauses[id].FromGoal = v }

// Canonicalize de-duplicates and sorts literals into a canonical order so
// that clauses differing only in literal order or duplicate literals
// intern-compare equal in the Arena's eyes.
func Canonicalize(lits []term.Literal) []term.Literal {
	seen := make(map[term.Literal]bool, len(lits))
	out := make([]term.Literal, 0, len(lits))
	for _, l := range lits {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetStore transitions a clause's store tag. The lifecycle is monotone
//: None -> Unprocessed -> Passive -> Active -> {None,
// Reactivated}. Callers (the containers) are responsible for the actual
// container membership; this only records the tag so InvariantViolation
// checks have something to compare against.
func (a *Arena) SetStore(id ID, s Store) { a.clauses[id].StoreTag = s }

func (a *Arena) String(id ID) string {
	c := a.Get(id)
	return fmt.Sprintf("c%d{age=%d,w=%d,sel=%d,store=%s} %s", id, c.Age, c.Weight, c.Selected, c.StoreTag, c.String(a.Lits))
}
