// Package event implements the small pub-sub bus that keeps the term and
// literal indexes (internal/index) in sync with the Active container
// without either package importing the other directly.
//
// Grounded on the occurrence-list pattern in go-air-gini's clause
// database (internal/xo: Active.Occs, a slice of subscriber-owned
// back-references kept current as clauses come and go) generalized from
// one fixed subscriber (the occurrence list itself) to an arbitrary,
// registerable set.
package event

import "github.com/satprove/saturnfol/internal/clause"

// Kind distinguishes the three lifecycle events a clause container fires.
type Kind uint8

const (
	Added Kind = iota
	Removed
	// Selected marks a clause popped out of a queue (Unprocessed.Pop,
	// Passive.PopSelected) rather than inserted or deleted — distinct
	// from Active's own Added/Removed.
	Selected
)

// LimitsChanged fires whenever the LRS limit estimate tightens or
// loosens; Age and Weight are the new bounds, Tightened is
// false the one time limits loosen back open (e.g. a fresh empty-clause
// search restarting the estimate).
type LimitsChanged struct {
	Age       uint32
	Weight    uint32
	Tightened bool
}

// Bus is a single-threaded, synchronous event bus. Handlers run inline on
// the firing goroutine (the saturation loop is single-threaded with no
// internal concurrency), in subscription order. A handler added or removed while a fire is
// in progress takes effect starting with the next Fire* call, never the
// one in progress — firing snapshots its subscriber list first.
type Bus struct {
	clauseSubs []func(Kind, *clause.Clause)
	limitSubs  []func(LimitsChanged)
}

func New() *Bus { return &Bus{} }

// SubscribeClause registers fn to be called on every subsequent
// FireClause. The saturation loop's index maintenance subscribes here;
// the Active container's self-pruning check uses SubscribeLimits instead.
func (b *Bus) SubscribeClause(fn func(Kind, *clause.Clause)) {
	b.clauseSubs = append(b.clauseSubs, fn)
}

// SubscribeLimits registers fn to be called on every subsequent
// FireLimits. Only the LRS Passive container and the Active
// self-pruning check subscribe here.
func (b *Bus) SubscribeLimits(fn func(LimitsChanged)) {
	b.limitSubs = append(b.limitSubs, fn)
}

func (b *Bus) FireClause(k Kind, c *clause.Clause) {
	subs := b.clauseSubs
	for _, fn := range subs {
		fn(k, c)
	}
}

func (b *Bus) FireLimits(ev LimitsChanged) {
	subs := b.limitSubs
	for _, fn := range subs {
		fn(ev)
	}
}
