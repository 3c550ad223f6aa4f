// Package subst implements substitutions and the three term relations the
// indexing layer needs to answer: unification, generalization ("t is an
// instance of t'") and instance ("t' is an instance of t"). Substitutions
// are applied hereditarily through the term store's hash-consing so two
// structurally equal results always collapse to one Term id.
package subst

import "github.com/satprove/saturnfol/internal/term"

// Subst is a mapping from variables to terms. New returns the empty
// substitution; the zero value has no map, so Bind on it panics.
type Subst struct {
	m map[term.Var]term.Term
}

func New() *Subst { return &Subst{m: make(map[term.Var]term.Term, 8)} }

func (s *Subst) Bind(v term.Var, t term.Term) { s.m[v] = t }

func (s *Subst) Lookup(v term.Var) (term.Term, bool) {
	t, ok := s.m[v]
	return t, ok
}

func (s *Subst) Len() int { return len(s.m) }

// Clone returns an independent copy, used when a caller needs to try a
// binding speculatively (e.g. literal matching in internal/rules and
// internal/proof) and roll back on failure.
func (s *Subst) Clone() *Subst {
	c := &Subst{m: make(map[term.Var]term.Term, len(s.m))}
	for k, v := range s.m {
		c.m[k] = v
	}
	return c
}

// Apply interns sigma(t) hereditarily in store. A variable not bound by
// sigma is left as itself.
func Apply(store *term.Store, sigma *Subst, t term.Term) term.Term {
	if store.IsVar(t) {
		if bound, ok := sigma.Lookup(store.AsVar(t)); ok {
			// Bindings may themselves mention variables bound further on
			// (chained during unification), so resolve to a fixpoint.
			return Apply(store, sigma, bound)
		}
		return t
	}
	args := store.Args(t)
	if len(args) == 0 {
		return t
	}
	newArgs := make([]term.Term, len(args))
	changed := false
	for i, a := range args {
		newArgs[i] = Apply(store, sigma, a)
		if newArgs[i] != a {
			changed = true
		}
	}
	if !changed {
		return t
	}
	return store.App(store.Functor(t), newArgs...)
}

// Walk resolves t through sigma one hop at a time without re-interning,
// used internally by Unify to avoid allocating while chasing bindings.
func Walk(store *term.Store, sigma *Subst, t term.Term) term.Term {
	for store.IsVar(t) {
		bound, ok := sigma.Lookup(store.AsVar(t))
		if !ok {
			return t
		}
		t = bound
	}
	return t
}

// Unify attempts to unify s and t under sigma (extended, not copied on
// success; callers that need to backtrack should Clone sigma first). It
// returns the extended substitution and true on success.
func Unify(store *term.Store, sigma *Subst, s, t term.Term) (*Subst, bool) {
	s = Walk(store, sigma, s)
	t = Walk(store, sigma, t)
	if s == t {
		return sigma, true
	}
	sVar, tVar := store.IsVar(s), store.IsVar(t)
	switch {
	case sVar && tVar:
		if store.AsVar(s) == store.AsVar(t) {
			return sigma, true
		}
		sigma.Bind(store.AsVar(s), t)
		return sigma, true
	case sVar:
		if occurs(store, sigma, store.AsVar(s), t) {
			return sigma, false
		}
		sigma.Bind(store.AsVar(s), t)
		return sigma, true
	case tVar:
		if occurs(store, sigma, store.AsVar(t), s) {
			return sigma, false
		}
		sigma.Bind(store.AsVar(t), s)
		return sigma, true
	}
	if store.Functor(s) != store.Functor(t) {
		return sigma, false
	}
	sa, ta := store.Args(s), store.Args(t)
	for i := range sa {
		var ok bool
		sigma, ok = Unify(store, sigma, sa[i], ta[i])
		if !ok {
			return sigma, false
		}
	}
	return sigma, true
}

func occurs(store *term.Store, sigma *Subst, v term.Var, t term.Term) bool {
	t = Walk(store, sigma, t)
	if store.IsVar(t) {
		return store.AsVar(t) == v
	}
	for _, a := range store.Args(t) {
		if occurs(store, sigma, v, a) {
			return true
		}
	}
	return false
}

// Match attempts one-directional matching: find sigma such that
// pattern.sigma == instance, extending sigma (which must only ever bind
// pattern's variables). This is the core of both generalization queries
// (is `pattern` a generalization of `instance`?) and, with pattern/
// instance swapped by the caller, instance queries.
func Match(store *term.Store, sigma *Subst, pattern, instance term.Term) (*Subst, bool) {
	if store.IsVar(pattern) {
		v := store.AsVar(pattern)
		if bound, ok := sigma.Lookup(v); ok {
			if bound == instance {
				return sigma, true
			}
			return sigma, false
		}
		sigma.Bind(v, instance)
		return sigma, true
	}
	if store.IsVar(instance) {
		return sigma, false
	}
	if store.Functor(pattern) != store.Functor(instance) {
		return sigma, false
	}
	pa, ia := store.Args(pattern), store.Args(instance)
	for i := range pa {
		var ok bool
		sigma, ok = Match(store, sigma, pa[i], ia[i])
		if !ok {
			return sigma, false
		}
	}
	return sigma, true
}

// IsGeneralization reports whether pattern sigma == instance for some
// sigma, i.e. pattern is at least as general as instance.
func IsGeneralization(store *term.Store, pattern, instance term.Term) (*Subst, bool) {
	return Match(store, New(), pattern, instance)
}

// IsInstance reports whether instance is a substitution instance of
// pattern; same relation as IsGeneralization with swapped naming for call
// sites that read more naturally the other way around.
func IsInstance(store *term.Store, pattern, instance term.Term) (*Subst, bool) {
	return Match(store, New(), pattern, instance)
}

// Rename builds a substitution that maps every variable in t (and
// recursively in terms reachable from t) to a fresh variable, and returns
// the renamed term. Nothing in this module outside its own tests calls it.
func Rename(store *term.Store, sigma *Subst, t term.Term) term.Term {
	if store.IsVar(t) {
		v := store.AsVar(t)
		if bound, ok := sigma.Lookup(v); ok {
			return bound
		}
		fresh := store.Variable(store.FreshVar())
		sigma.Bind(v, fresh)
		return fresh
	}
	args := store.Args(t)
	if len(args) == 0 {
		return t
	}
	newArgs := make([]term.Term, len(args))
	for i, a := range args {
		newArgs[i] = Rename(store, sigma, a)
	}
	return store.App(store.Functor(t), newArgs...)
}
