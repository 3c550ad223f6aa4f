// Package symbol implements the interned symbol table shared by a whole
// saturation run: predicates, functions and sorts each get a stable
// integer id the rest of the engine can use instead of comparing strings.
package symbol

import "fmt"

// Kind distinguishes the two namespaces a Symbol can live in.
type Kind uint8

const (
	Function Kind = iota
	Predicate
)

func (k Kind) String() string {
	if k == Predicate {
		return "pred"
	}
	return "func"
}

// ID is a symbol's position in its Kind's table. IDs are never reused.
type ID uint32

// Sort is an interned sort (type) name. Sort 0 is the default "individual"
// sort used when a problem carries no sort information.
type Sort uint32

const DefaultSort Sort = 0

// Flags records properties of a Symbol that affect how the core treats it.
type Flags uint8

const (
	// Introduced marks a symbol created by the clausifier (Skolem
	// functions, definition predicates) rather than present in the
	// original problem.
	Introduced Flags = 1 << iota
	// Interpreted marks a symbol with built-in semantics (e.g. arithmetic)
	// that the core must never treat as free for ordering purposes.
	Interpreted
	// ColorLeft / ColorRight partition symbols for interpolation; unused
	// by the saturation core itself but threaded through so a consumer
	// computing interpolants has the data available.
	ColorLeft
	ColorRight
)

// Symbol is an interned (kind, id) pair with its declared signature.
type Symbol struct {
	Kind   Kind
	ID     ID
	Name   string
	Arity  int
	Args   []Sort
	Result Sort // ignored for Predicate (implicitly $o)
	Weight uint32
	Flags  Flags
}

func (s *Symbol) Is(f Flags) bool { return s.Flags&f != 0 }

func (s *Symbol) String() string {
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}

// Table is the symbol table shared by one run's term and literal stores. It is
// append-only: once interned, a Symbol's ID is stable for the life of the
// Table.
type Table struct {
	funcs  []*Symbol
	preds  []*Symbol
	byName map[tableKey]ID
	sorts  map[string]Sort
	nSorts Sort
}

type tableKey struct {
	kind Kind
	name string
	ar   int
}

// NewTable creates an empty symbol table with the default sort interned.
func NewTable() *Table {
	t := &Table{
		byName: make(map[tableKey]ID, 64),
		sorts:  make(map[string]Sort, 8),
	}
	t.sorts["$i"] = DefaultSort
	t.nSorts = 1
	return t
}

// Sort interns a sort name, returning its stable Sort id.
func (t *Table) Sort(name string) Sort {
	if s, ok := t.sorts[name]; ok {
		return s
	}
	s := t.nSorts
	t.sorts[name] = s
	t.nSorts++
	return s
}

// Intern returns the Symbol for (kind, name, arity), creating it with
// weight 1 and default sorts if this is the first sighting.
func (t *Table) Intern(kind Kind, name string, arity int) *Symbol {
	key := tableKey{kind, name, arity}
	if id, ok := t.byName[key]; ok {
		return t.get(kind, id)
	}
	args := make([]Sort, arity)
	for i := range args {
		args[i] = DefaultSort
	}
	sym := &Symbol{
		Kind:   kind,
		Name:   name,
		Arity:  arity,
		Args:   args,
		Result: DefaultSort,
		Weight: 1,
	}
	if kind == Function {
		sym.ID = ID(len(t.funcs))
		t.funcs = append(t.funcs, sym)
	} else {
		sym.ID = ID(len(t.preds))
		t.preds = append(t.preds, sym)
	}
	t.byName[key] = sym.ID
	return sym
}

func (t *Table) get(kind Kind, id ID) *Symbol {
	if kind == Function {
		return t.funcs[id]
	}
	return t.preds[id]
}

// Func looks up a function symbol by id. Panics if id is out of range:
// callers only ever hold ids the Table itself issued.
func (t *Table) Func(id ID) *Symbol { return t.funcs[id] }

// Pred looks up a predicate symbol by id.
func (t *Table) Pred(id ID) *Symbol { return t.preds[id] }

// NumFuncs and NumPreds report table sizes, used to size precedence tables.
func (t *Table) NumFuncs() int { return len(t.funcs) }
func (t *Table) NumPreds() int { return len(t.preds) }

// Funcs and Preds expose the underlying tables for iteration (ordering
// setup, precedence construction).
func (t *Table) Funcs() []*Symbol { return t.funcs }
func (t *Table) Preds() []*Symbol { return t.preds }
