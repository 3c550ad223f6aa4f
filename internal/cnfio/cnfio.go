// Package cnfio reads the minimal structural clause format the core
// consumes directly: no TPTP/SMT-LIB surface syntax, just the shape a
// clausifier would already hand the engine. One clause per line, literal
// tokens separated by spaces, terminated by a literal "0" token — the same
// line shape go-air-gini/dimacs parses, generalized from signed integers
// naming Boolean variables to signed atoms naming predicates and
// equalities over named function terms.
//
//	g -p(X) q(X,a) 0
//
// is the clause {~p(X), q(X,a)}, marked as tracing back to the negated
// conjecture by the leading "g" (an input-side Clause.FromGoal, not a
// dimacs incremental assumption, though the leading-token convention is
// the same one go-air-gini/dimacs.ReadICnf uses for "a" lines). A bare
// clause line carries no leading token. Lines starting with "c" are
// comments; blank lines are skipped.
//
// An atom is either an equality "s=t" or a named predicate "p(a1,...,an)"
// (n=0 writes bare "p"); a leading '-' on the whole token negates it,
// giving "s!=t" and "~p(...)" respectively. Terms are built the same way:
// "f(a1,...,an)" or a variable token, which is any identifier starting
// with an uppercase letter; a lowercase-leading identifier names a
// function or predicate symbol. Variable names are local to their line —
// "X" in one clause and "X" in the next name unrelated variables.
package cnfio

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/symbol"
	"github.com/satprove/saturnfol/internal/term"
)

// Sink receives parsed clauses structurally, mirroring the push style of
// go-air-gini/dimacs's ReadICnf (Add/Assume/Eof) generalized from signed
// integer CNF literals to named first-order ones and from incremental
// assumptions to goal-derived clauses.
type Sink interface {
	Literal(l term.Literal)
	EndClause(fromGoal bool)
	Eof()
}

// ArenaSink is the Sink every ordinary caller wants: it builds each
// clause straight into an Arena and records the resulting ids in file
// order.
type ArenaSink struct {
	Arena *clause.Arena
	Ids   []clause.ID

	pending []term.Literal
}

func (s *ArenaSink) Literal(l term.Literal) { s.pending = append(s.pending, l) }

func (s *ArenaSink) EndClause(fromGoal bool) {
	id := s.Arena.New(clause.Canonicalize(s.pending), 0, clause.Inference{Rule: clause.RuleInput})
	s.Arena.SetFromGoal(id, fromGoal)
	s.Ids = append(s.Ids, id)
	s.pending = s.pending[:0]
}

func (s *ArenaSink) Eof() {}

// Reader parses the structural format against one run's shared term,
// literal and symbol stores.
type Reader struct {
	Terms *term.Store
	Lits  *term.LitStore
	Syms  *symbol.Table
}

func NewReader(ts *term.Store, lits *term.LitStore, syms *symbol.Table) *Reader {
	return &Reader{Terms: ts, Lits: lits, Syms: syms}
}

// ReadClauses parses every clause line of r into arena, returning the new
// clauses' ids in file order.
func (rd *Reader) ReadClauses(r io.Reader, arena *clause.Arena) ([]clause.ID, error) {
	sink := &ArenaSink{Arena: arena}
	if err := rd.Read(r, sink); err != nil {
		return nil, err
	}
	return sink.Ids, nil
}

// Read parses every clause line of r, pushing literals and clause
// boundaries into sink as it goes.
func (rd *Reader) Read(r io.Reader, sink Sink) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if err := rd.readLine(line, sink); err != nil {
			return fmt.Errorf("cnfio: line %d: %w", lineNo, err)
		}
	}
	sink.Eof()
	return scanner.Err()
}

func (rd *Reader) readLine(line string, sink Sink) error {
	fields := strings.Fields(line)
	fromGoal := false
	if len(fields) > 0 && fields[0] == "g" {
		fromGoal = true
		fields = fields[1:]
	}
	if len(fields) == 0 || fields[len(fields)-1] != "0" {
		return fmt.Errorf("missing trailing 0 terminator")
	}
	fields = fields[:len(fields)-1]

	vars := map[string]term.Term{}
	for _, tok := range fields {
		l, err := rd.parseLiteral(tok, vars)
		if err != nil {
			return err
		}
		sink.Literal(l)
	}
	sink.EndClause(fromGoal)
	return nil
}

func (rd *Reader) parseLiteral(tok string, vars map[string]term.Term) (term.Literal, error) {
	positive := true
	if strings.HasPrefix(tok, "-") {
		positive = false
		tok = tok[1:]
	}
	if tok == "" {
		return term.LitNull, fmt.Errorf("empty literal")
	}
	if sides := splitEquality(tok); sides != nil {
		lhs, err := rd.parseTerm(sides[0], vars)
		if err != nil {
			return term.LitNull, err
		}
		rhs, err := rd.parseTerm(sides[1], vars)
		if err != nil {
			return term.LitNull, err
		}
		return rd.Lits.Equality(positive, lhs, rhs, trivialCmp), nil
	}
	head, argStrs, err := splitHeadArgs(tok)
	if err != nil {
		return term.LitNull, err
	}
	args, err := rd.parseTerms(argStrs, vars)
	if err != nil {
		return term.LitNull, err
	}
	pred := rd.Syms.Intern(symbol.Predicate, head, len(args))
	return rd.Lits.Atom(pred.ID, positive, args...), nil
}

func (rd *Reader) parseTerm(s string, vars map[string]term.Term) (term.Term, error) {
	if isVarName(s) {
		if t, ok := vars[s]; ok {
			return t, nil
		}
		t := rd.Terms.Variable(rd.Terms.FreshVar())
		vars[s] = t
		return t, nil
	}
	head, argStrs, err := splitHeadArgs(s)
	if err != nil {
		return term.Null, err
	}
	args, err := rd.parseTerms(argStrs, vars)
	if err != nil {
		return term.Null, err
	}
	fn := rd.Syms.Intern(symbol.Function, head, len(args))
	return rd.Terms.App(fn.ID, args...), nil
}

func (rd *Reader) parseTerms(ss []string, vars map[string]term.Term) ([]term.Term, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]term.Term, len(ss))
	for i, s := range ss {
		t, err := rd.parseTerm(s, vars)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// trivialCmp leaves equality-literal orientation undecided at parse time;
// internal/rules re-derives the correct orientation from the run's KBO
// wherever it actually matters (demodulation, rewriting). cnfio only needs
// a total order for canonical interning, which LitStore.Equality's raw
// Term-id fallback already supplies once cmp reports no preference.
func trivialCmp(term.Term, term.Term) int { return 0 }

// splitEquality splits tok on a top-level '=' (one not nested inside
// parentheses), returning nil if there is none.
func splitEquality(tok string) []string {
	depth := 0
	for i, r := range tok {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '=':
			if depth == 0 {
				return []string{tok[:i], tok[i+1:]}
			}
		}
	}
	return nil
}

// splitHeadArgs splits "f(a,b,c)" into ("f", ["a","b","c"]) and "c" (no
// parentheses) into ("c", nil).
func splitHeadArgs(s string) (string, []string, error) {
	idx := strings.IndexByte(s, '(')
	if idx < 0 {
		if err := validateIdent(s); err != nil {
			return "", nil, err
		}
		return s, nil, nil
	}
	if s[len(s)-1] != ')' {
		return "", nil, fmt.Errorf("unbalanced parentheses in %q", s)
	}
	head := s[:idx]
	if err := validateIdent(head); err != nil {
		return "", nil, err
	}
	args, err := splitTopLevelCommas(s[idx+1 : len(s)-1])
	if err != nil {
		return "", nil, err
	}
	return head, args, nil
}

func splitTopLevelCommas(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in %q", s)
			}
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in %q", s)
	}
	return append(out, s[start:]), nil
}

func validateIdent(s string) error {
	if s == "" {
		return fmt.Errorf("empty identifier")
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("invalid identifier %q", s)
	}
	return nil
}

func isVarName(s string) bool {
	if s == "" {
		return false
	}
	return unicode.IsUpper([]rune(s)[0])
}
