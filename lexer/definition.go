package lexer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Limits guarding against pathological grammars.
const (
	MaxDefinitions = 1024
	MaxRules       = 1024
)

// Kind discriminates the definition variants.
type Kind int

const (
	KindCategory Kind = iota
	KindLiteral
	KindRegex
	KindComposite
)

var kindNames = [...]string{"category", "literal", "regex", "composite"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Unbounded is the max-occurrence value meaning "no upper bound".
const Unbounded = -1

// A Definition matches a span of input. The four variants are
// CategoryDef, LiteralDef, RegexDef and CompositeDef. Definitions are
// created during grammar compilation, resolved once, and read-only
// during lexing.
//
// Lex matches at the state's current position without moving it; the
// lexing core commits the returned extent. Lex never returns a
// zero-byte token.
type Definition interface {
	ID() int
	Name() string
	Kind() Kind
	Lex(s *State) (*Token, error)
	Clear()
}

// Database owns every definition and rule of one grammar. Ids are dense:
// definition ids are 1..N in creation order, rule ids 0..M-1 so that
// they double as emitted token codes.
type Database struct {
	defs  []Definition
	index map[string]Definition
	rules []*Rule
}

func NewDatabase() *Database {
	return &Database{index: map[string]Definition{}}
}

// Definitions returns every definition in creation order.
func (db *Database) Definitions() []Definition { return db.defs }

// Lookup finds a top-level definition by name.
func (db *Database) Lookup(name string) Definition { return db.index[name] }

// Clear empties the database, invalidating all definitions and rules.
func (db *Database) Clear() {
	for _, def := range db.defs {
		def.Clear()
	}
	db.defs = nil
	db.rules = nil
	db.index = map[string]Definition{}
}

func (db *Database) add(name string, def Definition) error {
	if len(db.defs) >= MaxDefinitions {
		return Errorf(CodeMaxLength, NewLocation(), "too many definitions (max %d)", MaxDefinitions)
	}
	if name != "" {
		if _, ok := db.index[name]; ok {
			return Errorf(CodeChainInsert, NewLocation(), "definition %q already exists", name)
		}
		db.index[name] = def
	}
	db.defs = append(db.defs, def)
	return nil
}

func checkBounds(min, max int) error {
	if min < 0 {
		return Errorf(CodeBadMin, NewLocation(), "negative minimum %d", min)
	}
	if max != Unbounded && max < min {
		return Errorf(CodeBadMax, NewLocation(), "maximum %d below minimum %d", max, min)
	}
	return nil
}

// CategoryDef matches a run of grapheme clusters whose categories
// intersect a mask, between min and max clusters long.
type CategoryDef struct {
	id   int
	name string
	cat  Category
	min  int
	max  int
}

// AddCategory creates a category definition in the database.
func (db *Database) AddCategory(name string, cat Category, min, max int) (*CategoryDef, error) {
	if cat == 0 {
		return nil, Errorf(CodeCat, NewLocation(), "empty category mask for %q", name)
	}
	if err := checkBounds(min, max); err != nil {
		return nil, err
	}
	d := &CategoryDef{id: len(db.defs) + 1, name: name, cat: cat, min: min, max: max}
	if err := db.add(name, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *CategoryDef) ID() int                { return d.id }
func (d *CategoryDef) Name() string           { return d.name }
func (d *CategoryDef) Kind() Kind             { return KindCategory }
func (d *CategoryDef) Clear()                 {}
func (d *CategoryDef) Mask() Category         { return d.cat }
func (d *CategoryDef) Bounds() (min, max int) { return d.min, d.max }

func (d *CategoryDef) Lex(s *State) (*Token, error) {
	tok := &Token{Def: d}
	s.begin(tok)
	cur := s.cur
	n := 0
	var value []byte
	for d.max == Unbounded || n < d.max {
		g, _, cat, b, err := readGrapheme(&cur)
		if errors.Is(err, ErrNoMatch) {
			break
		}
		if err != nil {
			return nil, err
		}
		if cat&d.cat == 0 {
			break
		}
		tok.Loc.add(g)
		value = append(value, b...)
		n++
	}
	if n < d.min || n == 0 {
		return nil, ErrNoMatch
	}
	tok.Value = value
	return tok, nil
}

// LiteralDef matches an immutable UTF-8 byte string. Its per-unit
// lengths are measured once at construction.
type LiteralDef struct {
	id   int
	name string
	text []byte
	loc  Location
}

// AddLiteral creates a literal definition in the database. The empty
// string is rejected.
func (db *Database) AddLiteral(name, text string) (*LiteralDef, error) {
	if text == "" {
		return nil, Errorf(CodeEmptyDefinition, NewLocation(), "empty literal for %q", name)
	}
	loc, err := measure([]byte(text))
	if err != nil {
		return nil, err
	}
	d := &LiteralDef{id: len(db.defs) + 1, name: name, text: []byte(text), loc: loc}
	if err := db.add(name, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *LiteralDef) ID() int      { return d.id }
func (d *LiteralDef) Name() string { return d.name }
func (d *LiteralDef) Kind() Kind   { return KindLiteral }
func (d *LiteralDef) Clear()       {}
func (d *LiteralDef) Text() []byte { return d.text }

func (d *LiteralDef) Lex(s *State) (*Token, error) {
	cur := s.cur
	for i, c := range d.text {
		b, ok := cur.peek(i)
		if !ok {
			if cur.buf.atEOF() {
				return nil, ErrNoMatch
			}
			return nil, ErrMoreNeeded
		}
		if b != c {
			return nil, ErrNoMatch
		}
	}
	tok := &Token{Def: d, Value: d.text}
	s.begin(tok)
	for u := range tok.Loc {
		tok.Loc[u].Length = d.loc[u].Length
		tok.Loc[u].After = d.loc[u].After
		tok.Loc[u].Hash = d.loc[u].Hash
	}
	return tok, nil
}

// RegexDef matches a compiled pattern anchored at the current position.
type RegexDef struct {
	id      int
	name    string
	pattern string
	re      *regexp.Regexp
}

// AddRegex creates a regex definition in the database. The pattern is
// compiled anchored, so a match always begins at the current position.
func (db *Database) AddRegex(name, pattern string) (*RegexDef, error) {
	if pattern == "" {
		return nil, Errorf(CodeEmptyDefinition, NewLocation(), "empty pattern for %q", name)
	}
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, Errorf(CodeBadRegex, NewLocation(), "%q: %s", pattern, err)
	}
	d := &RegexDef{id: len(db.defs) + 1, name: name, pattern: pattern, re: re}
	if err := db.add(name, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *RegexDef) ID() int         { return d.id }
func (d *RegexDef) Name() string    { return d.name }
func (d *RegexDef) Kind() Kind      { return KindRegex }
func (d *RegexDef) Clear()          {}
func (d *RegexDef) Pattern() string { return d.pattern }

func (d *RegexDef) Lex(s *State) (*Token, error) {
	rest := s.cur.rest()
	eof := s.cur.buf.atEOF()
	m := d.re.FindIndex(rest)
	if m == nil {
		// The engine cannot distinguish a failed match from the prefix
		// of a possible one, so a growing buffer always retries.
		if !eof {
			return nil, ErrMoreNeeded
		}
		return nil, ErrNoMatch
	}
	if m[1] == len(rest) && !eof {
		return nil, ErrMoreNeeded
	}
	if m[1] == 0 {
		return nil, ErrNoMatch
	}
	value := rest[:m[1]]
	loc, err := measure(value)
	if err != nil {
		return nil, err
	}
	tok := &Token{Def: d, Value: value}
	s.begin(tok)
	for u := range tok.Loc {
		tok.Loc[u].Length = loc[u].Length
		tok.Loc[u].After = loc[u].After
		tok.Loc[u].Hash = loc[u].Hash
	}
	return tok, nil
}

// Format renders a definition the way it would appear in a lexicon
// file, one arm per variant.
func Format(def Definition) string {
	switch d := def.(type) {
	case *CategoryDef:
		return fmt.Sprintf("%s %s%s", d.name, d.cat.Format(), formatBounds(d.min, d.max))
	case *LiteralDef:
		return fmt.Sprintf("%s %q", d.name, d.text)
	case *RegexDef:
		return fmt.Sprintf("%s %s", d.name, d.pattern)
	case *CompositeDef:
		sep := " "
		if d.op == Alternation {
			sep = " | "
		}
		parts := make([]string, len(d.refs))
		for i, ref := range d.refs {
			parts[i] = ref.Name + formatBounds(ref.Min, ref.Max)
		}
		return fmt.Sprintf("%s %s", d.name, strings.Join(parts, sep))
	}
	return fmt.Sprintf("<%T>", def)
}

func formatBounds(min, max int) string {
	switch {
	case min == 1 && max == 1:
		return ""
	case min == 0 && max == Unbounded:
		return "*"
	case min == 1 && max == Unbounded:
		return "+"
	}
	return fmt.Sprintf("{%d,%d}", min, max)
}
