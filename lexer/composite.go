package lexer

import "errors"

// MaxReferences bounds the reference list of one composite.
const MaxReferences = 256

// Combinator selects how a composite combines its references.
type Combinator int

const (
	Sequence Combinator = iota
	Alternation
)

func (c Combinator) String() string {
	if c == Alternation {
		return "alternation"
	}
	return "sequence"
}

// A Reference is a symbolic use of another definition inside a
// composite, with its own min/max multiplicity. Target is nil until
// resolution.
type Reference struct {
	Name   string
	Target Definition
	Min    int
	Max    int
	owner  *CompositeDef
}

// CompositeDef matches a sequence or alternation of references to other
// definitions. Construction mutates parent/child links and is not safe
// to share; finish the build and resolve before lexing.
type CompositeDef struct {
	id        int
	name      string
	op        Combinator
	refs      []*Reference
	children  []Definition
	parent    *CompositeDef
	resolved  bool
	resolving bool
}

// AddComposite creates a composite definition in the database.
func (db *Database) AddComposite(name string, op Combinator) (*CompositeDef, error) {
	d := &CompositeDef{id: len(db.defs) + 1, name: name, op: op}
	if err := db.add(name, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *CompositeDef) ID() int            { return d.id }
func (d *CompositeDef) Name() string       { return d.name }
func (d *CompositeDef) Kind() Kind         { return KindComposite }
func (d *CompositeDef) Op() Combinator     { return d.op }
func (d *CompositeDef) Refs() []*Reference { return d.refs }

// Clear drops resolution state so the composite can be resolved again.
func (d *CompositeDef) Clear() {
	d.resolved = false
	d.resolving = false
	for _, ref := range d.refs {
		ref.Target = nil
	}
}

// AddReference appends a reference to a named definition.
func (d *CompositeDef) AddReference(name string, min, max int) (*Reference, error) {
	if len(d.refs) >= MaxReferences {
		return nil, Errorf(CodeMaxLength, NewLocation(), "too many references in %q (max %d)", d.name, MaxReferences)
	}
	if err := checkBounds(min, max); err != nil {
		return nil, err
	}
	ref := &Reference{Name: name, Min: min, Max: max, owner: d}
	d.refs = append(d.refs, ref)
	return ref, nil
}

// Adopt attaches a nested child definition. References resolve against
// the nearest ancestor's child list before the top-level database.
func (d *CompositeDef) Adopt(child Definition) {
	if c, ok := child.(*CompositeDef); ok {
		c.parent = d
	}
	d.children = append(d.children, child)
}

func (d *CompositeDef) lookup(name string, db *Database) Definition {
	for c := d; c != nil; c = c.parent {
		for _, child := range c.children {
			if child.Name() == name {
				return child
			}
		}
	}
	return db.Lookup(name)
}

// Resolve fills every reference's target, walking ancestor child lists
// first and the database last. Resolving an already-resolved composite
// is a no-op; a cycle of composites fails with InfiniteLoop.
func (d *CompositeDef) Resolve(db *Database) error {
	if d.resolved {
		return nil
	}
	if d.resolving {
		return Errorf(CodeInfiniteLoop, NewLocation(), "reference cycle through %q", d.name)
	}
	if len(d.refs) == 0 {
		return Errorf(CodeEmptyDefinition, NewLocation(), "composite %q has no references", d.name)
	}
	d.resolving = true
	defer func() { d.resolving = false }()
	for _, ref := range d.refs {
		if ref.Target == nil {
			ref.Target = d.lookup(ref.Name, db)
			if ref.Target == nil {
				return Errorf(CodeUnresolvedDefinition, NewLocation(), "unresolved reference %q in %q", ref.Name, d.name)
			}
		}
		if sub, ok := ref.Target.(*CompositeDef); ok {
			if err := sub.Resolve(db); err != nil {
				return err
			}
		}
	}
	d.resolved = true
	return nil
}

// Resolve resolves every composite in the database.
func (db *Database) Resolve() error {
	for _, def := range db.defs {
		if c, ok := def.(*CompositeDef); ok {
			if err := c.Resolve(db); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *CompositeDef) Lex(s *State) (*Token, error) {
	if !d.resolved {
		return nil, Errorf(CodeUnresolvedDefinition, s.loc, "composite %q lexed before resolution", d.name)
	}
	mark := s.arena.used
	switch d.op {
	case Sequence:
		tok := &Token{Def: d}
		s.begin(tok)
		ns := s.nested()
		for _, ref := range d.refs {
			n, err := lexReference(ns, ref, tok)
			if err != nil {
				s.arena.release(mark)
				return nil, err
			}
			if n < ref.Min {
				s.arena.release(mark)
				return nil, ErrNoMatch
			}
		}
		return d.finish(s, tok, mark)
	case Alternation:
		// First reference reaching its minimum wins. An alternative
		// matching nothing produces no sub-token and does not win.
		for _, ref := range d.refs {
			tok := &Token{Def: d}
			s.begin(tok)
			ns := s.nested()
			n, err := lexReference(ns, ref, tok)
			if err != nil {
				s.arena.release(mark)
				return nil, err
			}
			if n >= ref.Min && n > 0 {
				return d.finish(s, tok, mark)
			}
			s.arena.release(mark)
		}
		return nil, ErrNoMatch
	}
	return nil, Errorf(CodeBadMultiType, s.loc, "unknown combinator %d", int(d.op))
}

// finish applies the single-reference elision and rejects empty spans.
func (d *CompositeDef) finish(s *State, tok *Token, mark int) (*Token, error) {
	if tok.Loc[UnitByte].Length == 0 {
		s.arena.release(mark)
		return nil, ErrNoMatch
	}
	if len(d.refs) == 1 && d.refs[0].Min == 1 && d.refs[0].Max == 1 {
		tok.Subs = nil
		s.arena.release(mark)
	}
	return tok, nil
}

// lexReference collects up to ref.Max consecutive matches of the
// referenced definition as sub-tokens of parent, advancing the nested
// state past each one. Unbounded repetition is capped by the arena.
func lexReference(ns *State, ref *Reference, parent *Token) (int, error) {
	n := 0
	for ref.Max == Unbounded || n < ref.Max {
		sub, err := ref.Target.Lex(ns)
		if errors.Is(err, ErrNoMatch) {
			break
		}
		if err != nil {
			return n, err
		}
		st, err := ns.arena.alloc()
		if err != nil {
			return n, err
		}
		st.Ref = ref
		st.Token = *sub
		st.Token.Parent = parent
		parent.Subs = append(parent.Subs, st)
		parent.Loc.add(extentOf(sub))
		parent.Value = append(parent.Value, sub.Value...)
		ns.commit(sub)
		n++
	}
	return n, nil
}

// extentOf strips a token's extent down to the length/after/hash form
// the accumulator expects.
func extentOf(tok *Token) Location {
	l := tok.Loc
	for u := range l {
		l[u].Start = 0
	}
	return l
}
