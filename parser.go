package glex

import (
	"bytes"
	"fmt"
	"io"

	"github.com/glexlang/glex/lexer"
)

// Limits on lexicon-file shape. Exceeding any of them reports MaxLength.
const (
	maxLines   = 65536
	maxIdent   = 64
	maxAction  = 1024
	maxPattern = 256
	maxNesting = 256
)

// Grammar is the compiled form of one lexicon file: the definition and
// rule database plus the verbatim code stretches destined for the
// emitted source.
type Grammar struct {
	DB        *lexer.Database
	DefsCode  []byte // %{ %} blocks and indented lines of the definitions section
	RulesCode []byte // same, from the rules section
	UserCode  []byte // everything after the second %%
}

// Parse compiles lexicon-file source into a Grammar. The file has three
// sections separated by %% lines: definitions, rules, user code.
func Parse(src []byte) (*Grammar, error) {
	return parse(src, nil)
}

// ParseTrace is Parse with the lexicon tokenizer's rule dispatch traced
// to w.
func ParseTrace(src []byte, w io.Writer) (*Grammar, error) {
	return parse(src, w)
}

func parse(src []byte, trace io.Writer) (*Grammar, error) {
	toks, err := lexLexicon(src, trace)
	if err != nil {
		return nil, err
	}
	p := &parser{
		toks: toks,
		db:   lexer.NewDatabase(),
		g:    &Grammar{},
	}
	p.g.DB = p.db
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.g, nil
}

type parser struct {
	toks    []mtok
	i       int
	line    int
	section int // 0 definitions, 1 rules, 2 user code
	db      *lexer.Database
	g       *Grammar
}

func (p *parser) peek() *mtok {
	if p.i >= len(p.toks) {
		return nil
	}
	return &p.toks[p.i]
}

func (p *parser) next() *mtok {
	t := p.peek()
	if t != nil {
		p.i++
		if t.id == tokNewline {
			p.line++
		}
	}
	return t
}

func (p *parser) errf(code lexer.Code, format string, args ...interface{}) error {
	pos := lexer.NewLocation()
	pos[lexer.UnitLine].Start = p.line
	return lexer.Errorf(code, pos, format, args...)
}

func (p *parser) run() error {
	for p.section < 2 {
		if p.line >= maxLines {
			return p.errf(lexer.CodeMaxLength, "too many lines (max %d)", maxLines)
		}
		t := p.peek()
		if t == nil {
			if p.section == 0 {
				return p.errf(lexer.CodeNotFound, "missing %%%% separator")
			}
			return nil
		}
		switch t.id {
		case tokNewline:
			p.next()
		case tokSection:
			p.next()
			if err := p.expectEOL(); err != nil {
				return err
			}
			if p.section == 0 {
				if err := p.seedCategories(); err != nil {
					return err
				}
				if err := p.db.Resolve(); err != nil {
					return err
				}
			}
			p.section++
		case tokCodeOpen:
			p.next()
			if err := p.expectEOL(); err != nil {
				return err
			}
			if err := p.enclosed(); err != nil {
				return err
			}
		case tokHSpace:
			raw, _ := p.rawLine()
			code := p.code()
			*code = append(*code, raw...)
			*code = append(*code, '\n')
		default:
			if err := p.declaration(); err != nil {
				return err
			}
		}
	}
	// User-code section: everything that remains, verbatim.
	for {
		if p.line >= maxLines {
			return p.errf(lexer.CodeMaxLength, "too many lines (max %d)", maxLines)
		}
		t := p.next()
		if t == nil {
			return nil
		}
		p.g.UserCode = append(p.g.UserCode, t.val...)
	}
}

// code returns the verbatim-output sink for the current section.
func (p *parser) code() *[]byte {
	if p.section == 0 {
		return &p.g.DefsCode
	}
	return &p.g.RulesCode
}

// expectEOL consumes optional trailing horizontal whitespace and the
// line's newline (or end of input).
func (p *parser) expectEOL() error {
	if t := p.peek(); t != nil && t.id == tokHSpace {
		p.next()
	}
	t := p.next()
	if t != nil && t.id != tokNewline {
		return p.errf(lexer.CodeToken, "unexpected %q at end of line", t.val)
	}
	return nil
}

// rawLine consumes the rest of the current line verbatim, excluding the
// newline. Reports whether input ended.
func (p *parser) rawLine() ([]byte, bool) {
	var raw []byte
	for {
		t := p.peek()
		if t == nil {
			return raw, true
		}
		if t.id == tokNewline {
			p.next()
			return raw, false
		}
		raw = append(raw, t.val...)
		p.next()
	}
}

// enclosed copies the lines of a %{ ... %} block into the current
// section's output.
func (p *parser) enclosed() error {
	for {
		t := p.peek()
		if t == nil {
			return p.errf(lexer.CodeToken, "unterminated %%{ block")
		}
		if t.id == tokCodeClose {
			p.next()
			return p.expectEOL()
		}
		raw, eof := p.rawLine()
		if eof {
			return p.errf(lexer.CodeToken, "unterminated %%{ block")
		}
		code := p.code()
		*code = append(*code, raw...)
		*code = append(*code, '\n')
	}
}

// bodyKind classifies a declaration body.
type bodyKind int

const (
	bodyComposite bodyKind = iota
	bodyLiteral
	bodyRegex
)

type bodyRef struct {
	name     string
	min, max int
}

type bodySpec struct {
	kind    bodyKind
	op      lexer.Combinator
	opSet   bool
	refs    []bodyRef
	literal []byte
	regex   []byte
	display string
}

// declaration parses one definition or rule line.
func (p *parser) declaration() error {
	if p.section == 0 {
		t := p.next()
		if t.id != tokIdent {
			return p.errf(lexer.CodeToken, "expected definition name, got %q", t.val)
		}
		if len(t.val) > maxIdent {
			return p.errf(lexer.CodeMaxLength, "identifier %q too long (max %d bytes)", t.val, maxIdent)
		}
		name := string(t.val)
		if sp := p.next(); sp == nil || sp.id != tokHSpace {
			return p.errf(lexer.CodeEmptyDefinition, "definition %q has no body", name)
		}
		body, err := p.body(false)
		if err != nil {
			return err
		}
		return p.makeDefinition(name, body)
	}
	body, err := p.body(true)
	if err != nil {
		return err
	}
	action, err := p.actionBlock()
	if err != nil {
		return err
	}
	return p.makeRule(body, action)
}

// Per-line declaration recognizer states.
type declState int

const (
	sBodyStart declState = iota
	sIdent
	sIdentSpace
	sQuant
	sQuantSpace
	sBar
	sBarSpace
	sLiteral
	sLiteralEsc
	sLiteralEnd
	sLiteralEndSpace
	sRegex
	sRegexSpace
	sDone
)

// body runs the declaration state machine over one body. In rule mode
// the body ends at the whitespace preceding the action's opening brace,
// which is left unconsumed; otherwise it ends at the newline.
func (p *parser) body(ruleMode bool) (*bodySpec, error) { // nolint: gocyclo
	b := &bodySpec{}
	var raw []byte // bytes consumed so far, for the regex downgrade
	state := sBodyStart

	// downgrade turns everything seen so far into a regex body.
	downgrade := func() {
		b.kind = bodyRegex
		b.regex = append([]byte{}, raw...)
		b.refs = nil
		state = sRegex
	}

	quantify := func(star bool) error {
		ref := &b.refs[len(b.refs)-1]
		if ref.min != 1 || ref.max != 1 {
			return p.errf(lexer.CodeBadMultiType, "double quantifier on %q", ref.name)
		}
		if star {
			ref.min, ref.max = 0, lexer.Unbounded
		} else {
			ref.min, ref.max = 1, lexer.Unbounded
		}
		return nil
	}

	setOp := func(op lexer.Combinator) error {
		if b.opSet && b.op != op {
			return p.errf(lexer.CodeBadMultiType, "cannot mix sequence and alternation in one body")
		}
		b.op = op
		b.opSet = true
		return nil
	}

	for state != sDone {
		t := p.peek()
		atEOL := t == nil || t.id == tokNewline
		reprocess := false
		switch state {
		case sBodyStart:
			switch {
			case atEOL:
				return nil, p.errf(lexer.CodeEmptyDefinition, "empty body")
			case t.id == tokQuote:
				b.kind = bodyLiteral
				state = sLiteral
			case t.id == tokIdent:
				b.kind = bodyComposite
				b.refs = append(b.refs, bodyRef{name: string(t.val), min: 1, max: 1})
				state = sIdent
			default:
				downgrade()
				reprocess = true
			}

		case sIdent, sQuant:
			switch {
			case atEOL:
				state = sDone
			case t.id == tokStar || t.id == tokPlus:
				if state == sQuant {
					return nil, p.errf(lexer.CodeBadMultiType, "double quantifier")
				}
				if err := quantify(t.id == tokStar); err != nil {
					return nil, err
				}
				state = sQuant
			case t.id == tokHSpace:
				if state == sIdent {
					state = sIdentSpace
				} else {
					state = sQuantSpace
				}
			case t.id == tokPipe:
				if err := setOp(lexer.Alternation); err != nil {
					return nil, err
				}
				state = sBar
			default:
				downgrade()
				reprocess = true
			}

		case sIdentSpace, sQuantSpace:
			switch {
			case atEOL:
				state = sDone
			case ruleMode && t.id == tokLBrace:
				state = sDone // leave the brace for the action parser
			case t.id == tokIdent:
				if err := setOp(lexer.Sequence); err != nil {
					return nil, err
				}
				b.refs = append(b.refs, bodyRef{name: string(t.val), min: 1, max: 1})
				state = sIdent
			case t.id == tokPipe:
				if err := setOp(lexer.Alternation); err != nil {
					return nil, err
				}
				state = sBar
			case t.id == tokHSpace:
				// collapse runs
			default:
				downgrade()
				reprocess = true
			}

		case sBar, sBarSpace:
			switch {
			case atEOL:
				return nil, p.errf(lexer.CodeEmptyDefinition, "alternation ends with |")
			case t.id == tokHSpace:
				state = sBarSpace
			case t.id == tokIdent:
				b.refs = append(b.refs, bodyRef{name: string(t.val), min: 1, max: 1})
				state = sIdent
			default:
				downgrade()
				reprocess = true
			}

		case sLiteral:
			switch {
			case atEOL:
				return nil, p.errf(lexer.CodeToken, "unterminated literal")
			case t.id == tokBackslash:
				state = sLiteralEsc
			case t.id == tokQuote:
				state = sLiteralEnd
			default:
				b.literal = append(b.literal, t.val...)
			}
			if len(b.literal) > maxPattern {
				return nil, p.errf(lexer.CodeMaxLength, "literal too long (max %d bytes)", maxPattern)
			}

		case sLiteralEsc:
			if atEOL {
				return nil, p.errf(lexer.CodeToken, "unterminated literal")
			}
			b.literal = append(b.literal, unescape(t.val)...)
			state = sLiteral

		case sLiteralEnd, sLiteralEndSpace:
			switch {
			case atEOL:
				state = sDone
			case t.id == tokHSpace:
				state = sLiteralEndSpace
			case ruleMode && t.id == tokLBrace:
				state = sDone
			default:
				return nil, p.errf(lexer.CodeToken, "unexpected %q after literal", t.val)
			}

		case sRegex, sRegexSpace:
			switch {
			case atEOL:
				state = sDone
			case ruleMode && state == sRegex && t.id == tokHSpace:
				// The pattern ends here only if an action block follows;
				// otherwise interior whitespace belongs to the pattern.
				state = sRegexSpace
			case state == sRegexSpace:
				if ruleMode && t.id == tokLBrace {
					state = sDone
					break
				}
				b.regex = append(b.regex, ' ') // reattach the deferred space
				state = sRegex
				reprocess = true
			default:
				b.regex = append(b.regex, t.val...)
			}
			if len(b.regex) > maxPattern {
				return nil, p.errf(lexer.CodeMaxLength, "pattern too long (max %d bytes)", maxPattern)
			}
		}
		if state == sDone || reprocess {
			continue
		}
		if t != nil {
			raw = append(raw, t.val...)
			p.next()
		}
	}
	if !ruleMode {
		if t := p.peek(); t != nil && t.id == tokNewline {
			p.next()
		}
	}
	b.display = string(bytes.TrimSpace(raw))
	if b.kind == bodyRegex {
		b.regex = bytes.TrimRight(b.regex, " \t")
	}
	return b, nil
}

// The conventional C escapes; anything else passes through unchanged.
var escapeMap = map[byte]byte{
	'\\': '\\', 'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n',
	'r': '\r', 't': '\t', 'v': '\v', '"': '"',
}

// unescape maps the first byte of the token following a backslash and
// passes the rest through.
func unescape(val []byte) []byte {
	if len(val) == 0 {
		return nil
	}
	out := make([]byte, 0, len(val))
	if c, ok := escapeMap[val[0]]; ok {
		out = append(out, c)
	} else {
		out = append(out, val[0])
	}
	return append(out, val[1:]...)
}

// actionBlock captures everything between the outermost braces of a
// rule's action, tracking nesting, including newlines.
func (p *parser) actionBlock() ([]byte, error) {
	if t := p.peek(); t != nil && t.id == tokHSpace {
		p.next()
	}
	t := p.next()
	if t == nil || t.id != tokLBrace {
		return nil, p.errf(lexer.CodeNotARule, "rule has no { action } block")
	}
	depth := 1
	var action []byte
	for {
		t := p.next()
		if t == nil {
			return nil, p.errf(lexer.CodeToken, "unterminated action block")
		}
		switch t.id {
		case tokLBrace:
			depth++
			if depth > maxNesting {
				return nil, p.errf(lexer.CodeMaxLength, "action nesting too deep (max %d)", maxNesting)
			}
		case tokRBrace:
			depth--
			if depth == 0 {
				if err := p.expectEOL(); err != nil {
					return nil, err
				}
				return action, nil
			}
		}
		action = append(action, t.val...)
		if len(action) > maxAction {
			return nil, p.errf(lexer.CodeMaxLength, "action too long (max %d bytes)", maxAction)
		}
	}
}

// seedCategories backs every reference to a built-in category name
// (LETTER, NUM, WHITESPACE, atoms like LU, and pipe unions thereof)
// with a category definition, so lexicon files can use them without
// declaring them.
func (p *parser) seedCategories() error {
	for _, def := range p.db.Definitions() {
		c, ok := def.(*lexer.CompositeDef)
		if !ok {
			continue
		}
		for _, ref := range c.Refs() {
			if err := p.seedCategory(ref.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) seedCategory(name string) error {
	if p.db.Lookup(name) != nil {
		return nil
	}
	cat, err := lexer.ParseCategory(name)
	if err != nil {
		return nil // not a category name; resolution reports unknowns
	}
	_, err = p.db.AddCategory(name, cat, 1, 1)
	return err
}

// makeDefinition adds one named definition from a parsed body.
func (p *parser) makeDefinition(name string, b *bodySpec) error {
	switch b.kind {
	case bodyLiteral:
		_, err := p.db.AddLiteral(name, string(b.literal))
		return err
	case bodyRegex:
		_, err := p.db.AddRegex(name, string(b.regex))
		return err
	default:
		op := b.op
		if !b.opSet {
			op = lexer.Sequence
		}
		c, err := p.db.AddComposite(name, op)
		if err != nil {
			return err
		}
		for _, ref := range b.refs {
			if _, err := c.AddReference(ref.name, ref.min, ref.max); err != nil {
				return err
			}
		}
		return nil
	}
}

// makeRule turns a parsed rule body and action into a chain entry. A
// bare unquantified identifier refers to a prior definition; any other
// body becomes an anonymous inline definition.
func (p *parser) makeRule(b *bodySpec, action []byte) error {
	anon := fmt.Sprintf("%%rule%d", len(p.db.Rules()))
	var def lexer.Definition
	var err error
	switch b.kind {
	case bodyLiteral:
		def, err = p.db.AddLiteral(anon, string(b.literal))
	case bodyRegex:
		def, err = p.db.AddRegex(anon, string(b.regex))
	default:
		for _, ref := range b.refs {
			if err := p.seedCategory(ref.name); err != nil {
				return err
			}
		}
		if len(b.refs) == 1 && b.refs[0].min == 1 && b.refs[0].max == 1 {
			def = p.db.Lookup(b.refs[0].name)
			if def == nil {
				return p.errf(lexer.CodeUnresolvedDefinition, "rule references unknown definition %q", b.refs[0].name)
			}
			break
		}
		op := b.op
		if !b.opSet {
			op = lexer.Sequence
		}
		var c *lexer.CompositeDef
		c, err = p.db.AddComposite(anon, op)
		if err != nil {
			break
		}
		for _, ref := range b.refs {
			if _, err = c.AddReference(ref.name, ref.min, ref.max); err != nil {
				return err
			}
		}
		err = c.Resolve(p.db)
		def = c
	}
	if err != nil {
		return err
	}
	_, err = p.db.AddRule(b.display, def, action)
	return err
}
