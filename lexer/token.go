package lexer

import "fmt"

// A Token is one matched span: the rule and definition that produced
// it, the matched bytes, and its extent on all four axes. A composite
// match carries a tree of sub-tokens naming each reference that
// contributed; sub-tokens borrow slots from the session arena and are
// invalidated when the next token is read.
type Token struct {
	Rule   *Rule
	Def    Definition
	Value  []byte
	Loc    Location
	Subs   []*SubToken
	Parent *Token
}

// A SubToken is the portion of a composite match contributed by one
// matched reference.
type SubToken struct {
	Ref *Reference
	Token
}

// String returns the matched text.
func (t *Token) String() string { return string(t.Value) }

func (t *Token) GoString() string {
	name := "?"
	if t.Def != nil {
		name = t.Def.Name()
	}
	return fmt.Sprintf("Token@%s{%s, %q}", t.Loc.String(), name, t.Value)
}

// Extent reports the 1-based first/last line and column of the token.
func (t *Token) Extent() (firstLine, firstCol, lastLine, lastCol int) {
	firstLine = t.Loc[UnitLine].Start + 1
	firstCol = t.Loc[UnitChar].Start + 1
	lastLine = firstLine + t.Loc[UnitLine].Length
	if t.Loc[UnitChar].After != NoReset {
		lastCol = t.Loc[UnitChar].After + 1
	} else {
		lastCol = firstCol + t.Loc[UnitChar].Length
	}
	return firstLine, firstCol, lastLine, lastCol
}
