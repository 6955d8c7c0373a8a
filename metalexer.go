package glex

import (
	"errors"
	"io"

	"github.com/glexlang/glex/lexer"
)

// Meta-token ids: rule ids of the built-in chain that tokenizes the
// lexicon file itself. The chain runs on the same engine the generated
// lexers use.
const (
	tokSection   = iota // %%
	tokCodeOpen         // %{
	tokCodeClose        // %}
	tokQuote            // "
	tokPipe             // |
	tokLBrace           // {
	tokRBrace           // }
	tokStar             // *
	tokPlus             // +
	tokBackslash        // \
	tokIdent            // [_\p{L}][_\p{L}\p{N}]*
	tokHSpace           // run of horizontal whitespace
	tokNewline          // one vertical-space grapheme (CR+LF is one)
	tokText             // any single character except backslash/newline
	tokAny              // any single grapheme
)

// metaLexicon builds the fixed rule chain for lexicon files. Order
// matters: multi-byte literals and multi-character runs come before the
// single-grapheme fallbacks.
func metaLexicon() (*lexer.Database, error) {
	db := lexer.NewDatabase()
	literals := []struct{ name, text string }{
		{"section", "%%"},
		{"codeopen", "%{"},
		{"codeclose", "%}"},
		{"quote", `"`},
		{"pipe", "|"},
		{"lbrace", "{"},
		{"rbrace", "}"},
		{"star", "*"},
		{"plus", "+"},
		{"backslash", `\`},
	}
	for _, lit := range literals {
		def, err := db.AddLiteral(lit.name, lit.text)
		if err != nil {
			return nil, err
		}
		if _, err := db.AddRule(lit.name, def, nil); err != nil {
			return nil, err
		}
	}
	regexes := []struct{ name, pattern string }{
		{"ident", `[_\p{L}][_\p{L}\p{N}]*`},
		{"hspace", `[ \t]+`},
	}
	for _, re := range regexes {
		def, err := db.AddRegex(re.name, re.pattern)
		if err != nil {
			return nil, err
		}
		if _, err := db.AddRule(re.name, def, nil); err != nil {
			return nil, err
		}
	}
	newline, err := db.AddCategory("newline", lexer.CatVSpace, 1, 1)
	if err != nil {
		return nil, err
	}
	if _, err := db.AddRule("newline", newline, nil); err != nil {
		return nil, err
	}
	text, err := db.AddRegex("text", `[^\\\n]`)
	if err != nil {
		return nil, err
	}
	if _, err := db.AddRule("text", text, nil); err != nil {
		return nil, err
	}
	any, err := db.AddCategory("any", lexer.CatAny, 1, 1)
	if err != nil {
		return nil, err
	}
	if _, err := db.AddRule("any", any, nil); err != nil {
		return nil, err
	}
	if err := db.Resolve(); err != nil {
		return nil, err
	}
	return db, nil
}

// mtok is one meta-token of the lexicon file.
type mtok struct {
	id  int
	val []byte
}

// lexLexicon tokenizes a complete lexicon file. The chain's fallback
// rule matches any grapheme, so the only lexing failure is bad UTF-8.
func lexLexicon(src []byte, trace io.Writer) ([]mtok, error) {
	db, err := metaLexicon()
	if err != nil {
		return nil, err
	}
	s := lexer.NewState(lexer.NewBuffer(src), lexer.Settings{Trace: trace})
	var toks []mtok
	for {
		tok, err := s.Next(db)
		if errors.Is(err, lexer.ErrEOF) {
			return toks, nil
		}
		if err != nil {
			return nil, err
		}
		toks = append(toks, mtok{id: tok.Rule.ID(), val: tok.Value})
	}
}
