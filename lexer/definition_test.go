package lexer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddLiteral(t *testing.T) {
	db := NewDatabase()
	d, err := db.AddLiteral("if", "if")
	require.NoError(t, err)
	require.Equal(t, 1, d.ID())
	require.Equal(t, KindLiteral, d.Kind())
	require.Same(t, Definition(d), db.Lookup("if"))

	_, err = db.AddLiteral("empty", "")
	require.Equal(t, CodeEmptyDefinition, CodeOf(err))

	_, err = db.AddLiteral("if", "other")
	require.Equal(t, CodeChainInsert, CodeOf(err))
}

func TestLiteralLex(t *testing.T) {
	db := NewDatabase()
	d, err := db.AddLiteral("if", "if")
	require.NoError(t, err)

	s := NewState(NewStringBuffer("iffy"), Settings{})
	tok, err := d.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "if", tok.String())
	require.Equal(t, 2, tok.Loc[UnitByte].Length)

	s = NewState(NewStringBuffer("fi"), Settings{})
	_, err = d.Lex(s)
	require.True(t, errors.Is(err, ErrNoMatch))
}

func TestLiteralLexStreaming(t *testing.T) {
	db := NewDatabase()
	d, err := db.AddLiteral("then", "then")
	require.NoError(t, err)

	buf := NewStreamBuffer()
	require.NoError(t, buf.Append([]byte("th")))
	s := NewState(buf, Settings{})
	_, err = d.Lex(s)
	require.True(t, errors.Is(err, ErrMoreNeeded))

	require.NoError(t, buf.Append([]byte("en")))
	buf.SetEOF()
	tok, err := d.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "then", tok.String())
}

func TestAddRegex(t *testing.T) {
	db := NewDatabase()
	_, err := db.AddRegex("bad", "(")
	require.Equal(t, CodeBadRegex, CodeOf(err))

	_, err = db.AddRegex("empty", "")
	require.Equal(t, CodeEmptyDefinition, CodeOf(err))

	d, err := db.AddRegex("num", `[0-9]+`)
	require.NoError(t, err)
	require.Equal(t, `[0-9]+`, d.Pattern())
}

func TestRegexLex(t *testing.T) {
	db := NewDatabase()
	d, err := db.AddRegex("num", `[0-9]+`)
	require.NoError(t, err)

	s := NewState(NewStringBuffer("123x"), Settings{})
	tok, err := d.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "123", tok.String())
	require.Equal(t, 3, tok.Loc[UnitChar].Length)

	// Anchored: a match later in the input does not count.
	s = NewState(NewStringBuffer("x123"), Settings{})
	_, err = d.Lex(s)
	require.True(t, errors.Is(err, ErrNoMatch))
}

func TestRegexLexStreaming(t *testing.T) {
	db := NewDatabase()
	d, err := db.AddRegex("num", `[0-9]+`)
	require.NoError(t, err)

	// A match running to the end of a growable buffer could still grow.
	buf := NewStreamBuffer()
	require.NoError(t, buf.Append([]byte("12")))
	s := NewState(buf, Settings{})
	_, err = d.Lex(s)
	require.True(t, errors.Is(err, ErrMoreNeeded))

	require.NoError(t, buf.Append([]byte("3")))
	buf.SetEOF()
	tok, err := d.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "123", tok.String())
}

func TestAddCategory(t *testing.T) {
	db := NewDatabase()
	_, err := db.AddCategory("none", 0, 1, 1)
	require.Equal(t, CodeCat, CodeOf(err))

	_, err = db.AddCategory("neg", CatLetter, -1, 1)
	require.Equal(t, CodeBadMin, CodeOf(err))

	_, err = db.AddCategory("inverted", CatLetter, 3, 2)
	require.Equal(t, CodeBadMax, CodeOf(err))

	d, err := db.AddCategory("word", CatLetter, 1, Unbounded)
	require.NoError(t, err)
	require.Equal(t, CatLetter, d.Mask())
	min, max := d.Bounds()
	require.Equal(t, 1, min)
	require.Equal(t, Unbounded, max)
}

func TestCategoryLex(t *testing.T) {
	db := NewDatabase()
	d, err := db.AddCategory("word", CatLetter, 1, Unbounded)
	require.NoError(t, err)

	s := NewState(NewStringBuffer("abc1"), Settings{})
	tok, err := d.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "abc", tok.String())

	s = NewState(NewStringBuffer("1abc"), Settings{})
	_, err = d.Lex(s)
	require.True(t, errors.Is(err, ErrNoMatch))
}

func TestCategoryLexBounds(t *testing.T) {
	db := NewDatabase()
	d, err := db.AddCategory("pair", CatNd, 2, 3)
	require.NoError(t, err)

	s := NewState(NewStringBuffer("1x"), Settings{})
	_, err = d.Lex(s)
	require.True(t, errors.Is(err, ErrNoMatch))

	s = NewState(NewStringBuffer("12345"), Settings{})
	tok, err := d.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "123", tok.String())
}

func TestMaxDefinitions(t *testing.T) {
	db := NewDatabase()
	for i := 0; i < MaxDefinitions; i++ {
		_, err := db.AddLiteral(fmt.Sprintf("d%d", i), "x")
		require.NoError(t, err)
	}
	_, err := db.AddLiteral("overflow", "x")
	require.Equal(t, CodeMaxLength, CodeOf(err))
}

func TestFormat(t *testing.T) {
	db := NewDatabase()
	lit, _ := db.AddLiteral("kw", "if")
	cat, _ := db.AddCategory("ws", CatWhitespace, 0, Unbounded)
	re, _ := db.AddRegex("num", `[0-9]+`)
	seq, _ := db.AddComposite("float", Sequence)
	seq.AddReference("num", 1, 1)
	seq.AddReference("dot", 1, 1)
	alt, _ := db.AddComposite("val", Alternation)
	alt.AddReference("float", 1, 1)
	alt.AddReference("num", 2, 5)

	require.Equal(t, `kw "if"`, Format(lit))
	require.Equal(t, "ws WHITESPACE*", Format(cat))
	require.Equal(t, "num [0-9]+", Format(re))
	require.Equal(t, "float num dot", Format(seq))
	require.Equal(t, "val float | num{2,5}", Format(alt))
}
