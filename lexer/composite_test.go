package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func numberGrammar(t *testing.T) *Database {
	t.Helper()
	db := NewDatabase()
	_, err := db.AddCategory("digit", CatNd, 1, 1)
	require.NoError(t, err)
	integer, err := db.AddComposite("int", Sequence)
	require.NoError(t, err)
	_, err = integer.AddReference("digit", 1, Unbounded)
	require.NoError(t, err)
	_, err = db.AddLiteral("dot", ".")
	require.NoError(t, err)
	float, err := db.AddComposite("float", Sequence)
	require.NoError(t, err)
	float.AddReference("int", 1, 1)
	float.AddReference("dot", 1, 1)
	float.AddReference("int", 0, 1)
	num, err := db.AddComposite("num", Alternation)
	require.NoError(t, err)
	num.AddReference("float", 1, 1)
	num.AddReference("int", 1, 1)
	require.NoError(t, db.Resolve())
	return db
}

func TestCompositeSequence(t *testing.T) {
	db := numberGrammar(t)
	float := db.Lookup("float")

	s := NewState(NewStringBuffer("3.14x"), Settings{})
	tok, err := float.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "3.14", tok.String())
	require.Equal(t, 3, len(tok.Subs))
	require.Equal(t, "3", tok.Subs[0].String())
	require.Equal(t, ".", tok.Subs[1].String())
	require.Equal(t, "14", tok.Subs[2].String())
	require.Same(t, tok, tok.Subs[0].Parent)

	// The optional fraction may be absent.
	s = NewState(NewStringBuffer("3."), Settings{})
	tok, err = float.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "3.", tok.String())
	require.Equal(t, 2, len(tok.Subs))
}

func TestCompositeSequenceNoMatch(t *testing.T) {
	db := numberGrammar(t)
	float := db.Lookup("float")

	s := NewState(NewStringBuffer("3x"), Settings{})
	_, err := float.Lex(s)
	require.True(t, errors.Is(err, ErrNoMatch))
}

func TestCompositeAlternation(t *testing.T) {
	db := numberGrammar(t)
	num := db.Lookup("num")

	s := NewState(NewStringBuffer("3.14"), Settings{})
	tok, err := num.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "3.14", tok.String())
	require.Equal(t, 1, len(tok.Subs))
	require.Equal(t, "float", tok.Subs[0].Ref.Name)

	s = NewState(NewStringBuffer("42"), Settings{})
	tok, err = num.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "42", tok.String())
	require.Equal(t, "int", tok.Subs[0].Ref.Name)
}

func TestCompositeAlternationFallback(t *testing.T) {
	// A strict float needs digits after the dot, so "1." falls back to
	// the integer alternative and leaves the dot unconsumed.
	db := NewDatabase()
	_, err := db.AddCategory("digit", CatNd, 1, 1)
	require.NoError(t, err)
	integer, err := db.AddComposite("int", Sequence)
	require.NoError(t, err)
	integer.AddReference("digit", 1, Unbounded)
	_, err = db.AddLiteral("dot", ".")
	require.NoError(t, err)
	float, err := db.AddComposite("float", Sequence)
	require.NoError(t, err)
	float.AddReference("int", 1, 1)
	float.AddReference("dot", 1, 1)
	float.AddReference("int", 1, 1)
	num, err := db.AddComposite("num", Alternation)
	require.NoError(t, err)
	num.AddReference("float", 1, 1)
	num.AddReference("int", 1, 1)
	require.NoError(t, db.Resolve())

	s := NewState(NewStringBuffer("1."), Settings{})
	tok, err := num.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "1", tok.String())
	require.Equal(t, 1, tok.Loc[UnitByte].Length)
	require.Equal(t, "int", tok.Subs[0].Ref.Name)
}

func TestCompositeElision(t *testing.T) {
	// A composite holding exactly one unquantified reference takes its
	// shape directly and carries no sub-token list.
	db := NewDatabase()
	_, err := db.AddCategory("letters", CatLetter, 1, Unbounded)
	require.NoError(t, err)
	word, err := db.AddComposite("word", Sequence)
	require.NoError(t, err)
	word.AddReference("letters", 1, 1)
	require.NoError(t, db.Resolve())

	s := NewState(NewStringBuffer("abc"), Settings{})
	tok, err := word.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "abc", tok.String())
	require.Nil(t, tok.Subs)
}

func TestCompositeRepetition(t *testing.T) {
	db := numberGrammar(t)
	integer := db.Lookup("int")

	s := NewState(NewStringBuffer("007x"), Settings{})
	tok, err := integer.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "007", tok.String())
	require.Equal(t, 3, len(tok.Subs))
	for i, sub := range tok.Subs {
		require.Equal(t, "digit", sub.Ref.Name)
		require.Equal(t, i, sub.Loc[UnitByte].Start)
	}
}

func TestArenaExhaustion(t *testing.T) {
	// An unbounded repetition over more matches than the arena holds
	// reports exhaustion rather than truncating the sub-token list.
	db := NewDatabase()
	_, err := db.AddCategory("digit", CatNd, 1, 1)
	require.NoError(t, err)
	run, err := db.AddComposite("run", Sequence)
	require.NoError(t, err)
	run.AddReference("digit", 1, Unbounded)
	_, err = db.AddRule("run", run, nil)
	require.NoError(t, err)
	require.NoError(t, db.Resolve())

	s := NewState(NewStringBuffer(strings.Repeat("7", MaxSubTokens+1)), Settings{})
	_, err = s.Next(db)
	require.Equal(t, CodeSubTokensExhausted, CodeOf(err))
}

func TestResolveUnknownReference(t *testing.T) {
	db := NewDatabase()
	c, err := db.AddComposite("broken", Sequence)
	require.NoError(t, err)
	c.AddReference("missing", 1, 1)
	err = db.Resolve()
	require.Equal(t, CodeUnresolvedDefinition, CodeOf(err))
}

func TestResolveCycle(t *testing.T) {
	db := NewDatabase()
	a, err := db.AddComposite("a", Sequence)
	require.NoError(t, err)
	b, err := db.AddComposite("b", Sequence)
	require.NoError(t, err)
	a.AddReference("b", 1, 1)
	b.AddReference("a", 1, 1)
	err = db.Resolve()
	require.Equal(t, CodeInfiniteLoop, CodeOf(err))
}

func TestResolveEmpty(t *testing.T) {
	db := NewDatabase()
	_, err := db.AddComposite("hollow", Sequence)
	require.NoError(t, err)
	err = db.Resolve()
	require.Equal(t, CodeEmptyDefinition, CodeOf(err))
}

func TestResolveIdempotent(t *testing.T) {
	db := numberGrammar(t)
	require.NoError(t, db.Resolve())
	require.NoError(t, db.Resolve())
}

func TestClearInvalidatesResolution(t *testing.T) {
	db := numberGrammar(t)
	num := db.Lookup("num").(*CompositeDef)
	num.Clear()

	s := NewState(NewStringBuffer("42"), Settings{})
	_, err := num.Lex(s)
	require.Equal(t, CodeUnresolvedDefinition, CodeOf(err))

	require.NoError(t, db.Resolve())
	tok, err := num.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "42", tok.String())
}

func TestNestedComposite(t *testing.T) {
	// An adopted child shadows the database during resolution.
	db := NewDatabase()
	_, err := db.AddCategory("d", CatNd, 1, 1)
	require.NoError(t, err)
	outer, err := db.AddComposite("outer", Sequence)
	require.NoError(t, err)
	digits := &CompositeDef{name: "digits", op: Sequence}
	digits.AddReference("d", 1, Unbounded)
	outer.Adopt(digits)
	outer.AddReference("digits", 1, 1)
	require.NoError(t, db.Resolve())
	require.Nil(t, db.Lookup("digits"))

	s := NewState(NewStringBuffer("42"), Settings{})
	tok, err := outer.Lex(s)
	require.NoError(t, err)
	require.Equal(t, "42", tok.String())
}
