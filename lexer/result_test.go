package lexer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeOK, CodeOf(nil))
	require.Equal(t, CodeBadUTF8, CodeOf(Errorf(CodeBadUTF8, NewLocation(), "x")))
	require.Equal(t, CodeState, CodeOf(fmt.Errorf("foreign")))

	wrapped := fmt.Errorf("compile: %w", Errorf(CodeBadRegex, NewLocation(), "x"))
	require.Equal(t, CodeBadRegex, CodeOf(wrapped))
}

func TestSoftSignals(t *testing.T) {
	require.True(t, IsSoft(ErrMoreNeeded))
	require.True(t, IsSoft(ErrEOF))
	require.True(t, IsSoft(ErrNoMatch))
	require.False(t, IsSoft(nil))
	require.False(t, IsSoft(Errorf(CodeBadUTF8, NewLocation(), "x")))

	// Code equality is enough for errors.Is, not pointer identity.
	require.True(t, errors.Is(Errorf(CodeNoMatch, NewLocation(), "x"), ErrNoMatch))
}

func TestErrorMessage(t *testing.T) {
	pos := NewLocation()
	pos[UnitLine].Start = 2
	pos[UnitChar].Start = 4
	err := Errorf(CodeBadRegex, pos, "unbalanced %q", "(")
	require.Equal(t, `3:5: unbalanced "("`, err.Error())
}
