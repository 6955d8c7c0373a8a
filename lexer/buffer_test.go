package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferAppend(t *testing.T) {
	buf := NewStreamBuffer()
	require.NoError(t, buf.Append([]byte("ab")))
	require.NoError(t, buf.Append([]byte("cd")))
	require.Equal(t, 4, buf.Written())
	require.Equal(t, []byte("abcd"), buf.Bytes())

	buf.SetEOF()
	err := buf.Append([]byte("ef"))
	require.Equal(t, CodeChainInsert, CodeOf(err))
}

func TestBufferChain(t *testing.T) {
	first := NewStreamBuffer()
	second := NewBuffer([]byte("cd"))
	require.NoError(t, first.Append([]byte("ab")))
	require.NoError(t, first.Chain(second))
	require.Same(t, second, first.Next())
	require.True(t, first.atEOF())

	err := first.Chain(NewBuffer(nil))
	require.Equal(t, CodeChainInsert, CodeOf(err))
}

func TestCursorAcrossChain(t *testing.T) {
	first := &Buffer{data: []byte("ab")}
	require.NoError(t, first.Chain(NewBuffer([]byte("cd"))))

	cur := cursor{buf: first}
	b, ok := cur.peek(2)
	require.True(t, ok)
	require.Equal(t, byte('c'), b)
	_, ok = cur.peek(4)
	require.False(t, ok)

	require.Equal(t, []byte("abc"), cur.take(3))
	require.Equal(t, []byte("d"), cur.rest())
}

func TestNewReaderBuffer(t *testing.T) {
	buf, err := NewReaderBuffer(strings.NewReader("hello"))
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), buf.Bytes())
	require.True(t, buf.EOF())
}
