package lexer

import "fmt"

// Unit is one of the four axes a position is tracked on.
type Unit int

const (
	UnitByte Unit = iota
	UnitChar
	UnitGrapheme
	UnitLine

	NumUnits
)

var unitNames = [...]string{"byte", "char", "grapheme", "line"}

func (u Unit) String() string {
	if u < 0 || u >= NumUnits {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitNames[u]
}

// NoReset is the After sentinel meaning "continue from end-of-token".
const NoReset = -1

// Span is the extent of something on one axis.
//
// Start is absolute from the input origin. After is either NoReset or
// the absolute position the axis is set to on the step following this
// span; the char and grapheme axes use it to return to column zero after
// a line separator. Hash is a rolling value over the consumed bytes,
// formed by shifting left eight bits and OR-ing each byte in.
type Span struct {
	Start  int
	Length int
	After  int
	Hash   uint64
}

// Location is a position or extent on all four axes at once.
type Location [NumUnits]Span

// NewLocation returns a Location at the input origin.
func NewLocation() Location {
	var l Location
	for u := range l {
		l[u].After = NoReset
	}
	return l
}

// uninitializedLocation marks a state that has not lexed yet.
func uninitializedLocation() Location {
	l := NewLocation()
	for u := range l {
		l[u].Start = -1
	}
	return l
}

// advance commits a matched extent: on each axis the start either moves
// by the matched length or, when the extent requested a reset, jumps to
// the absolute After position.
func (l *Location) advance(tok Location) {
	for u := range l {
		if tok[u].After == NoReset {
			l[u].Start += tok[u].Length
		} else {
			l[u].Start = tok[u].After
		}
	}
}

// add accumulates one grapheme extent into a growing token extent.
// Lengths and hashes always grow; the char and grapheme After values
// track the column relative to the most recent line separator.
func (l *Location) add(g Location) {
	for u := range l {
		l[u].Length += g[u].Length
		l[u].Hash = l[u].Hash<<(8*uint(g[UnitByte].Length)) | g[u].Hash
	}
	for _, u := range []Unit{UnitChar, UnitGrapheme} {
		switch {
		case g[u].After != NoReset:
			l[u].After = g[u].After
		case l[u].After != NoReset:
			l[u].After += g[u].Length
		}
	}
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l[UnitLine].Start+1, l[UnitChar].Start+1)
}

// hashBytes extends a rolling hash with each byte of b.
func hashBytes(h uint64, b []byte) uint64 {
	for _, c := range b {
		h = h<<8 | uint64(c)
	}
	return h
}
