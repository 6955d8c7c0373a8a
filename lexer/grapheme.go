package lexer

import (
	"errors"
	"unicode/utf8"
)

// Internal decode outcomes, mapped to soft signals or BadUTF8 by the
// reader depending on whether the chain can still grow.
var (
	errNoBytes = errors.New("no bytes")
	errShort   = errors.New("short rune")
	errInvalid = errors.New("invalid encoding")
)

// decodeRune decodes one codepoint at the cursor, following the buffer
// chain, without advancing.
func decodeRune(c cursor) (rune, int, error) {
	b0, ok := c.peek(0)
	if !ok {
		return 0, 0, errNoBytes
	}
	var n int
	switch {
	case b0 < 0x80:
		return rune(b0), 1, nil
	case b0 < 0xC0:
		return 0, 0, errInvalid
	case b0 < 0xE0:
		n = 2
	case b0 < 0xF0:
		n = 3
	case b0 < 0xF8:
		n = 4
	default:
		return 0, 0, errInvalid
	}
	buf := make([]byte, n)
	buf[0] = b0
	for i := 1; i < n; i++ {
		b, ok := c.peek(i)
		if !ok {
			return 0, 0, errShort
		}
		buf[i] = b
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, errInvalid
	}
	return r, size, nil
}

// readGrapheme consumes one extended grapheme cluster at the cursor.
//
// It returns the per-unit extent of the cluster (byte count, codepoint
// count, one grapheme, and the number of line separators crossed, with
// the char and grapheme axes flagged for a column reset when a separator
// was consumed), the first codepoint, its category, and the consumed
// bytes. CR immediately followed by LF is one cluster; a base codepoint
// absorbs any combining marks that follow it, crossing into the next
// chained buffer if needed.
//
// When the cluster cannot be completed the reader fails with MoreNeeded
// if the chain can still grow, BadUTF8 if it cannot, and NoMatch when
// no byte at all was available on entry.
func readGrapheme(cur *cursor) (Location, rune, Category, []byte, error) {
	loc := NewLocation()
	eof := cur.buf.atEOF()
	r, n, err := decodeRune(*cur)
	switch {
	case err == errNoBytes && eof:
		return loc, 0, 0, nil, ErrNoMatch
	case (err == errNoBytes || err == errShort) && !eof:
		return loc, 0, 0, nil, ErrMoreNeeded
	case err != nil:
		return loc, 0, 0, nil, Errorf(CodeBadUTF8, loc, "invalid UTF-8 sequence")
	}
	// Read through a scratch cursor so a MoreNeeded exit leaves the
	// caller's position untouched for the retry.
	c := *cur
	cat := Classify(r)
	out := append([]byte(nil), c.take(n)...)
	chars := 1
	lines := 0
	switch {
	case cat&CatLineSep != 0:
		lines = 1
		if r == '\r' {
			// CR+LF is a single cluster. The reverse order is not.
			r2, n2, err2 := decodeRune(c)
			if (err2 == errNoBytes || err2 == errShort) && !c.buf.atEOF() {
				return loc, 0, 0, nil, ErrMoreNeeded
			}
			if err2 == nil && r2 == '\n' {
				out = append(out, c.take(n2)...)
				chars++
			}
		}
	case cat&CatMark == 0:
		// A base codepoint absorbs trailing combining marks.
		for {
			r2, n2, err2 := decodeRune(c)
			if err2 == errNoBytes || err2 == errInvalid {
				if err2 == errNoBytes && !c.buf.atEOF() {
					return loc, 0, 0, nil, ErrMoreNeeded
				}
				break
			}
			if err2 == errShort {
				if !c.buf.atEOF() {
					return loc, 0, 0, nil, ErrMoreNeeded
				}
				return loc, 0, 0, nil, Errorf(CodeBadUTF8, loc, "truncated UTF-8 sequence")
			}
			if Classify(r2)&CatMark == 0 {
				break
			}
			out = append(out, c.take(n2)...)
			chars++
		}
	}
	*cur = c
	loc[UnitByte].Length = len(out)
	loc[UnitChar].Length = chars
	loc[UnitGrapheme].Length = 1
	loc[UnitLine].Length = lines
	h := hashBytes(0, out)
	for u := range loc {
		loc[u].Hash = h
	}
	if lines > 0 {
		loc[UnitChar].After = 0
		loc[UnitGrapheme].After = 0
	}
	return loc, r, cat, out, nil
}

// measure re-reads a complete byte span through the grapheme reader,
// which is authoritative for char, grapheme and line counts.
func measure(b []byte) (Location, error) {
	cur := cursor{buf: NewBuffer(b)}
	total := NewLocation()
	for !cur.exhausted() {
		g, _, _, _, err := readGrapheme(&cur)
		if err != nil {
			return total, err
		}
		total.add(g)
	}
	return total, nil
}
