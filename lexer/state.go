package lexer

import "io"

// MaxSubTokens is the capacity of the per-session sub-token arena.
// Composite matches that need more slots fail with SubTokensExhausted;
// the arena never grows.
const MaxSubTokens = 256

// Settings carried by a lex session.
type Settings struct {
	Trace  io.Writer // nil disables tracing
	Input  string
	Output string
}

// arena is a flat, pre-allocated pool of sub-token slots shared between
// a state and any nested states created during composite matching.
// Slots are handed out monotonically and reclaimed in bulk.
type arena struct {
	slots [MaxSubTokens]SubToken
	used  int
}

func (a *arena) alloc() (*SubToken, error) {
	if a.used >= len(a.slots) {
		return nil, Errorf(CodeSubTokensExhausted, NewLocation(), "sub-token arena exhausted")
	}
	st := &a.slots[a.used]
	*st = SubToken{}
	a.used++
	return st, nil
}

// release drops every slot allocated at or after mark.
func (a *arena) release(mark int) { a.used = mark }

// State is the mutable half of a lex session: the read cursor, the
// absolute four-axis position, the sub-token arena and the settings.
// Definitions and rules are immutable after resolution and may be
// shared; each session owns its State.
type State struct {
	cur      cursor
	loc      Location
	arena    *arena
	settings Settings
}

// NewState starts a session at the beginning of a buffer chain.
func NewState(buf *Buffer, settings Settings) *State {
	return &State{
		cur:      cursor{buf: buf},
		loc:      uninitializedLocation(),
		arena:    &arena{},
		settings: settings,
	}
}

// Loc returns the absolute position of the next read.
func (s *State) Loc() Location { return s.loc }

// Settings returns the session settings.
func (s *State) Settings() Settings { return s.settings }

// nested returns a scratch state starting where s stands, sharing the
// outer arena. Composite definitions lex inside one of these so that a
// failed branch leaves the outer state untouched.
func (s *State) nested() *State {
	return &State{cur: s.cur, loc: s.loc, arena: s.arena, settings: s.settings}
}

// commit applies a matched extent: advances the four-axis position per
// the token's lengths and resets, and moves the read cursor past the
// matched bytes.
func (s *State) commit(tok *Token) {
	s.loc.advance(tok.Loc)
	n := tok.Loc[UnitByte].Length
	for n > 0 {
		avail := len(s.cur.buf.data) - s.cur.off
		if avail > n {
			avail = n
		}
		s.cur.off += avail
		n -= avail
		if n > 0 {
			s.cur.buf = s.cur.buf.next
			s.cur.off = 0
		}
	}
}

// begin stamps a token's start positions from the state, satisfying the
// entry invariant that token starts equal the state's position.
func (s *State) begin(tok *Token) {
	if s.loc[UnitByte].Start < 0 {
		s.loc = NewLocation()
	}
	for u := range tok.Loc {
		tok.Loc[u].Start = s.loc[u].Start
		tok.Loc[u].Length = 0
		tok.Loc[u].After = NoReset
		tok.Loc[u].Hash = 0
	}
}
