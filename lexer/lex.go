package lexer

import (
	"errors"
	"fmt"
)

// Next produces the next token by walking the rule chain in insertion
// order at the state's current position.
//
// MoreNeeded propagates unchanged: the caller owns the buffer and
// either appends input or flags EOF before retrying. NoMatch from a
// rule moves on to the next rule; NoMatch from Next itself means no
// rule matched at this position. The walk never backtracks across
// rules, so longest-match must be expressed by rule order.
func (s *State) Next(db *Database) (*Token, error) {
	if s.loc[UnitByte].Start < 0 {
		s.loc = NewLocation()
	}
	// Sub-tokens from the previous step die here.
	s.arena.release(0)
	for s.cur.off >= len(s.cur.buf.data) {
		if s.cur.buf.next == nil {
			if s.cur.buf.eof {
				return nil, ErrEOF
			}
			return nil, ErrMoreNeeded
		}
		s.cur.buf = s.cur.buf.next
		s.cur.off = 0
	}
	for _, rule := range db.rules {
		if s.settings.Trace != nil {
			fmt.Fprintf(s.settings.Trace, "%s: trying %q\n", s.loc, rule.name)
		}
		tok, err := rule.def.Lex(s)
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tok.Rule = rule
		s.commit(tok)
		if s.settings.Trace != nil {
			fmt.Fprintf(s.settings.Trace, "%s: matched %q %q\n", tok.Loc, rule.name, tok.Value)
		}
		return tok, nil
	}
	return nil, ErrNoMatch
}

// ConsumeAll reads tokens until end of input.
func ConsumeAll(s *State, db *Database) ([]*Token, error) {
	var tokens []*Token
	for {
		tok, err := s.Next(db)
		if errors.Is(err, ErrEOF) {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}
