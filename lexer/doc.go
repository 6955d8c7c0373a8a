// Package lexer is the matching engine behind generated analyzers.
//
// Input is consumed one extended grapheme cluster at a time, and every
// span is tracked on four axes at once: bytes, codepoints, grapheme
// clusters and lines. A line separator pushes the codepoint and
// grapheme columns back to zero. Buffers chain to support streaming;
// when a decision cannot be made at the end of a growable buffer the
// engine reports MoreNeeded rather than guessing, so feeding input one
// byte at a time produces exactly the tokens of lexing it whole.
//
// A Database holds the immutable definitions (category, literal, regex
// and composite) and the ordered rule chain of one grammar; a State is
// the mutable half of a session. Both halves are cheap to create, and
// one database may serve many concurrent states.
package lexer
