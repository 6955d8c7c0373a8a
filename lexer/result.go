package lexer

import (
	"errors"
	"fmt"
)

// Code identifies the outcome of an operation. The set is closed: every
// error the runtime or the compiler can produce carries one of these.
type Code int

const (
	CodeOK Code = iota

	// Soft signals. The caller either provides more input or stops.
	CodeMoreNeeded
	CodeEOF
	CodeNoMatch

	// Input shape.
	CodeBadUTF8
	CodeBadRegex
	CodeEmptyDefinition
	CodeBadMultiType

	// Structural.
	CodeNullPointer
	CodeChainInsert
	CodeDefinitionTypeMismatch
	CodeNotARule
	CodeUnresolvedDefinition
	CodeNotFound

	// Bounds.
	CodeBadStart
	CodeBadLength
	CodeBadOffset
	CodeBadAfter
	CodeBadID
	CodeBadMin
	CodeBadMax
	CodeBadHash
	CodeMaxLength
	CodeSubTokensExhausted
	CodeInfiniteLoop

	// I/O and classification.
	CodeFileOpen
	CodeFileRead
	CodeFileWrite
	CodeFileMmap
	CodeFileSize
	CodeFileEmpty
	CodeFileDescriptor
	CodeCat
	CodeUnit
	CodeRegex

	// Generic.
	CodeToken
	CodeState
	CodeNotImplemented
)

var codeNames = [...]string{
	CodeOK:                     "ok",
	CodeMoreNeeded:             "more bytes needed",
	CodeEOF:                    "end of input",
	CodeNoMatch:                "no match",
	CodeBadUTF8:                "bad UTF-8",
	CodeBadRegex:               "bad regular expression",
	CodeEmptyDefinition:        "empty definition",
	CodeBadMultiType:           "mixed combinator types",
	CodeNullPointer:            "null pointer",
	CodeChainInsert:            "chain insert",
	CodeDefinitionTypeMismatch: "definition type mismatch",
	CodeNotARule:               "not a rule",
	CodeUnresolvedDefinition:   "unresolved definition",
	CodeNotFound:               "not found",
	CodeBadStart:               "bad start",
	CodeBadLength:              "bad length",
	CodeBadOffset:              "bad offset",
	CodeBadAfter:               "bad after",
	CodeBadID:                  "bad id",
	CodeBadMin:                 "bad minimum",
	CodeBadMax:                 "bad maximum",
	CodeBadHash:                "bad hash",
	CodeMaxLength:              "maximum length exceeded",
	CodeSubTokensExhausted:     "sub-tokens exhausted",
	CodeInfiniteLoop:           "infinite loop",
	CodeFileOpen:               "file open",
	CodeFileRead:               "file read",
	CodeFileWrite:              "file write",
	CodeFileMmap:               "file mmap",
	CodeFileSize:               "file size",
	CodeFileEmpty:              "file empty",
	CodeFileDescriptor:         "file descriptor",
	CodeCat:                    "bad category",
	CodeUnit:                   "bad unit",
	CodeRegex:                  "regex engine",
	CodeToken:                  "bad token",
	CodeState:                  "bad state",
	CodeNotImplemented:         "not implemented",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("Code(%d)", int(c))
	}
	return codeNames[c]
}

// Soft signals, compared with errors.Is. They carry no position: the
// caller owns the input buffer and already knows where it stands.
var (
	ErrMoreNeeded = &Error{Code: CodeMoreNeeded}
	ErrEOF        = &Error{Code: CodeEOF}
	ErrNoMatch    = &Error{Code: CodeNoMatch}
)

// Error is an error with a code and the four-axis position at which it
// was observed.
type Error struct {
	Code    Code
	Pos     Location
	Message string
}

// Errorf creates a new Error at the given position.
func Errorf(code Code, pos Location, format string, args ...interface{}) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Is matches any error carrying the same code, so the soft sentinels
// work with errors.Is regardless of how the error was constructed.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos[UnitLine].Start+1, e.Pos[UnitChar].Start+1, msg)
}

// CodeOf extracts the Code from an error, or CodeState if the error was
// not produced by this package. A nil error is CodeOK.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeState
}

// IsSoft reports whether err is one of the soft signals.
func IsSoft(err error) bool {
	switch CodeOf(err) {
	case CodeMoreNeeded, CodeEOF, CodeNoMatch:
		return err != nil
	}
	return false
}
