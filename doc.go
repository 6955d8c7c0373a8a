// Package glex compiles lexicon files into lexical analyzers.
//
// A lexicon file has three sections separated by %% lines. The first
// declares named definitions: literals in double quotes, regular
// expressions, references to Unicode category names such as LETTER or
// ND, and composites that sequence or alternate other definitions with
// optional * and + multiplicities. The second pairs match bodies with
// { action } blocks to form the rule chain; rules dispatch in order and
// the first match wins. The third is user code carried verbatim into
// the generated source.
//
//	DIGIT ND
//	INT DIGIT+
//	%%
//	INT { return 1 }
//	[ \t]+ { }
//	%%
//
// Parse compiles a lexicon into a Grammar, whose database can lex
// input directly through the engine in package lexer. Emit writes Go
// source that rebuilds the same database and exposes the classical
// Init, NextToken, Lex and Teardown entry points.
package glex
