package lexer

import (
	"strings"
	"unicode"
)

// Category is a bitmask over the thirty Unicode general categories plus
// one extra bit for the extended line-separator family (LF, VT, FF, CR,
// NEL, LS, PS). Classify sets exactly one general-category bit, OR-ed
// with CatLineSep where applicable.
type Category uint32

const (
	CatLu Category = 1 << iota
	CatLl
	CatLt
	CatLm
	CatLo
	CatMn
	CatMc
	CatMe
	CatNd
	CatNl
	CatNo
	CatPc
	CatPd
	CatPs
	CatPe
	CatPi
	CatPf
	CatPo
	CatSm
	CatSc
	CatSk
	CatSo
	CatZs
	CatZl
	CatZp
	CatCc
	CatCf
	CatCs
	CatCo
	CatCn
	CatLineSep
)

// Named groups over the atom bits.
const (
	CatLetter     = CatLu | CatLl | CatLt | CatLm | CatLo
	CatMark       = CatMn | CatMc | CatMe
	CatNum        = CatNd | CatNl | CatNo
	CatPunct      = CatPc | CatPd | CatPs | CatPe | CatPi | CatPf | CatPo
	CatSymbol     = CatSm | CatSc | CatSk | CatSo
	CatSeparator  = CatZs | CatZl | CatZp
	CatOther      = CatCc | CatCf | CatCs | CatCo | CatCn
	CatHSpace     = CatZs
	CatVSpace     = CatZl | CatZp | CatLineSep
	CatWhitespace = CatHSpace | CatVSpace
	CatAny        = CatLineSep | (CatLineSep - 1)
)

var atomTables = []struct {
	cat Category
	tab *unicode.RangeTable
}{
	{CatLu, unicode.Lu}, {CatLl, unicode.Ll}, {CatLt, unicode.Lt},
	{CatLm, unicode.Lm}, {CatLo, unicode.Lo},
	{CatMn, unicode.Mn}, {CatMc, unicode.Mc}, {CatMe, unicode.Me},
	{CatNd, unicode.Nd}, {CatNl, unicode.Nl}, {CatNo, unicode.No},
	{CatPc, unicode.Pc}, {CatPd, unicode.Pd}, {CatPs, unicode.Ps},
	{CatPe, unicode.Pe}, {CatPi, unicode.Pi}, {CatPf, unicode.Pf},
	{CatPo, unicode.Po},
	{CatSm, unicode.Sm}, {CatSc, unicode.Sc}, {CatSk, unicode.Sk},
	{CatSo, unicode.So},
	{CatZs, unicode.Zs}, {CatZl, unicode.Zl}, {CatZp, unicode.Zp},
	{CatCc, unicode.Cc}, {CatCf, unicode.Cf}, {CatCs, unicode.Cs},
	{CatCo, unicode.Co},
}

// Classify maps a codepoint to its category mask: exactly one general
// category bit, plus CatLineSep for the extended line separators.
func Classify(r rune) Category {
	c := CatCn
	for _, t := range atomTables {
		if unicode.Is(t.tab, r) {
			c = t.cat
			break
		}
	}
	switch r {
	case '\n', '\v', '\f', '\r', 0x85, 0x2028, 0x2029:
		c |= CatLineSep
	}
	return c
}

// Group names are checked before atoms when formatting so that a mask
// covering all of a group renders as the group.
var catGroups = []struct {
	name string
	cat  Category
}{
	{"ANY", CatAny},
	{"NOT_WHITESPACE", CatAny &^ CatWhitespace},
	{"NOT_LETTER", CatAny &^ CatLetter},
	{"NOT_NUM", CatAny &^ CatNum},
	{"NOT_PUNCT", CatAny &^ CatPunct},
	{"NOT_VSPACE", CatAny &^ CatVSpace},
	{"NOT_HSPACE", CatAny &^ CatHSpace},
	{"WHITESPACE", CatWhitespace},
	{"VSPACE", CatVSpace},
	{"LETTER", CatLetter},
	{"MARK", CatMark},
	{"NUM", CatNum},
	{"PUNCT", CatPunct},
	{"SYMBOL", CatSymbol},
	{"SEPARATOR", CatSeparator},
	{"OTHER", CatOther},
	{"HSPACE", CatHSpace},
}

var catAtoms = []struct {
	name string
	cat  Category
}{
	{"LU", CatLu}, {"LL", CatLl}, {"LT", CatLt}, {"LM", CatLm}, {"LO", CatLo},
	{"MN", CatMn}, {"MC", CatMc}, {"ME", CatMe},
	{"ND", CatNd}, {"NL", CatNl}, {"NO", CatNo},
	{"PC", CatPc}, {"PD", CatPd}, {"PS", CatPs}, {"PE", CatPe},
	{"PI", CatPi}, {"PF", CatPf}, {"PO", CatPo},
	{"SM", CatSm}, {"SC", CatSc}, {"SK", CatSk}, {"SO", CatSo},
	{"ZS", CatZs}, {"ZL", CatZl}, {"ZP", CatZp},
	{"CC", CatCc}, {"CF", CatCf}, {"CS", CatCs}, {"CO", CatCo}, {"CN", CatCn},
	{"LINE_SEP", CatLineSep},
}

var catByName = func() map[string]Category {
	m := make(map[string]Category, len(catGroups)+len(catAtoms))
	for _, g := range catGroups {
		m[g.name] = g.cat
	}
	for _, a := range catAtoms {
		m[a.name] = a.cat
	}
	return m
}()

// Format renders a mask as a canonical pipe-separated list, preferring
// group names over their constituent atoms.
func (c Category) Format() string {
	var parts []string
	rest := c
	for _, g := range catGroups {
		if rest&g.cat == g.cat {
			parts = append(parts, g.name)
			rest &^= g.cat
		}
	}
	for _, a := range catAtoms {
		if rest&a.cat != 0 {
			parts = append(parts, a.name)
			rest &^= a.cat
		}
	}
	return strings.Join(parts, "|")
}

func (c Category) String() string { return c.Format() }

// ParseCategory is the inverse of Format. Unrecognized names fail with
// a bad-category error.
func ParseCategory(s string) (Category, error) {
	var c Category
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		cat, ok := catByName[strings.ToUpper(part)]
		if !ok {
			return 0, Errorf(CodeCat, NewLocation(), "unknown category %q", part)
		}
		c |= cat
	}
	return c, nil
}
