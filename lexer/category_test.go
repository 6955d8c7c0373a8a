package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		r   rune
		cat Category
	}{
		{'a', CatLl},
		{'A', CatLu},
		{'0', CatNd},
		{'_', CatPc},
		{' ', CatZs},
		{'\t', CatCc},
		{'\n', CatCc | CatLineSep},
		{'\v', CatCc | CatLineSep},
		{'\f', CatCc | CatLineSep},
		{'\r', CatCc | CatLineSep},
		{0x85, CatCc | CatLineSep},
		{0x2028, CatZl | CatLineSep},
		{0x2029, CatZp | CatLineSep},
		{'é', CatLl},
		{0x0301, CatMn},
		{'$', CatSc},
		{'+', CatSm},
	}
	for _, test := range tests {
		require.Equal(t, test.cat, Classify(test.r), "%q", test.r)
	}
}

func TestCategoryFormat(t *testing.T) {
	tests := []struct {
		cat  Category
		text string
	}{
		{CatLetter, "LETTER"},
		{CatLu | CatLl, "LU|LL"},
		{CatAny, "ANY"},
		{CatWhitespace, "WHITESPACE"},
		{CatZs, "HSPACE"},
		{CatZl | CatZp | CatLineSep, "VSPACE"},
		{CatAny &^ CatLetter, "NOT_LETTER"},
		{CatNd, "ND"},
	}
	for _, test := range tests {
		require.Equal(t, test.text, test.cat.Format())
	}
}

func TestParseCategory(t *testing.T) {
	cat, err := ParseCategory("LETTER")
	require.NoError(t, err)
	require.Equal(t, CatLetter, cat)

	cat, err = ParseCategory("lu|ll")
	require.NoError(t, err)
	require.Equal(t, CatLu|CatLl, cat)

	_, err = ParseCategory("BOGUS")
	require.Equal(t, CodeCat, CodeOf(err))
}

func TestCategoryRoundTrip(t *testing.T) {
	for _, cat := range []Category{
		CatLetter, CatNum, CatWhitespace, CatAny,
		CatLu | CatNd, CatAny &^ CatPunct, CatMn | CatMc | CatMe,
	} {
		parsed, err := ParseCategory(cat.Format())
		require.NoError(t, err)
		require.Equal(t, cat, parsed, "%s", cat.Format())
	}
}
