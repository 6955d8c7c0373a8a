package main

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/exp/ebnf"
	kingpin "gopkg.in/alecthomas/kingpin.v3-unstable"
)

var (
	output  = kingpin.Flag("output", "Output lexicon file (stdout if omitted).").Short('o').String()
	grammar = kingpin.Arg("grammar", "EBNF grammar file.").Required().ExistingFile()
)

func main() {
	kingpin.CommandLine.Help = `Converts an EBNF grammar (golang.org/x/exp/ebnf syntax) into a glex
lexicon. Upper-case productions become definitions and rules returning
1-based token codes; lower-case productions are inlined.`
	kingpin.Parse()

	r, err := os.Open(*grammar)
	kingpin.FatalIfError(err, "")
	ast, err := ebnf.Parse(*grammar, r)
	r.Close()
	kingpin.FatalIfError(err, "")

	lexicon, err := convert(ast)
	kingpin.FatalIfError(err, "")

	out := os.Stdout
	if *output != "" {
		out, err = os.Create(*output)
		kingpin.FatalIfError(err, "")
		defer out.Close()
	}
	_, err = out.WriteString(lexicon)
	kingpin.FatalIfError(err, "")
}

// convert renders every exported production as a named regex definition
// plus a rule referencing it. Production order is alphabetical so the
// output is stable across runs.
func convert(ast ebnf.Grammar) (string, error) {
	names := make([]string, 0, len(ast))
	for name := range ast {
		ch := name[0:1]
		if strings.ToUpper(ch) == ch {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "", fmt.Errorf("no exported productions")
	}

	var b strings.Builder
	for _, name := range names {
		pattern, err := render(ast, ast[name].Expr, map[string]bool{name: true})
		if err != nil {
			return "", fmt.Errorf("%s: %s", name, err)
		}
		fmt.Fprintf(&b, "%s %s\n", name, pattern)
	}
	b.WriteString("%%\n")
	for i, name := range names {
		fmt.Fprintf(&b, "%s { return %d }\n", name, i+1)
	}
	b.WriteString("%%\n")
	return b.String(), nil
}

// render flattens an EBNF expression into a single regex pattern,
// inlining referenced productions. A reference cycle cannot be
// expressed as a regex and is an error.
func render(ast ebnf.Grammar, expr ebnf.Expression, seen map[string]bool) (string, error) {
	switch n := expr.(type) {
	case nil:
		return "", nil

	case *ebnf.Token:
		return regexp.QuoteMeta(n.String), nil

	case *ebnf.Name:
		if seen[n.String] {
			return "", fmt.Errorf("recursive production %q", n.String)
		}
		prod := ast[n.String]
		if prod == nil {
			return "", fmt.Errorf("unknown production %q", n.String)
		}
		seen[n.String] = true
		defer delete(seen, n.String)
		return render(ast, prod.Expr, seen)

	case ebnf.Sequence:
		var parts []string
		for _, sub := range n {
			p, err := render(ast, sub, seen)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return strings.Join(parts, ""), nil

	case ebnf.Alternative:
		var parts []string
		for _, sub := range n {
			p, err := render(ast, sub, seen)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return "(?:" + strings.Join(parts, "|") + ")", nil

	case *ebnf.Group:
		p, err := render(ast, n.Body, seen)
		if err != nil {
			return "", err
		}
		return "(?:" + p + ")", nil

	case *ebnf.Option:
		p, err := render(ast, n.Body, seen)
		if err != nil {
			return "", err
		}
		return "(?:" + p + ")?", nil

	case *ebnf.Repetition:
		p, err := render(ast, n.Body, seen)
		if err != nil {
			return "", err
		}
		return "(?:" + p + ")*", nil

	case *ebnf.Range:
		return "[" + classEscape(n.Begin.String) + "-" + classEscape(n.End.String) + "]", nil
	}
	return "", fmt.Errorf("unsupported EBNF expression %T", expr)
}

func classEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', ']', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
