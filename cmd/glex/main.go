package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/glexlang/glex"
	"github.com/glexlang/glex/lexer"
)

var (
	version string = "dev"
	cli     struct {
		Version kong.VersionFlag
		Tracing bool   `help:"Trace rule dispatch while tokenizing the lexicon."`
		Package string `default:"main" help:"Go package of the generated file."`
		Name    string `help:"Prefix on every generated symbol."`
		Output  string `short:"o" help:"Output file (stdout if omitted)."`
		Lexicon string `arg:"" type:"existingfile" help:"Lexicon file to compile."`
	}
)

func main() {
	kong.Parse(&cli,
		kong.Description(`Compiles a lexicon file into Go lexer source.`),
		kong.Vars{"version": version},
	)
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "glex: %s\n", err)
		os.Exit(int(lexer.CodeOf(err)))
	}
}

func run() error {
	src, err := os.ReadFile(cli.Lexicon)
	if err != nil {
		return lexer.Errorf(lexer.CodeFileRead, lexer.NewLocation(), "%s: %s", cli.Lexicon, err)
	}
	var g *glex.Grammar
	if cli.Tracing {
		g, err = glex.ParseTrace(src, os.Stderr)
	} else {
		g, err = glex.Parse(src)
	}
	if err != nil {
		return err
	}
	out := os.Stdout
	if cli.Output != "" {
		out, err = os.Create(cli.Output)
		if err != nil {
			return lexer.Errorf(lexer.CodeFileOpen, lexer.NewLocation(), "%s: %s", cli.Output, err)
		}
		defer out.Close()
	}
	return glex.Emit(out, g, glex.EmitOptions{
		Package: cli.Package,
		Name:    cli.Name,
		Source:  cli.Lexicon,
	})
}
