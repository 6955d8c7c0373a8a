package glex

import (
	_ "embed"
	"fmt"
	"io"
	"text/template"

	"github.com/glexlang/glex/lexer"
)

//go:embed prologue.go.tmpl
var prologueSource string

//go:embed epilogue.go.tmpl
var epilogueSource string

// EmitOptions controls the shape of the emitted source file.
type EmitOptions struct {
	Package  string // package clause of the emitted file, default "main"
	Name     string // prefix on every emitted symbol, default none
	Source   string // lexicon file name quoted in the header comment
	Prologue []byte // replaces the built-in prologue template when set
	Epilogue []byte // replaces the built-in epilogue template when set
}

// Emit writes a Go source file that rebuilds the grammar's database and
// drives the lexing engine over it. The file is laid out as prologue,
// definitions-section code, storage, the database init function, the
// action dispatch function, rules-section code, user code and epilogue.
//
// A caller supplying its own prologue or epilogue owns what the
// built-in one provided, including the imports.
func Emit(w io.Writer, g *Grammar, opts EmitOptions) error {
	if opts.Package == "" {
		opts.Package = "main"
	}
	if opts.Source == "" {
		opts.Source = "lexicon"
	}
	ew := &errWriter{w: w}
	if err := emitTemplate(ew, opts.Prologue, prologueSource, opts); err != nil {
		return err
	}
	ew.write("\n")
	ew.writeRaw(g.DefsCode)
	emitStorage(ew, g, opts.Name)
	emitInit(ew, g, opts.Name)
	emitDispatch(ew, g, opts.Name)
	ew.writeRaw(g.RulesCode)
	ew.writeRaw(g.UserCode)
	if err := emitTemplate(ew, opts.Epilogue, epilogueSource, opts); err != nil {
		return err
	}
	return ew.err
}

func emitTemplate(ew *errWriter, override []byte, builtin string, opts EmitOptions) error {
	src := builtin
	if override != nil {
		src = string(override)
	}
	tmpl, err := template.New("emit").Parse(src)
	if err != nil {
		return lexer.Errorf(lexer.CodeFileWrite, lexer.NewLocation(), "bad template: %s", err)
	}
	if err := tmpl.Execute(ew, opts); err != nil {
		return lexer.Errorf(lexer.CodeFileWrite, lexer.NewLocation(), "template: %s", err)
	}
	return nil
}

// emitStorage declares the package-level slots, sized to the grammar.
func emitStorage(ew *errWriter, g *Grammar, name string) {
	defs := g.DB.Definitions()
	rules := g.DB.Rules()
	ew.printf("// Storage for %d definitions and %d rules.\n", len(defs), len(rules))
	ew.write("var (\n")
	ew.printf("\t%sDB    *lexer.Database\n", name)
	ew.printf("\t%sDefs  [%d]lexer.Definition\n", name, len(defs))
	ew.printf("\t%sRules [%d]*lexer.Rule\n", name, len(rules))
	ew.printf("\t%sState *lexer.State\n", name)
	ew.write(")\n\n")
}

// emitInit writes the function that rebuilds the database, definition
// by definition in creation order so that ids come out identical.
func emitInit(ew *errWriter, g *Grammar, name string) {
	ew.printf("// %sInit builds the definition and rule database.\n", name)
	ew.printf("func %sInit() error {\n", name)
	ew.write("\tdb := lexer.NewDatabase()\n")
	for _, def := range g.DB.Definitions() {
		switch d := def.(type) {
		case *lexer.CategoryDef:
			min, max := d.Bounds()
			ew.write("\t{\n")
			ew.printf("\t\tcat, err := lexer.ParseCategory(%q)\n", d.Mask().Format())
			ew.write("\t\tif err != nil {\n\t\t\treturn err\n\t\t}\n")
			ew.printf("\t\tif _, err := db.AddCategory(%q, cat, %d, %d); err != nil {\n", d.Name(), min, max)
			ew.write("\t\t\treturn err\n\t\t}\n\t}\n")
		case *lexer.LiteralDef:
			ew.printf("\tif _, err := db.AddLiteral(%q, %q); err != nil {\n", d.Name(), d.Text())
			ew.write("\t\treturn err\n\t}\n")
		case *lexer.RegexDef:
			ew.printf("\tif _, err := db.AddRegex(%q, %q); err != nil {\n", d.Name(), d.Pattern())
			ew.write("\t\treturn err\n\t}\n")
		case *lexer.CompositeDef:
			ew.write("\t{\n")
			ew.printf("\t\tc, err := db.AddComposite(%q, lexer.%s)\n", d.Name(), combinatorName(d.Op()))
			ew.write("\t\tif err != nil {\n\t\t\treturn err\n\t\t}\n")
			for _, ref := range d.Refs() {
				ew.printf("\t\tif _, err := c.AddReference(%q, %d, %d); err != nil {\n", ref.Name, ref.Min, ref.Max)
				ew.write("\t\t\treturn err\n\t\t}\n")
			}
			ew.write("\t}\n")
		}
	}
	ew.write("\tif err := db.Resolve(); err != nil {\n\t\treturn err\n\t}\n")
	for _, rule := range g.DB.Rules() {
		ew.printf("\tif _, err := db.AddRule(%q, db.Lookup(%q), nil); err != nil {\n",
			rule.Name(), rule.Definition().Name())
		ew.write("\t\treturn err\n\t}\n")
	}
	ew.write("\tfor i, d := range db.Definitions() {\n")
	ew.printf("\t\t%sDefs[i] = d\n", name)
	ew.write("\t}\n")
	ew.write("\tfor i, r := range db.Rules() {\n")
	ew.printf("\t\t%sRules[i] = r\n", name)
	ew.write("\t}\n")
	ew.printf("\t%sDB = db\n", name)
	ew.write("\treturn nil\n}\n\n")
}

// emitDispatch writes the switch running rule actions. Rule ids are
// dense from zero, so the cases double as token codes.
func emitDispatch(ew *errWriter, g *Grammar, name string) {
	ew.printf("// %sDispatch runs the action of a matched rule.\n", name)
	ew.printf("func %sDispatch(tok *lexer.Token) int {\n", name)
	ew.write("\tswitch tok.Rule.ID() {\n")
	for _, rule := range g.DB.Rules() {
		action := rule.Action()
		if len(action) == 0 {
			continue
		}
		ew.printf("\tcase %d: // %s\n", rule.ID(), rule.Name())
		ew.writeRaw(action)
		if action[len(action)-1] != '\n' {
			ew.write("\n")
		}
	}
	ew.write("\t}\n")
	ew.printf("\treturn %sContinue\n}\n\n", name)
}

func combinatorName(op lexer.Combinator) string {
	if op == lexer.Alternation {
		return "Alternation"
	}
	return "Sequence"
}

// errWriter folds the error checks of many small writes into one. A
// short write surfaces as the first error and later writes are skipped.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		ew.err = lexer.Errorf(lexer.CodeFileWrite, lexer.NewLocation(), "emit: %s", err)
	}
	return n, ew.err
}

func (ew *errWriter) write(s string)               { ew.Write([]byte(s)) }
func (ew *errWriter) writeRaw(b []byte)            { ew.Write(b) }
func (ew *errWriter) printf(f string, args ...any) { fmt.Fprintf(ew, f, args...) }
