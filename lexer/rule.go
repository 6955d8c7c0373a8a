package lexer

// Sentinel token codes returned by generated lexers. User rule ids are
// always >= 0.
const (
	TokenEOF   = -1
	TokenError = -2
)

// A Rule pairs a definition with the action code to run when it
// matches. Rules dispatch in insertion order; the first rule whose
// definition reports anything but "no match" wins.
type Rule struct {
	id     int
	name   string
	def    Definition
	action []byte
}

// AddRule appends a rule to the database's chain. Rule ids are dense
// from zero so they double as token codes.
func (db *Database) AddRule(name string, def Definition, action []byte) (*Rule, error) {
	if def == nil {
		return nil, Errorf(CodeNullPointer, NewLocation(), "rule %q has no definition", name)
	}
	if len(db.rules) >= MaxRules {
		return nil, Errorf(CodeMaxLength, NewLocation(), "too many rules (max %d)", MaxRules)
	}
	r := &Rule{id: len(db.rules), name: name, def: def, action: action}
	db.rules = append(db.rules, r)
	return r, nil
}

// Rules returns the rule chain in dispatch order.
func (db *Database) Rules() []*Rule { return db.rules }

func (r *Rule) ID() int                { return r.id }
func (r *Rule) Name() string           { return r.name }
func (r *Rule) Definition() Definition { return r.def }
func (r *Rule) Action() []byte         { return r.action }
