package astfr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fwrust/fwrust/internal/position"
)

// Term is any node of FeatherweightRust's term grammar. It is
// deliberately a plain (non-sealed) interface rather than a closed
// tagged union: spec §4.6 asks extensions to introduce new term kinds
// (if/else, tuple literals, calls) that the core dispatcher does not
// know about, so new Term implementations must be definable outside this
// package.
type Term interface {
	Span() position.Span
	String() string
}

// AccessKind distinguishes the four ways spec §3 lets a term read a
// variable's current l-value.
type AccessKind int

const (
	AccessUnspecified AccessKind = iota // '?lv' -- resolved to Move or Copy by inference (spec §9)
	AccessMove                          // bare 'lv'
	AccessCopy                          // '!lv' explicit copy
	AccessTemp                          // used internally for RHS evaluation that never updates R
)

func (k AccessKind) String() string {
	switch k {
	case AccessMove:
		return "move"
	case AccessCopy:
		return "copy"
	case AccessTemp:
		return "temp"
	default:
		return "unspecified"
	}
}

// Variable is a bare identifier used where evaluation order needs to name
// a location without committing to move/copy semantics yet (internal to
// the reducer's substitution steps; the surface grammar instead produces
// Access nodes).
type Variable struct {
	Sp   position.Span
	Name string
}

func (v *Variable) Span() position.Span { return v.Sp }
func (v *Variable) String() string      { return v.Name }

// IntLit is an integer literal term and also an integer value.
type IntLit struct {
	Sp    position.Span
	Value int64
}

func (n *IntLit) Span() position.Span { return n.Sp }
func (n *IntLit) String() string      { return strconv.FormatInt(n.Value, 10) }

// Let introduces x, binding it to the value of Rhs (spec §4.5 Let rule).
type Let struct {
	Sp   position.Span
	Name string
	Rhs  Term
}

func (l *Let) Span() position.Span { return l.Sp }
func (l *Let) String() string      { return fmt.Sprintf("let mut %s = %s", l.Name, l.Rhs) }

// Assign writes the value of Rhs to LVal (spec §4.5 Assign rule).
type Assign struct {
	Sp   position.Span
	LVal LVal
	Rhs  Term
}

func (a *Assign) Span() position.Span { return a.Sp }
func (a *Assign) String() string      { return fmt.Sprintf("%s = %s", a.LVal, a.Rhs) }

// Access reads LVal under the given kind (move/copy/unspecified).
type Access struct {
	Sp   position.Span
	Kind AccessKind
	LVal LVal
}

func (a *Access) Span() position.Span { return a.Sp }
func (a *Access) String() string {
	switch a.Kind {
	case AccessCopy:
		return "!" + a.LVal.String()
	case AccessUnspecified:
		return "?" + a.LVal.String()
	default:
		return a.LVal.String()
	}
}

// Borrow produces a reference to LVal (spec §4.5 Borrow shared/mut rules).
type Borrow struct {
	Sp   position.Span
	Mut  bool
	LVal LVal
}

func (b *Borrow) Span() position.Span { return b.Sp }
func (b *Borrow) String() string {
	if b.Mut {
		return "&mut " + b.LVal.String()
	}

	return "&" + b.LVal.String()
}

// BoxTerm allocates its operand's value on the heap (spec §4.5 Box rule).
type BoxTerm struct {
	Sp    position.Span
	Inner Term
}

func (b *BoxTerm) Span() position.Span { return b.Sp }
func (b *BoxTerm) String() string      { return "box " + b.Inner.String() }

// Block is a lexical scope: spec's Block(ℓ, e₁…eₙ). ℓ is not stored on
// the node — it is freshly created by whichever process (checker or
// machine) visits the block, as a child of the lifetime that process was
// already carrying (spec §4.3/§4.5: "introduce ℓ as child of the
// enclosing lifetime").
type Block struct {
	Sp    position.Span
	Terms []Term
}

func (b *Block) Span() position.Span { return b.Sp }
func (b *Block) String() string {
	var parts []string
	for _, t := range b.Terms {
		parts = append(parts, t.String())
	}

	return "{ " + strings.Join(parts, "; ") + " }"
}

// Value is the subset of terms that a reduction can end on. Like Term,
// it is open: extensions add tuple values.
type Value interface {
	Term
	IsValue()
}

func (n *IntLit) IsValue() {}

// Location is a runtime-only value: the address of a store cell. It
// never appears in parsed source (spec §3: "A Location is a runtime-only
// value").
type Location struct {
	Sp   position.Span
	Addr int
}

func (l *Location) Span() position.Span { return l.Sp }
func (l *Location) String() string      { return fmt.Sprintf("#%d", l.Addr) }
func (l *Location) IsValue()            {}

// UnitVal is the value of an empty extension result (e.g. an if/else
// branch that is itself a no-op block).
type UnitVal struct {
	Sp position.Span
}

func (u *UnitVal) Span() position.Span { return u.Sp }
func (u *UnitVal) String() string      { return "()" }
func (u *UnitVal) IsValue()            {}

// TupleVal is the runtime value of a reduced tuple constructor (spec
// §4.6 Tuples). It lives in the core value union — rather than in the
// tuples extension package — because field-projection path resolution
// (spec §4.2, core) must be able to index into it regardless of which
// extensions are loaded.
type TupleVal struct {
	Sp    position.Span
	Elems []Value
}

func (t *TupleVal) Span() position.Span { return t.Sp }
func (t *TupleVal) IsValue()            {}
func (t *TupleVal) String() string {
	var parts []string
	for _, e := range t.Elems {
		parts = append(parts, e.String())
	}

	return "(" + strings.Join(parts, ", ") + ")"
}
