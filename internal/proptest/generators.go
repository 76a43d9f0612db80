package proptest

import (
	"fmt"
	"math/rand"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/extensions"
)

// varNames is the naming sequence generated Lets draw from: a Let declares
// varNames[k], where k is the number of variables in scope at that point
// (modulo len(varNames)).
var varNames = []string{"a", "b", "c", "d", "e", "f", "g", "h"}

// genState threads the set of names already bound in the generated
// program's enclosing scopes, so GenTerm never references a variable that
// hasn't been let-bound yet.
type genState struct {
	bound []string
	depth int
}

func (s genState) child() genState {
	return genState{bound: append([]string(nil), s.bound...), depth: s.depth + 1}
}

func (s *genState) declare() string {
	name := varNames[len(s.bound)%len(varNames)]
	s.bound = append(s.bound, name)
	return name
}

func (s genState) pick(r *rand.Rand) (astfr.LVal, bool) {
	if len(s.bound) == 0 {
		return astfr.LVal{}, false
	}
	name := s.bound[r.Intn(len(s.bound))]
	lv := astfr.NewLVal(name)

	if r.Intn(3) == 0 {
		lv = lv.Deref()
	}

	return lv, true
}

// GenTerm produces a bounded-depth FeatherweightRust term named from
// varNames: depth bounded by size, drawing on core constructs plus the
// if-else and tuple extensions. Names are counted per scope, so a term
// whose nested blocks declare variables is not necessarily accepted by
// enumproc.Canonical.
func GenTerm(extended bool) Generator[astfr.Term] {
	return func(r *rand.Rand, size int) astfr.Term {
		if size <= 0 {
			size = 4
		}

		st := genState{}

		return genBlock(r, size, &st, extended)
	}
}

func genBlock(r *rand.Rand, fuel int, st *genState, extended bool) *astfr.Block {
	inner := st.child()

	n := 1 + r.Intn(3)
	terms := make([]astfr.Term, 0, n)

	for i := 0; i < n; i++ {
		terms = append(terms, genStmt(r, fuel-1, &inner, extended))
	}

	return &astfr.Block{Terms: terms}
}

func genStmt(r *rand.Rand, fuel int, st *genState, extended bool) astfr.Term {
	if fuel <= 0 || len(st.bound) == 0 {
		rhs := genLeaf(r, st)
		name := st.declare()
		return &astfr.Let{Name: name, Rhs: rhs}
	}

	choices := 3
	if extended {
		choices = 5
	}

	switch r.Intn(choices) {
	case 0:
		rhs := genRhs(r, fuel, st, extended)
		name := st.declare()
		return &astfr.Let{Name: name, Rhs: rhs}
	case 1:
		if lv, ok := st.pick(r); ok {
			return &astfr.Assign{LVal: lv, Rhs: genLeaf(r, st)}
		}
		rhs := genLeaf(r, st)
		name := st.declare()
		return &astfr.Let{Name: name, Rhs: rhs}
	case 2:
		if lv, ok := st.pick(r); ok {
			return &astfr.Access{Kind: astfr.AccessKind(r.Intn(3)), LVal: lv}
		}
		rhs := genLeaf(r, st)
		name := st.declare()
		return &astfr.Let{Name: name, Rhs: rhs}
	case 3:
		return genIfElse(r, fuel, st, extended)
	default:
		return genTuple(r, fuel, st, extended)
	}
}

func genRhs(r *rand.Rand, fuel int, st *genState, extended bool) astfr.Term {
	switch r.Intn(4) {
	case 0:
		return genLeaf(r, st)
	case 1:
		if lv, ok := st.pick(r); ok {
			return &astfr.Borrow{Mut: r.Intn(2) == 0, LVal: lv}
		}
		return genLeaf(r, st)
	case 2:
		return &astfr.BoxTerm{Inner: genLeaf(r, st)}
	default:
		return genBlock(r, fuel-1, st, extended)
	}
}

func genLeaf(r *rand.Rand, st *genState) astfr.Term {
	if lv, ok := st.pick(r); ok && r.Intn(2) == 0 {
		return &astfr.Access{Kind: astfr.AccessMove, LVal: lv}
	}

	return &astfr.IntLit{Value: int64(r.Intn(64))}
}

func genIfElse(r *rand.Rand, fuel int, st *genState, extended bool) astfr.Term {
	left, okLeft := st.pick(r)
	right, okRight := st.pick(r)

	if !okLeft || !okRight {
		left = astfr.NewLVal(st.declare())
		right = left
	}

	return &extensions.IfElse{
		Left:   left,
		Right:  right,
		Negate: r.Intn(2) == 0,
		Then:   genBlock(r, fuel-1, st, extended),
		Else:   genBlock(r, fuel-1, st, extended),
	}
}

func genTuple(r *rand.Rand, fuel int, st *genState, extended bool) astfr.Term {
	n := 1 + r.Intn(3)
	elems := make([]astfr.Term, 0, n)

	for i := 0; i < n; i++ {
		elems = append(elems, genLeaf(r, st))
	}

	_ = fuel
	_ = extended

	return &extensions.TupleLit{Elems: elems}
}

// ShrinkTerm collapses a generated term toward its simplest leaf and
// toward dropping trailing block statements, the two reductions that
// matter most when minimizing a counterexample to the Soundness or
// Determinism properties.
func ShrinkTerm() Shrinker[astfr.Term] {
	return func(t astfr.Term) []astfr.Term {
		switch n := t.(type) {
		case *astfr.Block:
			if len(n.Terms) <= 1 {
				return nil
			}

			out := make([]astfr.Term, 0, len(n.Terms))

			for i := range n.Terms {
				trimmed := make([]astfr.Term, 0, len(n.Terms)-1)
				trimmed = append(trimmed, n.Terms[:i]...)
				trimmed = append(trimmed, n.Terms[i+1:]...)
				out = append(out, &astfr.Block{Terms: trimmed})
			}

			return out
		case *astfr.Let:
			return []astfr.Term{n.Rhs}
		case *extensions.IfElse:
			return []astfr.Term{n.Then, n.Else}
		case *extensions.TupleLit:
			if len(n.Elems) == 0 {
				return nil
			}

			return []astfr.Term{n.Elems[0]}
		default:
			return nil
		}
	}
}

// FormatTerm renders a term for failure reporting; it is just t.String()
// wrapped so call sites don't need to reach into astfr directly.
func FormatTerm(t astfr.Term) string {
	return fmt.Sprintf("%s", t)
}
