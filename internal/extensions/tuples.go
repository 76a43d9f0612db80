package extensions

import (
	"strings"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/position"
	"github.com/fwrust/fwrust/internal/semantics"
	"github.com/fwrust/fwrust/internal/typesys"
)

// TupleLit is the constructor term `(t1, ..., tn)` (spec §4.6 Tuples).
// Field projection itself is core (astfr.Path's ElemField, resolved by
// both internal/checker and internal/semantics without this package's
// help); only the literal's own typing and reduction rules are an
// extension concern.
type TupleLit struct {
	Sp    position.Span
	Elems []astfr.Term
}

func (t *TupleLit) Span() position.Span { return t.Sp }
func (t *TupleLit) String() string {
	var parts []string
	for _, e := range t.Elems {
		parts = append(parts, e.String())
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

// TuplesExt types and reduces TupleLit. Tuples move componentwise (spec
// §4.6: "tuples move componentwise"): type-checking threads the
// environment through each component left to right exactly as Block
// does for a sequence of terms.
type TuplesExt struct{}

func (TuplesExt) TryCheck(c *checker.Checker, env typesys.Environment, ell lifetime.ID, term astfr.Term) (astfr.Type, typesys.Environment, bool, *diagnostic.Diagnostic) {
	t, ok := term.(*TupleLit)
	if !ok {
		return astfr.Type{}, env, false, nil
	}

	cur := env
	elemTypes := make([]astfr.Type, len(t.Elems))

	for i, e := range t.Elems {
		typ, next, err := c.Check(cur, ell, e)
		if err != nil {
			return astfr.Type{}, env, true, err
		}

		elemTypes[i] = typ
		cur = next
	}

	return astfr.TupleOf(elemTypes...), cur, true, nil
}

// TryStep reduces the leftmost not-yet-reduced component, matching the
// leftmost-innermost order Step uses for every other multi-subterm form;
// once every component is a value, the literal reduces to a TupleVal in
// one further step.
func (TuplesExt) TryStep(m semantics.Machine, ell lifetime.ID, term astfr.Term, exts []semantics.Extension) (semantics.Machine, astfr.Term, bool, *diagnostic.Diagnostic) {
	t, ok := term.(*TupleLit)
	if !ok {
		return m, term, false, nil
	}

	for i, e := range t.Elems {
		if semantics.IsValue(e) {
			continue
		}

		nm, ne, err := semantics.Step(m, ell, e, exts)
		if err != nil {
			return m, term, true, err
		}

		rest := make([]astfr.Term, len(t.Elems))
		copy(rest, t.Elems)
		rest[i] = ne

		return nm, &TupleLit{Sp: t.Sp, Elems: rest}, true, nil
	}

	values := make([]astfr.Value, len(t.Elems))
	for i, e := range t.Elems {
		values[i] = e.(astfr.Value)
	}

	return m, &astfr.TupleVal{Sp: t.Sp, Elems: values}, true, nil
}
