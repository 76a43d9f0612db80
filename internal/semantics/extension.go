package semantics

import (
	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/lifetime"
)

// Extension is the semantics half of spec §4.6's two extension points.
// It receives the current (state, lifetime, term) and the full chain it
// was registered in (so it can recurse into Step for its own sub-terms,
// e.g. a tuple literal nested inside another tuple literal) and either
// reduces the term one step and reports handled=true, or declines by
// returning handled=false so the next extension in the chain gets a
// turn.
type Extension interface {
	TryStep(m Machine, ell lifetime.ID, term astfr.Term, exts []Extension) (next Machine, result astfr.Term, handled bool, err *diagnostic.Diagnostic)
}

// IsValue reports whether term is already fully reduced.
func IsValue(term astfr.Term) bool {
	_, ok := term.(astfr.Value)

	return ok
}
