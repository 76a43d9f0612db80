package checker

import (
	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/typesys"
)

// Reborrow is the named checker operation SPEC_FULL.md promotes out of
// Borrow + Dereference (§8 seed 5): borrowing through a path that starts
// with a dereference of an existing reference, producing a new borrow
// whose referent set is the dereferenced reference's own set (via
// flattenReferents), not the literal dereferencing path. checkBorrow's
// general-purpose path already resolves this correctly for the common
// case; Reborrow exists as its own entry point so callers (and tests) can
// name and exercise the scenario without going through a full term.
func (c *Checker) Reborrow(env typesys.Environment, t *astfr.Borrow) (astfr.Type, typesys.Environment, *diagnostic.Diagnostic) {
	if t.LVal.Path.IsEmpty() || !t.LVal.Path.Elems()[0].IsDeref() {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeBadDereference, t.Sp,
			"%s is not a reborrow: its path does not begin with a dereference", t.LVal)
	}

	root, ok := env.Lookup(t.LVal.Var)
	if !ok {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeUndeclaredVariable, t.Sp,
			"undeclared variable %q", t.LVal.Var)
	}

	if root.Type.Kind != astfr.KindBorrow {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeBadDereference, t.Sp,
			"cannot reborrow through %q: not a reference", t.LVal.Var)
	}

	if t.Mut && root.Type.Mut != astfr.Mut {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeBorrowConflict, t.Sp,
			"cannot take a mutable reborrow through a shared reference %q", t.LVal.Var)
	}

	return c.checkBorrow(env, t)
}
