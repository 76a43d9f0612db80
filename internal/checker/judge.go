package checker

import (
	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/typesys"
)

// Extension is the typing half of spec §4.6's two extension points: it
// receives the current (environment, lifetime, term) and either
// type-checks it and reports handled=true, or declines.
type Extension interface {
	TryCheck(c *Checker, env typesys.Environment, ell lifetime.ID, term astfr.Term) (typ astfr.Type, next typesys.Environment, handled bool, err *diagnostic.Diagnostic)
}

// Checker threads a shared lifetime tree across one program's judgement
// and chains zero or more typing Extensions for terms the core grammar
// does not know about.
type Checker struct {
	Lifetimes *lifetime.Tree
	Exts      []Extension
}

// New returns a Checker over tree, with the given extensions chained in
// the order given (spec §4.6: "extensions compose by chaining").
func New(tree *lifetime.Tree, exts ...Extension) *Checker {
	return &Checker{Lifetimes: tree, Exts: exts}
}

func diagAt(code diagnostic.Code, span astfr.Term, f *typeFault) *diagnostic.Diagnostic {
	return diagnostic.Checker(f.code, span.Span(), "%s", f.msg)
}

// Check derives R ⊢ t : T ⊣ R' (spec §4.5): in environment env, at
// lifetime ell, term has type T and yields environment R'. Derivation is
// deterministic and syntax-directed; a rule failure returns the single
// tagged diagnostic spec §4.5/§7 describe, and the judgement does not
// recover — the caller abandons this term's checking entirely.
func (c *Checker) Check(env typesys.Environment, ell lifetime.ID, term astfr.Term) (astfr.Type, typesys.Environment, *diagnostic.Diagnostic) {
	switch t := term.(type) {
	case *astfr.IntLit:
		return astfr.Int(), env, nil

	case *astfr.Access:
		return c.checkAccess(env, t)

	case *astfr.Let:
		return c.checkLet(env, ell, t)

	case *astfr.Assign:
		return c.checkAssign(env, ell, t)

	case *astfr.Borrow:
		return c.checkBorrow(env, t)

	case *astfr.BoxTerm:
		inner, env1, err := c.Check(env, ell, t.Inner)
		if err != nil {
			return astfr.Type{}, env, err
		}

		return astfr.BoxOf(inner), env1, nil

	case *astfr.Block:
		return c.checkBlock(env, ell, t)

	default:
		for _, ext := range c.Exts {
			typ, next, handled, err := ext.TryCheck(c, env, ell, term)
			if handled {
				return typ, next, err
			}
		}

		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeStuck, term.Span(),
			"no typing rule applies to %s", term)
	}
}

// checkAccess implements Var(move)/Copy(lv) and the unspecified-access
// inference supplement from SPEC_FULL.md: an unspecified access ('?lv')
// resolves to Move when the resolved type is move-only and to Copy
// otherwise, so it is type-checked exactly as whichever concrete kind it
// resolves to.
func (c *Checker) checkAccess(env typesys.Environment, t *astfr.Access) (astfr.Type, typesys.Environment, *diagnostic.Diagnostic) {
	typ, ferr := resolveType(env, t.LVal)
	if ferr != nil {
		return astfr.Type{}, env, diagAt(ferr.code, t, ferr)
	}

	if typ.Kind == astfr.KindUndefined {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeUseOfMoved, t.Sp,
			"use of moved value %s", t.LVal)
	}

	kind := t.Kind
	if kind == astfr.AccessUnspecified {
		if typ.IsMoveOnly() {
			kind = astfr.AccessMove
		} else {
			kind = astfr.AccessCopy
		}
	}

	if kind == astfr.AccessCopy {
		if !typ.IsCopy() {
			return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeTypeMismatch, t.Sp,
				"cannot copy a value of move-only type %s", typ)
		}

		return typ, env, nil
	}

	// Move. Only a whole-variable move updates the environment (marks the
	// source Undefined); move access through a deref or field path reads
	// without disturbing the binding, mirroring the runtime Vacate
	// restriction in internal/semantics.
	if !t.LVal.Path.IsEmpty() || typ.IsCopy() {
		return typ, env, nil
	}

	next, _ := env.Update(t.LVal.Var, astfr.Undefined())

	return typ, next, nil
}

// checkLet implements spec §4.5 Let: derive R ⊢ e : T ⊣ R₁; the result
// is R₁ with x bound to (T, ℓ_current). Fails if x is already declared
// at this exact lifetime (redeclaration); shadowing across nested blocks
// is allowed.
func (c *Checker) checkLet(env typesys.Environment, ell lifetime.ID, t *astfr.Let) (astfr.Type, typesys.Environment, *diagnostic.Diagnostic) {
	rhsType, env1, err := c.Check(env, ell, t.Rhs)
	if err != nil {
		return astfr.Type{}, env, err
	}

	next, ok := env1.DeclareShadow(t.Name, rhsType, ell)
	if !ok {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeRedeclaration, t.Sp,
			"%q is already declared in this block", t.Name)
	}

	return astfr.Unit(), next, nil
}

// checkAssign implements spec §4.5 Assign: derive R ⊢ e : T_rhs ⊣ R₁;
// resolve lv's current type T_lhs in R₁. Writing requires lv is not
// currently borrowed and T_rhs is compatible with T_lhs. A strong update
// (empty path) rebinds lv's type to T_rhs; a weak update (through a
// deref/field) only requires compatibility and leaves the recorded type
// alone, since — unlike Rust's real flow-sensitive analysis — FR's
// static types are not re-derived from runtime content after a write
// through a reference.
func (c *Checker) checkAssign(env typesys.Environment, ell lifetime.ID, t *astfr.Assign) (astfr.Type, typesys.Environment, *diagnostic.Diagnostic) {
	rhsType, env1, err := c.Check(env, ell, t.Rhs)
	if err != nil {
		return astfr.Type{}, env, err
	}

	lhsType, ferr := resolveType(env1, t.LVal)
	if ferr != nil {
		return astfr.Type{}, env, diagAt(ferr.code, t, ferr)
	}

	if live := env1.LiveBorrowsConflicting(t.LVal); len(live) > 0 {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeAssignmentToBorrowed, t.Sp,
			"cannot assign to %s while borrowed by %v", t.LVal, live)
	}

	if !lhsType.Compatible(rhsType) {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeTypeMismatch, t.Sp,
			"cannot assign value of type %s to %s of type %s", rhsType, t.LVal, lhsType)
	}

	if t.LVal.Path.IsEmpty() {
		next, _ := env1.Update(t.LVal.Var, rhsType)

		return astfr.Unit(), next, nil
	}

	return astfr.Unit(), env1, nil
}

// checkBorrow implements spec §4.5 Borrow shared/mut: a shared borrow
// requires no live mutable borrow conflicting with lv; a mutable borrow
// requires no live borrow (of either kind) conflicting with lv.
func (c *Checker) checkBorrow(env typesys.Environment, t *astfr.Borrow) (astfr.Type, typesys.Environment, *diagnostic.Diagnostic) {
	target, ferr := resolveType(env, t.LVal)
	if ferr != nil {
		return astfr.Type{}, env, diagAt(ferr.code, t, ferr)
	}

	if target.Kind == astfr.KindUndefined {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeUseOfMoved, t.Sp,
			"cannot borrow %s: already moved", t.LVal)
	}

	for _, name := range env.Names() {
		b, _ := env.Lookup(name)
		if b.Type.Kind != astfr.KindBorrow {
			continue
		}

		conflicts := false

		for _, set := range b.Type.Set {
			if set.Conflict(t.LVal) {
				conflicts = true
				break
			}
		}

		if !conflicts {
			continue
		}

		if t.Mut || b.Type.Mut == astfr.Mut {
			return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeBorrowConflict, t.Sp,
				"cannot borrow %s: conflicting live borrow %s", t.LVal, name)
		}
	}

	mut := astfr.Shared
	if t.Mut {
		mut = astfr.Mut
	}

	referents, ferr := flattenReferents(env, t.LVal)
	if ferr != nil {
		return astfr.Type{}, env, diagAt(ferr.code, t, ferr)
	}

	return astfr.BorrowOf(mut, referents), env, nil
}

// checkBlock implements spec §4.5 Block(ℓ, e₁…eₙ): open ℓ as a child of
// the enclosing lifetime, thread env through each term, strip ℓ's
// bindings before returning, and reject if the final type escapes ℓ.
func (c *Checker) checkBlock(env typesys.Environment, ell lifetime.ID, t *astfr.Block) (astfr.Type, typesys.Environment, *diagnostic.Diagnostic) {
	if len(t.Terms) == 0 {
		return astfr.Unit(), env, nil
	}

	inner := c.Lifetimes.FreshWithin(ell)

	cur := env

	var last astfr.Type

	for i, term := range t.Terms {
		typ, next, err := c.Check(cur, inner, term)
		if err != nil {
			return astfr.Type{}, env, err
		}

		cur = next

		if i == len(t.Terms)-1 {
			last = typ
		}
	}

	if escapesLifetime(last, cur, inner) {
		return astfr.Type{}, env, diagnostic.Checker(diagnostic.CodeLifetimeEscape, t.Sp,
			"result type %s escapes the block's lifetime", last)
	}

	return last, cur.RemoveAllIn(inner), nil
}

// escapesLifetime reports whether typ names (via some borrow's referent
// roots) any variable declared at lifetime ell.
func escapesLifetime(typ astfr.Type, env typesys.Environment, ell lifetime.ID) bool {
	switch typ.Kind {
	case astfr.KindBorrow:
		for _, lv := range typ.Set {
			b, ok := env.Lookup(lv.Var)
			if ok && b.Decl == ell {
				return true
			}
		}

		return false
	case astfr.KindBox:
		return escapesLifetime(*typ.Elem, env, ell)
	case astfr.KindTuple:
		for _, e := range typ.Elems {
			if escapesLifetime(e, env, ell) {
				return true
			}
		}

		return false
	default:
		return false
	}
}
