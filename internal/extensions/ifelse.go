// Package extensions implements the three extensions spec §4.6 layers
// on top of the core calculus: if/else, tuples, and functions with
// lifetime parameters. Each extension is one struct implementing both
// checker.Extension (typing) and semantics.Extension (reduction); the
// chained-dispatch architecture (spec §9: "extensions compose by ordered
// chaining; the first handler to claim the term wins") lives in
// internal/checker and internal/semantics themselves — this package only
// supplies the handlers.
package extensions

import (
	"fmt"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/position"
	"github.com/fwrust/fwrust/internal/semantics"
	"github.com/fwrust/fwrust/internal/typesys"
)

// IfElse is the term `if lv1 == lv2 { then } else { else }` (or `!=` when
// Negate is set). Both operands are l-values of a Copy-only scalar type
// (spec §4.6): the comparison itself never moves or borrows anything.
type IfElse struct {
	Sp     position.Span
	Left   astfr.LVal
	Right  astfr.LVal
	Negate bool
	Then   *astfr.Block
	Else   *astfr.Block
}

func (i *IfElse) Span() position.Span { return i.Sp }
func (i *IfElse) String() string {
	op := "=="
	if i.Negate {
		op = "!="
	}

	return fmt.Sprintf("if %s %s %s %s else %s", i.Left, op, i.Right, i.Then, i.Else)
}

// IfElseExt is the chained handler for IfElse: its TryCheck satisfies
// checker.Extension and its TryStep satisfies semantics.Extension, so
// the same value is registered with both the Checker and the machine.
type IfElseExt struct{}

// TryCheck type-checks an IfElse: both operands must resolve to the same
// Copy-only type, both branches must check, and their result types must
// be compatible — the narrower of environment-and-type "join" spec §4.6
// asks for, since FR's type model has no richer join operator than
// Compatible to fall back on.
func (IfElseExt) TryCheck(c *checker.Checker, env typesys.Environment, ell lifetime.ID, term astfr.Term) (astfr.Type, typesys.Environment, bool, *diagnostic.Diagnostic) {
	t, ok := term.(*IfElse)
	if !ok {
		return astfr.Type{}, env, false, nil
	}

	leftType, derr := checker.ResolveType(env, t.Left, t.Sp)
	if derr != nil {
		return astfr.Type{}, env, true, derr
	}

	rightType, derr := checker.ResolveType(env, t.Right, t.Sp)
	if derr != nil {
		return astfr.Type{}, env, true, derr
	}

	if !leftType.IsCopy() || !rightType.IsCopy() {
		return astfr.Type{}, env, true, diagnostic.Checker(diagnostic.CodeTypeMismatch, t.Sp,
			"if/else comparison operands must be of a Copy-only scalar type")
	}

	if !leftType.Equal(rightType) {
		return astfr.Type{}, env, true, diagnostic.Checker(diagnostic.CodeTypeMismatch, t.Sp,
			"cannot compare %s and %s", leftType, rightType)
	}

	thenType, thenEnv, err := c.Check(env, ell, t.Then)
	if err != nil {
		return astfr.Type{}, env, true, err
	}

	elseType, elseEnv, err := c.Check(env, ell, t.Else)
	if err != nil {
		return astfr.Type{}, env, true, err
	}

	joined, ok := joinEnvironments(thenEnv, elseEnv)
	if !ok {
		return astfr.Type{}, env, true, diagnostic.Checker(diagnostic.CodeTypeMismatch, t.Sp,
			"if and else branches leave incompatible environments")
	}

	if !thenType.Compatible(elseType) {
		return astfr.Type{}, env, true, diagnostic.Checker(diagnostic.CodeTypeMismatch, t.Sp,
			"if branch has type %s but else branch has type %s", thenType, elseType)
	}

	return thenType, joined, true, nil
}

// TryStep reduces an IfElse in one step: read both operands, compare,
// and hand back whichever branch block was chosen (itself not yet a
// value, so the machine will keep stepping it on subsequent calls).
func (IfElseExt) TryStep(m semantics.Machine, ell lifetime.ID, term astfr.Term, exts []semantics.Extension) (semantics.Machine, astfr.Term, bool, *diagnostic.Diagnostic) {
	t, ok := term.(*IfElse)
	if !ok {
		return m, term, false, nil
	}

	lv, stdErr := semantics.ResolveRead(m.Store, m.Frame, t.Left)
	if stdErr != nil {
		return m, term, true, diagnostic.Semantic(diagnostic.Code(stdErr.Code), t.Sp, "%s", stdErr.Message)
	}

	rv, stdErr := semantics.ResolveRead(m.Store, m.Frame, t.Right)
	if stdErr != nil {
		return m, term, true, diagnostic.Semantic(diagnostic.Code(stdErr.Code), t.Sp, "%s", stdErr.Message)
	}

	equal := valuesEqual(lv, rv)
	if t.Negate {
		equal = !equal
	}

	if equal {
		return m, t.Then, true, nil
	}

	return m, t.Else, true, nil
}

func valuesEqual(a, b astfr.Value) bool {
	switch av := a.(type) {
	case *astfr.IntLit:
		bv, ok := b.(*astfr.IntLit)
		return ok && av.Value == bv.Value
	case *astfr.Location:
		bv, ok := b.(*astfr.Location)
		return ok && av.Addr == bv.Addr
	case *astfr.UnitVal:
		_, ok := b.(*astfr.UnitVal)
		return ok
	default:
		return false
	}
}

// joinEnvironments implements the environment-join spec §4.6 asks for
// when an extension needs one: names bound identically in both branches
// keep their binding; a name whose type disagrees between branches is
// marked Undefined in the joined environment rather than guessing — a
// subsequent use of it is then rejected as use-of-moved, which is sound
// (conservatively unusable) even though it is more conservative than
// computing a precise supertype.
func joinEnvironments(a, b typesys.Environment) (typesys.Environment, bool) {
	namesA := a.Names()
	namesB := b.Names()

	if len(namesA) != len(namesB) {
		return a, false
	}

	seen := make(map[string]bool, len(namesA))
	for _, n := range namesA {
		seen[n] = true
	}

	for _, n := range namesB {
		if !seen[n] {
			return a, false
		}
	}

	out := a

	for _, n := range namesA {
		ba, _ := a.Lookup(n)
		bb, _ := b.Lookup(n)

		if !ba.Type.Equal(bb.Type) {
			out, _ = out.Update(n, astfr.Undefined())
		}
	}

	return out, true
}
