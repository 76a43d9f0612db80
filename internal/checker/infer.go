package checker

import (
	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/typesys"
)

// InferExtension lets an extension's own term kinds (if/else, tuple
// literals, calls) participate in the unspecified-access rewrite below.
// It receives the environment and lifetime the core pass was carrying
// when it reached an unrecognized term, and returns the rewritten term
// (which may be the same term unchanged) plus the environment the pass
// should continue with afterward.
type InferExtension interface {
	TryInfer(infer *Inferrer, env typesys.Environment, ell lifetime.ID, term astfr.Term) (rewritten astfr.Term, next typesys.Environment, handled bool)
}

// Inferrer resolves every AccessUnspecified ('?lv') node in a term tree
// to a concrete AccessMove or AccessCopy before the core judgement ever
// sees it (SPEC_FULL.md: "'unspecified' access inference is implemented
// as a full AST-rewriting pre-pass run before the core judgement, rather
// than inline special-casing, so it can be unit-tested independently of
// the rest of the checker"). It mirrors checker.Checker's type-tracking
// closely enough to know each l-value's current type at the point the
// unspecified access occurs, but it never reports a Diagnostic itself —
// a term resolve() cannot make sense of is left as-is and the core
// judgement will fail on it with the usual classified error.
type Inferrer struct {
	Exts []InferExtension
}

// NewInferrer returns an Inferrer chaining the given extensions.
func NewInferrer(exts ...InferExtension) *Inferrer {
	return &Inferrer{Exts: exts}
}

// Infer rewrites every unspecified access reachable from term, tracking
// env as it goes: Let declares its name at ell, and a whole-variable move
// marks the source Undefined. Assign keeps the environment its right-hand
// side leaves (no weak/strong update of the target), and a nested Block
// is walked at ell itself, its bindings dropped on exit.
func (in *Inferrer) Infer(env typesys.Environment, ell lifetime.ID, term astfr.Term) astfr.Term {
	rewritten, _ := in.infer(env, ell, term)

	return rewritten
}

func (in *Inferrer) infer(env typesys.Environment, ell lifetime.ID, term astfr.Term) (astfr.Term, typesys.Environment) {
	switch t := term.(type) {
	case *astfr.Access:
		if t.Kind != astfr.AccessUnspecified {
			return t, env
		}

		typ, ferr := resolveType(env, t.LVal)
		if ferr != nil {
			// Leave it unresolved; Checker.Check's own inline fallback
			// will surface the same classified failure.
			return t, env
		}

		kind := astfr.AccessCopy
		if typ.IsMoveOnly() {
			kind = astfr.AccessMove
		}

		rewritten := &astfr.Access{Sp: t.Sp, Kind: kind, LVal: t.LVal}

		if kind == astfr.AccessMove && t.LVal.Path.IsEmpty() {
			next, _ := env.Update(t.LVal.Var, astfr.Undefined())

			return rewritten, next
		}

		return rewritten, env

	case *astfr.Let:
		rhs, env1 := in.infer(env, ell, t.Rhs)

		rhsType, ferr := typeOfValueTerm(env1, rhs)

		next := env1
		if ferr == nil {
			next, _ = next.DeclareShadow(t.Name, rhsType, ell)
		}

		return &astfr.Let{Sp: t.Sp, Name: t.Name, Rhs: rhs}, next

	case *astfr.Assign:
		rhs, env1 := in.infer(env, ell, t.Rhs)

		return &astfr.Assign{Sp: t.Sp, LVal: t.LVal, Rhs: rhs}, env1

	case *astfr.BoxTerm:
		inner, env1 := in.infer(env, ell, t.Inner)

		return &astfr.BoxTerm{Sp: t.Sp, Inner: inner}, env1

	case *astfr.Block:
		terms := make([]astfr.Term, len(t.Terms))
		cur := env

		for i, sub := range t.Terms {
			rewritten, next := in.infer(cur, ell, sub)
			terms[i] = rewritten
			cur = next
		}

		return &astfr.Block{Sp: t.Sp, Terms: terms}, env

	case *astfr.Borrow, *astfr.IntLit:
		return t, env

	default:
		for _, ext := range in.Exts {
			rewritten, next, handled := ext.TryInfer(in, env, ell, term)
			if handled {
				return rewritten, next
			}
		}

		return term, env
	}
}

// typeOfValueTerm best-effort types a rewritten RHS term without running
// the full judgement, just enough for the inference pass to track
// variable types through a chain of lets; an extension term or anything
// it cannot classify locally is reported as Undefined-typed (harmless —
// it only affects the accuracy of inference on variables bound to it).
func typeOfValueTerm(env typesys.Environment, term astfr.Term) (astfr.Type, *typeFault) {
	switch t := term.(type) {
	case *astfr.IntLit:
		return astfr.Int(), nil
	case *astfr.Access:
		return resolveType(env, t.LVal)
	case *astfr.BoxTerm:
		inner, err := typeOfValueTerm(env, t.Inner)
		if err != nil {
			return astfr.Type{}, err
		}

		return astfr.BoxOf(inner), nil
	case *astfr.Borrow:
		mut := astfr.Shared
		if t.Mut {
			mut = astfr.Mut
		}

		return astfr.BorrowOf(mut, []astfr.LVal{t.LVal}), nil
	default:
		return astfr.Undefined(), fault("inference-unknown-term", "cannot locally type %T", term)
	}
}
