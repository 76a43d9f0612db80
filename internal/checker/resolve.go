// Package checker implements FeatherweightRust's borrow checker: the
// syntax-directed judgement R ⊢ t : T ⊣ R' of spec §4.5.
package checker

import (
	"fmt"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/position"
	"github.com/fwrust/fwrust/internal/typesys"
)

// typeFault is an unpositioned fault from path resolution; callers attach
// the span of whichever term triggered the resolution.
type typeFault struct {
	code diagnostic.Code
	msg  string
}

func fault(code diagnostic.Code, format string, args ...interface{}) *typeFault {
	return &typeFault{code: code, msg: fmt.Sprintf(format, args...)}
}

// ResolveType is resolveType's exported counterpart, for extensions that
// need an l-value's current static type without reimplementing path
// resolution (spec §4.6: extensions are given "the current
// environment/state" to work with). span is attached to the returned
// Diagnostic, since resolveType itself carries none.
func ResolveType(env typesys.Environment, lv astfr.LVal, span position.Span) (astfr.Type, *diagnostic.Diagnostic) {
	t, ferr := resolveType(env, lv)
	if ferr != nil {
		return astfr.Type{}, diagnostic.Checker(ferr.code, span, "%s", ferr.msg)
	}

	return t, nil
}

// resolveType implements spec §4.2's resolve(env, lv) -> Type: walk the
// path elementwise, discharging dereferences by reading the current type
// (Box unwraps to its element; a borrow type requires every referent in
// its set to resolve to the same type, per the Open Question decision in
// DESIGN.md to require identity rather than mere compatibility) and
// field indices by projecting into a tuple.
func resolveType(env typesys.Environment, lv astfr.LVal) (astfr.Type, *typeFault) {
	b, ok := env.Lookup(lv.Var)
	if !ok {
		return astfr.Type{}, fault(diagnostic.CodeUndeclaredVariable, "undeclared variable %q", lv.Var)
	}

	cur := b.Type

	for _, elem := range lv.Path.Elems() {
		if cur.Kind == astfr.KindUndefined {
			return astfr.Type{}, fault(diagnostic.CodeUseOfMoved, "%q has already been moved", lv.Var)
		}

		if elem.IsField() {
			if cur.Kind != astfr.KindTuple {
				return astfr.Type{}, fault(diagnostic.CodeInvalidIndex, "field projection into non-tuple type %s", cur)
			}

			if elem.Field < 0 || elem.Field >= len(cur.Elems) {
				return astfr.Type{}, fault(diagnostic.CodeInvalidIndex, "tuple field index %d out of range (len %d)", elem.Field, len(cur.Elems))
			}

			cur = cur.Elems[elem.Field]
			continue
		}

		switch cur.Kind {
		case astfr.KindBox:
			cur = *cur.Elem
		case astfr.KindBorrow:
			if len(cur.Set) == 0 {
				return astfr.Type{}, fault(diagnostic.CodeBadDereference, "borrow with an empty referent set cannot be dereferenced")
			}

			if cur.Mut == astfr.Mut && len(cur.Set) != 1 {
				return astfr.Type{}, fault(diagnostic.CodeBadDereference, "mutable borrow set must be a singleton to write through")
			}

			var joined *astfr.Type

			for _, referent := range cur.Set {
				rt, rerr := resolveType(env, referent)
				if rerr != nil {
					return astfr.Type{}, rerr
				}

				if joined == nil {
					joined = &rt
				} else if !joined.Equal(rt) {
					return astfr.Type{}, fault(diagnostic.CodeTypeMismatch, "borrow set referents do not agree on a single type")
				}
			}

			cur = *joined
		default:
			return astfr.Type{}, fault(diagnostic.CodeBadDereference, "cannot dereference non-reference, non-box type %s", cur)
		}
	}

	return cur, nil
}

// flattenReferents resolves lv to the set of root l-values it may
// actually alias, substituting a dereferenced borrow's own referent set
// in place of the dereferencing path at each step (spec §4.2's
// alias-tracking for reborrows: "*y" through a borrow y:&mut{x} aliases
// x, not the literal path "*y"). A Box dereference keeps the literal
// path, since a box has no referent set of its own to substitute — the
// dereferenced location still belongs uniquely to that path.
func flattenReferents(env typesys.Environment, lv astfr.LVal) ([]astfr.LVal, *typeFault) {
	roots := []astfr.LVal{astfr.NewLVal(lv.Var)}

	for _, elem := range lv.Path.Elems() {
		var next []astfr.LVal

		for _, r := range roots {
			cur, ferr := resolveType(env, r)
			if ferr != nil {
				return nil, ferr
			}

			if elem.IsField() {
				next = append(next, r.FieldAt(elem.Field))
				continue
			}

			switch cur.Kind {
			case astfr.KindBox:
				next = append(next, r.Deref())
			case astfr.KindBorrow:
				if len(cur.Set) == 0 {
					return nil, fault(diagnostic.CodeBadDereference, "borrow with an empty referent set cannot be dereferenced")
				}

				next = append(next, cur.Set...)
			default:
				return nil, fault(diagnostic.CodeBadDereference, "cannot dereference non-reference, non-box type %s", cur)
			}
		}

		roots = next
	}

	return roots, nil
}
