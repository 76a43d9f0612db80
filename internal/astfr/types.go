package astfr

import (
	"fmt"
	"sort"
	"strings"
)

// Mutability distinguishes shared from mutable borrows.
type Mutability int

const (
	Shared Mutability = iota
	Mut
)

func (m Mutability) String() string {
	if m == Mut {
		return "mut"
	}

	return "shared"
}

// TypeKind tags the variant of a Type.
type TypeKind int

const (
	KindInt TypeKind = iota
	KindBox
	KindBorrow
	KindUndefined
	// Extension variants (spec §3: "Extension variants").
	KindTuple
	KindUnit
)

func (k TypeKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBox:
		return "box"
	case KindBorrow:
		return "borrow"
	case KindUndefined:
		return "undefined"
	case KindTuple:
		return "tuple"
	case KindUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// Type is FeatherweightRust's tagged type union (spec §3 Type). Exactly
// one of the fields below is meaningful, selected by Kind:
//
//	KindInt       -- no payload
//	KindBox       -- Elem
//	KindBorrow    -- Mut, Set
//	KindUndefined -- no payload
//	KindTuple     -- Elems
//	KindUnit      -- no payload
type Type struct {
	Kind  TypeKind
	Elem  *Type  // Box(Elem)
	Mut   Mutability
	Set   []LVal // Borrow's static approximation of possible referents
	Elems []Type // Tuple components
}

// Int is the Copy-semantics scalar type.
func Int() Type { return Type{Kind: KindInt} }

// BoxOf builds a move-only Box(elem) type.
func BoxOf(elem Type) Type { return Type{Kind: KindBox, Elem: &elem} }

// BorrowOf builds a borrow type over the given mutability and l-val set.
// The set is sorted and de-duplicated so two borrow types built from the
// same logical set always compare equal.
func BorrowOf(mut Mutability, set []LVal) Type {
	return Type{Kind: KindBorrow, Mut: mut, Set: normalizeSet(set)}
}

// Undefined is the placeholder type for a moved-out slot.
func Undefined() Type { return Type{Kind: KindUndefined} }

// Unit is the extension unit type (no-value blocks, if/else with no
// else-producing value in an extension context).
func Unit() Type { return Type{Kind: KindUnit} }

// TupleOf builds a tuple type from its component types.
func TupleOf(elems ...Type) Type { return Type{Kind: KindTuple, Elems: elems} }

func normalizeSet(set []LVal) []LVal {
	out := make([]LVal, 0, len(set))

	for _, lv := range set {
		dup := false

		for _, o := range out {
			if lv.Equal(o) {
				dup = true
				break
			}
		}

		if !dup {
			out = append(out, lv)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Var != out[j].Var {
			return out[i].Var < out[j].Var
		}

		return out[i].String() < out[j].String()
	})

	return out
}

// IsCopy reports whether a value of this type is duplicated by Copy
// rather than Move (spec §4.5 Var(move)/Copy rules): Int, shared
// borrows, and — transitively — tuples of such.
func (t Type) IsCopy() bool {
	switch t.Kind {
	case KindInt, KindUnit:
		return true
	case KindBorrow:
		return t.Mut == Shared
	case KindTuple:
		for _, e := range t.Elems {
			if !e.IsCopy() {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// IsMoveOnly is the negation of IsCopy restricted to types that are
// actually usable (Undefined is neither copy nor "move-only" in the
// ordinary sense — it is simply unusable).
func (t Type) IsMoveOnly() bool {
	return t.Kind != KindUndefined && !t.IsCopy()
}

// Equal reports structural equality of two types.
func (t Type) Equal(u Type) bool {
	if t.Kind != u.Kind {
		return false
	}

	switch t.Kind {
	case KindInt, KindUndefined, KindUnit:
		return true
	case KindBox:
		return t.Elem.Equal(*u.Elem)
	case KindBorrow:
		return t.Mut == u.Mut && lvalSetEqual(t.Set, u.Set)
	case KindTuple:
		if len(t.Elems) != len(u.Elems) {
			return false
		}

		for i := range t.Elems {
			if !t.Elems[i].Equal(u.Elems[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func lvalSetEqual(a, b []LVal) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

// lvalRootsEqual reports whether a and b name the same set of *root
// variables* (spec §4.5 Compatibility: "shared-borrow sets need only
// set-equal their roots").
func lvalRootsEqual(a, b []LVal) bool {
	ra := rootSet(a)
	rb := rootSet(b)

	if len(ra) != len(rb) {
		return false
	}

	for r := range ra {
		if !rb[r] {
			return false
		}
	}

	return true
}

func rootSet(set []LVal) map[string]bool {
	out := make(map[string]bool, len(set))
	for _, lv := range set {
		out[lv.Var] = true
	}

	return out
}

// lvalSetWidens reports whether sub's roots are a subset of sup's roots —
// the widening direction allowed for shared-borrow covariance (spec §3:
// "Shared borrows: ... sets may widen").
func lvalSetWidens(sub, sup []LVal) bool {
	rsup := rootSet(sup)
	for _, lv := range sub {
		if !rsup[lv.Var] {
			return false
		}
	}

	return true
}

// Compatible implements spec §4.5's Compatibility relation, used by
// Assign to check T_rhs against T_lhs. A KindUndefined left-hand side is
// the moved-from placeholder a strong update overwrites outright, so it
// is compatible with any right-hand side type, not just another
// Undefined (spec §4.5: "its type becomes T_rhs").
func (t Type) Compatible(u Type) bool {
	if t.Kind == KindUndefined {
		return true
	}

	if t.Kind != u.Kind {
		return false
	}

	switch t.Kind {
	case KindInt, KindUnit:
		return true
	case KindBox:
		return t.Elem.Compatible(*u.Elem)
	case KindBorrow:
		if t.Mut != u.Mut {
			return false
		}

		if t.Mut == Mut {
			return lvalSetEqual(t.Set, u.Set)
		}

		return lvalRootsEqual(t.Set, u.Set)
	case KindTuple:
		if len(t.Elems) != len(u.Elems) {
			return false
		}

		for i := range t.Elems {
			if !t.Elems[i].Compatible(u.Elems[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// SubtypeOf implements spec §3's subtyping rule: shared borrows are
// covariant in their l-val set (sets may widen toward a supertype with a
// larger set of possible roots); mutable borrows are invariant.
func (t Type) SubtypeOf(u Type) bool {
	if t.Kind != u.Kind {
		return t.Kind == KindUndefined && u.Kind == KindUndefined
	}

	switch t.Kind {
	case KindInt, KindUndefined, KindUnit:
		return true
	case KindBox:
		return t.Elem.SubtypeOf(*u.Elem)
	case KindBorrow:
		if t.Mut != u.Mut {
			return false
		}

		if t.Mut == Mut {
			return lvalSetEqual(t.Set, u.Set)
		}

		return lvalSetWidens(t.Set, u.Set)
	case KindTuple:
		if len(t.Elems) != len(u.Elems) {
			return false
		}

		for i := range t.Elems {
			if !t.Elems[i].SubtypeOf(u.Elems[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return "int"
	case KindUnit:
		return "unit"
	case KindUndefined:
		return "?undefined"
	case KindBox:
		return fmt.Sprintf("Box<%s>", t.Elem.String())
	case KindBorrow:
		var names []string
		for _, lv := range t.Set {
			names = append(names, lv.String())
		}

		sigil := "&"
		if t.Mut == Mut {
			sigil = "&mut"
		}

		return fmt.Sprintf("%s{%s}", sigil, strings.Join(names, ","))
	case KindTuple:
		var parts []string
		for _, e := range t.Elems {
			parts = append(parts, e.String())
		}

		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "<?>"
	}
}
