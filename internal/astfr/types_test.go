package astfr

import "testing"

func TestIsCopy(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		want bool
	}{
		{"int", Int(), true},
		{"unit", Unit(), true},
		{"shared borrow", BorrowOf(Shared, []LVal{NewLVal("x")}), true},
		{"mut borrow", BorrowOf(Mut, []LVal{NewLVal("x")}), false},
		{"box", BoxOf(Int()), false},
		{"undefined", Undefined(), false},
		{"tuple of copy", TupleOf(Int(), BorrowOf(Shared, []LVal{NewLVal("x")})), true},
		{"tuple with move-only", TupleOf(Int(), BoxOf(Int())), false},
	}

	for _, c := range cases {
		if got := c.typ.IsCopy(); got != c.want {
			t.Errorf("%s: IsCopy() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestBorrowOfNormalizesSet(t *testing.T) {
	set := []LVal{NewLVal("y"), NewLVal("x"), NewLVal("x")}
	typ := BorrowOf(Shared, set)

	if len(typ.Set) != 2 {
		t.Fatalf("expected de-duplicated set of 2, got %d", len(typ.Set))
	}

	if typ.Set[0].Var != "x" || typ.Set[1].Var != "y" {
		t.Fatalf("expected sorted [x,y], got [%s,%s]", typ.Set[0].Var, typ.Set[1].Var)
	}
}

func TestEqualIgnoresSetOrder(t *testing.T) {
	a := BorrowOf(Shared, []LVal{NewLVal("x"), NewLVal("y")})
	b := BorrowOf(Shared, []LVal{NewLVal("y"), NewLVal("x")})

	if !a.Equal(b) {
		t.Fatalf("borrow types over the same set in different order should be equal")
	}
}

func TestCompatibleMutRequiresExactSet(t *testing.T) {
	a := BorrowOf(Mut, []LVal{NewLVal("x")})
	b := BorrowOf(Mut, []LVal{NewLVal("x"), NewLVal("y")})

	if a.Compatible(b) {
		t.Fatalf("mutable borrow sets must match exactly to be compatible")
	}
}

func TestCompatibleSharedAllowsRootEquality(t *testing.T) {
	a := BorrowOf(Shared, []LVal{NewLVal("x").FieldAt(0)})
	b := BorrowOf(Shared, []LVal{NewLVal("x").FieldAt(1)})

	if !a.Compatible(b) {
		t.Fatalf("shared borrows should be compatible when roots match even if paths differ")
	}
}

func TestCompatibleUndefinedAcceptsAnyRhs(t *testing.T) {
	undefined := Undefined()

	for _, rhs := range []Type{Int(), BoxOf(Int()), BorrowOf(Mut, []LVal{NewLVal("x")}), TupleOf(Int(), Int())} {
		if !undefined.Compatible(rhs) {
			t.Fatalf("an Undefined lhs (moved-from slot) must accept a strong-update rhs of type %s", rhs)
		}
	}
}

func TestSubtypeOfSharedWidens(t *testing.T) {
	narrow := BorrowOf(Shared, []LVal{NewLVal("x")})
	wide := BorrowOf(Shared, []LVal{NewLVal("x"), NewLVal("y")})

	if !narrow.SubtypeOf(wide) {
		t.Fatalf("narrow shared borrow should be a subtype of a wider one")
	}

	if wide.SubtypeOf(narrow) {
		t.Fatalf("wider shared borrow should not be a subtype of a narrower one")
	}
}

func TestSubtypeOfMutIsInvariant(t *testing.T) {
	a := BorrowOf(Mut, []LVal{NewLVal("x")})
	b := BorrowOf(Mut, []LVal{NewLVal("x"), NewLVal("y")})

	if a.SubtypeOf(b) || b.SubtypeOf(a) {
		t.Fatalf("mutable borrows must be invariant in their set")
	}
}

func TestTupleStructuralEquality(t *testing.T) {
	a := TupleOf(Int(), BoxOf(Int()))
	b := TupleOf(Int(), BoxOf(Int()))
	c := TupleOf(Int(), Int())

	if !a.Equal(b) {
		t.Fatalf("structurally identical tuples should be equal")
	}

	if a.Equal(c) {
		t.Fatalf("tuples with different element types should not be equal")
	}
}

func TestStringRendersBoxAndBorrow(t *testing.T) {
	if got, want := BoxOf(Int()).String(), "Box<int>"; got != want {
		t.Errorf("BoxOf(Int()).String() = %q, want %q", got, want)
	}

	if got, want := BorrowOf(Mut, []LVal{NewLVal("x")}).String(), "&mut{x}"; got != want {
		t.Errorf("BorrowOf(Mut,...).String() = %q, want %q", got, want)
	}
}
