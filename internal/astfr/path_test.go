package astfr

import "testing"

func TestPathPrefixOf(t *testing.T) {
	base := NewPath(Field(0))
	nested := NewPath(Field(0), Deref())

	if !base.PrefixOf(nested) {
		t.Fatalf("base should be a prefix of nested")
	}

	if nested.PrefixOf(base) {
		t.Fatalf("nested should not be a prefix of base")
	}

	if !base.PrefixOf(base) {
		t.Fatalf("a path is a prefix of itself")
	}
}

func TestPathConflict(t *testing.T) {
	a := NewPath(Field(0))
	b := NewPath(Field(0), Deref())
	c := NewPath(Field(1))

	if !a.Conflict(b) {
		t.Fatalf("a path and its extension conflict")
	}

	if a.Conflict(c) {
		t.Fatalf("distinct sibling field paths should not conflict")
	}
}

func TestLValConflictRequiresSameRoot(t *testing.T) {
	x := NewLVal("x").Deref()
	y := NewLVal("y").Deref()

	if x.Conflict(y) {
		t.Fatalf("l-values rooted at different variables never conflict")
	}
}

func TestLValConflictSamePath(t *testing.T) {
	a := NewLVal("x").FieldAt(0)
	b := NewLVal("x").FieldAt(0).Deref()

	if !a.Conflict(b) {
		t.Fatalf("x.0 and *(x.0) should conflict (one is a prefix of the other)")
	}
}

func TestLValStringRoundTripsInterleaving(t *testing.T) {
	lv := NewLVal("x").FieldAt(0).Deref().FieldAt(1)

	got := lv.String()
	want := "*(x.0).1"

	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestLValStringPlainVariable(t *testing.T) {
	if got, want := NewLVal("x").String(), "x"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestLValEqual(t *testing.T) {
	a := NewLVal("x").Deref().FieldAt(2)
	b := NewLVal("x").Deref().FieldAt(2)
	c := NewLVal("x").FieldAt(2).Deref()

	if !a.Equal(b) {
		t.Fatalf("identically built l-values should be equal")
	}

	if a.Equal(c) {
		t.Fatalf("different element order should not compare equal")
	}
}
