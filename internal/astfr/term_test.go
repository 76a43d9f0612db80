package astfr

import (
	"testing"

	"github.com/fwrust/fwrust/internal/position"
)

func TestAccessStringBySigil(t *testing.T) {
	lv := NewLVal("x")

	cases := []struct {
		kind AccessKind
		want string
	}{
		{AccessMove, "x"},
		{AccessCopy, "!x"},
		{AccessUnspecified, "?x"},
	}

	for _, c := range cases {
		a := &Access{Kind: c.kind, LVal: lv}
		if got := a.String(); got != c.want {
			t.Errorf("AccessKind %v: String() = %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestBorrowString(t *testing.T) {
	shared := &Borrow{LVal: NewLVal("x")}
	if got, want := shared.String(), "&x"; got != want {
		t.Errorf("shared borrow String() = %q, want %q", got, want)
	}

	mut := &Borrow{Mut: true, LVal: NewLVal("x")}
	if got, want := mut.String(), "&mut x"; got != want {
		t.Errorf("mut borrow String() = %q, want %q", got, want)
	}
}

func TestBlockStringJoinsTerms(t *testing.T) {
	b := &Block{Terms: []Term{
		&Let{Name: "x", Rhs: &IntLit{Value: 1}},
		&Access{Kind: AccessMove, LVal: NewLVal("x")},
	}}

	got := b.String()
	want := "{ let mut x = 1; x }"

	if got != want {
		t.Fatalf("Block.String() = %q, want %q", got, want)
	}
}

func TestValuesImplementValueInterface(t *testing.T) {
	var vs []Value
	vs = append(vs, &IntLit{Value: 1})
	vs = append(vs, &Location{Addr: 0})
	vs = append(vs, &UnitVal{})

	for _, v := range vs {
		if v.String() == "" {
			t.Errorf("value %T produced empty String()", v)
		}
	}
}

func TestTermSpanPreserved(t *testing.T) {
	sp := position.Span{}
	lit := &IntLit{Sp: sp, Value: 42}

	if lit.Span() != sp {
		t.Fatalf("Span() did not round-trip the stored span")
	}
}
