package checker

import (
	"testing"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/typesys"
)

func TestReborrowSharedThroughSharedReferenceSucceeds(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)
	env, _ = env.Declare("r", astfr.BorrowOf(astfr.Shared, []astfr.LVal{astfr.NewLVal("x")}), root)

	reborrow := &astfr.Borrow{Sp: sp(), Mut: false, LVal: astfr.NewLVal("r").Deref()}

	typ, _, err := c.Reborrow(env, reborrow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if typ.Kind != astfr.KindBorrow {
		t.Fatalf("expected a borrow type, got %s", typ)
	}
}

func TestReborrowMutThroughSharedReferenceFails(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)
	env, _ = env.Declare("r", astfr.BorrowOf(astfr.Shared, []astfr.LVal{astfr.NewLVal("x")}), root)

	reborrow := &astfr.Borrow{Sp: sp(), Mut: true, LVal: astfr.NewLVal("r").Deref()}

	_, _, err := c.Reborrow(env, reborrow)
	if err == nil {
		t.Fatalf("expected a mutable reborrow through a shared reference to fail")
	}
}

func TestReborrowTypesToTheUnderlyingReferentNotTheDerefPath(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)
	env, _ = env.Declare("y", astfr.BorrowOf(astfr.Mut, []astfr.LVal{astfr.NewLVal("x")}), root)

	reborrow := &astfr.Borrow{Sp: sp(), Mut: true, LVal: astfr.NewLVal("y").Deref()}

	typ, _, err := c.Reborrow(env, reborrow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := astfr.BorrowOf(astfr.Mut, []astfr.LVal{astfr.NewLVal("x")})
	if !typ.Equal(want) {
		t.Fatalf("expected reborrow to type as %s (aliasing x through y), got %s", want, typ)
	}
}

func TestReborrowRequiresLeadingDeref(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)

	notAReborrow := &astfr.Borrow{Sp: sp(), Mut: false, LVal: astfr.NewLVal("x")}

	_, _, err := c.Reborrow(env, notAReborrow)
	if err == nil {
		t.Fatalf("a borrow whose path does not start with a deref is not a reborrow")
	}
}
