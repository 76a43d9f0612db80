package checker

import (
	"testing"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/position"
	"github.com/fwrust/fwrust/internal/typesys"
)

func sp() position.Span { return position.Span{} }

func newChecker() (*Checker, lifetime.ID) {
	tr := lifetime.New()
	return New(tr), tr.Root()
}

func TestCheckLetAndAccessCopy(t *testing.T) {
	c, root := newChecker()

	letTerm := &astfr.Let{Sp: sp(), Name: "x", Rhs: &astfr.IntLit{Sp: sp(), Value: 7}}

	_, env, err := c.Check(typesys.Empty(), root, letTerm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	access := &astfr.Access{Sp: sp(), Kind: astfr.AccessCopy, LVal: astfr.NewLVal("x")}

	typ, env2, err := c.Check(env, root, access)
	if err != nil {
		t.Fatalf("unexpected error copying x: %v", err)
	}

	if !typ.Equal(astfr.Int()) {
		t.Fatalf("expected int, got %s", typ)
	}

	if b, ok := env2.Lookup("x"); !ok || b.Type.Kind == astfr.KindUndefined {
		t.Fatalf("copy must not move x out")
	}
}

func TestCheckMoveMarksUndefined(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("b", astfr.BoxOf(astfr.Int()), root)

	access := &astfr.Access{Sp: sp(), Kind: astfr.AccessMove, LVal: astfr.NewLVal("b")}

	_, env2, err := c.Check(env, root, access)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, _ := env2.Lookup("b")
	if b.Type.Kind != astfr.KindUndefined {
		t.Fatalf("expected b to become Undefined after move, got %s", b.Type)
	}
}

func TestCheckMoveOfAlreadyMovedFails(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("b", astfr.Undefined(), root)

	access := &astfr.Access{Sp: sp(), Kind: astfr.AccessMove, LVal: astfr.NewLVal("b")}

	_, _, err := c.Check(env, root, access)
	if err == nil {
		t.Fatalf("expected use-of-moved error")
	}

	if err.Code != "use-of-moved" {
		t.Fatalf("expected use-of-moved, got %s", err.Code)
	}
}

func TestCheckCopyOfMoveOnlyTypeFails(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("b", astfr.BoxOf(astfr.Int()), root)

	access := &astfr.Access{Sp: sp(), Kind: astfr.AccessCopy, LVal: astfr.NewLVal("b")}

	_, _, err := c.Check(env, root, access)
	if err == nil {
		t.Fatalf("expected a type-mismatch error copying a Box")
	}
}

func TestCheckBorrowSharedThenSharedOk(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)
	env, _ = env.Declare("r1", astfr.BorrowOf(astfr.Shared, []astfr.LVal{astfr.NewLVal("x")}), root)

	borrow := &astfr.Borrow{Sp: sp(), Mut: false, LVal: astfr.NewLVal("x")}

	typ, _, err := c.Check(env, root, borrow)
	if err != nil {
		t.Fatalf("two shared borrows of x should be allowed: %v", err)
	}

	if typ.Kind != astfr.KindBorrow || typ.Mut != astfr.Shared {
		t.Fatalf("expected a shared borrow type, got %s", typ)
	}
}

func TestCheckBorrowMutWhileSharedLiveFails(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)
	env, _ = env.Declare("r1", astfr.BorrowOf(astfr.Shared, []astfr.LVal{astfr.NewLVal("x")}), root)

	borrow := &astfr.Borrow{Sp: sp(), Mut: true, LVal: astfr.NewLVal("x")}

	_, _, err := c.Check(env, root, borrow)
	if err == nil {
		t.Fatalf("a mutable borrow while a shared borrow is live should fail")
	}

	if err.Code != "borrow-conflict" {
		t.Fatalf("expected borrow-conflict, got %s", err.Code)
	}
}

func TestCheckAssignWhileBorrowedFails(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)
	env, _ = env.Declare("r", astfr.BorrowOf(astfr.Shared, []astfr.LVal{astfr.NewLVal("x")}), root)

	assign := &astfr.Assign{Sp: sp(), LVal: astfr.NewLVal("x"), Rhs: &astfr.IntLit{Sp: sp(), Value: 1}}

	_, _, err := c.Check(env, root, assign)
	if err == nil {
		t.Fatalf("assigning to a live-borrowed variable should fail")
	}

	if err.Code != "assignment-to-borrowed" {
		t.Fatalf("expected assignment-to-borrowed, got %s", err.Code)
	}
}

func TestCheckAssignStrongUpdateRebindsType(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)

	assign := &astfr.Assign{Sp: sp(), LVal: astfr.NewLVal("x"), Rhs: &astfr.IntLit{Sp: sp(), Value: 9}}

	_, env2, err := c.Check(env, root, assign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, _ := env2.Lookup("x")
	if !b.Type.Equal(astfr.Int()) {
		t.Fatalf("expected x still int after assign, got %s", b.Type)
	}
}

func TestCheckAssignStrongUpdateAfterMoveSucceeds(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Undefined(), root)

	assign := &astfr.Assign{Sp: sp(), LVal: astfr.NewLVal("x"), Rhs: &astfr.BoxTerm{Sp: sp(), Inner: &astfr.IntLit{Sp: sp(), Value: 1}}}

	_, env2, err := c.Check(env, root, assign)
	if err != nil {
		t.Fatalf("a strong update must overwrite a moved-from (Undefined) slot with the rhs type: %v", err)
	}

	b, _ := env2.Lookup("x")
	if !b.Type.Equal(astfr.BoxOf(astfr.Int())) {
		t.Fatalf("expected x rebound to Box<int>, got %s", b.Type)
	}
}

func TestCheckLetShadowingAcrossBlockSucceeds(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)

	block := &astfr.Block{Sp: sp(), Terms: []astfr.Term{
		&astfr.Let{Sp: sp(), Name: "x", Rhs: &astfr.IntLit{Sp: sp(), Value: 2}},
	}}

	_, _, err := c.Check(env, root, block)
	if err != nil {
		t.Fatalf("shadowing x inside a nested block should succeed: %v", err)
	}
}

func TestCheckLetRedeclareSameBlockFails(t *testing.T) {
	c, root := newChecker()

	block := &astfr.Block{Sp: sp(), Terms: []astfr.Term{
		&astfr.Let{Sp: sp(), Name: "x", Rhs: &astfr.IntLit{Sp: sp(), Value: 1}},
		&astfr.Let{Sp: sp(), Name: "x", Rhs: &astfr.IntLit{Sp: sp(), Value: 2}},
	}}

	_, _, err := c.Check(typesys.Empty(), root, block)
	if err == nil {
		t.Fatalf("redeclaring x twice in the same block should fail")
	}

	if err.Code != "redeclaration" {
		t.Fatalf("expected redeclaration, got %s", err.Code)
	}
}

func TestCheckBlockEscapingBorrowFails(t *testing.T) {
	c, root := newChecker()

	block := &astfr.Block{Sp: sp(), Terms: []astfr.Term{
		&astfr.Let{Sp: sp(), Name: "y", Rhs: &astfr.IntLit{Sp: sp(), Value: 3}},
		&astfr.Borrow{Sp: sp(), Mut: false, LVal: astfr.NewLVal("y")},
	}}

	_, _, err := c.Check(typesys.Empty(), root, block)
	if err == nil {
		t.Fatalf("a borrow of a block-local variable escaping the block should fail")
	}

	if err.Code != "lifetime-escape" {
		t.Fatalf("expected lifetime-escape, got %s", err.Code)
	}
}

func TestCheckBlockNonEscapingResultSucceeds(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)

	block := &astfr.Block{Sp: sp(), Terms: []astfr.Term{
		&astfr.Let{Sp: sp(), Name: "y", Rhs: &astfr.IntLit{Sp: sp(), Value: 3}},
		&astfr.Borrow{Sp: sp(), Mut: false, LVal: astfr.NewLVal("x")},
	}}

	typ, env2, err := c.Check(env, root, block)
	if err != nil {
		t.Fatalf("borrowing an outer variable from inside a block should not escape: %v", err)
	}

	if typ.Kind != astfr.KindBorrow {
		t.Fatalf("expected a borrow type result, got %s", typ)
	}

	if _, ok := env2.Lookup("y"); ok {
		t.Fatalf("y should have been stripped when the block exited")
	}
}

func TestCheckBoxWrapsInnerType(t *testing.T) {
	c, root := newChecker()

	box := &astfr.BoxTerm{Sp: sp(), Inner: &astfr.IntLit{Sp: sp(), Value: 5}}

	typ, _, err := c.Check(typesys.Empty(), root, box)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !typ.Equal(astfr.BoxOf(astfr.Int())) {
		t.Fatalf("expected Box<int>, got %s", typ)
	}
}

func TestCheckUnspecifiedAccessInfersMoveForBox(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("b", astfr.BoxOf(astfr.Int()), root)

	access := &astfr.Access{Sp: sp(), Kind: astfr.AccessUnspecified, LVal: astfr.NewLVal("b")}

	_, env2, err := c.Check(env, root, access)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, _ := env2.Lookup("b")
	if b.Type.Kind != astfr.KindUndefined {
		t.Fatalf("unspecified access to a move-only type should behave as a move")
	}
}

func TestCheckUnspecifiedAccessInfersCopyForInt(t *testing.T) {
	c, root := newChecker()

	env, _ := typesys.Empty().Declare("x", astfr.Int(), root)

	access := &astfr.Access{Sp: sp(), Kind: astfr.AccessUnspecified, LVal: astfr.NewLVal("x")}

	_, env2, err := c.Check(env, root, access)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, _ := env2.Lookup("x")
	if b.Type.Kind == astfr.KindUndefined {
		t.Fatalf("unspecified access to a Copy type should not move it out")
	}
}
