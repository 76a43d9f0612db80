package frparse

import (
	"testing"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/extensions"
	"github.com/fwrust/fwrust/internal/frlex"
)

func mustParse(t *testing.T, src string) astfr.Term {
	t.Helper()

	term, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}

	return term
}

func TestParseEmptyBlock(t *testing.T) {
	term := mustParse(t, "{}")

	block, ok := term.(*astfr.Block)
	if !ok || len(block.Terms) != 0 {
		t.Fatalf("expected empty block, got %#v", term)
	}
}

func TestParseLetAndMoveAndAssign(t *testing.T) {
	term := mustParse(t, "{ let mut x = 1; let mut y = x; y = 2 }")

	block := term.(*astfr.Block)
	if len(block.Terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(block.Terms))
	}

	let1, ok := block.Terms[0].(*astfr.Let)
	if !ok || let1.Name != "x" {
		t.Fatalf("expected let x, got %#v", block.Terms[0])
	}

	if _, ok := let1.Rhs.(*astfr.IntLit); !ok {
		t.Fatalf("expected int literal rhs, got %#v", let1.Rhs)
	}

	let2 := block.Terms[1].(*astfr.Let)

	access, ok := let2.Rhs.(*astfr.Access)
	if !ok || access.Kind != astfr.AccessMove || access.LVal.Var != "x" {
		t.Fatalf("expected move of x, got %#v", let2.Rhs)
	}

	assign := block.Terms[2].(*astfr.Assign)
	if assign.LVal.Var != "y" {
		t.Fatalf("expected assignment to y, got %#v", assign)
	}
}

func TestParseExplicitCopyAndUnspecified(t *testing.T) {
	term := mustParse(t, "{ let mut x = 1; let mut y = !x; let mut z = ?x }")

	block := term.(*astfr.Block)

	copyLet := block.Terms[1].(*astfr.Let)
	copyAccess := copyLet.Rhs.(*astfr.Access)

	if copyAccess.Kind != astfr.AccessCopy {
		t.Fatalf("expected explicit copy, got kind %v", copyAccess.Kind)
	}

	unspecLet := block.Terms[2].(*astfr.Let)
	unspecAccess := unspecLet.Rhs.(*astfr.Access)

	if unspecAccess.Kind != astfr.AccessUnspecified {
		t.Fatalf("expected unspecified access, got kind %v", unspecAccess.Kind)
	}
}

func TestParseBorrowSharedAndMut(t *testing.T) {
	term := mustParse(t, "{ let mut x = 1; let mut r = &x; let mut m = &mut x }")

	block := term.(*astfr.Block)

	sharedLet := block.Terms[1].(*astfr.Let)
	sharedBorrow := sharedLet.Rhs.(*astfr.Borrow)

	if sharedBorrow.Mut {
		t.Fatalf("expected shared borrow, got mut")
	}

	mutLet := block.Terms[2].(*astfr.Let)
	mutBorrow := mutLet.Rhs.(*astfr.Borrow)

	if !mutBorrow.Mut {
		t.Fatalf("expected mut borrow")
	}
}

func TestParseBoxAndDereference(t *testing.T) {
	term := mustParse(t, "{ let mut b = box 1; let mut v = *b }")

	block := term.(*astfr.Block)

	boxLet := block.Terms[0].(*astfr.Let)
	if _, ok := boxLet.Rhs.(*astfr.BoxTerm); !ok {
		t.Fatalf("expected box term, got %#v", boxLet.Rhs)
	}

	derefLet := block.Terms[1].(*astfr.Let)
	access := derefLet.Rhs.(*astfr.Access)

	if len(access.LVal.Path.Elems()) != 1 || !access.LVal.Path.Elems()[0].IsDeref() {
		t.Fatalf("expected a single deref path element, got %#v", access.LVal)
	}
}

func TestParseFieldProjection(t *testing.T) {
	lv := mustParseLVal(t, "p.1")

	if lv.Var != "p" {
		t.Fatalf("expected base variable p, got %s", lv.Var)
	}

	elems := lv.Path.Elems()
	if len(elems) != 1 || !elems[0].IsField() {
		t.Fatalf("expected one field path element, got %#v", elems)
	}
}

func mustParseLVal(t *testing.T, src string) astfr.LVal {
	t.Helper()

	p := New("{ " + src + " }")
	p.expect(frlex.LBrace)

	return p.parseLVal()
}

func TestParseNestedBlockAsTerm(t *testing.T) {
	term := mustParse(t, "{ let mut x = { 1 } }")

	block := term.(*astfr.Block)
	let := block.Terms[0].(*astfr.Let)

	inner, ok := let.Rhs.(*astfr.Block)
	if !ok || len(inner.Terms) != 1 {
		t.Fatalf("expected nested block rhs, got %#v", let.Rhs)
	}
}

func TestParseIfElse(t *testing.T) {
	term := mustParse(t, "{ let mut x = 1; let mut y = 2; if x == y { 1 } else { 2 } }")

	block := term.(*astfr.Block)

	ifTerm, ok := block.Terms[2].(*extensions.IfElse)
	if !ok {
		t.Fatalf("expected IfElse, got %#v", block.Terms[2])
	}

	if ifTerm.Negate {
		t.Fatalf("expected non-negated comparison")
	}

	if ifTerm.Left.Var != "x" || ifTerm.Right.Var != "y" {
		t.Fatalf("unexpected operands: %#v", ifTerm)
	}
}

func TestParseIfElseNegated(t *testing.T) {
	term := mustParse(t, "{ let mut x = 1; let mut y = 2; if x != y { 1 } else { 2 } }")

	block := term.(*astfr.Block)

	ifTerm := block.Terms[2].(*extensions.IfElse)
	if !ifTerm.Negate {
		t.Fatalf("expected negated comparison")
	}
}

func TestParseTupleLiteralAndProjection(t *testing.T) {
	term := mustParse(t, "{ let mut p = (1, 2); p.0 }")

	block := term.(*astfr.Block)
	let := block.Terms[0].(*astfr.Let)

	tuple, ok := let.Rhs.(*extensions.TupleLit)
	if !ok || len(tuple.Elems) != 2 {
		t.Fatalf("expected 2-element tuple literal, got %#v", let.Rhs)
	}

	access := block.Terms[1].(*astfr.Access)
	if access.LVal.Var != "p" {
		t.Fatalf("expected projection off p, got %#v", access.LVal)
	}
}

func TestParseParenthesizedTermIsNotATuple(t *testing.T) {
	term := mustParse(t, "{ (1) }")

	block := term.(*astfr.Block)
	if _, ok := block.Terms[0].(*astfr.IntLit); !ok {
		t.Fatalf("expected a bare int literal from a parenthesized term, got %#v", block.Terms[0])
	}
}

func TestParseFunctionDeclarationAndCall(t *testing.T) {
	decls, term, errs := ParseProgram(`
		fn identity(n: int) -> int { n }
		{ let mut a = 1; identity(a) }
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	if len(decls) != 1 || decls[0].Name != "identity" {
		t.Fatalf("expected one function named identity, got %#v", decls)
	}

	if len(decls[0].Params) != 1 || decls[0].Params[0].Name != "n" {
		t.Fatalf("unexpected params: %#v", decls[0].Params)
	}

	block := term.(*astfr.Block)

	call, ok := block.Terms[1].(*extensions.Call)
	if !ok || call.Name != "identity" || len(call.Args) != 1 {
		t.Fatalf("expected a call to identity with one argument, got %#v", block.Terms[1])
	}
}

func TestParseFunctionWithLifetimeParamsAndBound(t *testing.T) {
	decls, _, errs := ParseProgram(`
		fn pick('a, 'b: 'a)(x: &a, y: &b) -> &a { x }
		{ 1 }
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	fn := decls[0]
	if len(fn.LifetimeParams) != 2 {
		t.Fatalf("expected 2 lifetime params, got %v", fn.LifetimeParams)
	}

	if len(fn.Bounds) != 1 || fn.Bounds[0].Longer != "a" || fn.Bounds[0].Shorter != "b" {
		t.Fatalf("expected bound b: a, got %#v", fn.Bounds)
	}
}

func TestParseReportsErrorOnMalformedTerm(t *testing.T) {
	_, errs := Parse("{ let mut = 1 }")
	if len(errs) == 0 {
		t.Fatalf("expected a parse error for a missing identifier after let mut")
	}
}

func TestParseReportsTrailingTokenError(t *testing.T) {
	_, errs := Parse("{ 1 } 2")
	if len(errs) == 0 {
		t.Fatalf("expected a trailing-token error")
	}
}
