package proptest

import (
	"math/rand"
	"testing"

	"github.com/fwrust/fwrust/internal/astfr"
)

func TestGenTermProducesANonEmptyBlock(t *testing.T) {
	gen := GenTerm(true)
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		term := gen(r, 5)

		block, ok := term.(*astfr.Block)
		if !ok {
			t.Fatalf("expected *astfr.Block, got %T", term)
		}

		if len(block.Terms) == 0 {
			t.Fatalf("expected a non-empty block")
		}
	}
}

func TestGenTermNeverReferencesAnUnboundVariable(t *testing.T) {
	gen := GenTerm(true)
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		term := gen(r, 6)
		assertNoDanglingAccess(t, term, map[string]bool{})
	}
}

func assertNoDanglingAccess(t *testing.T, term astfr.Term, bound map[string]bool) {
	t.Helper()

	switch n := term.(type) {
	case *astfr.Block:
		scope := cloneSet(bound)
		for _, c := range n.Terms {
			assertNoDanglingAccess(t, c, scope)
			if l, ok := c.(*astfr.Let); ok {
				scope[l.Name] = true
			}
		}
	case *astfr.Let:
		assertNoDanglingAccess(t, n.Rhs, bound)
	case *astfr.Assign:
		requireBound(t, n.LVal, bound)
		assertNoDanglingAccess(t, n.Rhs, bound)
	case *astfr.Access:
		requireBound(t, n.LVal, bound)
	case *astfr.Borrow:
		requireBound(t, n.LVal, bound)
	case *astfr.BoxTerm:
		assertNoDanglingAccess(t, n.Inner, bound)
	}
}

func requireBound(t *testing.T, lv astfr.LVal, bound map[string]bool) {
	t.Helper()

	if !bound[lv.Var] {
		t.Fatalf("lvalue %s referenced before its binding was in scope", lv)
	}
}

func cloneSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

func TestShrinkTermDropsABlockStatement(t *testing.T) {
	block := &astfr.Block{Terms: []astfr.Term{
		&astfr.Let{Name: "a", Rhs: &astfr.IntLit{Value: 1}},
		&astfr.Let{Name: "b", Rhs: &astfr.IntLit{Value: 2}},
	}}

	shrunk := ShrinkTerm()(block)
	if len(shrunk) == 0 {
		t.Fatalf("expected at least one smaller candidate")
	}

	for _, s := range shrunk {
		b, ok := s.(*astfr.Block)
		if !ok || len(b.Terms) != 1 {
			t.Fatalf("expected a one-statement block candidate, got %#v", s)
		}
	}
}

func TestShrinkTermOfLetReturnsItsRhs(t *testing.T) {
	let := &astfr.Let{Name: "a", Rhs: &astfr.IntLit{Value: 5}}

	shrunk := ShrinkTerm()(let)
	if len(shrunk) != 1 {
		t.Fatalf("expected exactly one candidate, got %d", len(shrunk))
	}

	if _, ok := shrunk[0].(*astfr.IntLit); !ok {
		t.Fatalf("expected the Let's Rhs to surface as the sole candidate")
	}
}
