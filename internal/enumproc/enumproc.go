// Package enumproc exhaustively enumerates the bounded program space
// P(i,v,d,w) of spec §8's GLOSSARY — closed blocks using at most i
// integer literals, v variable names, d levels of nesting, and w
// statements per block — and checks the Soundness property over the
// whole space in parallel.
package enumproc

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/extensions"
	"github.com/fwrust/fwrust/internal/frfuzz"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/semantics"
	"github.com/fwrust/fwrust/internal/typesys"
)

// canonicalVars is the fixed naming sequence a canonical program must
// follow: its i-th Let in source order declares canonicalVars[i-1].
var canonicalVars = []string{"a", "b", "c", "d", "e", "f", "g", "h"}

// Descriptor bounds one instance of P(i,v,d,w).
type Descriptor struct {
	MaxInts  int // i: distinct integer literal values, drawn from [0, MaxInts)
	MaxVars  int // v: distinct variable names available to bind
	MaxDepth int // d: levels of nested blocks
	MaxWidth int // w: statements per block
}

// Enumerate returns the closed blocks of P(d.MaxInts, d.MaxVars,
// d.MaxDepth, d.MaxWidth) that it builds statement by statement. A Let
// declares canonicalVars[k], k being the number of variables in scope, so
// with MaxDepth 0 every result is Canonical; with nested blocks some
// results are not Canonical (e.g. `{ { let a }; let a }`) and some
// canonical programs (e.g. `{ let a; { let b }; let c }`) are not
// produced. Callers should keep the descriptor small: the space grows
// combinatorially in MaxWidth and MaxDepth.
func Enumerate(d Descriptor) []*astfr.Block {
	st := &enumState{desc: d}

	return st.blocks(d.MaxDepth, d.MaxWidth, nil)
}

type enumState struct {
	desc Descriptor
}

// blocks enumerates every block of 1..width statements reachable at the
// given remaining nesting budget, given the variables already bound in
// enclosing scopes.
func (s *enumState) blocks(depth, width int, outerVars []string) []*astfr.Block {
	var out []*astfr.Block

	for n := 1; n <= width; n++ {
		out = append(out, s.blocksOfWidth(depth, n, outerVars)...)
	}

	return out
}

func (s *enumState) blocksOfWidth(depth, n int, outerVars []string) []*astfr.Block {
	if n == 0 {
		return []*astfr.Block{{}}
	}

	var out []*astfr.Block

	prefixes := s.blocksOfWidth(depth, n-1, outerVars)

	for _, prefix := range prefixes {
		bound := append(append([]string(nil), outerVars...), declaredVars(prefix.Terms)...)

		for _, stmt := range s.statements(depth, bound) {
			out = append(out, &astfr.Block{Terms: append(append([]astfr.Term(nil), prefix.Terms...), stmt)})
		}
	}

	return out
}

func declaredVars(terms []astfr.Term) []string {
	var vars []string

	for _, t := range terms {
		if l, ok := t.(*astfr.Let); ok {
			vars = append(vars, l.Name)
		}
	}

	return vars
}

// statements enumerates every legal next statement given the variables
// already bound, respecting the descriptor's bounds on literal count,
// variable count, and remaining nesting depth.
func (s *enumState) statements(depth int, bound []string) []astfr.Term {
	var out []astfr.Term

	for _, rhs := range s.terminalRhs(bound) {
		if len(bound) < s.desc.MaxVars {
			out = append(out, &astfr.Let{Name: canonicalVars[len(bound)], Rhs: rhs})
		}
	}

	for _, v := range bound {
		for _, rhs := range s.terminalRhs(bound) {
			out = append(out, &astfr.Assign{LVal: astfr.NewLVal(v), Rhs: rhs})
		}

		out = append(out, &astfr.Access{Kind: astfr.AccessMove, LVal: astfr.NewLVal(v)})
		out = append(out, &astfr.Access{Kind: astfr.AccessCopy, LVal: astfr.NewLVal(v)})
	}

	if depth > 0 {
		for _, inner := range s.blocks(depth-1, s.desc.MaxWidth, bound) {
			out = append(out, inner)
		}
	}

	return out
}

// terminalRhs enumerates every non-block right-hand side: each integer
// literal in range, and a borrow of each already-bound variable.
func (s *enumState) terminalRhs(bound []string) []astfr.Term {
	var out []astfr.Term

	for v := 0; v < s.desc.MaxInts; v++ {
		out = append(out, &astfr.IntLit{Value: int64(v)})
	}

	for _, v := range bound {
		out = append(out, &astfr.Borrow{Mut: false, LVal: astfr.NewLVal(v)})
		out = append(out, &astfr.Borrow{Mut: true, LVal: astfr.NewLVal(v)})
	}

	return out
}

// Canonical reports whether term's i-th Let, visited in source order,
// declares canonicalVars[i-1] — the de-duplication filter spec §8
// describes for collapsing a program onto a single α-equivalence class
// representative.
func Canonical(term astfr.Term) bool {
	idx := 0
	ok := true

	var walk func(t astfr.Term)

	walk = func(t astfr.Term) {
		switch n := t.(type) {
		case *astfr.Block:
			for _, c := range n.Terms {
				walk(c)
			}
		case *astfr.Let:
			if idx >= len(canonicalVars) || n.Name != canonicalVars[idx] {
				ok = false
			}

			idx++

			walk(n.Rhs)
		case *astfr.Assign:
			walk(n.Rhs)
		case *astfr.BoxTerm:
			walk(n.Inner)
		case *extensions.IfElse:
			walk(n.Then)
			walk(n.Else)
		}
	}

	walk(term)

	return ok
}

// Outcome is one program's Soundness-property verdict.
type Outcome struct {
	Program  *astfr.Block
	Accepted bool
	Fault    *diagnostic.Diagnostic // non-nil only when Accepted but execution got stuck
}

// Violation is a program the checker accepted whose execution produced
// a semantic fault — a Soundness-property counterexample.
type Violation struct {
	Program *astfr.Block
	Fault   *diagnostic.Diagnostic
}

// RunOptions configure the parallel batch Soundness check.
type RunOptions struct {
	Concurrency int64
}

// RunSoundness checks every program in programs against the in-process
// checker+machine pipeline concurrently, bounded by opts.Concurrency,
// and returns every counterexample found: a program the checker
// accepted whose execution did not reduce to a value.
func RunSoundness(ctx context.Context, programs []*astfr.Block, opts RunOptions) ([]Violation, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	sem := semaphore.NewWeighted(opts.Concurrency)
	g, gctx := errgroup.WithContext(ctx)

	violations := make([]Violation, len(programs))
	hit := make([]bool, len(programs))

	for i, prog := range programs {
		i, prog := i, prog

		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			if v, violated := checkOne(prog); violated {
				violations[i] = v
				hit[i] = true
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enumproc: soundness batch: %w", err)
	}

	out := make([]Violation, 0, len(programs))
	seen := make(map[string]bool, len(programs))

	for i, ok := range hit {
		if !ok {
			continue
		}

		digest := frfuzz.CorpusDigest([]byte(violations[i].Program.String()))
		if seen[digest] {
			continue
		}

		seen[digest] = true
		out = append(out, violations[i])
	}

	return out, nil
}

func checkOne(prog *astfr.Block) (Violation, bool) {
	tree := lifetime.New()
	checkExts := []checker.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	c := checker.New(tree, checkExts...)

	_, _, cerr := c.Check(typesys.Empty(), tree.Root(), prog)
	if cerr != nil {
		return Violation{}, false
	}

	semExts := []semantics.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	m := semantics.NewMachine(tree)

	_, _, serr := semantics.Execute(m, tree.Root(), prog, semExts)
	if serr == nil {
		return Violation{}, false
	}

	return Violation{Program: prog, Fault: serr}, true
}
