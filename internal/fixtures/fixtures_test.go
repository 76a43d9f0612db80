package fixtures

import (
	"testing"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/extensions"
	"github.com/fwrust/fwrust/internal/frparse"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/semantics"
	"github.com/fwrust/fwrust/internal/typesys"
)

func TestSeedsParseAndRoundTripThroughTxtar(t *testing.T) {
	seeds, err := Seeds()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seeds) != 6 {
		t.Fatalf("expected 6 seed scenarios, got %d", len(seeds))
	}

	for _, s := range seeds {
		encoded := Format(s.Name, s.Source, s.Verdict, s.Value, s.HasValue)
		if len(encoded) == 0 {
			t.Fatalf("%s: expected a non-empty re-encoded archive", s.Name)
		}
	}
}

func TestSeedsMatchCheckerAndMachineVerdicts(t *testing.T) {
	seeds, err := Seeds()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range seeds {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			term, parseErr := parseProgram(s.Source)
			if parseErr != nil {
				t.Fatalf("parse error: %v", parseErr)
			}

			tree := lifetime.New()
			checkExts := []checker.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
			c := checker.New(tree, checkExts...)

			_, _, cerr := c.Check(typesys.Empty(), tree.Root(), term)

			if s.Verdict == Reject {
				if cerr == nil {
					t.Fatalf("expected the checker to reject %q", s.Source)
				}

				return
			}

			if cerr != nil {
				t.Fatalf("expected the checker to accept %q, got %v", s.Source, cerr)
			}

			semExts := []semantics.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
			m := semantics.NewMachine(tree)

			_, val, serr := semantics.Execute(m, tree.Root(), term, semExts)
			if serr != nil {
				t.Fatalf("expected execution to succeed for %q, got %v", s.Source, serr)
			}

			if !s.HasValue {
				return
			}

			n, ok := val.(*astfr.IntLit)
			if !ok {
				t.Fatalf("expected an integer result, got %T", val)
			}

			if n.Value != s.Value {
				t.Fatalf("expected value %d, got %d", s.Value, n.Value)
			}
		})
	}
}

func parseProgram(src string) (astfr.Term, error) {
	term, errs := frparse.Parse(src)
	if len(errs) != 0 {
		return nil, errs[0]
	}

	return term, nil
}
