package semantics

import (
	"strings"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/position"
)

// runningBlock is spec §4.3's runtime Block(ℓ, e₁…eₙ) form: a block whose
// child lifetime has already been chosen. It never appears in parsed
// source (astfr.Block carries no lifetime — one is picked the first time
// Step opens it) and exists only as a small-step intermediate, the
// operational-semantics analogue of an "evaluation in progress" marker.
type runningBlock struct {
	Sp     position.Span
	Ell    lifetime.ID
	Terms  []astfr.Term
}

func (b *runningBlock) Span() position.Span { return b.Sp }
func (b *runningBlock) String() string {
	var parts []string
	for _, t := range b.Terms {
		parts = append(parts, t.String())
	}

	return "{" + b.Ell.String() + ": " + strings.Join(parts, "; ") + "}"
}
