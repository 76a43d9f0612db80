package semantics

import (
	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/lifetime"
)

// maxSteps bounds big-step evaluation defensively: a well-formed
// reducer over a finite, terminating calculus like FeatherweightRust
// should never approach this, but the enumerator/fuzzer feed it
// arbitrary (occasionally check-rejected) programs, and a reduction that
// never reaches a value must still return rather than loop forever.
const maxSteps = 1_000_000

// Execute is the transitive closure of Step: it reduces term to a value
// or reports the diagnostic that stopped it (spec §4.3: "execute(state,
// ℓ, term) -> value ... must produce the same final value" as iterated
// small steps).
func Execute(m Machine, ell lifetime.ID, term astfr.Term, exts []Extension) (Machine, astfr.Value, *diagnostic.Diagnostic) {
	cur := term
	cm := m

	for i := 0; i < maxSteps; i++ {
		if v, ok := cur.(astfr.Value); ok {
			return cm, v, nil
		}

		nm, nt, err := Step(cm, ell, cur, exts)
		if err != nil {
			return cm, nil, err
		}

		cm, cur = nm, nt
	}

	return cm, nil, diagnostic.Semantic(diagnostic.CodeStuck, term.Span(), "evaluation did not terminate within %d steps", maxSteps)
}
