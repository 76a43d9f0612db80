// Package langver tags each generated program with the minimal extension
// surface it exercises (core vs. tuple/if-else/function extensions) and
// selects, among the configured rustc toolchains, the ones whose version
// satisfies that surface's declared constraint — a reduction of the
// teacher's package-manager dependency resolution down to a single
// constraint-satisfaction check.
package langver

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/extensions"
)

// Feature is one extension surface a program may exercise beyond the
// core calculus.
type Feature string

const (
	FeatureCore      Feature = "core"
	FeatureIfElse    Feature = "if-else"
	FeatureTuples    Feature = "tuples"
	FeatureFunctions Feature = "functions"
)

// requiredConstraint is the minimum rustc version known to stably support
// each feature's surface syntax, expressed as a Masterminds/semver
// constraint string.
var requiredConstraint = map[Feature]string{
	FeatureCore:      ">=1.0.0",
	FeatureIfElse:    ">=1.0.0",
	FeatureTuples:    ">=1.0.0",
	FeatureFunctions: ">=1.26.0",
}

// Surface is the set of features a single program exercises.
type Surface map[Feature]bool

// Detect walks term and any in-scope function declarations, recording
// every extension feature exercised.
func Detect(term astfr.Term, decls []*extensions.FnDecl) Surface {
	s := Surface{FeatureCore: true}

	var walk func(t astfr.Term)

	walk = func(t astfr.Term) {
		switch n := t.(type) {
		case *astfr.Let:
			walk(n.Rhs)
		case *astfr.Assign:
			walk(n.Rhs)
		case *astfr.BoxTerm:
			walk(n.Inner)
		case *astfr.Block:
			for _, c := range n.Terms {
				walk(c)
			}
		case *extensions.IfElse:
			s[FeatureIfElse] = true
			walk(n.Then)
			walk(n.Else)
		case *extensions.TupleLit:
			s[FeatureTuples] = true
			for _, e := range n.Elems {
				walk(e)
			}
		case *extensions.Call:
			s[FeatureFunctions] = true
			for _, a := range n.Args {
				walk(a)
			}
		}
	}

	walk(term)

	if len(decls) > 0 {
		s[FeatureFunctions] = true
	}

	return s
}

// Constraints returns the semver constraint for the most demanding
// feature the surface exercises; a core-only surface is constrained only
// by FeatureCore's own baseline.
func (s Surface) Constraints() (*semver.Constraints, error) {
	expr := ""

	for f := range s {
		if f == FeatureCore {
			continue
		}

		c := requiredConstraint[f]
		if expr == "" {
			expr = c
		} else {
			expr = expr + ", " + c
		}
	}

	if expr == "" {
		expr = requiredConstraint[FeatureCore]
	}

	return semver.NewConstraint(expr)
}

// Toolchain is one configured rustc the differential driver may invoke.
type Toolchain struct {
	Name    string
	Path    string
	Version *semver.Version
}

// Eligible returns the subset of toolchains whose version satisfies
// surface's combined constraint.
func Eligible(toolchains []Toolchain, surface Surface) ([]Toolchain, error) {
	constraints, err := surface.Constraints()
	if err != nil {
		return nil, fmt.Errorf("langver: %w", err)
	}

	var out []Toolchain

	for _, tc := range toolchains {
		if constraints.Check(tc.Version) {
			out = append(out, tc)
		}
	}

	return out, nil
}
