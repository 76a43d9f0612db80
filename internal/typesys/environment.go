// Package typesys implements the borrow checker's typing environment
// (spec §4.4): an immutable binding from variable names to (Type,
// declaring-lifetime) pairs.
package typesys

import (
	"sort"
	"strings"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/lifetime"
)

// Binding is one variable's current type and the lifetime of the block
// it was declared in.
type Binding struct {
	Type astfr.Type
	Decl lifetime.ID
}

// Environment is a persistent value object: every mutating operation
// returns a new Environment and leaves the receiver untouched, as spec
// §4.4 requires ("operations return new environments"). Sharing the
// backing map between versions is safe because every write path copies
// before mutating (copy-on-write).
type Environment struct {
	bindings map[string]Binding
}

// Empty returns an Environment with no bindings.
func Empty() Environment {
	return Environment{}
}

// Declare returns a new Environment with x bound to (T, decl). Returns
// ok=false without modification if x is already bound (spec §4.5 Let:
// "fails if x already declared in the current block" — callers are
// responsible for first removing any same-lifetime binding via
// RemoveAllIn at block entry so that shadowing across nested blocks
// still succeeds).
func (e Environment) Declare(x string, t astfr.Type, decl lifetime.ID) (Environment, bool) {
	if _, exists := e.bindings[x]; exists {
		return e, false
	}

	return e.with(x, Binding{Type: t, Decl: decl}), true
}

// Lookup returns x's current binding and whether it exists.
func (e Environment) Lookup(x string) (Binding, bool) {
	b, ok := e.bindings[x]

	return b, ok
}

// DeclareShadow is Declare's shadowing-aware counterpart: it fails only
// when x is already bound at the *same* lifetime decl (a true
// redeclaration within one block), but silently overwrites a binding
// inherited from an enclosing lifetime (spec §4.5 Let: "shadowing is
// allowed only across nested blocks").
func (e Environment) DeclareShadow(x string, t astfr.Type, decl lifetime.ID) (Environment, bool) {
	if b, exists := e.bindings[x]; exists && b.Decl == decl {
		return e, false
	}

	return e.with(x, Binding{Type: t, Decl: decl}), true
}

// Update returns a new Environment with x rebound to type t, keeping its
// original declaring lifetime. Returns ok=false if x is not bound.
func (e Environment) Update(x string, t astfr.Type) (Environment, bool) {
	b, ok := e.bindings[x]
	if !ok {
		return e, false
	}

	b.Type = t

	return e.with(x, b), true
}

// Remove returns a new Environment with x unbound entirely.
func (e Environment) Remove(x string) Environment {
	if _, ok := e.bindings[x]; !ok {
		return e
	}

	out := e.copyMap()
	delete(out, x)

	return Environment{bindings: out}
}

// RemoveAllIn returns a new Environment with every binding declared at
// lifetime ell stripped out (spec §4.5 Block: "strip all bindings
// declared at ℓ from the environment").
func (e Environment) RemoveAllIn(ell lifetime.ID) Environment {
	out := e.copyMap()

	for name, b := range out {
		if b.Decl == ell {
			delete(out, name)
		}
	}

	return Environment{bindings: out}
}

// Names returns the currently-bound variable names in sorted order, for
// deterministic iteration (diagnostics, escape checks, tests).
func (e Environment) Names() []string {
	out := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// LiveBorrowsConflicting returns the names of every bound variable whose
// type is a borrow (shared or mutable) with a set path-conflicting lv —
// the "which currently-live bindings ... are live" query spec §4.5
// describes for borrow tracking.
func (e Environment) LiveBorrowsConflicting(lv astfr.LVal) []string {
	var out []string

	for _, name := range e.Names() {
		b := e.bindings[name]
		if b.Type.Kind != astfr.KindBorrow {
			continue
		}

		for _, set := range b.Type.Set {
			if set.Conflict(lv) {
				out = append(out, name)
				break
			}
		}
	}

	return out
}

func (e Environment) with(x string, b Binding) Environment {
	out := e.copyMap()
	out[x] = b

	return Environment{bindings: out}
}

func (e Environment) copyMap() map[string]Binding {
	out := make(map[string]Binding, len(e.bindings)+1)
	for k, v := range e.bindings {
		out[k] = v
	}

	return out
}

func (e Environment) String() string {
	var sb strings.Builder

	sb.WriteString("{")

	for i, name := range e.Names() {
		if i > 0 {
			sb.WriteString(", ")
		}

		b := e.bindings[name]
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(b.Type.String())
	}

	sb.WriteString("}")

	return sb.String()
}
