package extensions

import (
	"fmt"
	"strings"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/position"
	"github.com/fwrust/fwrust/internal/semantics"
	"github.com/fwrust/fwrust/internal/store"
	"github.com/fwrust/fwrust/internal/typesys"
)

// Param is one formal parameter of a function declaration.
type Param struct {
	Name string
	Type astfr.Type
}

// OutlivesBound is a declared `'a: 'b` ("'a outlives 'b") constraint
// between two of a function's lifetime parameters.
type OutlivesBound struct {
	Longer  string
	Shorter string
}

// FnDecl is a function declaration with explicit lifetime parameters
// (spec §4.6 Functions). Recursion is not required and not supported:
// Body is type-checked and executed without Name being visible in its
// own scope.
type FnDecl struct {
	Name           string
	LifetimeParams []string
	Bounds         []OutlivesBound
	Params         []Param
	ReturnType     astfr.Type
	Body           astfr.Term
}

func (f *FnDecl) String() string {
	var params []string
	for _, p := range f.Params {
		params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}

	lts := ""
	if len(f.LifetimeParams) > 0 {
		var names []string
		for _, l := range f.LifetimeParams {
			names = append(names, "'"+l)
		}

		lts = "<" + strings.Join(names, ", ") + ">"
	}

	return fmt.Sprintf("fn %s%s(%s) -> %s %s", f.Name, lts, strings.Join(params, ", "), f.ReturnType, f.Body)
}

// FuncTable is the set of function declarations visible to Call terms. A
// program type-checks and runs against exactly one FuncTable, built once
// up front — spec.md treats declarations as a fixed top-level surface,
// not a term that itself reduces.
type FuncTable struct {
	fns map[string]*FnDecl
}

// NewFuncTable returns a FuncTable containing the given declarations,
// indexed by name. Declaring the same name twice is a caller bug
// (fixtures/parser responsibility), not a runtime condition, so later
// entries simply overwrite earlier ones.
func NewFuncTable(decls ...*FnDecl) *FuncTable {
	fns := make(map[string]*FnDecl, len(decls))
	for _, d := range decls {
		fns[d.Name] = d
	}

	return &FuncTable{fns: fns}
}

func (ft *FuncTable) Lookup(name string) (*FnDecl, bool) {
	fn, ok := ft.fns[name]

	return fn, ok
}

// Call is a function call term: `name(arg1, ..., argn)`. Lifetime
// arguments are never written at the call site (spec §4.6: "substitute
// lifetime parameters by fresh lifetimes satisfying the declared
// outlives bounds" happens implicitly, not by explicit annotation).
type Call struct {
	Sp   position.Span
	Name string
	Args []astfr.Term
}

func (c *Call) Span() position.Span { return c.Sp }
func (c *Call) String() string {
	var parts []string
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}

	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}

// FunctionsExt types and reduces Call against a fixed FuncTable.
type FunctionsExt struct {
	Funcs *FuncTable
}

// freshParamLifetimes creates one fresh lifetime per declared lifetime
// parameter, nesting a Shorter parameter inside its Longer bound's
// lifetime so the tree records Outlives(longer, shorter) by
// construction (spec §4.6: "fresh lifetimes satisfying the declared
// outlives bounds"). A parameter with no bound is created directly
// within the call site's own lifetime.
func freshParamLifetimes(tree *lifetime.Tree, ell lifetime.ID, fn *FnDecl) map[string]lifetime.ID {
	parentOf := make(map[string]string, len(fn.Bounds))
	for _, b := range fn.Bounds {
		parentOf[b.Shorter] = b.Longer
	}

	created := make(map[string]lifetime.ID, len(fn.LifetimeParams))

	var create func(name string) lifetime.ID

	create = func(name string) lifetime.ID {
		if id, ok := created[name]; ok {
			return id
		}

		parent := ell
		if p, ok := parentOf[name]; ok {
			parent = create(p)
		}

		id := tree.FreshWithin(parent)
		created[name] = id

		return id
	}

	for _, p := range fn.LifetimeParams {
		create(p)
	}

	return created
}

func (fe FunctionsExt) TryCheck(c *checker.Checker, env typesys.Environment, ell lifetime.ID, term astfr.Term) (astfr.Type, typesys.Environment, bool, *diagnostic.Diagnostic) {
	t, ok := term.(*Call)
	if !ok {
		return astfr.Type{}, env, false, nil
	}

	fn, ok := fe.Funcs.Lookup(t.Name)
	if !ok {
		return astfr.Type{}, env, true, diagnostic.Checker(diagnostic.CodeUndeclaredVariable, t.Sp,
			"call to undeclared function %q", t.Name)
	}

	if len(t.Args) != len(fn.Params) {
		return astfr.Type{}, env, true, diagnostic.Checker(diagnostic.CodeTypeMismatch, t.Sp,
			"%s expects %d argument(s), got %d", t.Name, len(fn.Params), len(t.Args))
	}

	// Materializing the fresh per-call lifetimes validates that the
	// declared bounds are at least constructible; nothing about their
	// actual IDs feeds back into argument types, since FR's Type carries
	// l-value referent sets rather than abstract lifetime annotations.
	freshParamLifetimes(c.Lifetimes, ell, fn)

	cur := env

	for i, arg := range t.Args {
		argType, next, err := c.Check(cur, ell, arg)
		if err != nil {
			return astfr.Type{}, env, true, err
		}

		if !fn.Params[i].Type.Compatible(argType) {
			return astfr.Type{}, env, true, diagnostic.Checker(diagnostic.CodeTypeMismatch, t.Sp,
				"argument %d to %s: expected %s, got %s", i, t.Name, fn.Params[i].Type, argType)
		}

		cur = next
	}

	return fn.ReturnType, cur, true, nil
}

func (fe FunctionsExt) TryStep(m semantics.Machine, ell lifetime.ID, term astfr.Term, exts []semantics.Extension) (semantics.Machine, astfr.Term, bool, *diagnostic.Diagnostic) {
	t, ok := term.(*Call)
	if !ok {
		return m, term, false, nil
	}

	for i, a := range t.Args {
		if semantics.IsValue(a) {
			continue
		}

		nm, na, err := semantics.Step(m, ell, a, exts)
		if err != nil {
			return m, term, true, err
		}

		rest := make([]astfr.Term, len(t.Args))
		copy(rest, t.Args)
		rest[i] = na

		return nm, &Call{Sp: t.Sp, Name: t.Name, Args: rest}, true, nil
	}

	fn, ok := fe.Funcs.Lookup(t.Name)
	if !ok {
		return m, term, true, diagnostic.Semantic(diagnostic.CodeStuck, t.Sp, "call to undeclared function %q", t.Name)
	}

	bodyEll := m.Lifetimes.FreshWithin(ell)

	ns := m.Store
	frame := store.NewFrame()

	for i, p := range fn.Params {
		v := t.Args[i].(astfr.Value)

		var loc astfr.Location

		ns, loc = ns.Alloc(v, bodyEll, false)
		frame = frame.Bind(p.Name, loc)
	}

	callMachine := semantics.Machine{Store: ns, Frame: frame, Lifetimes: m.Lifetimes}

	resultMachine, resultValue, err := semantics.Execute(callMachine, bodyEll, fn.Body, exts)
	if err != nil {
		return m, term, true, err
	}

	ns2, stdErr := resultMachine.Store.Drop(bodyEll)
	if stdErr != nil {
		return m, term, true, diagnostic.Semantic(diagnostic.Code(stdErr.Code), t.Sp, "%s", stdErr.Message)
	}

	finalMachine := semantics.Machine{Store: ns2, Frame: m.Frame, Lifetimes: m.Lifetimes}

	return finalMachine, resultValue, true, nil
}
