package semantics

import (
	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/lifetime"
)

// Step performs exactly one reduction of term within machine m at
// lifetime ell (spec §4.3: "performs exactly one reduction per call").
// Evaluation order is leftmost-innermost: a term with sub-terms steps its
// first not-yet-reduced sub-term before reducing itself.
func Step(m Machine, ell lifetime.ID, term astfr.Term, exts []Extension) (Machine, astfr.Term, *diagnostic.Diagnostic) {
	switch t := term.(type) {
	case *astfr.Let:
		if !IsValue(t.Rhs) {
			nm, nrhs, err := Step(m, ell, t.Rhs, exts)
			if err != nil {
				return m, term, err
			}

			return nm, &astfr.Let{Sp: t.Sp, Name: t.Name, Rhs: nrhs}, nil
		}

		v := t.Rhs.(astfr.Value)
		ns, loc := m.Store.Alloc(v, ell, false)
		nf := m.Frame.Bind(t.Name, loc)

		return Machine{Store: ns, Frame: nf, Lifetimes: m.Lifetimes}, &astfr.UnitVal{Sp: t.Sp}, nil

	case *astfr.Assign:
		if !IsValue(t.Rhs) {
			nm, nrhs, err := Step(m, ell, t.Rhs, exts)
			if err != nil {
				return m, term, err
			}

			return nm, &astfr.Assign{Sp: t.Sp, LVal: t.LVal, Rhs: nrhs}, nil
		}

		v := t.Rhs.(astfr.Value)
		ns, stdErr := ResolveWrite(m.Store, m.Frame, t.LVal, v)
		if stdErr != nil {
			return m, term, diagnostic.Semantic(diagnostic.Code(stdErr.Code), t.Sp, "%s", stdErr.Message)
		}

		return Machine{Store: ns, Frame: m.Frame, Lifetimes: m.Lifetimes}, &astfr.UnitVal{Sp: t.Sp}, nil

	case *astfr.Access:
		v, stdErr := ResolveRead(m.Store, m.Frame, t.LVal)
		if stdErr != nil {
			return m, term, diagnostic.Semantic(diagnostic.Code(stdErr.Code), t.Sp, "%s", stdErr.Message)
		}

		// Only a whole-variable move actually vacates its source slot.
		// Moving through a dereference (e.g. *b, *r) reads the pointee
		// without disturbing the pointer cell itself: real Rust likewise
		// forbids moving out of a reference, and the only case the
		// checker lets through here is reading a Copy-typed pointee,
		// which a vacate would be wrong for anyway.
		if t.Kind == astfr.AccessMove && t.LVal.Path.IsEmpty() {
			ns, stdErr := ResolveVacate(m.Store, m.Frame, t.LVal)
			if stdErr != nil {
				return m, term, diagnostic.Semantic(diagnostic.Code(stdErr.Code), t.Sp, "%s", stdErr.Message)
			}

			return Machine{Store: ns, Frame: m.Frame, Lifetimes: m.Lifetimes}, v, nil
		}

		return m, v, nil

	case *astfr.Borrow:
		loc, fields, stdErr := resolveBase(m.Store, m.Frame, t.LVal)
		if stdErr != nil {
			return m, term, diagnostic.Semantic(diagnostic.Code(stdErr.Code), t.Sp, "%s", stdErr.Message)
		}

		if len(fields) != 0 {
			return m, term, diagnostic.Semantic(diagnostic.CodeBadDereference, t.Sp,
				"cannot borrow a path that projects into a tuple field without its own cell")
		}

		l := loc

		return m, &l, nil

	case *astfr.BoxTerm:
		if !IsValue(t.Inner) {
			nm, ninner, err := Step(m, ell, t.Inner, exts)
			if err != nil {
				return m, term, err
			}

			return nm, &astfr.BoxTerm{Sp: t.Sp, Inner: ninner}, nil
		}

		v := t.Inner.(astfr.Value)
		ns, loc := m.Store.Alloc(v, m.Lifetimes.Root(), true)

		return Machine{Store: ns, Frame: m.Frame, Lifetimes: m.Lifetimes}, &loc, nil

	case *astfr.Block:
		// Opening a block is itself one reduction: choose its child
		// lifetime and hand it a runtime form that remembers the choice.
		child := m.Lifetimes.FreshWithin(ell)
		terms := make([]astfr.Term, len(t.Terms))
		copy(terms, t.Terms)

		return m, &runningBlock{Sp: t.Sp, Ell: child, Terms: terms}, nil

	case *runningBlock:
		return stepRunningBlock(m, t, exts)

	default:
		for _, ext := range exts {
			nm, res, handled, err := ext.TryStep(m, ell, term, exts)
			if handled {
				return nm, res, err
			}
		}

		return m, term, diagnostic.Semantic(diagnostic.CodeStuck, term.Span(), "no reduction rule applies to %s", term)
	}
}

// stepRunningBlock evaluates a running block's terms in order (spec
// §4.3 Block): each term reduces to a value before the next one starts,
// intermediate values are discarded, and on reaching the final value the
// child lifetime's cells are dropped.
func stepRunningBlock(m Machine, b *runningBlock, exts []Extension) (Machine, astfr.Term, *diagnostic.Diagnostic) {
	if len(b.Terms) == 0 {
		ns, stdErr := m.Store.Drop(b.Ell)
		if stdErr != nil {
			return m, b, diagnostic.Semantic(diagnostic.Code(stdErr.Code), b.Sp, "%s", stdErr.Message)
		}

		return Machine{Store: ns, Frame: m.Frame, Lifetimes: m.Lifetimes}, &astfr.UnitVal{Sp: b.Sp}, nil
	}

	idx := 0
	for idx < len(b.Terms)-1 && IsValue(b.Terms[idx]) {
		idx++
	}

	last := b.Terms[len(b.Terms)-1]

	if idx == len(b.Terms)-1 && IsValue(last) {
		ns, stdErr := m.Store.Drop(b.Ell)
		if stdErr != nil {
			return m, b, diagnostic.Semantic(diagnostic.Code(stdErr.Code), b.Sp, "%s", stdErr.Message)
		}

		return Machine{Store: ns, Frame: m.Frame, Lifetimes: m.Lifetimes}, last.(astfr.Value), nil
	}

	nm, nt, err := Step(m, b.Ell, b.Terms[idx], exts)
	if err != nil {
		return m, b, err
	}

	rest := make([]astfr.Term, len(b.Terms))
	copy(rest, b.Terms)
	rest[idx] = nt

	return nm, &runningBlock{Sp: b.Sp, Ell: b.Ell, Terms: rest}, nil
}
