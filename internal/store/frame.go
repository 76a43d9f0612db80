package store

import "github.com/fwrust/fwrust/internal/astfr"

// Frame binds variable names to their current store location (spec §4.3
// Bind). Like Environment and Store, it is a persistent value type.
type Frame struct {
	bindings map[string]astfr.Location
}

// NewFrame returns an empty frame.
func NewFrame() Frame {
	return Frame{}
}

// Bind returns a new Frame with x bound to loc, overwriting any prior
// binding for x (shadowing within a block rebinds in place at the AST
// level; the checker is what rejects redeclaration, per
// internal/typesys).
func (f Frame) Bind(x string, loc astfr.Location) Frame {
	out := make(map[string]astfr.Location, len(f.bindings)+1)
	for k, v := range f.bindings {
		out[k] = v
	}

	out[x] = loc

	return Frame{bindings: out}
}

// Lookup returns x's bound location.
func (f Frame) Lookup(x string) (astfr.Location, bool) {
	loc, ok := f.bindings[x]

	return loc, ok
}

// Unbind returns a new Frame with the given names removed (the frame-level
// counterpart of typesys.Environment.RemoveAllIn). The semantics does not
// call it: a block's names stay bound in the Frame after the block ends,
// their cells emptied by Store.Drop.
func (f Frame) Unbind(names ...string) Frame {
	out := make(map[string]astfr.Location, len(f.bindings))
	for k, v := range f.bindings {
		out[k] = v
	}

	for _, n := range names {
		delete(out, n)
	}

	return Frame{bindings: out}
}
