package semantics

import (
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/store"
)

// Machine bundles the persistent pieces of program state threaded by
// Step/Execute: the heap (Store), the current stack frame binding
// variables to locations, and the shared lifetime tree (append-only, so
// it is not itself copy-on-write — see internal/lifetime).
type Machine struct {
	Store     store.Store
	Frame     store.Frame
	Lifetimes *lifetime.Tree
}

// NewMachine returns a Machine with an empty store and frame over the
// given lifetime tree (normally freshly created by the caller so the
// checker and the machine do not share lifetime identifiers across
// independent runs).
func NewMachine(tree *lifetime.Tree) Machine {
	return Machine{Store: store.New(), Frame: store.NewFrame(), Lifetimes: tree}
}
