// Package store implements the heap of spec §4.3's operational
// semantics: an address-indexed cell store plus the reference-invariant
// check performed on block exit.
package store

import (
	"fmt"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/errors"
	"github.com/fwrust/fwrust/internal/lifetime"
)

// Cell is one addressable storage location. A nil Value marks the cell
// empty (dropped, or never written through a dangling write).
type Cell struct {
	Lifetime lifetime.ID
	Value    astfr.Value
	Global   bool // true for Box allocations: owned at the root lifetime
}

func (c Cell) empty() bool { return c.Value == nil }

// Store is a persistent value type: every mutating method returns a new
// Store, matching spec §5's "every reduction/step returns a new state
// without in-place mutation." The cell slice is copied on write rather
// than mutated.
type Store struct {
	cells []Cell
}

// New returns an empty store.
func New() Store {
	return Store{}
}

// Alloc appends a new cell holding v at lifetime ell (spec §4.3
// Allocate), returning the updated store and the fresh cell's location.
// Box allocations pass global=true (spec §4.3 Box: "allocate v at the
// root lifetime ... carry the global-lifetime flag").
func (s Store) Alloc(v astfr.Value, ell lifetime.ID, global bool) (Store, astfr.Location) {
	out := s.copyCells()
	addr := len(out)
	out = append(out, Cell{Lifetime: ell, Value: v, Global: global})

	return Store{cells: out}, astfr.Location{Addr: addr}
}

// Read returns the value held at loc. Reading an out-of-range or empty
// cell is a dangling-reference fault (spec §4.3 Read).
func (s Store) Read(loc astfr.Location) (astfr.Value, *errors.StandardError) {
	cell, err := s.cellAt(loc)
	if err != nil {
		return nil, err
	}

	if cell.empty() {
		return nil, errors.DanglingAddress(loc.Addr)
	}

	return cell.Value, nil
}

// Write overwrites the cell at loc with v. If the cell's old value was
// itself a Location into an owned (Global/Box) cell, that sub-cell is
// recursively finalised first (spec §4.3 Write: "if the old value owned
// other cells ... recursively finalise them").
func (s Store) Write(loc astfr.Location, v astfr.Value) (Store, *errors.StandardError) {
	out := s.copyCells()

	if loc.Addr < 0 || loc.Addr >= len(out) {
		return s, errors.DanglingAddress(loc.Addr)
	}

	old := out[loc.Addr]
	next := Store{cells: out}
	next = next.finaliseOwned(old.Value)
	next.cells[loc.Addr] = Cell{Lifetime: old.Lifetime, Value: v, Global: old.Global}

	return next, nil
}

// Vacate empties the cell at loc without finalising anything it points
// to — the store-level half of Move's "read-then-remove of source"
// (spec §4.3 Assign): ownership of whatever the source held moves to the
// destination intact, so unlike Finalise/Drop no recursive drop happens
// here.
func (s Store) Vacate(loc astfr.Location) (Store, *errors.StandardError) {
	out := s.copyCells()

	if loc.Addr < 0 || loc.Addr >= len(out) {
		return s, errors.DanglingAddress(loc.Addr)
	}

	out[loc.Addr].Value = nil

	return Store{cells: out}, nil
}

// finaliseOwned finalises the cell v points to, if v is a Location into
// a Global (box-owned) cell, recursively.
func (s Store) finaliseOwned(v astfr.Value) Store {
	loc, ok := v.(*astfr.Location)
	if !ok {
		return s
	}

	if loc.Addr < 0 || loc.Addr >= len(s.cells) || !s.cells[loc.Addr].Global {
		return s
	}

	return s.Finalise(*loc)
}

// Finalise recursively empties the cell at loc and whatever it owns,
// without touching cells at other lifetimes. Used both by Write's
// implicit drop of an overwritten Box and by Drop's lifetime sweep.
func (s Store) Finalise(loc astfr.Location) Store {
	out := s.copyCells()

	if loc.Addr < 0 || loc.Addr >= len(out) || out[loc.Addr].empty() {
		return s
	}

	owned := out[loc.Addr].Value
	out[loc.Addr].Value = nil
	next := Store{cells: out}

	return next.finaliseOwned(owned)
}

// Drop implements spec §4.3 Drop(ℓ): every cell declared at lifetime ell
// is recursively finalised and then emptied; afterward the reference
// invariant is checked across the whole store. A violation — some
// surviving cell still holds a Location into a now-empty cell — is
// reported as a dangling-reference fault, "how the semantics detects
// unsoundness."
func (s Store) Drop(ell lifetime.ID) (Store, *errors.StandardError) {
	cur := s

	for addr, cell := range s.cells {
		if cell.Lifetime != ell || cell.empty() {
			continue
		}

		cur = cur.Finalise(astfr.Location{Addr: addr})
	}

	if err := cur.checkReferenceInvariant(); err != nil {
		return cur, err
	}

	return cur, nil
}

// checkReferenceInvariant fails if any live cell holds a Location
// pointing at an empty cell.
func (s Store) checkReferenceInvariant() *errors.StandardError {
	for addr, cell := range s.cells {
		if cell.empty() {
			continue
		}

		loc, ok := cell.Value.(*astfr.Location)
		if !ok {
			continue
		}

		if loc.Addr < 0 || loc.Addr >= len(s.cells) || s.cells[loc.Addr].empty() {
			return errors.New(errors.CategoryStore, "dangling-reference",
				fmt.Sprintf("cell %d holds a dangling reference to cell %d", addr, loc.Addr), map[string]interface{}{
					"cell": addr, "target": loc.Addr,
				})
		}
	}

	return nil
}

// Len returns the number of cells ever allocated (including emptied
// ones); useful for tests and diagnostics.
func (s Store) Len() int { return len(s.cells) }

// CellAt exposes a cell's current contents for inspection (tests,
// differential-fuzzing harness instrumentation).
func (s Store) CellAt(loc astfr.Location) (Cell, bool) {
	if loc.Addr < 0 || loc.Addr >= len(s.cells) {
		return Cell{}, false
	}

	return s.cells[loc.Addr], true
}

func (s Store) cellAt(loc astfr.Location) (Cell, *errors.StandardError) {
	if loc.Addr < 0 || loc.Addr >= len(s.cells) {
		return Cell{}, errors.DanglingAddress(loc.Addr)
	}

	return s.cells[loc.Addr], nil
}

func (s Store) copyCells() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)

	return out
}
