// Package semantics implements FeatherweightRust's operational semantics
// (spec §4.3): a small-step reducer and its big-step closure, threading a
// persistent Store and Frame.
package semantics

import (
	"fmt"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/errors"
	"github.com/fwrust/fwrust/internal/store"
)

// resolveBase walks lv's path, following each dereference through the
// store, and returns the final cell location plus any trailing field
// path still to be projected within that cell's (tuple) value.
func resolveBase(s store.Store, f store.Frame, lv astfr.LVal) (astfr.Location, []int, *errors.StandardError) {
	loc, ok := f.Lookup(lv.Var)
	if !ok {
		return astfr.Location{}, nil, errors.New(errors.CategoryEnv, "undeclared-variable",
			fmt.Sprintf("variable %q has no binding in the current frame", lv.Var), map[string]interface{}{"var": lv.Var})
	}

	var fields []int

	for _, elem := range lv.Path.Elems() {
		if elem.IsField() {
			fields = append(fields, elem.Field)
			continue
		}

		v, err := readField(s, loc, fields)
		if err != nil {
			return astfr.Location{}, nil, err
		}

		next, ok := v.(*astfr.Location)
		if !ok {
			return astfr.Location{}, nil, errors.New(errors.CategoryStore, "bad-dereference",
				"dereferenced value is not a location", map[string]interface{}{"value": v.String()})
		}

		loc = *next
		fields = nil
	}

	return loc, fields, nil
}

// readField reads the cell at loc and projects fieldPath into it.
func readField(s store.Store, loc astfr.Location, fieldPath []int) (astfr.Value, *errors.StandardError) {
	v, err := s.Read(loc)
	if err != nil {
		return nil, err
	}

	for _, idx := range fieldPath {
		tup, ok := v.(*astfr.TupleVal)
		if !ok {
			return nil, errors.New(errors.CategoryStore, "invalid-index",
				"field projection into a non-tuple value", map[string]interface{}{"index": idx})
		}

		if idx < 0 || idx >= len(tup.Elems) {
			return nil, errors.New(errors.CategoryStore, "invalid-index",
				fmt.Sprintf("tuple field index %d out of range", idx), map[string]interface{}{"index": idx, "len": len(tup.Elems)})
		}

		v = tup.Elems[idx]

		if v == nil {
			return nil, errors.New(errors.CategoryStore, "read-of-empty-cell",
				fmt.Sprintf("tuple field %d has already been moved out", idx), map[string]interface{}{"index": idx})
		}
	}

	return v, nil
}

// ResolveRead reads the current value denoted by lv.
func ResolveRead(s store.Store, f store.Frame, lv astfr.LVal) (astfr.Value, *errors.StandardError) {
	loc, fields, err := resolveBase(s, f, lv)
	if err != nil {
		return nil, err
	}

	return readField(s, loc, fields)
}

// ResolveWrite writes v at the location denoted by lv, rebuilding any
// enclosing tuple structure immutably.
func ResolveWrite(s store.Store, f store.Frame, lv astfr.LVal, v astfr.Value) (store.Store, *errors.StandardError) {
	loc, fields, err := resolveBase(s, f, lv)
	if err != nil {
		return s, err
	}

	if len(fields) == 0 {
		return s.Write(loc, v)
	}

	root, err := s.Read(loc)
	if err != nil {
		return s, err
	}

	updated, err := setField(root, fields, v)
	if err != nil {
		return s, err
	}

	return s.Write(loc, updated)
}

// ResolveVacate empties the source of a move denoted by lv: the whole
// cell when lv has no trailing field path, or just the named field
// within an enclosing tuple otherwise (spec §4.3 Assign: "realised by
// read-then-remove of source for moveable types").
func ResolveVacate(s store.Store, f store.Frame, lv astfr.LVal) (store.Store, *errors.StandardError) {
	loc, fields, err := resolveBase(s, f, lv)
	if err != nil {
		return s, err
	}

	if len(fields) == 0 {
		return s.Vacate(loc)
	}

	root, err := s.Read(loc)
	if err != nil {
		return s, err
	}

	updated, err := setField(root, fields, nil)
	if err != nil {
		return s, err
	}

	return s.Write(loc, updated)
}

func setField(v astfr.Value, path []int, newVal astfr.Value) (astfr.Value, *errors.StandardError) {
	if len(path) == 0 {
		return newVal, nil
	}

	tup, ok := v.(*astfr.TupleVal)
	if !ok {
		return nil, errors.New(errors.CategoryStore, "invalid-index",
			"field assignment into a non-tuple value", nil)
	}

	idx := path[0]
	if idx < 0 || idx >= len(tup.Elems) {
		return nil, errors.New(errors.CategoryStore, "invalid-index",
			fmt.Sprintf("tuple field index %d out of range", idx), map[string]interface{}{"index": idx, "len": len(tup.Elems)})
	}

	elems := make([]astfr.Value, len(tup.Elems))
	copy(elems, tup.Elems)

	next, err := setField(elems[idx], path[1:], newVal)
	if err != nil {
		return nil, err
	}

	elems[idx] = next

	return &astfr.TupleVal{Elems: elems}, nil
}
