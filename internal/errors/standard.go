// Package errors provides standardized internal error messaging for
// FeatherweightRust. These are distinct from internal/diagnostic.Diagnostic:
// a Diagnostic is a rejection of the input program; a StandardError
// signals a bug in the checker or machine itself (an invariant that
// should be unreachable given a well-formed term).
package errors

import (
	"fmt"
	"runtime"
)

// Category classifies internal invariant violations.
type Category string

const (
	CategoryInvariant  Category = "INVARIANT"  // a documented invariant was violated
	CategoryLifetime   Category = "LIFETIME"   // lifetime-tree bookkeeping went wrong
	CategoryStore      Category = "STORE"      // store/address bookkeeping went wrong
	CategoryEnv        Category = "ENV"        // environment bookkeeping went wrong
	CategoryExtension  Category = "EXTENSION"  // an extension hook misbehaved
	CategoryValidation Category = "VALIDATION" // a caller passed a malformed argument
)

// StandardError is a consistent internal-error format: category, code,
// message, free-form context, and the caller that raised it.
type StandardError struct {
	Category Category
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface.
func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
}

// New creates a StandardError, capturing the immediate caller for
// debugging.
func New(category Category, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)

	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// DanglingAddress reports that the store was asked to operate on an
// address outside its current bounds — a bug in address bookkeeping, not
// a rejectable program (the reference invariant check in internal/store
// raises a diagnostic.Diagnostic instead; this is for addresses that
// should never occur at all, e.g. a negative index).
func DanglingAddress(addr int) *StandardError {
	return New(CategoryStore, "BAD_ADDRESS",
		fmt.Sprintf("address %d is out of range for the store", addr),
		map[string]interface{}{"address": addr})
}

// LifetimeNotFound reports a lookup for a lifetime ID the tree never
// created.
func LifetimeNotFound(id string) *StandardError {
	return New(CategoryLifetime, "UNKNOWN_LIFETIME",
		fmt.Sprintf("lifetime %q was never created by this tree", id),
		map[string]interface{}{"lifetime": id})
}

// EnvCorrupt reports that an environment operation found the typing
// context in a state the core rules should never produce.
func EnvCorrupt(detail string) *StandardError {
	return New(CategoryEnv, "ENV_CORRUPT", detail, nil)
}

// ExtensionMisbehaved reports that a registered typing or semantics
// extension violated the hook contract (e.g. claimed a term but returned
// no result).
func ExtensionMisbehaved(name, detail string) *StandardError {
	return New(CategoryExtension, "EXTENSION_CONTRACT",
		fmt.Sprintf("extension %q: %s", name, detail),
		map[string]interface{}{"extension": name})
}

// InvalidArgument reports a malformed argument passed by a caller, e.g. a
// negative path index.
func InvalidArgument(what string) *StandardError {
	return New(CategoryValidation, "INVALID_ARGUMENT", what, nil)
}
