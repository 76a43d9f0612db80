// Package diagnostic defines the single tagged error channel used by both
// the borrow checker and the operational semantics (spec §7): every
// rejection is a Diagnostic carrying a source span and a classification
// code, never a bare string or a panic.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fwrust/fwrust/internal/position"
)

// Level is the severity of a diagnostic.
type Level int

const (
	Error Level = iota
	Warning
	Info
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Category distinguishes which analysis raised the diagnostic, so the
// driver can run checker and semantics independently and still tell their
// failures apart (spec §7 "the top-level driver distinguishes checker
// errors from semantic errors").
type Category int

const (
	CategorySyntax Category = iota
	CategoryChecker
	CategorySemantic
)

func (c Category) String() string {
	switch c {
	case CategorySyntax:
		return "syntax"
	case CategoryChecker:
		return "checker"
	case CategorySemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Code enumerates the classification tags of spec §7. Every Diagnostic
// raised by the checker or the machine carries exactly one of these.
type Code string

const (
	// Checker errors.
	CodeUndeclaredVariable   Code = "undeclared-variable"
	CodeRedeclaration        Code = "redeclaration"
	CodeUseOfMoved           Code = "use-of-moved"
	CodeTypeMismatch         Code = "type-mismatch"
	CodeBorrowConflict       Code = "borrow-conflict"
	CodeAssignmentToBorrowed Code = "assignment-to-borrowed"
	CodeLifetimeEscape       Code = "lifetime-escape"
	CodeBadDereference       Code = "bad-dereference"
	CodeInvalidIndex         Code = "invalid-index"

	// Semantic errors.
	CodeDanglingReference Code = "dangling-reference"
	CodeReadOfEmptyCell   Code = "read-of-empty-cell"
	CodeWriteToEmptyCell  Code = "write-to-empty-cell"
	CodeStuck             Code = "stuck"

	// Surface syntax.
	CodeSyntaxError Code = "syntax-error"
)

// RelatedInformation points at a secondary span relevant to a diagnostic,
// e.g. where a borrow was created when reporting a borrow-conflict.
type RelatedInformation struct {
	Span    position.Span
	Message string
}

// Diagnostic is the single tagged error type raised by the checker, the
// machine, and the surface parser.
type Diagnostic struct {
	Level       Level
	Category    Category
	Code        Code
	Message     string
	Span        position.Span
	RelatedInfo []RelatedInformation
	// Tags carries free-form markers, notably "disputed" for the seed
	// scenarios spec §9 warns not to invent a verdict for.
	Tags []string
}

// Error implements the error interface so a Diagnostic can be returned
// wherever Go idiom expects an error.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s[%s]: %s", d.Span, d.Level, d.Code, d.Message)
}

// HasCode reports whether d carries the given classification code (a
// plain comparison, used instead of errors.Is, which needs a sentinel).
func (d *Diagnostic) HasCode(code Code) bool { return d.Code == code }

// Related attaches an additional related span to d in place and returns d.
func (d *Diagnostic) Related(span position.Span, message string) *Diagnostic {
	d.RelatedInfo = append(d.RelatedInfo, RelatedInformation{Span: span, Message: message})
	return d
}

// Disputed appends the "disputed" tag to d and returns d. No checker rule,
// fixture or driver in this repository calls it or reads the tag.
func (d *Diagnostic) Disputed() *Diagnostic {
	d.Tags = append(d.Tags, "disputed")
	return d
}

// New constructs a Diagnostic. level and category are fixed by the call
// site (checker errors are always CategoryChecker/Error, etc.) so there is
// no fluent builder here — spec §7 wants one tagged type, not a mini-DSL.
func New(level Level, category Category, code Code, span position.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Level:    level,
		Category: category,
		Code:     code,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Checker constructs a checker-category error Diagnostic.
func Checker(code Code, span position.Span, format string, args ...interface{}) *Diagnostic {
	return New(Error, CategoryChecker, code, span, format, args...)
}

// Semantic constructs a semantic-category error Diagnostic.
func Semantic(code Code, span position.Span, format string, args ...interface{}) *Diagnostic {
	return New(Error, CategorySemantic, code, span, format, args...)
}

// Syntax constructs a syntax-category error Diagnostic.
func Syntax(span position.Span, format string, args ...interface{}) *Diagnostic {
	return New(Error, CategorySyntax, CodeSyntaxError, span, format, args...)
}

// Bag collects diagnostics from a single checker or machine run and
// supports sorting/formatting for CLI output.
type Bag struct {
	items []*Diagnostic
}

// NewBag creates an empty diagnostic bag.
func NewBag() *Bag { return &Bag{} }

// Add appends d to the bag. A nil d is a no-op, so callers can write
// bag.Add(checkX()) without an extra nil check.
func (b *Bag) Add(d *Diagnostic) {
	if d == nil {
		return
	}

	b.items = append(b.items, d)
}

// All returns every diagnostic in the bag, sorted by span then severity.
func (b *Bag) All() []*Diagnostic {
	sort.SliceStable(b.items, func(i, j int) bool {
		a, c := b.items[i], b.items[j]
		if a.Span.Start.Line != c.Span.Start.Line {
			return a.Span.Start.Line < c.Span.Start.Line
		}

		if a.Span.Start.Column != c.Span.Start.Column {
			return a.Span.Start.Column < c.Span.Start.Column
		}

		return a.Level < c.Level
	})

	return b.items
}

// HasErrors returns true if the bag contains any Error-level diagnostic.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Level == Error {
			return true
		}
	}

	return false
}

// Format renders every diagnostic as one line per diagnostic, in the form
// "<span>: <level>[<code>]: <message>".
func (b *Bag) Format() string {
	var sb strings.Builder

	for i, d := range b.All() {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(d.Error())
	}

	return sb.String()
}
