// Package fixtures packages the seed scenarios of spec §8 as txtar
// archives: one source program per archive, paired with the verdict and
// (when accepted) the value the evaluator must produce.
package fixtures

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/tools/txtar"
)

// Verdict is a scenario's expected checker/evaluator outcome.
type Verdict int

const (
	Accept Verdict = iota
	Reject
)

func (v Verdict) String() string {
	if v == Accept {
		return "accept"
	}

	return "reject"
}

// Scenario is one seed program and its expected outcome.
type Scenario struct {
	Name     string
	Source   string
	Verdict  Verdict
	Value    int64 // meaningful only when Verdict == Accept and HasValue
	HasValue bool
	Note     string
}

// raw holds each seed scenario encoded as a txtar archive with two
// files: source.fr (the program text) and expect.txt (verdict, and for
// accepted programs, the expected final integer value).
var raw = []string{
	`-- source.fr --
{ let mut x = 123; x }
-- expect.txt --
accept value=123
`,
	`-- source.fr --
{ let mut x = 1; let mut y = &x; { let mut z = 1; y = &z; } }
-- expect.txt --
reject lifetime-escape
`,
	`-- source.fr --
{ let mut x = 0; let mut y = &mut x; let mut z = &mut y; *z = z; }
-- expect.txt --
reject borrow-conflict
`,
	`-- source.fr --
{ let mut x = box 0; { let mut y = x; x = box 1; } *x }
-- expect.txt --
accept value=1
`,
	`-- source.fr --
{ let mut x = 1; let mut y = &mut x; let mut z = &mut *y; *z = 123; *y }
-- expect.txt --
accept value=123
`,
	`-- source.fr --
{ let mut x = (1,2); let mut y = &mut x.0; x.1 }
-- expect.txt --
accept value=2
`,
}

var names = []string{
	"plain-let-and-move",
	"lifetime-escape-of-a-borrow",
	"borrow-conflict-on-a-reborrowed-target",
	"box-strong-update-across-a-nested-scope",
	"reborrow-through-a-mutable-reference",
	"disjoint-tuple-field-borrow",
}

// Seeds parses and returns every seed scenario, in the order they
// appear in spec §8.
func Seeds() ([]Scenario, error) {
	out := make([]Scenario, 0, len(raw))

	for i, text := range raw {
		s, err := parseScenario(names[i], text)
		if err != nil {
			return nil, fmt.Errorf("fixtures: seed %d (%s): %w", i+1, names[i], err)
		}

		out = append(out, s)
	}

	return out, nil
}

func parseScenario(name, text string) (Scenario, error) {
	ar := txtar.Parse([]byte(text))

	var source, expect string

	for _, f := range ar.Files {
		switch f.Name {
		case "source.fr":
			source = string(f.Data)
		case "expect.txt":
			expect = string(f.Data)
		}
	}

	if source == "" {
		return Scenario{}, fmt.Errorf("missing source.fr")
	}

	s := Scenario{Name: name, Source: strings.TrimSpace(source)}

	fields := strings.Fields(expect)
	if len(fields) == 0 {
		return Scenario{}, fmt.Errorf("missing expect.txt")
	}

	switch fields[0] {
	case "accept":
		s.Verdict = Accept
	case "reject":
		s.Verdict = Reject
	default:
		return Scenario{}, fmt.Errorf("unrecognized verdict %q", fields[0])
	}

	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "value=") {
			n, err := strconv.ParseInt(strings.TrimPrefix(f, "value="), 10, 64)
			if err != nil {
				return Scenario{}, fmt.Errorf("bad value field %q: %w", f, err)
			}

			s.Value = n
			s.HasValue = true
		} else {
			s.Note = f
		}
	}

	return s, nil
}

// Format re-encodes a scenario back into its txtar form, for archiving
// discrepancies found by the differential driver alongside a recorded
// seed scenario's shape.
func Format(name, source string, v Verdict, value int64, hasValue bool) []byte {
	expect := v.String()
	if hasValue {
		expect += fmt.Sprintf(" value=%d", value)
	}

	ar := &txtar.Archive{
		Files: []txtar.File{
			{Name: "source.fr", Data: []byte(source + "\n")},
			{Name: "expect.txt", Data: []byte(expect + "\n")},
		},
	}

	return txtar.Format(ar)
}
