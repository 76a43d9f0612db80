package frfuzz

import (
	"bytes"
	"testing"
	"time"

	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/extensions"
	"github.com/fwrust/fwrust/internal/frparse"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/semantics"
	"github.com/fwrust/fwrust/internal/typesys"
)

// soundnessTarget parses, checks, and runs src; it returns a non-nil error
// only when the checker accepted the program but the semantics got stuck,
// which is exactly the Soundness-property falsification spec §8 describes.
// Parse failures and checker rejections are not crashes: a fuzzer explores
// mostly-invalid byte strings, and rejecting them is the correct behavior.
func soundnessTarget(data []byte) error {
	term, errs := frparse.Parse(string(data))
	if len(errs) != 0 {
		return nil
	}

	tr := lifetime.New()
	exts := []checker.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	c := checker.New(tr, exts...)

	_, _, derr := c.Check(typesys.Empty(), tr.Root(), term)
	if derr != nil {
		return nil
	}

	semExts := []semantics.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	m := semantics.NewMachine(tr)

	_, _, serr := semantics.Execute(m, tr.Root(), term, semExts)
	if serr != nil {
		return serr
	}

	return nil
}

func TestRunWithStatsFindsNoFalsificationOnTrivialCorpus(t *testing.T) {
	corpus := []CorpusEntry{
		[]byte("{ let mut x = 1; x }"),
		[]byte("{ let mut x = 1; let mut y = &x; y }"),
	}

	var crashes bytes.Buffer

	stats := RunWithStats(Options{
		Duration:    50 * time.Millisecond,
		Seed:        1,
		Concurrency: 2,
		MaxExecs:    2000,
	}, corpus, soundnessTarget, DefaultMutator(), &crashes)

	if stats.Executions == 0 {
		t.Fatalf("expected at least one execution")
	}
}

func TestMinimizePreservesFailure(t *testing.T) {
	alwaysFails := func(data []byte) error {
		if len(data) > 0 {
			return errUnconditional
		}

		return nil
	}

	in := []byte("abcdefghij")

	out := Minimize(1, in, alwaysFails, 50*time.Millisecond)
	if len(out) == 0 {
		t.Fatalf("minimize should not shrink a failing input to nothing when the property requires non-empty input")
	}
}

var errUnconditional = &testErr{"always fails"}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }

func TestCorpusDigestIsStableAndDistinguishesInputs(t *testing.T) {
	a := CorpusDigest([]byte("{ 1 }"))
	b := CorpusDigest([]byte("{ 1 }"))
	c := CorpusDigest([]byte("{ 2 }"))

	if a != b {
		t.Fatalf("expected stable digest for identical input")
	}

	if a == c {
		t.Fatalf("expected distinct digests for distinct input")
	}
}
