// Command fwr-fuzz mutates a corpus of FeatherweightRust programs and
// runs each mutant through the checker+machine pipeline, looking for a
// Soundness-property falsification: a program the checker accepts whose
// execution gets stuck or raises a semantic fault.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/cliutil"
	"github.com/fwrust/fwrust/internal/extensions"
	"github.com/fwrust/fwrust/internal/fixtures"
	"github.com/fwrust/fwrust/internal/frfuzz"
	"github.com/fwrust/fwrust/internal/frparse"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/semantics"
	"github.com/fwrust/fwrust/internal/typesys"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		jsonOutput  = flag.Bool("json", false, "output version in JSON format")
		dur         = flag.Duration("duration", 5*time.Second, "fuzzing duration")
		seed        = flag.Int64("seed", 0, "random seed (0=time)")
		maxInput    = flag.Int("max", 4096, "max input size in bytes")
		par         = flag.Int("p", 1, "parallel workers")
		autotune    = flag.Bool("autotune", false, "enable adaptive mutation intensity")
		intensity   = flag.Float64("intensity", 1.0, "mutation intensity factor")
		outPath     = flag.String("out", "", "file to append crash lines to (default: stdout)")
		printStats  = flag.Bool("stats", false, "print execution/crash statistics at end")
	)

	flag.Parse()

	if *showVersion {
		cliutil.PrintVersion("fwr-fuzz", *jsonOutput)
		os.Exit(0)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	corpus := make([]frfuzz.CorpusEntry, 0)

	seeds, err := fixtures.Seeds()
	if err != nil {
		cliutil.ExitWithError("loading seed scenarios: %v", err)
	}

	for _, s := range seeds {
		corpus = append(corpus, frfuzz.CorpusEntry(s.Source))
	}

	crashes := os.Stdout

	var crashFile *os.File

	if *outPath != "" {
		f, err := os.OpenFile(*outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			cliutil.ExitWithError("opening %s: %v", *outPath, err)
		}

		defer f.Close()

		crashFile = f
	}

	out := crashes
	if crashFile != nil {
		out = crashFile
	}

	opts := frfuzz.Options{
		Duration:          *dur,
		Seed:              *seed,
		MaxInput:          *maxInput,
		Concurrency:       *par,
		MutationIntensity: *intensity,
		AutoTune:          *autotune,
	}

	stats := frfuzz.RunWithStats(opts, corpus, soundnessTarget, frfuzz.DefaultMutator(), out)

	if *printStats {
		fmt.Printf("executions=%d crashes=%d seed=%d\n", stats.Executions, stats.Crashes, *seed)
	}
}

func soundnessTarget(data []byte) error {
	term, errs := frparse.Parse(string(data))
	if len(errs) != 0 {
		return nil
	}

	tree := lifetime.New()
	checkExts := []checker.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	c := checker.New(tree, checkExts...)

	_, _, cerr := c.Check(typesys.Empty(), tree.Root(), term)
	if cerr != nil {
		return nil
	}

	semExts := []semantics.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	m := semantics.NewMachine(tree)

	_, _, serr := semantics.Execute(m, tree.Root(), term, semExts)
	if serr != nil {
		return serr
	}

	return nil
}
