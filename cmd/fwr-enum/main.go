// Command fwr-enum exhaustively enumerates the bounded program space
// P(i,v,d,w), runs the in-process Soundness property over it, and
// optionally partitions disagreements with a real rustc by diagnostic
// code (the Completeness-relative-to-rustc property of spec §8).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/cliutil"
	"github.com/fwrust/fwrust/internal/enumproc"
	"github.com/fwrust/fwrust/internal/extensions"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/rustcomp"
	"github.com/fwrust/fwrust/internal/typesys"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		jsonOutput  = flag.Bool("json", false, "output version in JSON format")
		maxInts     = flag.Int("ints", 2, "distinct integer literal values (i)")
		maxVars     = flag.Int("vars", 2, "distinct variable names (v)")
		maxDepth    = flag.Int("depth", 1, "levels of nesting (d)")
		maxWidth    = flag.Int("width", 2, "statements per block (w)")
		concurrency = flag.Int64("p", 8, "parallel workers")
		rustcPath   = flag.String("rustc", "", "path to a rustc binary; enables the Completeness-relative-to-rustc pass")
		rustcTO     = flag.Duration("rustc-timeout", 5*time.Second, "per-invocation rustc timeout")
	)

	flag.Parse()

	if *showVersion {
		cliutil.PrintVersion("fwr-enum", *jsonOutput)
		os.Exit(0)
	}

	desc := enumproc.Descriptor{MaxInts: *maxInts, MaxVars: *maxVars, MaxDepth: *maxDepth, MaxWidth: *maxWidth}

	programs := enumproc.Enumerate(desc)

	canonical := programs[:0]
	for _, p := range programs {
		if enumproc.Canonical(p) {
			canonical = append(canonical, p)
		}
	}

	fmt.Printf("enumerated %d programs in P(%d,%d,%d,%d), %d canonical\n",
		len(programs), desc.MaxInts, desc.MaxVars, desc.MaxDepth, desc.MaxWidth, len(canonical))

	violations, err := enumproc.RunSoundness(context.Background(), canonical, enumproc.RunOptions{Concurrency: *concurrency})
	if err != nil {
		cliutil.ExitWithError("soundness batch: %v", err)
	}

	if len(violations) == 0 {
		fmt.Println("soundness: no falsifications found")
	} else {
		fmt.Printf("soundness: %d falsification(s)\n", len(violations))

		for _, v := range violations {
			fmt.Printf("  %s -> %s\n", v.Program.String(), v.Fault.Error())
		}
	}

	if *rustcPath == "" {
		return
	}

	runCompletenessPass(canonical, *rustcPath, *rustcTO)
}

func runCompletenessPass(canonical []*astfr.Block, rustcPath string, timeout time.Duration) {
	compiler := rustcomp.RealCompiler{Path: rustcPath, Timeout: timeout}

	disagreements := map[rustcomp.Verdict]map[string]int{}

	for _, prog := range canonical {
		tree := lifetime.New()
		checkExts := []checker.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
		c := checker.New(tree, checkExts...)

		_, _, cerr := c.Check(typesys.Empty(), tree.Root(), prog)
		ourVerdict := cerr == nil

		res, err := compiler.Invoke(context.Background(), renderAsRust(prog))
		if err != nil {
			continue
		}

		rustcVerdict := res.Verdict == rustcomp.VerdictAccepted
		if ourVerdict == rustcVerdict {
			continue
		}

		code := "unknown"
		if len(res.ErrorCodes) > 0 {
			code = res.ErrorCodes[0]
		}

		if disagreements[res.Verdict] == nil {
			disagreements[res.Verdict] = map[string]int{}
		}

		disagreements[res.Verdict][code]++
	}

	if len(disagreements) == 0 {
		fmt.Println("completeness: checker and rustc agree on every canonical program")
		return
	}

	fmt.Println("completeness: disagreements by rustc verdict and diagnostic code")

	for verdict, byCode := range disagreements {
		for code, n := range byCode {
			fmt.Printf("  rustc=%s code=%s count=%d\n", verdict, code, n)
		}
	}
}

// renderAsRust wraps a FeatherweightRust block's printed form in a
// function body so rustc can compile it standalone. FeatherweightRust's
// surface syntax (mut-by-default let, explicit '!'/'?' access markers)
// is not valid Rust; this only captures the cases where the two
// surfaces coincide (plain moves, borrows, boxes, blocks) closely
// enough for rustc to render a diagnostic code comparable to ours. It
// is a best-effort bridge, not a full FR-to-Rust transpiler.
func renderAsRust(prog *astfr.Block) string {
	return fmt.Sprintf("fn main() {\n%s;\n}\n", prog.String())
}
