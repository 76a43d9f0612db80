// Command fwr-repro reproduces and minimizes a single recorded
// Soundness-property falsification from an fwr-fuzz crash log.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"flag"

	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/cliutil"
	"github.com/fwrust/fwrust/internal/extensions"
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
		in          = flag.String("in", "", "input file to reproduce (raw FR source)")
		logPath     = flag.String("log", "", "crash log (as written by fwr-fuzz) to read from")
		lineNum     = flag.Int("line", 0, "1-based line number in --log to reproduce (default=last non-empty line)")
		out         = flag.String("out", "", "optional minimized output path")
		seed        = flag.Int64("seed", 0, "random seed for minimization (0=time)")
		budget      = flag.Duration("budget", 3*time.Second, "minimization time budget")
	)

	flag.Parse()

	if *showVersion {
		cliutil.PrintVersion("fwr-repro", *jsonOutput)
		os.Exit(0)
	}

	var b []byte

	switch {
	case *logPath != "":
		data, err := os.ReadFile(*logPath)
		if err != nil {
			cliutil.ExitWithError("reading log: %v", err)
		}

		b = decodeFromLog(data, *lineNum)
		if b == nil {
			cliutil.ExitWithError("no usable crash line found in %s", *logPath)
		}
	case *in != "":
		data, err := os.ReadFile(*in)
		if err != nil {
			cliutil.ExitWithError("reading input: %v", err)
		}

		b = decodeMaybeHex(data)
	default:
		cliutil.ExitWithError("--in or --log is required")
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	if err := soundnessTarget(b); err != nil {
		fmt.Printf("reproduced: %s\n", err.Error())

		if *out != "" {
			min := frfuzz.Minimize(*seed, b, soundnessTarget, *budget)

			if err := os.WriteFile(*out, min, 0o644); err != nil {
				cliutil.ExitWithError("writing minimized output: %v", err)
			}

			fmt.Printf("minimized written: %s\n", *out)
		}

		os.Exit(1)
	}

	fmt.Println("reproduction failed (no issue on this input)")
}

// decodeFromLog picks one crash line (ts\t0xHEX\tmsg) and decodes its
// hex payload, matching the line layout fwr-fuzz writes.
func decodeFromLog(data []byte, lineNum int) []byte {
	lines := strings.Split(string(data), "\n")

	pick := -1

	if lineNum > 0 {
		if lineNum-1 < len(lines) {
			pick = lineNum - 1
		}
	} else {
		for i := len(lines) - 1; i >= 0; i-- {
			if strings.TrimSpace(lines[i]) != "" {
				pick = i
				break
			}
		}
	}

	if pick < 0 {
		return nil
	}

	parts := strings.SplitN(strings.TrimSpace(lines[pick]), "\t", 3)
	if len(parts) < 2 {
		return nil
	}

	return decodeMaybeHex([]byte(parts[1]))
}

func decodeMaybeHex(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return data
	}

	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	if dec, err := hex.DecodeString(h); err == nil && len(dec) > 0 {
		return dec
	}

	return data
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
