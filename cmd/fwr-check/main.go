// Command fwr-check parses, borrow-checks, and runs a single
// FeatherweightRust program read from a file or stdin, printing the
// checker's verdict and, if accepted, the value it reduces to.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/cliutil"
	"github.com/fwrust/fwrust/internal/extensions"
	"github.com/fwrust/fwrust/internal/frparse"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/semantics"
	"github.com/fwrust/fwrust/internal/typesys"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		showHelp    = flag.Bool("help", false, "show help information")
		jsonOutput  = flag.Bool("json", false, "output version in JSON format")
		file        = flag.String("file", "", "path to a program; reads stdin if empty")
		checkOnly   = flag.Bool("check-only", false, "run the borrow checker without executing")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Parse, borrow-check, and run one FeatherweightRust program.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  echo '{ let mut x = 1; x }' | %s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --file scenario.fr --check-only\n", os.Args[0])
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		cliutil.PrintVersion("fwr-check", *jsonOutput)
		os.Exit(0)
	}

	source, err := readSource(*file)
	if err != nil {
		cliutil.ExitWithError("%v", err)
	}

	term, errs := frparse.Parse(source)
	if len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}

		os.Exit(1)
	}

	tree := lifetime.New()
	checkExts := []checker.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	c := checker.New(tree, checkExts...)

	_, _, cerr := c.Check(typesys.Empty(), tree.Root(), term)
	if cerr != nil {
		fmt.Fprintln(os.Stderr, cerr.Error())
		os.Exit(1)
	}

	fmt.Println("accepted")

	if *checkOnly {
		return
	}

	semExts := []semantics.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	m := semantics.NewMachine(tree)

	_, val, serr := semantics.Execute(m, tree.Root(), term, semExts)
	if serr != nil {
		fmt.Fprintln(os.Stderr, serr.Error())
		os.Exit(1)
	}

	fmt.Println(val.String())
}

func readSource(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return string(data), nil
}
