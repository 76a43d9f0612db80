// Command fwr-watch watches a directory of ".fr" scenario files and
// re-runs the checker+machine pipeline on each one as it changes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fwrust/fwrust/internal/cliutil"
	"github.com/fwrust/fwrust/internal/watchfr"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		jsonOutput  = flag.Bool("json", false, "output version in JSON format")
		dir         = flag.String("dir", ".", "directory of .fr scenario files to watch")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Watch a directory of FeatherweightRust scenario files and re-check each on change.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		cliutil.PrintVersion("fwr-watch", *jsonOutput)
		os.Exit(0)
	}

	w, err := watchfr.New(*dir)
	if err != nil {
		cliutil.ExitWithError("watching %s: %v", *dir, err)
	}

	defer w.Close()

	fmt.Printf("watching %s for .fr changes (ctrl-c to exit)\n", *dir)

	for {
		select {
		case ev := <-w.Events():
			report(ev)
		case err := <-w.Errors():
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

func report(ev watchfr.Event) {
	if ev.Op&watchfr.OpRemove != 0 {
		fmt.Printf("%s: removed\n", ev.Path)
		return
	}

	r := watchfr.Run(ev.Path)
	if r.Source == "" {
		return
	}

	switch {
	case r.CheckErr != nil:
		fmt.Printf("%s: rejected: %s\n", ev.Path, r.CheckErr.Error())
	case r.ExecErr != nil:
		fmt.Printf("%s: accepted, execution faulted: %s\n", ev.Path, r.ExecErr.Error())
	default:
		fmt.Printf("%s: accepted, value=%s\n", ev.Path, r.Value)
	}
}
