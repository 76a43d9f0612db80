// Package watchfr watches a directory of scenario files and re-runs the
// checker+machine pipeline on each one whenever it changes, for
// interactive use from cmd/fwr-watch.
package watchfr

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/fwrust/fwrust/internal/checker"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/extensions"
	"github.com/fwrust/fwrust/internal/frparse"
	"github.com/fwrust/fwrust/internal/lifetime"
	"github.com/fwrust/fwrust/internal/semantics"
	"github.com/fwrust/fwrust/internal/typesys"
)

// Op is one of the filesystem changes a Watcher reports.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Event names a changed scenario file.
type Event struct {
	Path string
	Op   Op
}

// Report is the result of re-running one scenario file.
type Report struct {
	Path     string
	Source   string
	Accepted bool
	CheckErr *diagnostic.Diagnostic
	ExecErr  *diagnostic.Diagnostic
	Value    string
}

// Watcher watches a scenario directory using native OS notifications.
type Watcher struct {
	w   *fsnotify.Watcher
	evC chan Event
	erC chan error
}

// New starts watching dir for ".fr" scenario file changes.
func New(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	fw := &Watcher{w: w, evC: make(chan Event, 128), erC: make(chan error, 1)}
	go fw.loop()

	return fw, nil
}

func (fw *Watcher) loop() {
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}

			if !strings.HasSuffix(ev.Name, ".fr") {
				continue
			}

			var op Op
			if ev.Op&fsnotify.Create != 0 {
				op |= OpCreate
			}

			if ev.Op&fsnotify.Write != 0 {
				op |= OpWrite
			}

			if ev.Op&fsnotify.Remove != 0 {
				op |= OpRemove
			}

			if ev.Op&fsnotify.Rename != 0 {
				op |= OpRename
			}

			if op == 0 {
				continue
			}

			fw.evC <- Event{Path: ev.Name, Op: op}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}

			fw.erC <- err
		}
	}
}

func (fw *Watcher) Events() <-chan Event { return fw.evC }
func (fw *Watcher) Errors() <-chan error { return fw.erC }
func (fw *Watcher) Close() error         { return fw.w.Close() }

// Run reads path and re-runs the checker+machine pipeline on its
// contents, producing a Report. A removed or unreadable file yields a
// Report with an empty Source and a nil CheckErr/ExecErr (callers
// should treat that as "nothing to report", not a pipeline failure).
func Run(path string) Report {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Report{Path: path}
	}

	source := string(data)

	term, errs := frparse.Parse(source)
	if len(errs) != 0 {
		return Report{Path: path, Source: source, CheckErr: errs[0]}
	}

	tree := lifetime.New()
	checkExts := []checker.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	c := checker.New(tree, checkExts...)

	_, _, cerr := c.Check(typesys.Empty(), tree.Root(), term)
	if cerr != nil {
		return Report{Path: path, Source: source, CheckErr: cerr}
	}

	semExts := []semantics.Extension{extensions.IfElseExt{}, extensions.TuplesExt{}}
	m := semantics.NewMachine(tree)

	_, val, serr := semantics.Execute(m, tree.Root(), term, semExts)
	if serr != nil {
		return Report{Path: path, Source: source, Accepted: true, ExecErr: serr}
	}

	valStr := ""
	if val != nil {
		valStr = val.String()
	}

	return Report{Path: path, Source: source, Accepted: true, Value: valStr}
}
