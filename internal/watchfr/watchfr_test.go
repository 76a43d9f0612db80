package watchfr

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeScenario(t *testing.T, dir, name, src string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("writing scenario: %v", err)
	}

	return path
}

func TestRunReportsAcceptedValueForAWellTypedScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "ok.fr", "{ let mut x = 123; x }")

	r := Run(path)

	if !r.Accepted {
		t.Fatalf("expected acceptance, got CheckErr=%v ExecErr=%v", r.CheckErr, r.ExecErr)
	}

	if r.Value != "123" {
		t.Fatalf("expected value 123, got %q", r.Value)
	}
}

func TestRunReportsCheckErrorForARejectedScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "bad.fr", "{ let mut x = 0; let mut y = &mut x; let mut z = &mut y; *z = z; }")

	r := Run(path)

	if r.Accepted {
		t.Fatalf("expected rejection")
	}

	if r.CheckErr == nil {
		t.Fatalf("expected a non-nil checker diagnostic")
	}
}

func TestRunOnMissingFileReportsNeitherAcceptedNorAnError(t *testing.T) {
	r := Run(filepath.Join(t.TempDir(), "missing.fr"))

	if r.Accepted || r.CheckErr != nil || r.ExecErr != nil || r.Source != "" {
		t.Fatalf("expected an empty report for a missing file, got %#v", r)
	}
}

func TestWatcherReportsWriteEventsForFrFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Skipf("fsnotify unavailable in this environment: %v", err)
	}
	defer w.Close()

	path := writeScenario(t, dir, "watched.fr", "{ 1 }")

	select {
	case ev := <-w.Events():
		if ev.Path != path && filepath.Base(ev.Path) != "watched.fr" {
			t.Fatalf("unexpected event path %q", ev.Path)
		}
	case err := <-w.Errors():
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for a watch event")
	}
}
