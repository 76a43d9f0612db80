// Package rustcomp is the external-compiler interface used for
// differential testing against rustc (spec §6 "External compiler
// interface", §8 "Completeness relative to rustc"): write a scoped temp
// source file, invoke rustc with a timeout, classify its exit status and
// diagnostic codes, and unconditionally clean up the temp file.
package rustcomp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Verdict classifies rustc's response to a candidate program.
type Verdict int

const (
	VerdictAccepted Verdict = iota
	VerdictRejected
	VerdictTimeout
	VerdictInternalError
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictRejected:
		return "rejected"
	case VerdictTimeout:
		return "timeout"
	case VerdictInternalError:
		return "internal-error"
	default:
		return "unknown"
	}
}

// Result is rustc's classified response to one compile attempt.
type Result struct {
	Verdict      Verdict
	ExitCode     int
	Stderr       string
	ErrorCodes   []string // e.g. "E0502", "E0382"
	WarningCodes []string
	Duration     time.Duration
}

// Compiler is the boundary this package's callers program against; tests
// use a generated MockCompiler instead of shelling out to a real rustc.
type Compiler interface {
	Invoke(ctx context.Context, source string) (*Result, error)
}

var diagCodeRe = regexp.MustCompile(`(error|warning)\[(E\d{4})\]`)

// RealCompiler shells out to an actual rustc binary.
type RealCompiler struct {
	// Path to the rustc binary. Must be an absolute path or a bare name
	// resolved via PATH; no shell metacharacters are ever interpreted,
	// since exec.CommandContext never invokes a shell.
	Path string

	// Timeout bounds a single compile attempt. Zero means 10s.
	Timeout time.Duration
}

// Invoke writes source to a scoped temp file, compiles it with --edition
// (rustc never needs to run the output for a borrow-checker comparison:
// we pass --emit=metadata so rustc only runs the stages that matter), and
// classifies the result. The temp file is removed on every exit path.
func (c *RealCompiler) Invoke(ctx context.Context, source string) (*Result, error) {
	if err := validateCompilerPath(c.Path); err != nil {
		return nil, fmt.Errorf("rustcomp: %w", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	dir, err := os.MkdirTemp("", "fwr-rustcomp-*")
	if err != nil {
		return nil, fmt.Errorf("rustcomp: creating temp dir: %w", err)
	}

	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, "candidate.rs")
	if err := os.WriteFile(srcPath, []byte(source), 0o600); err != nil {
		return nil, fmt.Errorf("rustcomp: writing candidate source: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Path, "--edition=2021", "--emit=metadata", "--crate-type=lib", srcPath)
	cmd.Dir = dir
	setProcessGroup(cmd)

	var stderr bytes.Buffer

	cmd.Stdout = nil
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() != nil {
		killProcessGroup(cmd)

		return &Result{Verdict: VerdictTimeout, Duration: elapsed, Stderr: stderr.String()}, nil
	}

	res := &Result{Duration: elapsed, Stderr: stderr.String()}
	res.ErrorCodes, res.WarningCodes = classifyCodes(stderr.String())

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}

	switch {
	case runErr == nil:
		res.Verdict = VerdictAccepted
	case len(res.ErrorCodes) > 0:
		res.Verdict = VerdictRejected
	default:
		res.Verdict = VerdictInternalError
	}

	return res, nil
}

func classifyCodes(stderr string) (errorCodes, warningCodes []string) {
	for _, m := range diagCodeRe.FindAllStringSubmatch(stderr, -1) {
		if m[1] == "error" {
			errorCodes = append(errorCodes, m[2])
		} else {
			warningCodes = append(warningCodes, m[2])
		}
	}

	return errorCodes, warningCodes
}

// validateCompilerPath rejects shell metacharacter tricks and anything
// that isn't plausibly a rustc binary name, mirroring the allowlist style
// the teacher's own secure command-execution helper uses for its single
// allowed binary.
func validateCompilerPath(path string) error {
	if path == "" {
		return errors.New("empty compiler path")
	}

	if strings.ContainsAny(path, ";|&$`\n") {
		return fmt.Errorf("compiler path contains disallowed characters: %q", path)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "rustc") {
		return fmt.Errorf("refusing to invoke non-rustc binary: %q", path)
	}

	return nil
}
