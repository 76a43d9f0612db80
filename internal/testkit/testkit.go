// Package testkit provides generic assertion helpers for _test.go files,
// plus two helpers specific to checking borrow-checker/machine output:
// DiagnosticCode and SpanEqual. The repository's own tests do not import
// it; they call testing.T directly.
package testkit

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/position"
)

// Equal asserts that two comparable values are equal.
func Equal[T comparable](t testing.TB, got, want T, msgAndArgs ...any) bool {
	t.Helper()

	if got != want {
		fail(t, "Equal", got, want, msgAndArgs...)
		return false
	}

	return true
}

// NotEqual asserts that two comparable values are not equal.
func NotEqual[T comparable](t testing.TB, got, notWant T, msgAndArgs ...any) bool {
	t.Helper()

	if got == notWant {
		fail(t, "NotEqual", got, notWant, msgAndArgs...)
		return false
	}

	return true
}

// Nil asserts that the provided value is nil.
func Nil(t testing.TB, v any, msgAndArgs ...any) bool {
	t.Helper()

	if !isNil(v) {
		failMsg(t, "Nil", fmt.Sprintf("expected nil, got %T(%v)", v, v), msgAndArgs...)
		return false
	}

	return true
}

// NotNil asserts that the provided value is not nil.
func NotNil(t testing.TB, v any, msgAndArgs ...any) bool {
	t.Helper()

	if isNil(v) {
		failMsg(t, "NotNil", "unexpected nil", msgAndArgs...)
		return false
	}

	return true
}

// True asserts that cond is true.
func True(t testing.TB, cond bool, msgAndArgs ...any) bool {
	t.Helper()

	if !cond {
		failMsg(t, "True", "condition is false", msgAndArgs...)
		return false
	}

	return true
}

// False asserts that cond is false.
func False(t testing.TB, cond bool, msgAndArgs ...any) bool {
	t.Helper()

	if cond {
		failMsg(t, "False", "condition is true", msgAndArgs...)
		return false
	}

	return true
}

// NoError asserts that err is nil.
func NoError(t testing.TB, err error, msgAndArgs ...any) bool {
	t.Helper()

	if err != nil {
		failMsg(t, "NoError", fmt.Sprintf("unexpected error: %v", err), msgAndArgs...)
		return false
	}

	return true
}

// ErrorIs asserts that err matches target via errors.Is.
func ErrorIs(t testing.TB, err, target error, msgAndArgs ...any) bool {
	t.Helper()

	if !errors.Is(err, target) {
		failMsg(t, "ErrorIs", fmt.Sprintf("%v is not %v", err, target), msgAndArgs...)
		return false
	}

	return true
}

// Panics asserts that fn panics.
func Panics(t testing.TB, fn func(), msgAndArgs ...any) (panicked bool) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			panicked = true
		}
	}()

	fn()

	if !panicked {
		failMsg(t, "Panics", "function did not panic", msgAndArgs...)
	}

	return panicked
}

// DiagnosticCode asserts that a *diagnostic.Diagnostic carries the given
// code, failing loudly if d is nil (a nil diagnostic means the checker or
// machine accepted a program the test expected it to reject).
func DiagnosticCode(t testing.TB, d *diagnostic.Diagnostic, want diagnostic.Code, msgAndArgs ...any) bool {
	t.Helper()

	if d == nil {
		failMsg(t, "DiagnosticCode", fmt.Sprintf("expected diagnostic with code %s, got none", want), msgAndArgs...)
		return false
	}

	if d.Code != want {
		failMsg(t, "DiagnosticCode", fmt.Sprintf("got code %s, want %s (message: %s)", d.Code, want, d.Message), msgAndArgs...)
		return false
	}

	return true
}

// SpanEqual asserts that two spans denote the same source range,
// ignoring Filename so fixture-derived terms compare equal to
// freshly-parsed ones regardless of which file path was used to load them.
func SpanEqual(t testing.TB, got, want position.Span, msgAndArgs ...any) bool {
	t.Helper()

	same := got.Start.Line == want.Start.Line &&
		got.Start.Column == want.Start.Column &&
		got.End.Line == want.End.Line &&
		got.End.Column == want.End.Column

	if !same {
		failMsg(t, "SpanEqual", fmt.Sprintf("got %s, want %s", got, want), msgAndArgs...)
		return false
	}

	return true
}

// Eventually asserts that condition becomes true within duration.
func Eventually(t testing.TB, condition func() bool, within, interval time.Duration, msgAndArgs ...any) bool {
	t.Helper()

	deadline := time.Now().Add(within)

	for {
		if condition() {
			return true
		}

		if time.Now().After(deadline) {
			failMsg(t, "Eventually", "condition not met within duration", msgAndArgs...)
			return false
		}

		time.Sleep(interval)
	}
}

func fail[T any](t testing.TB, op string, got, want T, msgAndArgs ...any) {
	loc := caller()
	base := fmt.Sprintf("%s: got=%v want=%v (%T/%T) at %s", op, got, want, got, want, loc)

	if len(msgAndArgs) > 0 {
		base += ": " + fmt.Sprint(msgAndArgs...)
	}

	t.Errorf(base)
}

func failMsg(t testing.TB, op string, detail string, msgAndArgs ...any) {
	loc := caller()
	base := fmt.Sprintf("%s: %s at %s", op, detail, loc)

	if len(msgAndArgs) > 0 {
		base += ": " + fmt.Sprint(msgAndArgs...)
	}

	t.Errorf(base)
}

func caller() string {
	for i := 2; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)

		name := ""
		if fn != nil {
			name = fn.Name()
		}

		if !strings.Contains(name, "testkit.") {
			return fmt.Sprintf("%s:%d", file, line)
		}
	}

	return "unknown:0"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
