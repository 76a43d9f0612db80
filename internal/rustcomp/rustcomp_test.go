package rustcomp

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
)

func TestMockCompilerReturnsConfiguredVerdict(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCompiler(ctrl)

	mock.EXPECT().
		Invoke(gomock.Any(), "fn main() {}").
		Return(&Result{Verdict: VerdictAccepted}, nil)

	res, err := mock.Invoke(context.Background(), "fn main() {}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Verdict != VerdictAccepted {
		t.Fatalf("expected accepted, got %s", res.Verdict)
	}
}

func TestMockCompilerPropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCompiler(ctrl)

	boom := errors.New("boom")

	mock.EXPECT().
		Invoke(gomock.Any(), gomock.Any()).
		Return(nil, boom)

	_, err := mock.Invoke(context.Background(), "whatever")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestValidateCompilerPathRejectsShellMetacharacters(t *testing.T) {
	if err := validateCompilerPath("rustc; rm -rf /"); err == nil {
		t.Fatalf("expected rejection of a path containing shell metacharacters")
	}
}

func TestValidateCompilerPathRejectsNonRustcBinary(t *testing.T) {
	if err := validateCompilerPath("/usr/bin/bash"); err == nil {
		t.Fatalf("expected rejection of a non-rustc binary")
	}
}

func TestValidateCompilerPathAcceptsPlainRustc(t *testing.T) {
	if err := validateCompilerPath("rustc"); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestClassifyCodesExtractsErrorAndWarningCodes(t *testing.T) {
	stderr := "error[E0502]: cannot borrow `x` as mutable\nwarning[E0035]: unused variable\n"

	errs, warns := classifyCodes(stderr)

	if len(errs) != 1 || errs[0] != "E0502" {
		t.Fatalf("expected [E0502], got %v", errs)
	}

	if len(warns) != 1 || warns[0] != "E0035" {
		t.Fatalf("expected [E0035], got %v", warns)
	}
}
