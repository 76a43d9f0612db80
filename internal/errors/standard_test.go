package errors

import (
	"strings"
	"testing"
)

func TestDanglingAddressFormats(t *testing.T) {
	err := DanglingAddress(7)

	if err.Category != CategoryStore {
		t.Fatalf("Category = %v, want %v", err.Category, CategoryStore)
	}

	if !strings.Contains(err.Error(), "7") {
		t.Fatalf("Error() = %q, missing address", err.Error())
	}

	if err.Caller == "" || err.Caller == "unknown" {
		t.Fatalf("expected caller to be captured, got %q", err.Caller)
	}
}

func TestExtensionMisbehaved(t *testing.T) {
	err := ExtensionMisbehaved("ifelse", "claimed term but returned nil")
	if err.Context["extension"] != "ifelse" {
		t.Fatalf("Context[extension] = %v", err.Context["extension"])
	}
}
