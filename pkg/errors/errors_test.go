package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(CodeValidation)
	if meta.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation, got %d", meta.HTTPStatus)
	}
	if !meta.DetailsAllowed {
		t.Fatal("validation errors should allow details")
	}

	meta = MetadataFor(CodeDependency)
	if meta.HTTPStatus != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for dependency, got %d", meta.HTTPStatus)
	}
	if !meta.Retryable {
		t.Fatal("dependency errors should be retryable")
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500 fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeDependency, cause, "insert order")

	if err.Unwrap() != cause {
		t.Fatal("expected wrapped cause to unwrap")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Error() != "DEPENDENCY_ERROR: insert order" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestAsExtractsTypedErrorFromChain(t *testing.T) {
	t.Parallel()

	inner := New(CodeNotFound, "order not found")
	wrapped := fmt.Errorf("loading order: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", typed.Code())
	}

	if As(fmt.Errorf("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeDependency, fmt.Errorf("timeout"), "insert line items")
	dump := Dump(err)

	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d", len(dump.Chain))
	}
}
