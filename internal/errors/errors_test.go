package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(CategoryScan, SeverityFatal, "directory scan failed")
	want := "scan (fatal): directory scan failed"
	if e.Error() != want {
		t.Fatalf("expected %q, got %q", want, e.Error())
	}

	cause := errors.New("permission denied")
	wrapped := Wrap(cause, CategoryScan, SeverityFatal, "directory scan failed")
	if wrapped.Error() != want+": permission denied" {
		t.Fatalf("unexpected wrapped message: %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := RenderFailed("/tmp/a.docx", cause)
	if !errors.Is(e, cause) {
		t.Fatal("errors.Is should find the cause through Unwrap")
	}

	var be *BinderError
	if !errors.As(fmt.Errorf("stage: %w", e), &be) {
		t.Fatal("errors.As should extract BinderError")
	}
	if be.Category != CategoryRender {
		t.Fatalf("expected render category, got %s", be.Category)
	}
}

func TestSeverityClassification(t *testing.T) {
	if !ScanFailed("/root", nil).IsFatal() {
		t.Fatal("scan failure must be fatal")
	}
	if MergeInputMissing("/tmp/missing.pdf").IsFatal() {
		t.Fatal("missing merge input must not be fatal")
	}
	if LinkTargetNotFound("1 - a.pdf", 0).IsFatal() {
		t.Fatal("missing link target must not be fatal")
	}
	if !OutputWriteFailed("/out/final.pdf", errors.New("disk full")).IsFatal() {
		t.Fatal("output write failure must be fatal")
	}
}

func TestWithContext(t *testing.T) {
	e := LinkTargetNotFound("2 - b.docx", 1)
	if e.Context["text"] != "2 - b.docx" {
		t.Fatalf("context text missing: %v", e.Context)
	}
	if e.Context["page"] != 1 {
		t.Fatalf("context page missing: %v", e.Context)
	}
}
