package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("root")
	err := &OpError{Op: "batch.load", Kind: KindIO, Path: "a.jpg", Err: root}

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected errors.Is to match ErrIO sentinel")
	}
	if errors.Is(err, ErrConfig) {
		t.Fatalf("io error must not match ErrConfig")
	}

	var got *OpError
	if !errors.As(err, &got) {
		t.Fatalf("expected errors.As to match OpError")
	}
	if got.Path != "a.jpg" {
		t.Fatalf("path: got %q", got.Path)
	}
}

func TestOpErrorMessage(t *testing.T) {
	err := &OpError{Op: "partition", Kind: KindConfig, Err: errors.New("ratio must sum to 1")}
	want := "partition: config: ratio must sum to 1"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}

	withPath := &OpError{Op: "store.load", Kind: KindIO, Path: "/tmp/x.json"}
	if withPath.Error() != "store.load: io (path=/tmp/x.json)" {
		t.Errorf("Error(): got %q", withPath.Error())
	}

	var nilErr *OpError
	if nilErr.Error() != "<nil>" {
		t.Errorf("nil Error(): got %q", nilErr.Error())
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	inner := Errorf("composite.pick", KindRange, "f(%v) = %v", 0.5, 2.0)
	outer := fmt.Errorf("transform: %w", inner)

	if !IsKind(outer, KindRange) {
		t.Fatalf("expected IsKind to see through fmt wrapping")
	}
	if !errors.Is(outer, ErrRangeViolation) {
		t.Fatalf("expected sentinel match through wrapping")
	}
	if IsKind(errors.New("plain"), KindRange) {
		t.Fatalf("plain errors have no kind")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap("op", KindIO, "", nil) != nil {
		t.Fatal("Wrap(nil) should return nil")
	}
}
