package errdefs

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestLoadErrorIs(t *testing.T) {
	err := &LoadError{Stage: StageTexture, Path: "a.jpg", Err: io.ErrUnexpectedEOF}

	if !errors.Is(err, ErrLoad) {
		t.Errorf("expected LoadError to match ErrLoad")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected LoadError to unwrap to its cause")
	}
	if errors.Is(err, ErrConfiguration) {
		t.Errorf("LoadError must not match ErrConfiguration")
	}

	wrapped := fmt.Errorf("set panorama: %w", err)
	var loadErr *LoadError
	if !errors.As(wrapped, &loadErr) {
		t.Fatalf("expected errors.As to find LoadError")
	}
	if loadErr.Stage != StageTexture {
		t.Errorf("Stage: expected %s, got %s", StageTexture, loadErr.Stage)
	}
}

func TestWrappedKinds(t *testing.T) {
	if err := InvalidArgument("duration %d", -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("InvalidArgument: expected ErrInvalidArgument, got %v", err)
	}
	if err := Configuration("no panorama"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Configuration: expected ErrConfiguration, got %v", err)
	}
}
