package model

import (
	"testing"

	"github.com/YuminosukeSato/taxifare/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()

	if s.IsFitted() {
		t.Fatal("new StateManager should not be fitted")
	}

	err := s.RequireFitted("StandardScaler", "Transform")
	var notFitted *errors.NotFittedError
	if !errors.As(err, &notFitted) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
	if notFitted.Method != "Transform" {
		t.Errorf("Method = %q, want Transform", notFitted.Method)
	}

	s.SetFitted(3, 10)
	if err := s.RequireFitted("StandardScaler", "Transform"); err != nil {
		t.Errorf("unexpected error after SetFitted: %v", err)
	}
	if f, n := s.Dimensions(); f != 3 || n != 10 {
		t.Errorf("Dimensions() = (%d, %d), want (3, 10)", f, n)
	}

	if err := s.RequireFeatures("StandardScaler.Transform", 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	var dimErr *errors.DimensionError
	if !errors.As(s.RequireFeatures("StandardScaler.Transform", 2), &dimErr) {
		t.Error("expected DimensionError for wrong feature count")
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset should clear fitted state")
	}
}
