package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKindsUnwrap(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
	}{
		{name: "extraction", err: &ExtractionError{Err: cause}},
		{name: "indexing", err: &IndexingError{Err: cause}},
		{name: "retrieval", err: &RetrievalError{Err: cause}},
		{name: "generation", err: &GenerationError{Err: cause}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, cause) {
				t.Error("error should unwrap to its cause")
			}
			// Wrapping once more must not hide the kind.
			wrapped := fmt.Errorf("request failed: %w", tt.err)
			switch tt.name {
			case "extraction":
				var target *ExtractionError
				if !errors.As(wrapped, &target) {
					t.Error("kind lost through wrapping")
				}
			case "indexing":
				var target *IndexingError
				if !errors.As(wrapped, &target) {
					t.Error("kind lost through wrapping")
				}
			case "retrieval":
				var target *RetrievalError
				if !errors.As(wrapped, &target) {
					t.Error("kind lost through wrapping")
				}
			case "generation":
				var target *GenerationError
				if !errors.As(wrapped, &target) {
					t.Error("kind lost through wrapping")
				}
			}
		})
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Reason: "chunk overlap must be in [0, size)"}
	if !strings.Contains(err.Error(), "chunk overlap") {
		t.Errorf("unexpected message: %v", err)
	}
}
