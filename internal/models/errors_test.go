// ABOUTME: Tests for the error taxonomy classification
// ABOUTME: Verifies wrapped sentinels map to stable kind strings
package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", ErrValidation, "validation_error"},
		{"not found", ErrNotFound, "not_found"},
		{"upstream", ErrUpstream, "upstream_error"},
		{"conflict", ErrConflict, "conflict"},
		{"wrapped validation", fmt.Errorf("parse %q: %w", "x", ErrValidation), "validation_error"},
		{"double wrapped upstream", fmt.Errorf("embed: %w", fmt.Errorf("http 503: %w", ErrUpstream)), "upstream_error"},
		{"unknown", errors.New("boom"), "internal_error"},
		{"nil", nil, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
