package main

import (
	"context"
	"fmt"
	"testing"

	gerrors "github.com/matzehuels/stackgrid/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"interrupted", fmt.Errorf("replay: %w", context.Canceled), exitInterrupted},
		{"invalid layout", gerrors.New(gerrors.ErrCodeInvalidLayout, "overlap"), exitInvalid},
		{"invalid config", gerrors.New(gerrors.ErrCodeInvalidConfig, "cols"), exitInvalid},
		{"missing item", gerrors.New(gerrors.ErrCodeItemNotFound, "zz"), exitFailure},
		{"plain error", fmt.Errorf("disk full"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
