package gmaps

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: errors.New("maps: ZERO_RESULTS - "), want: "ZERO_RESULTS"},
		{err: fmt.Errorf("directions: %w", errors.New("maps: NOT_FOUND - origin unknown")), want: "NOT_FOUND"},
		{err: errors.New("dial tcp: connection refused"), want: ""},
	}

	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIsEmptyResult(t *testing.T) {
	if !IsEmptyResult(errors.New("maps: ZERO_RESULTS - ")) {
		t.Error("ZERO_RESULTS should be an empty result")
	}
	if !IsEmptyResult(errors.New("maps: NOT_FOUND - ")) {
		t.Error("NOT_FOUND should be an empty result")
	}
	// A message mentioning the status text is not a status.
	if IsEmptyResult(errors.New("upstream said ZERO_RESULTS")) {
		t.Error("free text must not match")
	}
	if IsEmptyResult(errors.New("maps: OVER_QUERY_LIMIT - slow down")) {
		t.Error("OVER_QUERY_LIMIT is not an empty result")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", "", nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
