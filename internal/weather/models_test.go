package weather

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		input   string
		want    Unit
		wantErr bool
	}{
		{input: "metric", want: UnitMetric},
		{input: "imperial", want: UnitImperial},
		{input: "kelvin", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseUnit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUnit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseUnit(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnitToggle(t *testing.T) {
	if got := UnitMetric.Toggle(); got != UnitImperial {
		t.Errorf("metric.Toggle() = %q", got)
	}
	if got := UnitImperial.Toggle(); got != UnitMetric {
		t.Errorf("imperial.Toggle() = %q", got)
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &Error{Kind: KindNotFound, Message: `City "Atlantis" not found. Please try a different city name.`})

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(%v, ErrNotFound) = false", err)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Errorf("errors.Is(%v, ErrUnauthorized) = true", err)
	}

	var werr *Error
	if !errors.As(err, &werr) || werr.Message != `City "Atlantis" not found. Please try a different city name.` {
		t.Errorf("errors.As message = %v", werr)
	}
}
