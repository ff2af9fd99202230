package validation

import (
	"errors"
	"testing"
)

func TestValidateVolume(t *testing.T) {
	tests := []struct {
		name      string
		volume    int
		expectErr bool
	}{
		{"Zero", 0, false},
		{"Default volume", 500000, false},
		{"At maximum", 1000000, false},
		{"Negative", -1, true},
		{"Above maximum", 1000001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVolume(tt.volume, 1000000)
			if tt.expectErr {
				if !errors.Is(err, ErrInvalidVolume) {
					t.Errorf("ValidateVolume(%d) expected ErrInvalidVolume, got %v", tt.volume, err)
				}
			} else if err != nil {
				t.Errorf("ValidateVolume(%d) unexpected error = %v", tt.volume, err)
			}
		})
	}
}

func TestParseVolume(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  int
		expectErr bool
	}{
		{"Plain", "350000", 350000, false},
		{"Thousands separators", "650,000", 650000, false},
		{"Surrounding spaces", "  42 ", 42, false},
		{"Empty", "", 0, true},
		{"Negative", "-5", 0, true},
		{"Fractional", "12.5", 0, true},
		{"Words", "lots", 0, true},
		{"Above maximum", "2,000,000", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVolume(tt.input, 1000000)
			if tt.expectErr {
				if !errors.Is(err, ErrInvalidVolume) {
					t.Fatalf("ParseVolume(%q) expected ErrInvalidVolume, got %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVolume(%q) unexpected error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseVolume(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}
