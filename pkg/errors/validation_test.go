package errors

import (
	"math"
	"slices"
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "a", false},
		{"valid numeric", "42", false},
		{"valid with spaces", "node 7", false},
		{"valid unicode", "knoten-ä", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", MaxNodeIDLength+1), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateFinite(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"negative", -30, false},
		{"NaN", math.NaN(), true},
		{"+Inf", math.Inf(1), true},
		{"-Inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFinite("alpha", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFinite(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		wantErr bool
	}{
		{"valid", 800, 600, false},
		{"zero width", 0, 600, true},
		{"negative height", 800, -1, true},
		{"NaN", math.NaN(), 600, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewport(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateViewport(%v, %v) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	supported := []string{"svg", "png", "pdf"}

	tests := []struct {
		name    string
		input   []string
		want    []string
		wantErr bool
	}{
		{"single", []string{"svg"}, []string{"svg"}, false},
		{"normalized", []string{" SVG ", "Png"}, []string{"svg", "png"}, false},
		{"duplicates removed", []string{"svg", "pdf", "svg"}, []string{"svg", "pdf"}, false},
		{"empty entries skipped", []string{"", "pdf"}, []string{"pdf"}, false},

		{"none", nil, nil, true},
		{"only blanks", []string{" ", ""}, nil, true},
		{"unsupported", []string{"svg", "gif"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFormats(tt.input, supported)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFormats(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !Is(err, ErrCodeInvalidFormat) {
					t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
				}
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ValidateFormats(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
