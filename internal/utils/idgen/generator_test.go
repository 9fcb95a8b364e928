package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantErr    bool
		wantPrefix string
	}{
		{
			name:       "generate conversation ID",
			prefix:     "conv",
			length:     16,
			wantPrefix: "conv_",
		},
		{
			name:       "generate turn ID",
			prefix:     "turn",
			length:     16,
			wantPrefix: "turn_",
		},
		{
			name:       "generate short ID",
			prefix:     "test",
			length:     8,
			wantPrefix: "test_",
		},
		{
			name:    "empty prefix",
			prefix:  "",
			length:  16,
			wantErr: true,
		},
		{
			name:    "zero length",
			prefix:  "conv",
			length:  0,
			wantErr: true,
		},
		{
			name:    "negative length",
			prefix:  "conv",
			length:  -4,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateSecureID(tt.prefix, tt.length)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got id %q", id)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(id, tt.wantPrefix) {
				t.Errorf("id %q missing prefix %q", id, tt.wantPrefix)
			}
			if got := len(id); got != len(tt.wantPrefix)+tt.length {
				t.Errorf("id %q has length %d, want %d", id, got, len(tt.wantPrefix)+tt.length)
			}
		})
	}
}

func TestGenerateSecureIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := MustGenerateSecureID("conv", 16)
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}
