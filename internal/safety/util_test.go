package safety

import "testing"

func TestIsWellFormedJSON(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty payload", nil, true},
		{"valid object", []byte(`{"a":1}`), true},
		{"malformed", []byte(`{a`), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isWellFormedJSON(tt.data); got != tt.want {
				t.Errorf("isWellFormedJSON(%s) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}
