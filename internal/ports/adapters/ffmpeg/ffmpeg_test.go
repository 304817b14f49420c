package ffmpeg

import "testing"

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"30/1", 30, false},
		{"30000/1001", 30, false},
		{"24000/1001", 24, false},
		{"25", 25, false},
		{"0/0", 0, true},
		{"abc", 0, true},
		{"-30/1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFrameRate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseFrameRate(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
