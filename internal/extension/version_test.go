package extension

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{raw: "1.2.3", want: "1.2.3"},
		{raw: "v1.8.0", want: "1.8.0"},
		{raw: "1.2.0.0", want: "1.2.0"},
		{raw: "1.2.0.0-beta1", want: "1.2.0-beta1"},
		{raw: "2.0.0-rc.1", want: "2.0.0-rc.1"},
		{raw: "dev-main", wantErr: ErrDevVersion},
		{raw: "2.x-dev", wantErr: ErrDevVersion},
		{raw: "1.2"},
		{raw: "1.2.3.4"},
		{raw: "latest"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := ParseVersion(tt.raw)
			if tt.want == "" {
				if err == nil {
					t.Fatalf("ParseVersion(%q) = %v, want error", tt.raw, v)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q): %v", tt.raw, err)
			}
			if v.String() != tt.want {
				t.Errorf("ParseVersion(%q) = %s, want %s", tt.raw, v, tt.want)
			}
		})
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		recorded  string
		candidate string
		want      bool
	}{
		{"1.0.0", "1.1.0", true},
		{"v1.1.0", "1.1.0.0", false},
		{"1.2.0", "1.1.0", false},
		{"1.0.0-beta", "1.0.0", true},
	}
	for _, tt := range tests {
		got, err := IsNewer(tt.recorded, tt.candidate)
		if err != nil {
			t.Fatalf("IsNewer(%q, %q): %v", tt.recorded, tt.candidate, err)
		}
		if got != tt.want {
			t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.recorded, tt.candidate, got, tt.want)
		}
	}

	if _, err := IsNewer("dev-main", "1.0.0"); !errors.Is(err, ErrDevVersion) {
		t.Errorf("dev version err = %v", err)
	}
}
