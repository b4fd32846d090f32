package identity

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"whatsapp:+919876543210", "9876543210"},
		{"+91 98765-43210", "9876543210"},
		{"09876543210", "9876543210"},
		{"9876543210", "9876543210"},
		{"(987) 654.3210", "9876543210"},
		{"12345", "12345"},
		{"", ""},
		{"no digits", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizePhone(tt.raw); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_SameSuffixSameIdentity(t *testing.T) {
	variants := []string{"+919876543210", "919876543210", "whatsapp:+91 98765 43210", "0 98765 43210"}
	for _, v := range variants {
		if NormalizePhone(v) != NormalizePhone(variants[0]) {
			t.Errorf("%q should normalize like %q", v, variants[0])
		}
	}
}

func TestFormatE164(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"+919876543210", "+919876543210"},
		{"9876543210", "+919876543210"},
		{"98765 43210", "+919876543210"},
		{"919876543210", "+919876543210"},
		{"14155238886", "+14155238886"},
	}

	for _, tt := range tests {
		if got := FormatE164(tt.raw); got != tt.want {
			t.Errorf("FormatE164(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
