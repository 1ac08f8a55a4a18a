package netx

import (
	"net/http"
	"testing"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"lower-case scheme", "bearer abc", "abc", true},
		{"extra spaces", "  Bearer   abc  ", "abc", true},
		{"missing", "", "", false},
		{"scheme only", "Bearer ", "", false},
		{"basic auth", "Basic dXNlcjpwdw==", "", false},
		{"no space", "Bearerabc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(h)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSetBearerToken_RoundTrip(t *testing.T) {
	h := http.Header{}
	SetBearerToken(h, "tok")
	if got := h.Get("Authorization"); got != "Bearer tok" {
		t.Fatalf("header = %q", got)
	}
	if got, ok := BearerToken(h); !ok || got != "tok" {
		t.Fatalf("round trip = %q, %v", got, ok)
	}
}
