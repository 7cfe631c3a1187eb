package utils

import "testing"

func TestIsWebURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://shop.example.com/p/123", true},
		{"http://example.com", true},
		{"HTTPS://example.com/x", true},
		{"ftp://example.com/file", false},
		{"example.com/p/1", false},
		{"https://", false},
		{"", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		if got := IsWebURL(tt.in); got != tt.want {
			t.Errorf("IsWebURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHostname(t *testing.T) {
	if got := Hostname("https://www.bestbuy.com/site/tv/6575123.p?skuId=6575123"); got != "www.bestbuy.com" {
		t.Errorf("expected www.bestbuy.com, got %q", got)
	}
	if got := Hostname("::bad"); got != "unknown" {
		t.Errorf("expected unknown, got %q", got)
	}
}
