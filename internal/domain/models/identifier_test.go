package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestResolveIdentifierFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"pipe delimited", "SAHARA|MC1234|2025|B-12", "MC1234"},
		{"pipe delimited two fields", "V2|98765", "98765"},
		{"brace structured quoted", `{"mess_no": "MC1234", "room": "B12"}`, "MC1234"},
		{"brace structured bare", "{student: 44321, block: north}", "44321"},
		{"brace structured id key", "{id:MC9876}", "MC9876"},
		{"comma list", "v1,MC1234,2025-01-02", "MC1234"},
		{"comma list skips short tokens", "a,b,55678,rest", "55678"},
		{"colon pair mess key", "messNo:MC1234", "MC1234"},
		{"colon pair student key", "student: 77421", "77421"},
		{"verbatim", "MC1234", "MC1234"},
		{"verbatim numeric", "182736", "182736"},
		{"pattern fallback", "** <MC1234> **", "MC1234"},
		{"percent encoded pipe", "SAHARA%7CMC1234%7C2025", "MC1234"},
		{"percent encoded verbatim", "MC1234%20", "MC1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveIdentifier(tt.raw)
			if err != nil {
				t.Fatalf("ResolveIdentifier(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ResolveIdentifier(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveIdentifierRoundTrip(t *testing.T) {
	const messNo = "MC4521"

	payloads := []string{
		fmt.Sprintf("SAHARA|%s|2026", messNo),
		fmt.Sprintf(`{"mess": "%s"}`, messNo),
		fmt.Sprintf("v3,%s,extra", messNo),
		fmt.Sprintf("messNo:%s", messNo),
		messNo,
		"SAHARA%7C" + messNo + "%7C2026",
	}

	for _, payload := range payloads {
		got, err := ResolveIdentifier(payload)
		if err != nil {
			t.Fatalf("ResolveIdentifier(%q) error: %v", payload, err)
		}
		if got != messNo {
			t.Errorf("ResolveIdentifier(%q) = %q, want %q", payload, got, messNo)
		}
	}
}

func TestResolveIdentifierRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "ab", "@#$%^", "a-b-c", "x:1"} {
		if _, err := ResolveIdentifier(raw); !errors.Is(err, ErrUnparsableIdentifier) {
			t.Errorf("ResolveIdentifier(%q) = %v, want ErrUnparsableIdentifier", raw, err)
		}
	}
}

func TestNormalizeMessNo(t *testing.T) {
	if _, ok := NormalizeMessNo("abc"); ok {
		t.Error("three characters should not be a valid mess number")
	}
	if _, ok := NormalizeMessNo("abcdefghijklmnopqrstu"); ok {
		t.Error("21 characters should not be a valid mess number")
	}
	if got, ok := NormalizeMessNo("  MC1234  "); !ok || got != "MC1234" {
		t.Errorf("NormalizeMessNo trimmed = %q, %v", got, ok)
	}
}
