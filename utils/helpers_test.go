package utils

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid date", input: "2026-08-30"},
		{name: "leap day", input: "2024-02-29"},
		{name: "wrong format", input: "30-08-2026", wantErr: true},
		{name: "datetime rejected", input: "2026-08-30T10:00:00Z", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "impossible day", input: "2026-02-30", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDate(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Format("2006-01-02") != tc.input {
				t.Fatalf("expected %q back, got %q", tc.input, got.Format("2006-01-02"))
			}
		})
	}
}

func TestIsValidTimeOfDay(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"05:00", true},
		{"23:59", true},
		{"00:00", true},
		{"", true},
		{"24:00", false},
		{"12:60", false},
		{"5:00pm", false},
		{"0500", false},
	}

	for _, tc := range tests {
		if got := IsValidTimeOfDay(tc.input); got != tc.want {
			t.Errorf("IsValidTimeOfDay(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsValidYear(t *testing.T) {
	tests := []struct {
		input int
		want  bool
	}{
		{2000, true},
		{2026, true},
		{2100, true},
		{1999, false},
		{2101, false},
		{0, false},
	}

	for _, tc := range tests {
		if got := IsValidYear(tc.input); got != tc.want {
			t.Errorf("IsValidYear(%d) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("rahasia123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "rahasia123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := CheckPassword("rahasia123", hash); err != nil {
		t.Fatalf("expected password to verify against its hash: %v", err)
	}
	if err := CheckPassword("salah", hash); err == nil {
		t.Fatal("expected wrong password to fail verification")
	}
}
