package services

import (
	"testing"
	"time"
)

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		name  string
		input time.Duration
		want  string
	}{
		{name: "zero", input: 0, want: "0s"},
		{name: "negative", input: -5 * time.Second, want: "0s"},
		{name: "seconds only", input: 42 * time.Second, want: "42s"},
		{name: "minutes and seconds", input: 2*time.Minute + 5*time.Second, want: "2m 5s"},
		{name: "hours", input: 3*time.Hour + 4*time.Minute, want: "3h 4m"},
		{name: "days", input: 49*time.Hour + 30*time.Second, want: "2d 1h 30s"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := humanizeDuration(tc.input); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCombineStatus(t *testing.T) {
	tests := []struct {
		current   string
		candidate string
		want      string
	}{
		{overallStatusOK, overallStatusOK, overallStatusOK},
		{overallStatusOK, overallStatusDegraded, overallStatusDegraded},
		{overallStatusDegraded, overallStatusOK, overallStatusDegraded},
		{overallStatusDegraded, overallStatusCritical, overallStatusCritical},
		{overallStatusCritical, overallStatusOK, overallStatusCritical},
		{"garbage", overallStatusDegraded, overallStatusDegraded},
		{overallStatusOK, "garbage", overallStatusOK},
	}

	for _, tc := range tests {
		if got := combineStatus(tc.current, tc.candidate); got != tc.want {
			t.Errorf("combineStatus(%q, %q) = %q, want %q", tc.current, tc.candidate, got, tc.want)
		}
	}
}

func TestHTTPStatusForOverall(t *testing.T) {
	s := NewHealthService("", "")
	if got := s.HTTPStatusForOverall(overallStatusCritical); got != 503 {
		t.Fatalf("expected 503 for critical, got %d", got)
	}
	if got := s.HTTPStatusForOverall(overallStatusOK); got != 200 {
		t.Fatalf("expected 200 for ok, got %d", got)
	}
	if got := s.HTTPStatusForOverall(overallStatusDegraded); got != 200 {
		t.Fatalf("expected 200 for degraded, got %d", got)
	}
}
