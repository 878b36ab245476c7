package format

import (
	"testing"
	"time"
)

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		want string
	}{
		{750 * time.Nanosecond, "750ns"},
		{500 * time.Microsecond, "500µs"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
		{2 * time.Minute, "2m0s"},
		{1234567 * time.Microsecond, "1.235s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"":           "",
		"7":          "7",
		"123":        "123",
		"1234":       "1,234",
		"-1234567":   "-1,234,567",
		"123456":     "123,456",
		"-12":        "-12",
		"DEADBEEF":   "DEADBEEF",
		"1000000000": "1,000,000,000",
	}
	for in, want := range tests {
		if got := FormatNumberString(in); got != want {
			t.Errorf("FormatNumberString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateDigits(t *testing.T) {
	t.Parallel()
	if got := TruncateDigits("123456789", 10, 2); got != "123456789" {
		t.Errorf("short value changed: %q", got)
	}
	if got := TruncateDigits("123456789", 5, 2); got != "12...89" {
		t.Errorf("got %q, want 12...89", got)
	}
	if got := TruncateDigits("-123456789", 5, 3); got != "-123...789" {
		t.Errorf("got %q, want -123...789", got)
	}
	if got := TruncateDigits("123456", 3, 3); got != "123456" {
		t.Errorf("edges covering the value should not truncate: %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	t.Parallel()
	if got := FormatRate(10, 0); got != "n/a" {
		t.Errorf("zero duration: %q", got)
	}
	if got := FormatRate(500, time.Second); got != "500.0/s" {
		t.Errorf("got %q", got)
	}
	if got := FormatRate(2500, time.Second); got != "2.5k/s" {
		t.Errorf("got %q", got)
	}
	if got := FormatRate(3_000_000, time.Second); got != "3.0M/s" {
		t.Errorf("got %q", got)
	}
}
