package utils

import (
	"strconv"
	"testing"
)

func TestGenerateOTPRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP returned error: %v", err)
		}
		if len(code) != 5 {
			t.Fatalf("expected 5-digit code, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric: %v", code, err)
		}
		if n < 10000 || n > 99999 {
			t.Fatalf("code %d outside the 10000-99999 range", n)
		}
	}
}

func TestGenerateOTPNotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP returned error: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("50 generated codes were all identical")
	}
}

func TestValidateOTPAttemptsWithoutRedis(t *testing.T) {
	// A nil client disables attempt limiting entirely.
	for i := 0; i < OTPAttemptLimit+5; i++ {
		if err := ValidateOTPAttempts("+15550001111", nil); err != nil {
			t.Fatalf("expected nil error without redis, got %v", err)
		}
	}
}
