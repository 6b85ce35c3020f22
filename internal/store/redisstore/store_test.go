package redisstore

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestOTPKey_Normalizes(t *testing.T) {
	if got := otpKey("  A@X.com "); got != "otp:a@x.com" {
		t.Fatalf("unexpected key %q", got)
	}
	if otpKey("+15550100") != "otp:+15550100" {
		t.Fatalf("phone key should be kept verbatim")
	}
}

func TestConsumeOTP_SingleUse(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s := New(addr, os.Getenv("REDIS_PASSWORD"), 0)
	defer s.Close()

	ctx := context.Background()
	if err := s.SaveOTP(ctx, "otp-test@example.com", "123456", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	code, err := s.ConsumeOTP(ctx, "OTP-test@example.com")
	if err != nil || code != "123456" {
		t.Fatalf("consume = %q, %v", code, err)
	}
	if code, _ := s.ConsumeOTP(ctx, "otp-test@example.com"); code != "" {
		t.Fatalf("code should be gone after first use, got %q", code)
	}
}
