package domain

import (
	"testing"
	"time"
)

func TestUserCodeRedeemableAt(t *testing.T) {
	expiry := time.Date(2025, 1, 1, 12, 10, 0, 0, time.UTC)
	u := User{VerifyCode: "123456", VerifyCodeExpiry: &expiry}

	if !u.CodeRedeemableAt(expiry.Add(-time.Second)) {
		t.Fatalf("expected code redeemable before expiry")
	}
	if u.CodeRedeemableAt(expiry) {
		t.Fatalf("expected code not redeemable at expiry")
	}
	if u.CodeRedeemableAt(expiry.Add(time.Minute)) {
		t.Fatalf("expected code not redeemable after expiry")
	}

	empty := User{}
	if empty.CodeRedeemableAt(expiry.Add(-time.Hour)) {
		t.Fatalf("expected no code to be unredeemable")
	}
}
