package tools

import (
	"strings"
	"testing"
)

func TestGeneratePasswordDefaults(t *testing.T) {
	pw, err := generatePassword(0, false)
	if err != nil {
		t.Fatalf("generatePassword: %v", err)
	}
	if len(pw) != passwordDefaultLength {
		t.Errorf("len = %d, want %d", len(pw), passwordDefaultLength)
	}
	for _, c := range pw {
		if !strings.ContainsRune(passwordLetters+passwordDigits, c) {
			t.Errorf("unexpected character %q without symbols enabled", c)
		}
	}
}

func TestGeneratePasswordCustomLength(t *testing.T) {
	pw, err := generatePassword(32, true)
	if err != nil {
		t.Fatalf("generatePassword: %v", err)
	}
	if len(pw) != 32 {
		t.Errorf("len = %d, want 32", len(pw))
	}
}

func TestGeneratePasswordRejectsBadLength(t *testing.T) {
	for _, n := range []int{-1, 3, 129} {
		if _, err := generatePassword(n, false); err == nil {
			t.Errorf("length %d: expected error", n)
		}
	}
}

func TestGeneratePasswordVaries(t *testing.T) {
	a, _ := generatePassword(16, false)
	b, _ := generatePassword(16, false)
	if a == b {
		t.Error("two generated passwords were identical")
	}
}
