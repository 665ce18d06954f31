package credentials

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashThenVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, pw := range []string{"pw1", "correct horse battery staple", "ünïcödé", ""} {
		hash, err := h.Hash(pw)
		if err != nil {
			t.Fatalf("hash %q: %v", pw, err)
		}
		if hash == pw {
			t.Fatal("hash must not equal plaintext")
		}
		if !h.Verify(pw, hash) {
			t.Fatalf("expected %q to verify", pw)
		}
		if h.Verify(pw+"x", hash) {
			t.Fatalf("different password verified against hash of %q", pw)
		}
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("expected distinct hashes for equal plaintexts")
	}
	if !h.Verify("same", a) || !h.Verify("same", b) {
		t.Fatal("both hashes must verify")
	}
}

func TestVerifyMalformedHashReturnsFalse(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if h.Verify("pw", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash must not verify")
	}
	if h.Verify("pw", "") {
		t.Fatal("empty hash must not verify")
	}
}

func TestHashRejectsOversizedPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("a", 73))
	if !IsTooLong(err) {
		t.Fatalf("expected too-long error, got %v", err)
	}
}

func TestNewHasherFallsBackToDefaultCost(t *testing.T) {
	if got := NewHasher(0).cost; got != bcrypt.DefaultCost {
		t.Fatalf("cost = %d", got)
	}
}
