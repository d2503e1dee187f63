package service

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "Sup3rSecret" {
		t.Fatalf("expected password to be hashed")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}

	if !h.Verify("Sup3rSecret", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if h.Verify("WrongPass1", hash) {
		t.Fatalf("expected non-matching password to fail")
	}
}

func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct salts to produce distinct hashes")
	}
}

func TestNewPasswordHasher_CostFallback(t *testing.T) {
	for _, cost := range []int{-1, 0, bcrypt.MaxCost + 1} {
		h := NewPasswordHasher(cost)
		if h.cost != defaultBcryptCost {
			t.Fatalf("cost %d: expected fallback to %d, got %d", cost, defaultBcryptCost, h.cost)
		}
	}
	if h := NewPasswordHasher(bcrypt.MinCost); h.cost != bcrypt.MinCost {
		t.Fatalf("expected in-range cost to be kept, got %d", h.cost)
	}
}

func TestPasswordHasher_VerifyGarbageHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if h.Verify("anything", "not-a-bcrypt-hash") {
		t.Fatalf("expected verify against garbage hash to fail")
	}
}
