package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash equals the plaintext password")
	}

	if !CheckPassword(hash, "secret123") {
		t.Fatal("CheckPassword() rejected the correct password")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Fatal("CheckPassword() accepted a wrong password")
	}
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	first, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	second, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password are identical, salt missing")
	}
}
