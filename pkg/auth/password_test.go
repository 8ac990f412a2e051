package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	digest, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "Sup3rSecret" {
		t.Fatal("digest equals plaintext")
	}
	if !VerifyPassword("Sup3rSecret", digest) {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword("sup3rsecret", digest) {
		t.Fatal("expected case-different password to fail")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	if VerifyPassword("anything", "not-a-bcrypt-digest") {
		t.Fatal("expected malformed digest to fail closed")
	}
	if VerifyPassword("anything", "") {
		t.Fatal("expected empty digest to fail closed")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("expected salted digests to differ")
	}
}
