package utils

import (
	"strings"
	"testing"
)

// testParams keeps hashing fast in tests; production costs come from config.
var testParams = Argon2Params{Memory: 1024, Time: 1, Parallelism: 1}

func TestHashVerify_RoundTrip(t *testing.T) {
	h := NewArgon2Hasher(testParams)
	for _, plain := range []string{"a", "password123", "pa$$w0rd with spaces", "пароль"} {
		encoded, err := h.Hash(plain)
		if err != nil {
			t.Fatalf("Hash(%q) returned error: %v", plain, err)
		}
		if encoded == plain {
			t.Fatalf("Hash(%q) returned the plaintext", plain)
		}
		if !strings.HasPrefix(encoded, "$argon2id$") {
			t.Errorf("Hash(%q) = %q; want argon2id encoded form", plain, encoded)
		}
		if !h.Verify(encoded, plain) {
			t.Errorf("Verify(Hash(%q), %q) = false; want true", plain, plain)
		}
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	h := NewArgon2Hasher(testParams)
	encoded, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if h.Verify(encoded, "battery staple") {
		t.Error("Verify accepted a different password")
	}
	if h.Verify(encoded, "") {
		t.Error("Verify accepted an empty password")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	h := NewArgon2Hasher(testParams)
	for _, bad := range []string{
		"",
		"not a hash",
		"$argon2id$v=19$m=1024,t=1,p=1$short",         // missing digest segment
		"$argon2id$v=99$m=1024,t=1,p=1$c2FsdA$aGFzaA", // unsupported version
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",   // wrong algorithm tag
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",    // invalid base64 salt
	} {
		if h.Verify(bad, "anything") {
			t.Errorf("Verify(%q) = true; want false for malformed hash", bad)
		}
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	h := NewArgon2Hasher(testParams)
	a, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	b, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same input are identical; salt is not random")
	}
}

func TestVerify_UsesEmbeddedParams(t *testing.T) {
	// A hash produced under one cost config must verify under another.
	old := NewArgon2Hasher(Argon2Params{Memory: 2048, Time: 2, Parallelism: 1})
	encoded, err := old.Hash("migrate me")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	current := NewArgon2Hasher(testParams)
	if !current.Verify(encoded, "migrate me") {
		t.Error("Verify failed for a hash produced under different cost parameters")
	}
}
