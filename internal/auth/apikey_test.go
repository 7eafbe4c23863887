package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyAPIKey(t *testing.T) {
	t.Parallel()

	hash, err := hashAPIKeyWithCost("s3cret-key", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash api key: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty hash")
	}
	if !VerifyAPIKey(" s3cret-key ", hash) {
		t.Fatalf("expected api key verification to succeed")
	}
	if VerifyAPIKey("wrong-key", hash) {
		t.Fatalf("did not expect wrong key to verify")
	}
	if _, err := HashAPIKey("   "); err == nil {
		t.Fatalf("expected error for blank key")
	}
}

func TestGenerateAPIKey(t *testing.T) {
	t.Parallel()

	first, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate api key: %v", err)
	}
	second, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate api key: %v", err)
	}
	if len(first) != apiKeyBytes*2 || first == second {
		t.Fatalf("unexpected keys %q %q", first, second)
	}
}

func TestKeyVerifier(t *testing.T) {
	t.Parallel()

	hash, err := hashAPIKeyWithCost("s3cret-key", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash api key: %v", err)
	}

	verifier := NewKeyVerifier(hash)
	if !verifier.Enabled() {
		t.Fatalf("expected verifier to be enabled")
	}
	for i := 0; i < 2; i++ {
		if !verifier.Verify("s3cret-key") {
			t.Fatalf("expected key to verify on attempt %d", i+1)
		}
	}
	if verifier.Verify("other") || verifier.Verify("") {
		t.Fatalf("did not expect wrong key to verify")
	}

	if NewKeyVerifier("  ").Enabled() {
		t.Fatalf("expected blank hash to disable verifier")
	}
}
