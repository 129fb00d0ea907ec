package tokens

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"
	"time"
)

func TestGenerateOpaque(t *testing.T) {
	tok, err := GenerateOpaque()
	if err != nil {
		t.Fatalf("GenerateOpaque failed: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not valid base64url: %v", err)
	}
	if len(raw) != OpaqueTokenBytes {
		t.Errorf("entropy: got %d bytes, want %d", len(raw), OpaqueTokenBytes)
	}

	// URL-safe: no characters outside the base64url alphabet
	if strings.ContainsAny(tok, "+/=") {
		t.Errorf("token contains non-URL-safe characters: %q", tok)
	}
}

func TestGenerateOpaque_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := GenerateOpaque()
		if err != nil {
			t.Fatalf("GenerateOpaque failed: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true
	}
}

func TestHash(t *testing.T) {
	h := Hash("some-token")

	if len(h) != 64 {
		t.Errorf("hash length: got %d, want 64", len(h))
	}
	if h != strings.ToLower(h) {
		t.Error("hash is not lowercase")
	}
	if _, err := hex.DecodeString(h); err != nil {
		t.Errorf("hash is not valid hex: %v", err)
	}

	// Deterministic
	if Hash("some-token") != h {
		t.Error("hash is not deterministic")
	}
	// Different inputs, different digests
	if Hash("other-token") == h {
		t.Error("distinct inputs produced the same hash")
	}
}

func TestNewCodec_MissingKey(t *testing.T) {
	if _, err := NewCodec(""); err != ErrMissingSigningKey {
		t.Errorf("NewCodec(\"\"): got %v, want ErrMissingSigningKey", err)
	}
}

func TestCodec_SignVerify(t *testing.T) {
	codec, err := NewCodec("test-signing-key")
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	signed, err := codec.SignAccess("user-123", "refresh-456", time.Minute)
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}

	claims, err := codec.VerifyAccess(signed)
	if err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("Subject: got %q, want %q", claims.Subject, "user-123")
	}
	if claims.RefreshID != "refresh-456" {
		t.Errorf("RefreshID: got %q, want %q", claims.RefreshID, "refresh-456")
	}
	if claims.Type != TypeAccess {
		t.Errorf("Type: got %q, want %q", claims.Type, TypeAccess)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected iat and exp claims to be set")
	}
	if !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		t.Error("expected exp to be after iat")
	}
}

func TestCodec_VerifyExpired(t *testing.T) {
	codec, err := NewCodec("test-signing-key")
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	signed, err := codec.SignAccess("user-123", "refresh-456", -time.Minute)
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}

	if _, err := codec.VerifyAccess(signed); err != ErrExpired {
		t.Errorf("expired token: got %v, want ErrExpired", err)
	}
}

func TestCodec_VerifyWrongKey(t *testing.T) {
	signer, _ := NewCodec("key-one")
	verifier, _ := NewCodec("key-two")

	signed, err := signer.SignAccess("user-123", "refresh-456", time.Minute)
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}

	if _, err := verifier.VerifyAccess(signed); err != ErrBadSignature {
		t.Errorf("wrong key: got %v, want ErrBadSignature", err)
	}
}

func TestCodec_VerifyGarbage(t *testing.T) {
	codec, _ := NewCodec("test-signing-key")

	for _, input := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.VerifyAccess(input); err != ErrBadSignature {
			t.Errorf("VerifyAccess(%q): got %v, want ErrBadSignature", input, err)
		}
	}
}
