package util

import (
	"testing"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := "some-configured-encryption-key"
	plaintext := "sk-abc123-a-secret-api-key"

	enc, err := EncryptString(key, plaintext)
	if err != nil {
		t.Fatalf("EncryptString error = %v", err)
	}
	if enc == plaintext {
		t.Error("ciphertext must differ from plaintext")
	}

	dec, err := DecryptString(key, enc)
	if err != nil {
		t.Fatalf("DecryptString error = %v", err)
	}
	if dec != plaintext {
		t.Errorf("round trip = %q, want %q", dec, plaintext)
	}
}

func TestEncryptString_NonDeterministic(t *testing.T) {
	key := "key"
	a, _ := EncryptString(key, "same input")
	b, _ := EncryptString(key, "same input")
	if a == b {
		t.Error("two encryptions of the same input must not match")
	}
}

func TestDecryptString_WrongKey(t *testing.T) {
	enc, _ := EncryptString("right-key", "secret")
	if _, err := DecryptString("wrong-key", enc); err == nil {
		t.Error("decrypting with the wrong key must fail")
	}
}

func TestDecryptString_Garbage(t *testing.T) {
	for _, input := range []string{"", "not-base64!!!", "YWJj"} {
		if _, err := DecryptString("key", input); err == nil {
			t.Errorf("DecryptString(%q) error = nil, want error", input)
		}
	}
}

func TestRandomToken_LengthAndUniqueness(t *testing.T) {
	a, err := RandomToken(32)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := RandomToken(32)
	if a == b {
		t.Error("two random tokens must not match")
	}
	if len(a) == 0 {
		t.Error("token must not be empty")
	}
}

func TestRandomToken_InvalidLength(t *testing.T) {
	if _, err := RandomToken(0); err == nil {
		t.Error("RandomToken(0) error = nil, want error")
	}
}

func TestGenerateParseToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", "a@b.com", 0)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@b.com" {
		t.Errorf("claims = %+v, want user-1 / a@b.com", claims)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret", "user-1", "a@b.com", 0)
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Error("parsing with the wrong secret must fail")
	}
}
