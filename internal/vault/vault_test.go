package vault

import (
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	key := DeriveKey("1234", "moneylog:v1")
	plaintext := []byte(`{"tx":[],"names":{"p1":"엘리","p2":"파트너"},"nid":100}`)

	sealed, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := Decrypt(key, sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestWrongPinFailsLoudly(t *testing.T) {
	sealed, err := Encrypt(DeriveKey("1234", "s"), []byte("doc"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	_, err = Decrypt(DeriveKey("9999", "s"), sealed)
	if !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("want ErrDecryptFailed, got %v", err)
	}
}

func TestCorruptedPayloadFails(t *testing.T) {
	key := DeriveKey("1234", "s")
	cases := []string{
		"",
		"not base64 !!!",
		"AAAA", // shorter than a nonce
	}
	for i, c := range cases {
		if _, err := Decrypt(key, c); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("case %d: want ErrDecryptFailed, got %v", i, err)
		}
	}
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	if DeriveKey("1234", "a") != DeriveKey("1234", "a") {
		t.Fatal("same inputs must derive the same key")
	}
	if DeriveKey("1234", "a") == DeriveKey("1234", "b") {
		t.Fatal("different salts must derive different keys")
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	key := DeriveKey("1234", "s")
	a, _ := Encrypt(key, []byte("doc"))
	b, _ := Encrypt(key, []byte("doc"))
	if a == b {
		t.Fatal("fresh nonce expected per encryption")
	}
}
