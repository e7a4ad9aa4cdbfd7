package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate test key: %v", err)
	}
	return key
}

func writeKeyFile(t *testing.T, block *pem.Block) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	return path
}

func TestSignWebSocket(t *testing.T) {
	creds := &Credentials{KeyID: "ws-key", PrivateKey: testKey(t)}

	headers, err := creds.SignWebSocket()
	if err != nil {
		t.Fatalf("SignWebSocket failed: %v", err)
	}

	if headers["KALSHI-ACCESS-KEY"] != "ws-key" {
		t.Errorf("KALSHI-ACCESS-KEY = %q, want ws-key", headers["KALSHI-ACCESS-KEY"])
	}
	ts := headers["KALSHI-ACCESS-TIMESTAMP"]
	if ts == "" {
		t.Fatal("KALSHI-ACCESS-TIMESTAMP is empty")
	}

	// The signature must verify against timestamp + GET + path.
	sig, err := base64.StdEncoding.DecodeString(headers["KALSHI-ACCESS-SIGNATURE"])
	if err != nil {
		t.Fatalf("signature is not base64: %v", err)
	}
	hashed := sha256.Sum256([]byte(ts + "GET" + WebSocketPath))
	err = rsa.VerifyPSS(&creds.PrivateKey.PublicKey, crypto.SHA256, hashed[:], sig,
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if err != nil {
		t.Errorf("signature does not verify: %v", err)
	}
}

func TestLoadPrivateKey_PKCS8(t *testing.T) {
	key := testKey(t)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal PKCS#8: %v", err)
	}
	path := writeKeyFile(t, &pem.Block{Type: "PRIVATE KEY", Bytes: der})

	loaded, err := LoadPrivateKey(path)
	if err != nil {
		t.Fatalf("LoadPrivateKey failed: %v", err)
	}
	if loaded.N.Cmp(key.N) != 0 {
		t.Error("loaded key does not match original")
	}
}

func TestLoadPrivateKey_PKCS1(t *testing.T) {
	key := testKey(t)
	path := writeKeyFile(t, &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	loaded, err := LoadPrivateKey(path)
	if err != nil {
		t.Fatalf("LoadPrivateKey failed: %v", err)
	}
	if loaded.N.Cmp(key.N) != 0 {
		t.Error("loaded key does not match original")
	}
}

func TestLoadPrivateKey_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pem")
	if err := os.WriteFile(path, []byte("not a key"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPrivateKey(path); err == nil {
		t.Error("expected error for non-PEM input")
	}
	if _, err := LoadPrivateKey(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_RequiredFields(t *testing.T) {
	if _, err := Load("", "some/path"); err == nil {
		t.Error("expected error for empty key ID")
	}
	if _, err := Load("key-id", ""); err == nil {
		t.Error("expected error for empty key path")
	}
}
