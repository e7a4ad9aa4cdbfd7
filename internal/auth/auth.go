// Package auth signs Kalshi WebSocket handshakes with RSA-PSS.
//
// The REST side of this project authenticates with a plain bearer token;
// only the live stream watcher needs signed headers.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"time"
)

// WebSocketPath is the path signed for WebSocket handshakes.
const WebSocketPath = "/trade-api/ws/v2"

// Credentials holds the API key ID and the RSA key that signs requests.
type Credentials struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
}

// Load reads credentials from a key ID and a PEM private key file.
func Load(keyID, privateKeyPath string) (*Credentials, error) {
	if keyID == "" {
		return nil, fmt.Errorf("API key ID is required")
	}
	if privateKeyPath == "" {
		return nil, fmt.Errorf("private key path is required")
	}

	key, err := LoadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}

	return &Credentials{KeyID: keyID, PrivateKey: key}, nil
}

// LoadPrivateKey parses an RSA private key from a PEM file, accepting both
// PKCS#8 and the older PKCS#1 encoding.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key is not an RSA private key")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return rsaKey, nil
}

// SignWebSocket generates the authentication headers for a WebSocket
// handshake.
func (c *Credentials) SignWebSocket() (map[string]string, error) {
	return c.signRequest("GET", WebSocketPath)
}

// signRequest signs timestamp_ms + method + path with RSA-PSS/SHA-256 and
// returns the three KALSHI-ACCESS-* headers.
func (c *Credentials) signRequest(method, path string) (map[string]string, error) {
	timestampMS := time.Now().UnixMilli()

	hashed := sha256.Sum256([]byte(strconv.FormatInt(timestampMS, 10) + method + path))

	signature, err := rsa.SignPSS(
		rand.Reader,
		c.PrivateKey,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
	)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}

	return map[string]string{
		"KALSHI-ACCESS-KEY":       c.KeyID,
		"KALSHI-ACCESS-TIMESTAMP": strconv.FormatInt(timestampMS, 10),
		"KALSHI-ACCESS-SIGNATURE": base64.StdEncoding.EncodeToString(signature),
	}, nil
}
