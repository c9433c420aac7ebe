package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// GenerateRSAKey generates a 2048-bit RSA key for signing test tokens.
func GenerateRSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate RSA key")
	return key
}

// WriteRSAKeyPair writes the key's private and public halves as PEM files
// inside t.TempDir() and returns their paths. The files are cleaned up
// when the test finishes.
func WriteRSAKeyPair(t testing.TB, key *rsa.PrivateKey) (privatePath, publicPath string) {
	t.Helper()
	dir := t.TempDir()

	privatePath = filepath.Join(dir, "private.pem")
	privateBlock := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	require.NoError(t, os.WriteFile(privatePath, pem.EncodeToMemory(privateBlock), 0o600))

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err, "failed to marshal public key")
	publicPath = filepath.Join(dir, "public.pem")
	publicBlock := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	}
	require.NoError(t, os.WriteFile(publicPath, pem.EncodeToMemory(publicBlock), 0o600))

	return privatePath, publicPath
}
