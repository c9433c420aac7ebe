package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"os"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// ---------------------------------------------------------------------------
// KeyProvider — RSA key material for token signing and validation
// ---------------------------------------------------------------------------

// minKeyBits is the minimum RSA modulus size considered safe. Smaller keys
// load successfully but produce a startup warning.
const minKeyBits = 2048

// KeyProvider holds the RSA key pair used to sign and validate bearer
// tokens. It is constructed once per process via [LoadKeys] and is
// read-only afterwards, so it is safe for concurrent use without locking.
type KeyProvider struct {
	signingKey    *rsa.PrivateKey
	validationKey *rsa.PublicKey
}

// LoadKeys reads PEM-encoded RSA key material from the given file paths and
// returns a [KeyProvider]. The private key is used for signing, the public
// key for validation; the two paths may point at the same key pair split
// across files.
//
// All failure modes (missing file, empty file, unparsable content, access
// denied) return a [kiterr.CodeConfiguration] error with the path and key
// role embedded in the message, so a misconfigured deployment fails fast
// with an actionable diagnostic. A key below 2048 bits loads successfully
// but logs a warning through the provided logger.
func LoadKeys(privateKeyPath, publicKeyPath string, logger *slog.Logger) (*KeyProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	priv, err := loadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, err
	}

	pub, err := loadPublicKey(publicKeyPath)
	if err != nil {
		return nil, err
	}

	if bits := priv.N.BitLen(); bits < minKeyBits {
		logger.Warn("auth: signing key is below the recommended strength",
			"path", privateKeyPath,
			"bits", bits,
			"recommended_bits", minKeyBits,
		)
	}
	if bits := pub.N.BitLen(); bits < minKeyBits {
		logger.Warn("auth: validation key is below the recommended strength",
			"path", publicKeyPath,
			"bits", bits,
			"recommended_bits", minKeyBits,
		)
	}

	return &KeyProvider{
		signingKey:    priv,
		validationKey: pub,
	}, nil
}

// SigningKey returns the RSA private key used to sign issued tokens.
func (p *KeyProvider) SigningKey() *rsa.PrivateKey { return p.signingKey }

// ValidationKey returns the RSA public key used to validate token signatures.
func (p *KeyProvider) ValidationKey() *rsa.PublicKey { return p.validationKey }

// loadPrivateKey reads and parses a PEM-encoded RSA private key. Both PKCS#1
// ("RSA PRIVATE KEY") and PKCS#8 ("PRIVATE KEY") encodings are accepted.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	block, err := readPEM(path, "private")
	if err != nil {
		return nil, err
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, kiterr.Wrapf(err, kiterr.CodeConfiguration,
			"auth: private key at %q is not a parseable RSA key", path)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, kiterr.Newf(kiterr.CodeConfiguration,
			"auth: private key at %q is not an RSA key", path)
	}
	return key, nil
}

// loadPublicKey reads and parses a PEM-encoded RSA public key. Both PKIX
// ("PUBLIC KEY") and PKCS#1 ("RSA PUBLIC KEY") encodings are accepted, as
// is a certificate carrying an RSA public key.
func loadPublicKey(path string) (*rsa.PublicKey, error) {
	block, err := readPEM(path, "public")
	if err != nil {
		return nil, err
	}

	if parsed, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if key, ok := parsed.(*rsa.PublicKey); ok {
			return key, nil
		}
		return nil, kiterr.Newf(kiterr.CodeConfiguration,
			"auth: public key at %q is not an RSA key", path)
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}

	if cert, err := x509.ParseCertificate(block.Bytes); err == nil {
		if key, ok := cert.PublicKey.(*rsa.PublicKey); ok {
			return key, nil
		}
	}

	return nil, kiterr.Newf(kiterr.CodeConfiguration,
		"auth: public key at %q is not a parseable RSA key", path)
}

// readPEM reads a file and decodes the first PEM block. Each failure mode
// maps to a distinct message under the single CONFIGURATION_ERROR kind,
// with the path and key role (private/public) included for diagnostics.
func readPEM(path, role string) (*pem.Block, error) {
	if path == "" {
		return nil, kiterr.Newf(kiterr.CodeConfiguration,
			"auth: %s key path is empty", role)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kiterr.Wrapf(err, kiterr.CodeConfiguration,
				"auth: %s key file %q does not exist", role, path)
		}
		if os.IsPermission(err) {
			return nil, kiterr.Wrapf(err, kiterr.CodeConfiguration,
				"auth: %s key file %q is not readable", role, path)
		}
		return nil, kiterr.Wrapf(err, kiterr.CodeConfiguration,
			"auth: failed to read %s key file %q", role, path)
	}

	if len(data) == 0 {
		return nil, kiterr.Newf(kiterr.CodeConfiguration,
			"auth: %s key file %q is empty", role, path)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, kiterr.Newf(kiterr.CodeConfiguration,
			"auth: %s key file %q does not contain PEM data", role, path)
	}
	return block, nil
}
