package score

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LoadPrivateKey accepts either a filesystem path to a PEM file or a
// base64-encoded PEM blob. The score subsystem refuses to start without
// both keys; the rest of the process keeps running.
func LoadPrivateKey(value string) (*rsa.PrivateKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("empty key material")
	}

	pemBytes, err := os.ReadFile(value)
	if err != nil {
		decoded, decErr := base64.StdEncoding.DecodeString(value)
		if decErr != nil {
			return nil, errors.Errorf("key is neither a readable file (%s) nor base64 PEM (%s)", err, decErr)
		}
		pemBytes = decoded
	}

	return parsePEM(pemBytes)
}

func parsePEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found in key material")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return key, nil
}
