package rest

import (
	"crypto"
	"crypto/tls"
	"fmt"
	"os"

	"software.sslmate.com/src/go-pkcs12"
)

// LoadTLSConfig reads a password-less PKCS#12 bundle holding the server
// certificate, its private key and any intermediate certificates.
func LoadTLSConfig(path string) (*tls.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pkcs12 bundle: %w", err)
	}

	key, leaf, chain, err := pkcs12.DecodeChain(data, "")
	if err != nil {
		return nil, fmt.Errorf("failed to decode pkcs12 bundle %s: %w", path, err)
	}
	if _, ok := key.(crypto.Signer); !ok {
		return nil, fmt.Errorf("invalid certificate in pkcs12 bundle %s: unsupported private key type %T", path, key)
	}

	cert := tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}
	for _, c := range chain {
		cert.Certificate = append(cert.Certificate, c.Raw)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
