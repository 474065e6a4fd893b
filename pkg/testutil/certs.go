package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestCertificate is a self-signed certificate generated for a test.
type TestCertificate struct {
	Cert   *x509.Certificate
	Key    *ecdsa.PrivateKey
	DER    []byte
	PEM    string
	KeyPEM string
}

// NewCertificate issues a self-signed certificate valid from notBefore to
// notAfter with the given common name.
func NewCertificate(t *testing.T, commonName string, notBefore, notAfter time.Time) *TestCertificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "failed to generate key")

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	require.NoError(t, err, "failed to generate serial")

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: commonName, Organization: []string{"Test SMP"}, Country: []string{"AT"}},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err, "failed to create certificate")

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err, "failed to parse certificate")

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err, "failed to marshal key")

	return &TestCertificate{
		Cert:   cert,
		Key:    key,
		DER:    der,
		PEM:    string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})),
		KeyPEM: string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})),
	}
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
