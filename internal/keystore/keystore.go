// Package keystore loads the SMP signing key and certificate that
// authenticate this SMP towards the SML over mutual TLS.
//
// A Manager is always returned, even when loading fails; callers check
// IsValid before offering actions that need the key, the way an operator
// console greys out actions instead of crashing.
package keystore

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"software.sslmate.com/src/go-pkcs12"

	"smpadmin/internal/platform/config"
)

var (
	// ErrNotLoaded is returned by TLSConfig when the keystore failed to load.
	ErrNotLoaded = errors.New("keystore is not loaded")
)

// Status summarizes the signing certificate's validity at a point in time.
type Status struct {
	NotBefore   time.Time `json:"not_before"`
	NotAfter    time.Time `json:"not_after"`
	Expired     bool      `json:"expired"`
	NotYetValid bool      `json:"not_yet_valid"`
}

// Manager holds the loaded key material. It is read-only after Load.
type Manager struct {
	certificate *x509.Certificate
	keyPair     *tls.Certificate
	roots       *x509.CertPool
	initErr     error
}

type Option func(*loadOptions)

type loadOptions struct {
	logger *slog.Logger
}

// WithLogger reports load failures to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) { o.logger = logger }
}

// Load reads the keystore described by cfg.
func Load(cfg config.KeystoreConfig, opts ...Option) *Manager {
	o := &loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	m := &Manager{}
	switch cfg.Type {
	case config.KeystorePKCS12:
		m.initErr = m.loadPKCS12(cfg.Path, cfg.Password)
	case config.KeystorePEM:
		m.initErr = m.loadPEM(cfg.CertPath, cfg.KeyPath)
	default:
		m.initErr = fmt.Errorf("unsupported keystore type %q", cfg.Type)
	}

	if m.initErr == nil && cfg.TruststorePath != "" {
		m.initErr = m.loadTruststore(cfg.TruststorePath)
	}

	if m.initErr != nil {
		m.certificate, m.keyPair, m.roots = nil, nil, nil
		o.logger.Error("failed to load SMP keystore", "type", cfg.Type, "error", m.initErr)
		return m
	}
	o.logger.Info("loaded SMP keystore",
		"subject", m.certificate.Subject.String(),
		"not_after", m.certificate.NotAfter,
		"truststore", cfg.TruststorePath != "",
	)
	return m
}

// NewFromKeyPair wraps already loaded key material.
func NewFromKeyPair(pair tls.Certificate) (*Manager, error) {
	if len(pair.Certificate) == 0 {
		return nil, errors.New("key pair carries no certificate")
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("parse leaf certificate: %w", err)
	}
	pair.Leaf = leaf
	return &Manager{certificate: leaf, keyPair: &pair}, nil
}

func (m *Manager) loadPKCS12(path, password string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read keystore: %w", err)
	}
	key, cert, chain, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return fmt.Errorf("decode pkcs12 keystore: %w", err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return fmt.Errorf("keystore key of type %T cannot sign", key)
	}
	// The issuing CAs travel with the leaf so the SML can build the path.
	raw := make([][]byte, 0, 1+len(chain))
	raw = append(raw, cert.Raw)
	for _, ca := range chain {
		raw = append(raw, ca.Raw)
	}
	m.certificate = cert
	m.keyPair = &tls.Certificate{
		Certificate: raw,
		PrivateKey:  signer,
		Leaf:        cert,
	}
	return nil
}

func (m *Manager) loadPEM(certPath, keyPath string) error {
	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return fmt.Errorf("load pem key pair: %w", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return fmt.Errorf("parse leaf certificate: %w", err)
	}
	pair.Leaf = leaf
	m.certificate = leaf
	m.keyPair = &pair
	return nil
}

func (m *Manager) loadTruststore(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read truststore: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return errors.New("truststore contains no PEM certificates")
	}
	m.roots = pool
	return nil
}

// IsValid reports whether key material is available.
func (m *Manager) IsValid() bool {
	return m != nil && m.initErr == nil && m.keyPair != nil
}

// InitError is the reason the keystore could not be loaded, nil if it was.
func (m *Manager) InitError() error {
	if m == nil {
		return ErrNotLoaded
	}
	return m.initErr
}

// SigningCertificate returns the SMP certificate, nil if not loaded.
func (m *Manager) SigningCertificate() *x509.Certificate {
	if !m.IsValid() {
		return nil
	}
	return m.certificate
}

// CertificateStatus evaluates the signing certificate at now.
func (m *Manager) CertificateStatus(now time.Time) (Status, bool) {
	cert := m.SigningCertificate()
	if cert == nil {
		return Status{}, false
	}
	return Status{
		NotBefore:   cert.NotBefore,
		NotAfter:    cert.NotAfter,
		Expired:     now.After(cert.NotAfter),
		NotYetValid: now.Before(cert.NotBefore),
	}, true
}

// TLSConfig returns a client TLS configuration presenting the SMP
// certificate. Without a truststore the system roots are used.
func (m *Manager) TLSConfig() (*tls.Config, error) {
	if !m.IsValid() {
		if err := m.InitError(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotLoaded, err)
		}
		return nil, ErrNotLoaded
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{*m.keyPair},
		RootCAs:      m.roots,
	}, nil
}
