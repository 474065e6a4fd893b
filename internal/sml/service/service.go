// Package service runs the SML registration workflow: register, update and
// unregister this SMP at an SML, and prepare a certificate change.
//
// Every invocation is a linear pipeline. Input validation failures return a
// validation error before anything leaves the process. Once the SML has been
// called the result is always an Outcome, successful or not, and exactly one
// audit event is written.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"smpadmin/internal/keystore"
	"smpadmin/internal/sml/certificate"
	"smpadmin/internal/sml/metrics"
	"smpadmin/internal/sml/models"
	audit "smpadmin/pkg/platform/audit"
)

// SMLClient performs the remote calls. Implemented by client.Client.
type SMLClient interface {
	Register(ctx context.Context, sml models.SMLInfo, smpID, physicalAddress, logicalAddress string) error
	Update(ctx context.Context, sml models.SMLInfo, smpID, physicalAddress, logicalAddress string) error
	Unregister(ctx context.Context, sml models.SMLInfo, smpID string) error
	PrepareCertificateChange(ctx context.Context, sml models.SMLInfo, certificatePEM string, migrationDate *certificate.Date) error
}

// SMLInfoStore is the catalogue of known SML endpoints.
type SMLInfoStore interface {
	Create(ctx context.Context, info models.SMLInfo) error
	Update(ctx context.Context, info models.SMLInfo) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.SMLInfo, error)
	List(ctx context.Context) ([]models.SMLInfo, error)
}

// KeyManager exposes the state of the local signing keystore.
type KeyManager interface {
	IsValid() bool
	InitError() error
	CertificateStatus(now time.Time) (keystore.Status, bool)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CapabilityCache memoizes Capabilities per admin session.
type CapabilityCache interface {
	Get(ctx context.Context, key string) (*models.Capabilities, bool, error)
	Set(ctx context.Context, key string, value models.Capabilities) error
	Invalidate(ctx context.Context, key string) error
}

// Resolver looks up the publisher DNS name. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// ErrActionUnavailable marks an action that cannot be offered in the
// current configuration, as opposed to rejected input.
var ErrActionUnavailable = errors.New("action unavailable")

// Settings is the local SMP configuration the workflow reads.
type Settings struct {
	SMPID string
	// PhysicalAddress is the default IPv4 address sent to the SML.
	PhysicalAddress string
	// LogicalAddress is the default public URL of this SMP.
	LogicalAddress string
	RestType       string
	// DefaultSMLID selects the SML used when none is given and the only SML
	// certificate changes are sent to.
	DefaultSMLID string
	// RequireClientCertSML limits update and unregister to SMLs that
	// require a client certificate.
	RequireClientCertSML bool
}

// Service orchestrates the registration workflow.
type Service struct {
	client         SMLClient
	smls           SMLInfoStore
	keys           KeyManager
	settings       Settings
	auditPublisher AuditPublisher
	cache          CapabilityCache
	resolver       Resolver
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCapabilityCache enables memoization of Capabilities.
func WithCapabilityCache(cache CapabilityCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithResolver replaces net.DefaultResolver for registration checks.
func WithResolver(resolver Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// New constructs a Service. client, smls and keys are required.
func New(client SMLClient, smls SMLInfoStore, keys KeyManager, settings Settings, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, errors.New("sml client is required")
	}
	if smls == nil {
		return nil, errors.New("sml info store is required")
	}
	if keys == nil {
		return nil, errors.New("key manager is required")
	}
	s := &Service{
		client:   client,
		smls:     smls,
		keys:     keys,
		settings: settings,
		resolver: net.DefaultResolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.settings.PhysicalAddress == "" {
		s.settings.PhysicalAddress = LocalIPv4()
	}
	return s, nil
}

// Settings returns the configuration the service was built with.
func (s *Service) Settings() Settings {
	return s.settings
}
