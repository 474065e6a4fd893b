package service

import (
	"context"
	"errors"
	"net"
	"time"

	"smpadmin/internal/sml/models"
	dErrors "smpadmin/pkg/domain-errors"
	audit "smpadmin/pkg/platform/audit"
	"smpadmin/pkg/platform/sentinel"
	"smpadmin/pkg/requestcontext"
)

// Capabilities reports which registration actions can be offered to the
// current admin session. Results are cached per session when a cache is
// configured; cache failures fall back to recomputing.
func (s *Service) Capabilities(ctx context.Context) (*models.Capabilities, error) {
	key := requestcontext.SessionKey(ctx)
	if s.cache != nil && key != "" {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "capability cache lookup failed", "error", err)
		}
		s.metrics.IncCacheLookup(ok)
		if ok {
			return cached, nil
		}
	}

	caps, err := s.computeCapabilities(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && key != "" {
		if err := s.cache.Set(ctx, key, *caps); err != nil {
			s.logger.WarnContext(ctx, "failed to cache capabilities", "error", err)
		}
	}
	return caps, nil
}

func (s *Service) computeCapabilities(ctx context.Context) (*models.Capabilities, error) {
	now := requestcontext.Now(ctx)
	caps := &models.Capabilities{SMPID: s.settings.SMPID, CheckedAt: now}

	sml, err := s.configuredSML(ctx)
	if err != nil {
		return nil, err
	}
	if sml != nil {
		caps.SMLConfigured = true
		caps.SMLID = sml.ID
		caps.PublisherDNSName = sml.PublisherDNSName(s.settings.SMPID)
		caps.AlreadyRegistered = s.resolves(ctx, caps.PublisherDNSName)
	}

	caps.KeystoreValid = s.keys.IsValid()
	if err := s.keys.InitError(); err != nil {
		caps.KeystoreError = err.Error()
	}
	if status, ok := s.keys.CertificateStatus(now); ok {
		notBefore, notAfter := status.NotBefore, status.NotAfter
		caps.CertificateNotBefore = &notBefore
		caps.CertificateNotAfter = &notAfter
		caps.CertificateExpired = status.Expired
		caps.CertificateNotYetValid = status.NotYetValid
	}
	caps.CanPrepareCertificateUpdate = caps.SMLConfigured && caps.KeystoreValid && !caps.CertificateExpired
	return caps, nil
}

func (s *Service) resolves(ctx context.Context, host string) bool {
	if s.resolver == nil || host == "" {
		return false
	}
	addrs, err := s.resolver.LookupHost(ctx, host)
	if err != nil {
		s.logger.DebugContext(ctx, "publisher DNS name does not resolve", "host", host, "error", err)
		return false
	}
	return len(addrs) > 0
}

// SelectableSMLs lists the SMLs the given action may be pointed at.
// Update and unregister are limited to client certificate SMLs when
// configured.
func (s *Service) SelectableSMLs(ctx context.Context, action audit.Action) ([]models.SMLInfo, error) {
	infos, err := s.smls.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list SMLs")
	}
	switch action {
	case audit.ActionSMLCreate:
		return infos, nil
	case audit.ActionSMLUpdate, audit.ActionSMLDelete:
		if !s.settings.RequireClientCertSML {
			return infos, nil
		}
		out := make([]models.SMLInfo, 0, len(infos))
		for _, info := range infos {
			if info.ClientCertificateRequired {
				out = append(out, info)
			}
		}
		return out, nil
	case audit.ActionSMLUpdateCert:
		sml, err := s.configuredSML(ctx)
		if err != nil {
			return nil, err
		}
		if sml == nil {
			return []models.SMLInfo{}, nil
		}
		return []models.SMLInfo{*sml}, nil
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown action: "+string(action))
	}
}

// configuredSML returns the default SML, or nil when none is configured or
// the configured ID is unknown.
func (s *Service) configuredSML(ctx context.Context) (*models.SMLInfo, error) {
	if s.settings.DefaultSMLID == "" {
		return nil, nil
	}
	sml, err := s.smls.FindByID(ctx, s.settings.DefaultSMLID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load configured SML")
	}
	return sml, nil
}

func (s *Service) certificateUpdateTarget(ctx context.Context, now time.Time) (*models.SMLInfo, error) {
	sml, err := s.configuredSML(ctx)
	if err != nil {
		return nil, err
	}
	if sml == nil {
		return nil, unavailable("This action is not available because the SML configuration is invalid.")
	}
	if !s.keys.IsValid() {
		return nil, unavailable("This action is not available because the overall keystore configuration is invalid.")
	}
	if status, ok := s.keys.CertificateStatus(now); ok && status.Expired {
		return nil, unavailable("This action is not available because the SMP certificate has already expired.")
	}
	return sml, nil
}

func (s *Service) invalidateCapabilities(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ""); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate capability cache", "error", err)
	}
}

// LocalIPv4 returns the first non-loopback IPv4 address of this host, or
// 127.0.0.1 when there is none.
func LocalIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.IsLoopback() {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return "127.0.0.1"
}
