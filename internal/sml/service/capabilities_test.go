package service

import (
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"smpadmin/internal/keystore"
	"smpadmin/internal/sml/cache"
	"smpadmin/internal/sml/models"
	"smpadmin/internal/sml/service/mocks"
	dErrors "smpadmin/pkg/domain-errors"
	audit "smpadmin/pkg/platform/audit"
	"smpadmin/pkg/requestcontext"
)

func (s *WorkflowSuite) TestCapabilities() {
	s.validKeystore()
	s.resolver.EXPECT().LookupHost(gomock.Any(), "SMP-1.acc.edelivery.tech.ec.europa.eu").Return([]string{"10.1.1.1"}, nil)

	caps, err := s.service.Capabilities(s.ctx)
	s.Require().NoError(err)
	s.Equal("SMP-1", caps.SMPID)
	s.True(caps.SMLConfigured)
	s.Equal("digittest", caps.SMLID)
	s.True(caps.AlreadyRegistered)
	s.True(caps.KeystoreValid)
	s.Empty(caps.KeystoreError)
	s.Require().NotNil(caps.CertificateNotAfter)
	s.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *caps.CertificateNotAfter)
	s.True(caps.CanPrepareCertificateUpdate)
	s.Equal(s.now, caps.CheckedAt)
}

func (s *WorkflowSuite) TestCapabilitiesInvalidKeystore() {
	s.expectKeystore(false, keystore.Status{})
	s.resolver.EXPECT().LookupHost(gomock.Any(), gomock.Any()).Return(nil, errors.New("no such host"))

	caps, err := s.service.Capabilities(s.ctx)
	s.Require().NoError(err)
	s.False(caps.KeystoreValid)
	s.Equal("keystore is not loaded", caps.KeystoreError)
	s.Nil(caps.CertificateNotBefore)
	s.False(caps.AlreadyRegistered)
	s.False(caps.CanPrepareCertificateUpdate)
}

func (s *WorkflowSuite) TestCapabilitiesCachedPerSession() {
	s.rebuild(WithCapabilityCache(cache.NewMemory(time.Minute)))
	s.validKeystore()
	ctx := requestcontext.WithSessionKey(s.ctx, "session-1")

	s.resolver.EXPECT().LookupHost(gomock.Any(), gomock.Any()).Return([]string{"10.1.1.1"}, nil).Times(1)
	first, err := s.service.Capabilities(ctx)
	s.Require().NoError(err)
	second, err := s.service.Capabilities(ctx)
	s.Require().NoError(err)
	s.Equal(first, second)

	s.Run("a successful registration change drops cached entries", func() {
		s.client.EXPECT().Unregister(gomock.Any(), gomock.Any(), "SMP-1").Return(nil)
		s.expectAudit(nil)
		_, err := s.service.Unregister(ctx, UnregisterInput{})
		s.Require().NoError(err)

		s.resolver.EXPECT().LookupHost(gomock.Any(), gomock.Any()).Return(nil, errors.New("no such host"))
		caps, err := s.service.Capabilities(ctx)
		s.Require().NoError(err)
		s.False(caps.AlreadyRegistered)
	})
}

func (s *WorkflowSuite) TestCapabilitiesCacheFailureFallsBack() {
	failing := mocks.NewMockCapabilityCache(s.ctrl)
	s.rebuild(WithCapabilityCache(failing))
	s.validKeystore()
	ctx := requestcontext.WithSessionKey(s.ctx, "session-1")

	failing.EXPECT().Get(gomock.Any(), "session-1").Return(nil, false, errors.New("redis down"))
	failing.EXPECT().Set(gomock.Any(), "session-1", gomock.Any()).Return(errors.New("redis down"))
	s.resolver.EXPECT().LookupHost(gomock.Any(), gomock.Any()).Return([]string{"10.1.1.1"}, nil)

	caps, err := s.service.Capabilities(ctx)
	s.Require().NoError(err)
	s.True(caps.SMLConfigured)
}

func (s *WorkflowSuite) TestCapabilitiesWithoutSessionSkipsCache() {
	s.rebuild(WithCapabilityCache(mocks.NewMockCapabilityCache(s.ctrl)))
	s.validKeystore()
	s.resolver.EXPECT().LookupHost(gomock.Any(), gomock.Any()).Return([]string{"10.1.1.1"}, nil)

	_, err := s.service.Capabilities(s.ctx)
	s.Require().NoError(err)
}

func (s *WorkflowSuite) TestCapabilitiesUnknownConfiguredSML() {
	s.settings.DefaultSMLID = "removed"
	s.rebuild()
	s.validKeystore()

	caps, err := s.service.Capabilities(s.ctx)
	s.Require().NoError(err)
	s.False(caps.SMLConfigured)
	s.Empty(caps.PublisherDNSName)
	s.False(caps.CanPrepareCertificateUpdate)
}

func (s *WorkflowSuite) TestSelectableSMLs() {
	ids := func(infos []models.SMLInfo) []string {
		out := make([]string, 0, len(infos))
		for _, info := range infos {
			out = append(out, info.ID)
		}
		return out
	}

	s.Run("register offers every SML", func() {
		infos, err := s.service.SelectableSMLs(s.ctx, audit.ActionSMLCreate)
		s.Require().NoError(err)
		s.Equal([]string{"digittest", "digitprod", "local"}, ids(infos))
	})

	s.Run("update offers every SML unless client certificates are required", func() {
		infos, err := s.service.SelectableSMLs(s.ctx, audit.ActionSMLUpdate)
		s.Require().NoError(err)
		s.Len(infos, 3)
	})

	s.Run("certificate update offers only the configured SML", func() {
		infos, err := s.service.SelectableSMLs(s.ctx, audit.ActionSMLUpdateCert)
		s.Require().NoError(err)
		s.Equal([]string{"digittest"}, ids(infos))
	})

	s.Run("unknown action", func() {
		_, err := s.service.SelectableSMLs(s.ctx, audit.ActionSMLInfoCreate)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
