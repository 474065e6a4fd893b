package service

import (
	"go.uber.org/mock/gomock"

	"smpadmin/internal/sml/service/mocks"
	dErrors "smpadmin/pkg/domain-errors"
	audit "smpadmin/pkg/platform/audit"
)

func (s *WorkflowSuite) TestSMLInfoLifecycle() {
	input := SMLInfoInput{
		DisplayName:          "Staging",
		DNSZone:              ".staging.example.org.",
		ManagementServiceURL: "https://sml.staging.example.org/",
	}

	s.expectAudit(nil)
	created, err := s.service.CreateSMLInfo(s.ctx, input)
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.Equal("staging.example.org", created.DNSZone)
	s.Equal("https://sml.staging.example.org", created.ManagementServiceURL)
	s.Require().Len(s.events, 1)
	s.Equal(audit.ActionSMLInfoCreate, s.events[0].Action)
	s.Equal(created.ID, s.events[0].Subject)
	s.Equal("false", s.events[0].Args[5])

	got, err := s.service.GetSMLInfo(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created, got)

	infos, err := s.service.ListSMLInfos(s.ctx)
	s.Require().NoError(err)
	s.Len(infos, 4)

	input.ClientCertificateRequired = true
	s.expectAudit(nil)
	updated, err := s.service.UpdateSMLInfo(s.ctx, created.ID, input)
	s.Require().NoError(err)
	s.True(updated.ClientCertificateRequired)
	s.Equal(audit.ActionSMLInfoUpdate, s.events[1].Action)

	s.expectAudit(nil)
	s.Require().NoError(s.service.DeleteSMLInfo(s.ctx, created.ID))
	s.Equal(audit.ActionSMLInfoDelete, s.events[2].Action)

	_, err = s.service.GetSMLInfo(s.ctx, created.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *WorkflowSuite) TestSMLInfoErrors() {
	s.Run("invalid input is a validation error", func() {
		_, err := s.service.CreateSMLInfo(s.ctx, SMLInfoInput{DisplayName: "x", DNSZone: "zone", ManagementServiceURL: "ftp://x"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("update of unknown SML", func() {
		_, err := s.service.UpdateSMLInfo(s.ctx, "missing", SMLInfoInput{
			DisplayName: "x", DNSZone: "zone", ManagementServiceURL: "https://x",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("delete of unknown SML", func() {
		err := s.service.DeleteSMLInfo(s.ctx, "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("the configured SML cannot be deleted", func() {
		err := s.service.DeleteSMLInfo(s.ctx, "digittest")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *WorkflowSuite) TestSMLInfoChangesDropCachedCapabilities() {
	cache := mocks.NewMockCapabilityCache(s.ctrl)
	s.rebuild(WithCapabilityCache(cache))
	cache.EXPECT().Invalidate(gomock.Any(), "").Return(nil).Times(3)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	created, err := s.service.CreateSMLInfo(s.ctx, SMLInfoInput{
		DisplayName: "SML-staging", DNSZone: "staging.example.org", ManagementServiceURL: "https://sml.staging.example.org",
	})
	s.Require().NoError(err)

	_, err = s.service.UpdateSMLInfo(s.ctx, "local", SMLInfoInput{
		DisplayName: "SML-local", DNSZone: "smj.localhost", ManagementServiceURL: "http://localhost:8081",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteSMLInfo(s.ctx, created.ID))
}

func (s *WorkflowSuite) TestSMLInfoRejectedChangeKeepsCache() {
	cache := mocks.NewMockCapabilityCache(s.ctrl)
	s.rebuild(WithCapabilityCache(cache))

	err := s.service.DeleteSMLInfo(s.ctx, "does-not-exist")
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}
