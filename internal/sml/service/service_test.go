package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SMLClient,SMLInfoStore,KeyManager,AuditPublisher,CapabilityCache,Resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"smpadmin/internal/keystore"
	"smpadmin/internal/sml/certificate"
	"smpadmin/internal/sml/client"
	"smpadmin/internal/sml/models"
	"smpadmin/internal/sml/service/mocks"
	"smpadmin/internal/sml/store"
	dErrors "smpadmin/pkg/domain-errors"
	audit "smpadmin/pkg/platform/audit"
	"smpadmin/pkg/testutil"
)

// =============================================================================
// Registration Workflow Test Suite
// =============================================================================
// The SML client and audit sink are mocked with strict expectations, so any
// call not set up by a test fails it. That is how "no network call and no
// audit record on validation failure" is asserted.

type WorkflowSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	client   *mocks.MockSMLClient
	keys     *mocks.MockKeyManager
	auditor  *mocks.MockAuditPublisher
	resolver *mocks.MockResolver
	smls     *store.InMemoryStore
	settings Settings
	service  *Service
	events   []audit.Event
	now      time.Time
	ctx      context.Context
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.client = mocks.NewMockSMLClient(s.ctrl)
	s.keys = mocks.NewMockKeyManager(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.resolver = mocks.NewMockResolver(s.ctrl)
	s.smls = store.NewInMemory(store.WellKnown()...)
	s.events = nil
	s.now = time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)
	s.ctx = testutil.ContextAt(s.now)
	s.settings = Settings{
		SMPID:           "SMP-1",
		PhysicalAddress: "10.0.0.1",
		LogicalAddress:  "http://smp.example.org",
		RestType:        "peppol",
		DefaultSMLID:    "digittest",
	}
	s.rebuild()
}

func (s *WorkflowSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *WorkflowSuite) rebuild(opts ...Option) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	all := append([]Option{WithLogger(logger), WithAuditPublisher(s.auditor), WithResolver(s.resolver)}, opts...)
	svc, err := New(s.client, s.smls, s.keys, s.settings, all...)
	s.Require().NoError(err)
	s.service = svc
}

func (s *WorkflowSuite) expectAudit(err error) {
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.events = append(s.events, e)
			return err
		})
}

func (s *WorkflowSuite) expectKeystore(valid bool, status keystore.Status) {
	s.keys.EXPECT().IsValid().Return(valid).AnyTimes()
	s.keys.EXPECT().CertificateStatus(gomock.Any()).Return(status, valid).AnyTimes()
	if valid {
		s.keys.EXPECT().InitError().Return(nil).AnyTimes()
	} else {
		s.keys.EXPECT().InitError().Return(errors.New("keystore is not loaded")).AnyTimes()
	}
}

func (s *WorkflowSuite) smk() models.SMLInfo {
	info, err := s.smls.FindByID(context.Background(), "digittest")
	s.Require().NoError(err)
	return *info
}

func (s *WorkflowSuite) fieldErrors(err error) certificate.FieldErrors {
	s.T().Helper()
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	var errs certificate.FieldErrors
	s.Require().ErrorAs(err, &errs)
	return errs
}

func authFault() error {
	return &client.TransportError{
		Category:  client.ErrorAuthentication,
		Operation: client.OpCreate,
		Endpoint:  "https://acc.edelivery.tech.ec.europa.eu/edelivery-sml/manageservicemetadata",
		FaultCode: "UnauthorizedFault",
		Message:   "certificate not authorized",
	}
}

// =============================================================================
// Constructor
// =============================================================================

func (s *WorkflowSuite) TestNew() {
	s.Run("nil client", func() {
		_, err := New(nil, s.smls, s.keys, s.settings)
		s.ErrorContains(err, "sml client is required")
	})
	s.Run("nil store", func() {
		_, err := New(s.client, nil, s.keys, s.settings)
		s.ErrorContains(err, "sml info store is required")
	})
	s.Run("nil keys", func() {
		_, err := New(s.client, s.smls, nil, s.settings)
		s.ErrorContains(err, "key manager is required")
	})
	s.Run("blank physical address falls back to a local IPv4", func() {
		settings := s.settings
		settings.PhysicalAddress = ""
		svc, err := New(s.client, s.smls, s.keys, settings)
		s.Require().NoError(err)
		s.True(isIPv4(svc.Settings().PhysicalAddress))
	})
}

// =============================================================================
// Register
// =============================================================================

func (s *WorkflowSuite) TestRegister() {
	s.Run("success calls the SML once and audits once", func() {
		s.events = nil
		s.client.EXPECT().Register(gomock.Any(), s.smk(), "SMP-1", "10.0.0.1", "https://smp.example.org").Return(nil)
		s.expectAudit(nil)

		outcome, err := s.service.Register(s.ctx, RegisterInput{SMLID: "digittest", LogicalAddress: "https://smp.example.org"})
		s.Require().NoError(err)
		s.True(outcome.Success)
		s.Equal("Successfully registered SMP 'SMP-1' with physical address '10.0.0.1' and logical address "+
			"'https://smp.example.org' to the SML 'https://acc.edelivery.tech.ec.europa.eu/edelivery-sml'.", outcome.Message)
		s.Nil(outcome.Cause)
		s.Contains(outcome.Details, models.Detail{Label: "DNS name", Value: "SMP-1.acc.edelivery.tech.ec.europa.eu"})

		s.Require().Len(s.events, 1)
		e := s.events[0]
		s.Equal(audit.ActionSMLCreate, e.Action)
		s.Equal("SMP-1", e.Subject)
		s.Equal([]string{"10.0.0.1", "https://smp.example.org", "https://acc.edelivery.tech.ec.europa.eu/edelivery-sml"}, e.Args)
		s.True(e.Success)
	})

	s.Run("blank selection uses the configured SML and logical address", func() {
		s.client.EXPECT().Register(gomock.Any(), s.smk(), "SMP-1", "10.0.0.1", "http://smp.example.org").Return(nil)
		s.expectAudit(nil)

		outcome, err := s.service.Register(s.ctx, RegisterInput{})
		s.Require().NoError(err)
		s.True(outcome.Success)
	})

	s.Run("unsupported scheme is rejected before any call", func() {
		s.events = nil
		_, err := s.service.Register(s.ctx, RegisterInput{SMLID: "digittest", LogicalAddress: "ftp://smp.example.org"})
		errs := s.fieldErrors(err)
		s.Require().Len(errs, 1)
		s.Equal(FieldLogicalAddress, errs[0].Field)
		s.Equal(CodeUnsupportedScheme, errs[0].Code)
		s.Contains(errs[0].Message, "'ftp'")
		s.Empty(s.events)
	})

	s.Run("unknown SML and malformed URL accumulate", func() {
		_, err := s.service.Register(s.ctx, RegisterInput{SMLID: "nope", LogicalAddress: "smp.example.org"})
		errs := s.fieldErrors(err)
		s.Require().Len(errs, 2)
		s.Equal(CodeUnknownSML, errs[0].Code)
		s.Equal("A valid SML must be selected!", errs[0].Message)
		s.Equal(CodeInvalidURL, errs[1].Code)
	})

	s.Run("transport failure becomes a failure outcome", func() {
		s.events = nil
		s.client.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(authFault())
		s.expectAudit(nil)

		outcome, err := s.service.Register(s.ctx, RegisterInput{SMLID: "digittest", LogicalAddress: "http://smp.example.org"})
		s.Require().NoError(err)
		s.False(outcome.Success)
		s.Equal("Error registering SMP 'SMP-1' with physical address '10.0.0.1' and logical address "+
			"'http://smp.example.org' to the SML 'https://acc.edelivery.tech.ec.europa.eu/edelivery-sml'.", outcome.Message)
		s.Require().NotNil(outcome.Cause)
		s.Equal("UnauthorizedFault", outcome.Cause.Class)
		s.Contains(outcome.Cause.Message, "certificate not authorized")
		s.Empty(outcome.Details)

		s.Require().Len(s.events, 1)
		s.False(s.events[0].Success)
		s.Equal("UnauthorizedFault", s.events[0].ErrorClass)
		s.NotEmpty(s.events[0].ErrorMessage)
	})

	s.Run("audit sink failure does not change the outcome", func() {
		s.client.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.expectAudit(errors.New("disk full"))

		outcome, err := s.service.Register(s.ctx, RegisterInput{SMLID: "digittest"})
		s.Require().NoError(err)
		s.True(outcome.Success)
	})
}

func (s *WorkflowSuite) TestRegisterIsNotDeduplicated() {
	s.client.EXPECT().Register(gomock.Any(), gomock.Any(), "SMP-1", gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.expectAudit(nil)
	s.expectAudit(nil)

	for i := 0; i < 2; i++ {
		outcome, err := s.service.Register(s.ctx, RegisterInput{SMLID: "digittest"})
		s.Require().NoError(err)
		s.True(outcome.Success)
	}
	s.Len(s.events, 2)
}

// =============================================================================
// Update
// =============================================================================

func (s *WorkflowSuite) TestUpdate() {
	s.Run("peppol REST type constrains scheme, port and path", func() {
		_, err := s.service.Update(s.ctx, UpdateInput{LogicalAddress: "https://smp.example.org:8443/smp"})
		errs := s.fieldErrors(err).ForField(FieldLogicalAddress)
		s.Require().Len(errs, 3)
		s.Equal(CodeUnsupportedScheme, errs[0].Code)
		s.Equal(CodeInvalidPort, errs[1].Code)
		s.Equal(CodeInvalidPath, errs[2].Code)
	})

	s.Run("explicit port 80 and root path are fine", func() {
		s.client.EXPECT().Update(gomock.Any(), s.smk(), "SMP-1", "10.0.0.9", "http://smp.example.org:80/").Return(nil)
		s.expectAudit(nil)

		outcome, err := s.service.Update(s.ctx, UpdateInput{PhysicalAddress: "10.0.0.9", LogicalAddress: "http://smp.example.org:80/"})
		s.Require().NoError(err)
		s.Equal("Successfully updated SMP 'SMP-1' with physical address '10.0.0.9' and logical address "+
			"'http://smp.example.org:80/' at the SML 'https://acc.edelivery.tech.ec.europa.eu/edelivery-sml'.", outcome.Message)
	})

	s.Run("physical address must be IPv4", func() {
		for _, addr := range []string{"::1", "300.1.1.1", "smp.example.org", "10.0.0", "::ffff:10.0.0.1"} {
			_, err := s.service.Update(s.ctx, UpdateInput{PhysicalAddress: addr})
			errs := s.fieldErrors(err)
			s.Require().Len(errs, 1, addr)
			s.Equal(CodeNotIPv4, errs[0].Code, addr)
			s.Equal("The provided physical address does not seem to be an IPv4 address!", errs[0].Message)
		}
	})

	s.Run("transport failure", func() {
		s.events = nil
		s.client.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&client.TransportError{Category: client.ErrorNetwork, Message: "dial tcp: timeout"})
		s.expectAudit(nil)

		outcome, err := s.service.Update(s.ctx, UpdateInput{})
		s.Require().NoError(err)
		s.False(outcome.Success)
		s.Equal("NetworkError", outcome.Cause.Class)
		s.Require().Len(s.events, 1)
		s.Equal(audit.ActionSMLUpdate, s.events[0].Action)
	})
}

func (s *WorkflowSuite) TestUpdateWithBDXRRestType() {
	s.settings.RestType = "oasis-bdxr-v2"
	s.rebuild()

	s.client.EXPECT().Update(gomock.Any(), gomock.Any(), "SMP-1", "10.0.0.1", "https://smp.example.org:8443/smp").Return(nil)
	s.expectAudit(nil)

	outcome, err := s.service.Update(s.ctx, UpdateInput{LogicalAddress: "https://smp.example.org:8443/smp"})
	s.Require().NoError(err)
	s.True(outcome.Success)
}

func (s *WorkflowSuite) TestUpdateRequiresClientCertSML() {
	s.settings.RequireClientCertSML = true
	s.rebuild()

	_, err := s.service.Update(s.ctx, UpdateInput{SMLID: "local"})
	errs := s.fieldErrors(err)
	s.Require().Len(errs, 1)
	s.Equal(CodeSMLNotSelectable, errs[0].Code)

	selectable, err := s.service.SelectableSMLs(s.ctx, audit.ActionSMLUpdate)
	s.Require().NoError(err)
	for _, info := range selectable {
		s.True(info.ClientCertificateRequired)
	}
	s.Len(selectable, 2)
}

// =============================================================================
// Unregister
// =============================================================================

func (s *WorkflowSuite) TestUnregister() {
	s.Run("success audits smp-sml-delete", func() {
		s.events = nil
		s.client.EXPECT().Unregister(gomock.Any(), s.smk(), "SMP-1").Return(nil)
		s.expectAudit(nil)

		outcome, err := s.service.Unregister(s.ctx, UnregisterInput{SMLID: "digittest"})
		s.Require().NoError(err)
		s.True(outcome.Success)
		s.Equal("Successfully deleted SMP 'SMP-1' from the SML 'https://acc.edelivery.tech.ec.europa.eu/edelivery-sml'.", outcome.Message)

		s.Require().Len(s.events, 1)
		s.Equal(audit.ActionSMLDelete, s.events[0].Action)
		s.Equal([]string{"https://acc.edelivery.tech.ec.europa.eu/edelivery-sml"}, s.events[0].Args)
		s.True(s.events[0].Success)
	})

	s.Run("unknown SML", func() {
		_, err := s.service.Unregister(s.ctx, UnregisterInput{SMLID: "gone"})
		errs := s.fieldErrors(err)
		s.Equal(FieldSML, errs[0].Field)
	})

	s.Run("remote fault", func() {
		s.client.EXPECT().Unregister(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&client.TransportError{Category: client.ErrorNotFound, FaultCode: "NotFoundFault", Message: "unknown SMP"})
		s.expectAudit(nil)

		outcome, err := s.service.Unregister(s.ctx, UnregisterInput{SMLID: "digittest"})
		s.Require().NoError(err)
		s.False(outcome.Success)
		s.Equal("Error deleting SMP 'SMP-1' from the SML 'https://acc.edelivery.tech.ec.europa.eu/edelivery-sml'.", outcome.Message)
		s.Equal("NotFoundFault", outcome.Cause.Class)
	})
}

func (s *WorkflowSuite) TestStoreFailureIsInternal() {
	smls := mocks.NewMockSMLInfoStore(s.ctrl)
	smls.EXPECT().FindByID(gomock.Any(), "digittest").Return(nil, errors.New("connection refused"))
	svc, err := New(s.client, smls, s.keys, s.settings, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)

	_, err = svc.Unregister(s.ctx, UnregisterInput{})
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
}

// =============================================================================
// PrepareCertificateUpdate
// =============================================================================

func (s *WorkflowSuite) validKeystore() {
	s.expectKeystore(true, keystore.Status{
		NotBefore: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
}

func (s *WorkflowSuite) TestPrepareCertificateUpdate() {
	s.validKeystore()
	cert := testutil.NewCertificate(s.T(), "SMP-NEW", testutil.Day(2025, 6, 1), testutil.Day(2026, 6, 1))

	s.Run("without migration date the certificate notBefore is used", func() {
		s.events = nil
		var sent *certificate.Date
		s.client.EXPECT().PrepareCertificateChange(gomock.Any(), s.smk(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ models.SMLInfo, _ string, d *certificate.Date) error {
				sent = d
				return nil
			})
		s.expectAudit(nil)

		outcome, err := s.service.PrepareCertificateUpdate(s.ctx, CertificateUpdateInput{PublicKey: cert.PEM})
		s.Require().NoError(err)
		s.True(outcome.Success)
		s.Require().NotNil(sent)
		s.Equal("2025-06-01", sent.String())
		s.Equal("Successfully prepared migration of SMP certificate at SML "+
			"'https://acc.edelivery.tech.ec.europa.eu/edelivery-sml' to be exchanged at 2025-06-01.", outcome.Message)
		s.Contains(outcome.Details, models.Detail{Label: "Not after", Value: "2026-06-01"})
		s.Contains(outcome.Details, models.Detail{Label: "Subject", Value: cert.Cert.Subject.String()})
		s.Equal([]string{string(certificate.WarningNotYetValid)}, outcome.Warnings)

		s.Require().Len(s.events, 1)
		s.Equal(audit.ActionSMLUpdateCert, s.events[0].Action)
		s.Equal("", s.events[0].Args[2])
	})

	s.Run("explicit migration date inside the window", func() {
		s.events = nil
		var sent *certificate.Date
		s.client.EXPECT().PrepareCertificateChange(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ models.SMLInfo, _ string, d *certificate.Date) error {
				sent = d
				return nil
			})
		s.expectAudit(nil)

		outcome, err := s.service.PrepareCertificateUpdate(s.ctx, CertificateUpdateInput{MigrationDate: "31.12.2025", PublicKey: cert.PEM})
		s.Require().NoError(err)
		s.True(outcome.Success)
		s.Equal("2025-12-31", sent.String())
		s.Equal("2025-12-31", s.events[0].Args[2])
	})

	s.Run("already valid certificate carries no warning", func() {
		current := testutil.NewCertificate(s.T(), "SMP-CURRENT", testutil.Day(2024, 6, 1), testutil.Day(2026, 6, 1))
		s.client.EXPECT().PrepareCertificateChange(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.expectAudit(nil)

		outcome, err := s.service.PrepareCertificateUpdate(s.ctx, CertificateUpdateInput{MigrationDate: "2025-03-01", PublicKey: current.PEM})
		s.Require().NoError(err)
		s.True(outcome.Success)
		s.Empty(outcome.Warnings)
	})

	s.Run("migration date after notAfter is rejected", func() {
		_, err := s.service.PrepareCertificateUpdate(s.ctx, CertificateUpdateInput{MigrationDate: "2026-07-01", PublicKey: cert.PEM})
		errs := s.fieldErrors(err)
		s.Require().Len(errs, 1)
		s.Equal(certificate.FieldMigrationDate, errs[0].Field)
		s.Equal(certificate.CodeDateOutOfWindow, errs[0].Code)
	})

	s.Run("migration date today is rejected", func() {
		_, err := s.service.PrepareCertificateUpdate(s.ctx, CertificateUpdateInput{MigrationDate: "2025-01-01", PublicKey: cert.PEM})
		errs := s.fieldErrors(err)
		s.True(errs.Has(certificate.CodeDateInPast))
	})

	s.Run("transport failure", func() {
		s.events = nil
		s.client.EXPECT().PrepareCertificateChange(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&client.TransportError{Category: client.ErrorRemoteFault, StatusCode: 500, Message: "boom"})
		s.expectAudit(nil)

		outcome, err := s.service.PrepareCertificateUpdate(s.ctx, CertificateUpdateInput{PublicKey: cert.PEM})
		s.Require().NoError(err)
		s.False(outcome.Success)
		s.Equal("Error preparing migration of SMP certificate at SML 'https://acc.edelivery.tech.ec.europa.eu/edelivery-sml'.", outcome.Message)
		s.Equal("HTTPError", outcome.Cause.Class)
		s.Equal("HTTPError", s.events[0].ErrorClass)
	})
}

func (s *WorkflowSuite) TestPrepareCertificateUpdateUnavailable() {
	cert := testutil.NewCertificate(s.T(), "SMP-NEW", testutil.Day(2025, 6, 1), testutil.Day(2026, 6, 1))
	input := CertificateUpdateInput{PublicKey: cert.PEM}

	s.Run("keystore invalid", func() {
		s.expectKeystore(false, keystore.Status{})
		_, err := s.service.PrepareCertificateUpdate(s.ctx, input)
		s.ErrorIs(err, ErrActionUnavailable)
		s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err))
	})

	s.Run("no SML configured", func() {
		s.settings.DefaultSMLID = ""
		s.rebuild()
		_, err := s.service.PrepareCertificateUpdate(s.ctx, input)
		s.ErrorIs(err, ErrActionUnavailable)
	})
}

func (s *WorkflowSuite) TestPrepareCertificateUpdateWithExpiredLocalCertificate() {
	s.expectKeystore(true, keystore.Status{
		NotBefore: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Expired:   true,
	})
	_, err := s.service.PrepareCertificateUpdate(s.ctx, CertificateUpdateInput{PublicKey: "irrelevant"})
	s.ErrorIs(err, ErrActionUnavailable)

	s.resolver.EXPECT().LookupHost(gomock.Any(), "SMP-1.acc.edelivery.tech.ec.europa.eu").Return(nil, errors.New("no such host"))
	caps, err := s.service.Capabilities(s.ctx)
	s.Require().NoError(err)
	s.True(caps.CertificateExpired)
	s.False(caps.CanPrepareCertificateUpdate)

	selectable, err := s.service.SelectableSMLs(s.ctx, audit.ActionSMLUpdateCert)
	s.Require().NoError(err)
	s.Len(selectable, 1)
}
