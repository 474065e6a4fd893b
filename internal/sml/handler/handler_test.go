package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"smpadmin/internal/keystore"
	"smpadmin/internal/sml/client"
	"smpadmin/internal/sml/models"
	"smpadmin/internal/sml/service"
	"smpadmin/internal/sml/service/mocks"
	"smpadmin/internal/sml/store"
	"smpadmin/pkg/platform/audit/publisher"
	auditmemory "smpadmin/pkg/platform/audit/store/memory"
	"smpadmin/pkg/platform/middleware/admin"
	"smpadmin/pkg/testutil"
)

const adminToken = "secret-token"

type fixture struct {
	router http.Handler
	client *mocks.MockSMLClient
	keys   *mocks.MockKeyManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		client: mocks.NewMockSMLClient(ctrl),
		keys:   mocks.NewMockKeyManager(ctrl),
	}
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().LookupHost(gomock.Any(), gomock.Any()).Return(nil, errors.New("no such host")).AnyTimes()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	audits := publisher.NewPublisher(auditmemory.NewInMemoryStore())
	svc, err := service.New(f.client, store.NewInMemory(store.WellKnown()...), f.keys, service.Settings{
		SMPID:           "SMP-1",
		PhysicalAddress: "10.0.0.1",
		LogicalAddress:  "http://smp.example.org",
		RestType:        "peppol",
		DefaultSMLID:    "digittest",
	}, service.WithLogger(logger), service.WithAuditPublisher(audits), service.WithResolver(resolver))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(admin.RequireAdminToken(adminToken, logger))
	New(svc, audits, logger).Register(r)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.WithAdminToken(testutil.NewJSONRequest(t, method, path, body), adminToken)
	req.Header.Set(admin.HeaderAdminActor, "alice")
	return testutil.DoRequest(f.router, req)
}

func TestAdminTokenRequired(t *testing.T) {
	f := newFixture(t)
	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/admin/sml/endpoints"))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestRegisterAndAuditTrail(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().Register(gomock.Any(), gomock.Any(), "SMP-1", "10.0.0.1", "https://smp.example.org").Return(nil)

	rr := f.do(t, http.MethodPost, "/admin/sml/registration", map[string]string{
		"sml_id":          "digittest",
		"logical_address": " https://smp.example.org ",
	})
	testutil.AssertStatus(t, rr, http.StatusOK)
	outcome := testutil.UnmarshalResponse[models.Outcome](t, rr)
	assert.True(t, outcome.Success)
	assert.Equal(t, "smp-sml-create", outcome.Action)
	assert.NotEmpty(t, outcome.Details)

	rr = f.do(t, http.MethodGet, "/admin/audit?limit=10", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	events := testutil.UnmarshalResponse[AuditListResponse](t, rr)
	require.Len(t, events.Events, 1)
	e := events.Events[0]
	assert.Equal(t, "smp-sml-create", e.Action)
	assert.Equal(t, "compliance", e.Category)
	assert.Equal(t, "SMP-1", e.Subject)
	assert.Equal(t, "alice", e.ActorID)
	assert.True(t, e.Success)
}

func TestRegisterValidationError(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/admin/sml/registration", map[string]string{
		"sml_id":          "digittest",
		"logical_address": "ftp://smp.example.org",
	})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	body := testutil.UnmarshalErrorResponse(t, rr)
	assert.Equal(t, "validation_error", body["error"])
	detail, ok := body["detail"].([]any)
	require.True(t, ok, "detail should list field errors: %v", body)
	require.Len(t, detail, 1)
	first := detail[0].(map[string]any)
	assert.Equal(t, "logical_address", first["field"])
	assert.Equal(t, "unsupported_scheme", first["code"])
}

func TestUpdateFailureOutcome(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&client.TransportError{Category: client.ErrorAuthentication, FaultCode: "UnauthorizedFault", Message: "denied"})

	rr := f.do(t, http.MethodPut, "/admin/sml/registration", map[string]string{"sml_id": "digittest"})
	testutil.AssertStatus(t, rr, http.StatusOK)
	outcome := testutil.UnmarshalResponse[models.Outcome](t, rr)
	assert.False(t, outcome.Success)
	require.NotNil(t, outcome.Cause)
	assert.Equal(t, "UnauthorizedFault", outcome.Cause.Class)
}

func TestUnregisterWithQueryParameter(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().Unregister(gomock.Any(), gomock.Any(), "SMP-1").
		DoAndReturn(func(_ context.Context, sml models.SMLInfo, _ string) error {
			assert.Equal(t, "digitprod", sml.ID)
			return nil
		})

	rr := f.do(t, http.MethodDelete, "/admin/sml/registration?sml_id=digitprod", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "success", true)
}

func TestCertificateUpdateUnavailable(t *testing.T) {
	f := newFixture(t)
	f.keys.EXPECT().IsValid().Return(false).AnyTimes()
	f.keys.EXPECT().CertificateStatus(gomock.Any()).Return(keystore.Status{}, false).AnyTimes()

	rr := f.do(t, http.MethodPost, "/admin/sml/certificate", map[string]string{"public_key": "x"})
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
}

func TestCapabilities(t *testing.T) {
	f := newFixture(t)
	f.keys.EXPECT().IsValid().Return(true).AnyTimes()
	f.keys.EXPECT().InitError().Return(nil).AnyTimes()
	f.keys.EXPECT().CertificateStatus(gomock.Any()).Return(keystore.Status{}, false).AnyTimes()

	rr := f.do(t, http.MethodGet, "/admin/sml/capabilities", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	caps := testutil.UnmarshalResponse[models.Capabilities](t, rr)
	assert.True(t, caps.SMLConfigured)
	assert.True(t, caps.CanPrepareCertificateUpdate)
	assert.Equal(t, "SMP-1.acc.edelivery.tech.ec.europa.eu", caps.PublisherDNSName)
}

func TestSelectable(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/admin/sml/selectable", nil)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")

	rr = f.do(t, http.MethodGet, "/admin/sml/selectable?action=smp-sml-create", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[SelectableResponse](t, rr)
	assert.Len(t, resp.SMLs, 3)
}

func TestSMLEndpointsCRUD(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/admin/sml/endpoints", map[string]any{"dns_zone": "zone.example.org"})
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")

	rr = f.do(t, http.MethodPost, "/admin/sml/endpoints", map[string]any{
		"display_name":           "Staging",
		"dns_zone":               "staging.example.org",
		"management_service_url": "https://sml.staging.example.org",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[models.SMLInfo](t, rr)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.DefaultURLSuffixManageSMP, created.URLSuffixManageSMP)

	rr = f.do(t, http.MethodGet, "/admin/sml/endpoints/"+created.ID, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = f.do(t, http.MethodPut, "/admin/sml/endpoints/"+created.ID, map[string]any{
		"display_name":                "Staging 2",
		"dns_zone":                    "staging.example.org",
		"management_service_url":      "https://sml.staging.example.org",
		"client_certificate_required": true,
	})
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "display_name", "Staging 2")

	rr = f.do(t, http.MethodGet, "/admin/sml/endpoints", nil)
	list := testutil.UnmarshalResponse[SMLListResponse](t, rr)
	assert.Len(t, list.SMLs, 4)

	rr = f.do(t, http.MethodDelete, "/admin/sml/endpoints/"+created.ID, nil)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = f.do(t, http.MethodGet, "/admin/sml/endpoints/"+created.ID, nil)
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = f.do(t, http.MethodDelete, "/admin/sml/endpoints/digittest", nil)
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
}

func TestAuditLimit(t *testing.T) {
	f := newFixture(t)
	for _, limit := range []string{"0", "-1", "abc"} {
		rr := f.do(t, http.MethodGet, "/admin/audit?limit="+limit, nil)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	}
	rr := f.do(t, http.MethodGet, "/admin/audit", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "events", []any{})
}
