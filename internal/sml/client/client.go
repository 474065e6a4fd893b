// Package client talks SOAP to an SML: it creates, updates and deletes the
// publisher registration of this SMP and schedules certificate changes.
// Calls are synchronous and never retried.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"smpadmin/internal/sml/certificate"
	"smpadmin/internal/sml/metrics"
	"smpadmin/internal/sml/models"
)

// Operation names used in errors, spans and metrics.
const (
	OpCreate                   = "create"
	OpUpdate                   = "update"
	OpDelete                   = "delete"
	OpPrepareChangeCertificate = "prepare_change_certificate"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
)

// KeyProvider supplies the mutual TLS configuration for https SMLs.
type KeyProvider interface {
	TLSConfig() (*tls.Config, error)
}

// Client is an SML SOAP caller. It is safe for concurrent use.
type Client struct {
	keys              KeyProvider
	logger            *slog.Logger
	metrics           *metrics.Metrics
	tracer            trace.Tracer
	connectionTimeout time.Duration
	requestTimeout    time.Duration
	plain             *http.Client

	secureOnce     sync.Once
	secure         *http.Client
	secureLoopback *http.Client
	secureErr      error
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// WithTimeouts sets the TCP connect timeout and the overall request
// timeout. Zero values keep the 30 second default.
func WithTimeouts(connection, request time.Duration) Option {
	return func(c *Client) {
		if connection > 0 {
			c.connectionTimeout = connection
		}
		if request > 0 {
			c.requestTimeout = request
		}
	}
}

// New creates a client. keys may be nil when only plain http SMLs are used.
func New(keys KeyProvider, opts ...Option) *Client {
	c := &Client{
		keys:              keys,
		logger:            slog.Default(),
		tracer:            otel.Tracer("smpadmin/internal/sml/client"),
		connectionTimeout: defaultTimeout,
		requestTimeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.plain = c.httpClient(nil)
	return c
}

// Register creates the publisher entry of smpID at the SML.
func (c *Client) Register(ctx context.Context, sml models.SMLInfo, smpID, physicalAddress, logicalAddress string) error {
	payload := createServiceMetadataPublisher{
		PublisherEndpoint: publisherEndpoint{LogicalAddress: logicalAddress, PhysicalAddress: physicalAddress},
		SMPID:             smpID,
	}
	return c.call(ctx, OpCreate, sml.ManageSMPEndpoint(), soapActionCreate, payload,
		attribute.String("smp.id", smpID))
}

// Update replaces the addresses of an existing publisher entry.
func (c *Client) Update(ctx context.Context, sml models.SMLInfo, smpID, physicalAddress, logicalAddress string) error {
	payload := updateServiceMetadataPublisher{
		PublisherEndpoint: publisherEndpoint{LogicalAddress: logicalAddress, PhysicalAddress: physicalAddress},
		SMPID:             smpID,
	}
	return c.call(ctx, OpUpdate, sml.ManageSMPEndpoint(), soapActionUpdate, payload,
		attribute.String("smp.id", smpID))
}

// Unregister deletes the publisher entry. Every participant registered
// through this SMP becomes unreachable.
func (c *Client) Unregister(ctx context.Context, sml models.SMLInfo, smpID string) error {
	return c.call(ctx, OpDelete, sml.ManageSMPEndpoint(), soapActionDelete,
		deleteServiceMetadataPublisher{SMPID: smpID},
		attribute.String("smp.id", smpID))
}

// PrepareCertificateChange schedules the swap to certificatePEM at the SML.
// Only BDMSL based SMLs offer this operation. A nil migrationDate lets the
// SML use the certificate's notBefore.
func (c *Client) PrepareCertificateChange(ctx context.Context, sml models.SMLInfo, certificatePEM string, migrationDate *certificate.Date) error {
	payload := prepareChangeCertificate{NewCertificatePublicKey: certificatePEM}
	if migrationDate != nil {
		payload.MigrationDate = migrationDate.String()
	}
	return c.call(ctx, OpPrepareChangeCertificate, sml.BDMSLEndpoint(), soapActionPrepare, payload,
		attribute.String("migration.date", payload.MigrationDate))
}

func (c *Client) call(ctx context.Context, operation, endpoint, soapAction string, payload any, attrs ...attribute.KeyValue) (err error) {
	ctx, span := c.tracer.Start(ctx, "sml."+operation, trace.WithSpanKind(trace.SpanKindClient))
	start := time.Now()
	defer func() {
		category := "ok"
		if err != nil {
			category = string(GetCategory(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, category)
		}
		c.metrics.ObserveCall(operation, category, time.Since(start))
		span.End()
	}()
	if span.IsRecording() {
		span.SetAttributes(append(attrs, attribute.String("sml.endpoint", endpoint))...)
	}

	newErr := func(category ErrorCategory, msg string, underlying error) *TransportError {
		return &TransportError{Category: category, Operation: operation, Endpoint: endpoint, Message: msg, Underlying: underlying}
	}

	httpClient, err := c.clientFor(endpoint)
	if err != nil {
		return newErr(ErrorInternal, "failed to prepare TLS for SML access", err)
	}

	body, err := marshalEnvelope(payload)
	if err != nil {
		return newErr(ErrorInternal, "failed to encode SOAP request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return newErr(ErrorInternal, "failed to build SOAP request", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"`+soapAction+`"`)

	c.logger.InfoContext(ctx, "performing SML call", "operation", operation, "endpoint", endpoint)

	resp, err := httpClient.Do(req)
	if err != nil {
		return newErr(ErrorNetwork, "SML call failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newErr(ErrorNetwork, "failed to read SML response", err)
	}

	var envelope responseEnvelope
	parseErr := xml.Unmarshal(raw, &envelope)
	if parseErr == nil && envelope.Body.Fault != nil {
		fault := envelope.Body.Fault
		te := newErr(fault.category(), fault.message(), nil)
		te.FaultCode = fault.faultName()
		te.StatusCode = resp.StatusCode
		return te
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		te := newErr(ErrorAuthentication, fmt.Sprintf("SML rejected the client certificate (HTTP %d)", resp.StatusCode), nil)
		te.StatusCode = resp.StatusCode
		return te
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		te := newErr(ErrorRemoteFault, fmt.Sprintf("SML answered HTTP %d", resp.StatusCode), nil)
		te.StatusCode = resp.StatusCode
		return te
	case len(bytes.TrimSpace(raw)) > 0 && parseErr != nil:
		return newErr(ErrorRemoteFault, "SML returned a malformed SOAP response", parseErr)
	}

	c.logger.InfoContext(ctx, "SML call succeeded", "operation", operation, "endpoint", endpoint,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// clientFor picks the transport for endpoint. Plain http endpoints are
// local test SMLs and get no client certificate.
func (c *Client) clientFor(endpoint string) (*http.Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return c.plain, nil
	}
	c.secureOnce.Do(c.initSecure)
	if c.secureErr != nil {
		return nil, c.secureErr
	}
	if isLoopback(u.Hostname()) {
		return c.secureLoopback, nil
	}
	return c.secure, nil
}

func (c *Client) initSecure() {
	if c.keys == nil {
		c.secureErr = errors.New("no key material configured")
		return
	}
	base, err := c.keys.TLSConfig()
	if err != nil {
		c.secureErr = err
		return
	}
	c.secure = c.httpClient(base.Clone())

	loopback := base.Clone()
	relaxHostnameCheck(loopback)
	c.secureLoopback = c.httpClient(loopback)
}

func (c *Client) httpClient(tlsConfig *tls.Config) *http.Client {
	dialer := &net.Dialer{Timeout: c.connectionTimeout}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: c.connectionTimeout,
		MaxIdleConns:        4,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: c.requestTimeout}
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// relaxHostnameCheck keeps chain verification but accepts any host name,
// for SMLs running on the local machine.
func relaxHostnameCheck(cfg *tls.Config) {
	roots := cfg.RootCAs
	cfg.InsecureSkipVerify = true
	cfg.VerifyConnection = func(cs tls.ConnectionState) error {
		if len(cs.PeerCertificates) == 0 {
			return errors.New("server presented no certificate")
		}
		intermediates := x509.NewCertPool()
		for _, cert := range cs.PeerCertificates[1:] {
			intermediates.AddCert(cert)
		}
		_, err := cs.PeerCertificates[0].Verify(x509.VerifyOptions{
			Roots:         roots,
			Intermediates: intermediates,
		})
		return err
	}
}
