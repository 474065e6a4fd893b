package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smpadmin/internal/sml/certificate"
	"smpadmin/internal/sml/models"
	dErrors "smpadmin/pkg/domain-errors"
	audit "smpadmin/pkg/platform/audit"
	"smpadmin/pkg/requestcontext"
)

// RegisterInput selects the SML and the addresses to publish. Blank values
// fall back to the configured defaults.
type RegisterInput struct {
	SMLID           string
	PhysicalAddress string
	LogicalAddress  string
}

// UpdateInput carries the new addresses of an existing registration.
type UpdateInput struct {
	SMLID           string
	PhysicalAddress string
	LogicalAddress  string
}

type UnregisterInput struct {
	SMLID string
}

// CertificateUpdateInput is the raw certificate migration form. MigrationDate
// is optional and may use any format certificate.ParseDate accepts.
type CertificateUpdateInput struct {
	MigrationDate string
	PublicKey     string
}

// Register creates the publisher entry of this SMP at the selected SML.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Outcome, error) {
	const action = audit.ActionSMLCreate

	var errs certificate.FieldErrors
	sml, err := s.resolveSML(ctx, s.smlID(in.SMLID), false, &errs)
	if err != nil {
		return nil, err
	}
	physical := s.orDefault(in.PhysicalAddress, s.settings.PhysicalAddress)
	logical := s.orDefault(in.LogicalAddress, s.settings.LogicalAddress)
	validatePhysicalAddress(physical, &errs)
	validateLogicalAddress(logical, false, &errs)
	if len(errs) > 0 {
		return nil, s.rejected(ctx, action, errs)
	}

	smpID := s.settings.SMPID
	args := []string{physical, logical, sml.ManagementServiceURL}
	if err := s.client.Register(ctx, *sml, smpID, physical, logical); err != nil {
		msg := fmt.Sprintf("Error registering SMP '%s' with physical address '%s' and logical address '%s' to the SML '%s'.",
			smpID, physical, logical, sml.ManagementServiceURL)
		return s.failed(ctx, action, smpID, args, msg, err), nil
	}

	s.invalidateCapabilities(ctx)
	msg := fmt.Sprintf("Successfully registered SMP '%s' with physical address '%s' and logical address '%s' to the SML '%s'.",
		smpID, physical, logical, sml.ManagementServiceURL)
	return s.succeeded(ctx, action, smpID, args, msg,
		models.Detail{Label: "SMP ID", Value: smpID},
		models.Detail{Label: "Physical address", Value: physical},
		models.Detail{Label: "Logical address", Value: logical},
		models.Detail{Label: "SML", Value: sml.ManagementServiceURL},
		models.Detail{Label: "DNS name", Value: sml.PublisherDNSName(smpID)},
	), nil
}

// Update replaces the addresses of this SMP at the selected SML. It must
// only be used when the IP address or host name of the SMP changed.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*models.Outcome, error) {
	const action = audit.ActionSMLUpdate

	var errs certificate.FieldErrors
	sml, err := s.resolveSML(ctx, s.smlID(in.SMLID), s.settings.RequireClientCertSML, &errs)
	if err != nil {
		return nil, err
	}
	physical := s.orDefault(in.PhysicalAddress, s.settings.PhysicalAddress)
	logical := s.orDefault(in.LogicalAddress, s.settings.LogicalAddress)
	validatePhysicalAddress(physical, &errs)
	validateLogicalAddress(logical, peppolConstraints(s.settings.RestType), &errs)
	if len(errs) > 0 {
		return nil, s.rejected(ctx, action, errs)
	}

	smpID := s.settings.SMPID
	args := []string{physical, logical, sml.ManagementServiceURL}
	if err := s.client.Update(ctx, *sml, smpID, physical, logical); err != nil {
		msg := fmt.Sprintf("Error updating SMP '%s' with physical address '%s' and logical address '%s' to the SML '%s'.",
			smpID, physical, logical, sml.ManagementServiceURL)
		return s.failed(ctx, action, smpID, args, msg, err), nil
	}

	s.invalidateCapabilities(ctx)
	msg := fmt.Sprintf("Successfully updated SMP '%s' with physical address '%s' and logical address '%s' at the SML '%s'.",
		smpID, physical, logical, sml.ManagementServiceURL)
	return s.succeeded(ctx, action, smpID, args, msg,
		models.Detail{Label: "SMP ID", Value: smpID},
		models.Detail{Label: "Physical address", Value: physical},
		models.Detail{Label: "Logical address", Value: logical},
		models.Detail{Label: "SML", Value: sml.ManagementServiceURL},
	), nil
}

// Unregister deletes this SMP from the selected SML. All participants
// registered through this SMP stop resolving.
func (s *Service) Unregister(ctx context.Context, in UnregisterInput) (*models.Outcome, error) {
	const action = audit.ActionSMLDelete

	var errs certificate.FieldErrors
	sml, err := s.resolveSML(ctx, s.smlID(in.SMLID), s.settings.RequireClientCertSML, &errs)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, s.rejected(ctx, action, errs)
	}

	smpID := s.settings.SMPID
	args := []string{sml.ManagementServiceURL}
	if err := s.client.Unregister(ctx, *sml, smpID); err != nil {
		msg := fmt.Sprintf("Error deleting SMP '%s' from the SML '%s'.", smpID, sml.ManagementServiceURL)
		return s.failed(ctx, action, smpID, args, msg, err), nil
	}

	s.invalidateCapabilities(ctx)
	msg := fmt.Sprintf("Successfully deleted SMP '%s' from the SML '%s'.", smpID, sml.ManagementServiceURL)
	return s.succeeded(ctx, action, smpID, args, msg,
		models.Detail{Label: "SMP ID", Value: smpID},
		models.Detail{Label: "SML", Value: sml.ManagementServiceURL},
	), nil
}

// PrepareCertificateUpdate announces a new SMP certificate to the configured
// SML. It returns ErrActionUnavailable when no SML is configured or the
// local keystore cannot authenticate the call.
func (s *Service) PrepareCertificateUpdate(ctx context.Context, in CertificateUpdateInput) (*models.Outcome, error) {
	const action = audit.ActionSMLUpdateCert

	now := requestcontext.Now(ctx)
	sml, err := s.certificateUpdateTarget(ctx, now)
	if err != nil {
		return nil, err
	}

	migration, errs := certificate.ValidateRequest(certificate.DateOf(now), certificate.Request{
		MigrationDate:  in.MigrationDate,
		CertificatePEM: in.PublicKey,
	})
	if len(errs) > 0 {
		return nil, s.rejected(ctx, action, errs)
	}

	smpID := s.settings.SMPID
	requested := ""
	if migration.MigrationDate != nil {
		requested = migration.MigrationDate.String()
	}
	args := []string{sml.ManagementServiceURL, migration.CertificatePEM, requested}

	effective := migration.EffectiveDate
	if err := s.client.PrepareCertificateChange(ctx, *sml, migration.CertificatePEM, &effective); err != nil {
		msg := fmt.Sprintf("Error preparing migration of SMP certificate at SML '%s'.", sml.ManagementServiceURL)
		return s.failed(ctx, action, smpID, args, msg, err), nil
	}

	msg := fmt.Sprintf("Successfully prepared migration of SMP certificate at SML '%s' to be exchanged at %s.",
		sml.ManagementServiceURL, effective)
	outcome := s.succeeded(ctx, action, smpID, args, msg,
		models.Detail{Label: "Issuer", Value: migration.Issuer},
		models.Detail{Label: "Subject", Value: migration.Subject},
		models.Detail{Label: "Not before", Value: migration.NotBefore.String()},
		models.Detail{Label: "Not after", Value: migration.NotAfter.String()},
		models.Detail{Label: "Effective date", Value: effective.String()},
	)
	for _, w := range migration.Warnings {
		outcome.Warnings = append(outcome.Warnings, string(w))
	}
	return outcome, nil
}

func (s *Service) smlID(id string) string {
	return s.orDefault(id, s.settings.DefaultSMLID)
}

func (s *Service) orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}

func (s *Service) rejected(ctx context.Context, action audit.Action, errs certificate.FieldErrors) error {
	s.metrics.IncValidationFailure(string(action))
	s.logger.InfoContext(ctx, "sml workflow input rejected",
		"action", action,
		"request_id", requestcontext.RequestID(ctx),
		"errors", errs.Error(),
	)
	return validationError(errs)
}

func (s *Service) succeeded(ctx context.Context, action audit.Action, subject string, args []string, msg string, details ...models.Detail) *models.Outcome {
	s.logger.InfoContext(ctx, msg, "action", action, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncWorkflow(string(action), true)
	s.emit(ctx, audit.Event{Action: action, Subject: subject, Args: args, Success: true})
	return models.Succeeded(string(action), msg, details...)
}

func (s *Service) failed(ctx context.Context, action audit.Action, subject string, args []string, msg string, err error) *models.Outcome {
	cause := causeOf(err)
	s.logger.ErrorContext(ctx, msg,
		"action", action,
		"request_id", requestcontext.RequestID(ctx),
		"error_class", cause.Class,
		"error", err,
	)
	s.metrics.IncWorkflow(string(action), false)
	s.emit(ctx, audit.Event{
		Action:       action,
		Subject:      subject,
		Args:         args,
		Success:      false,
		ErrorClass:   cause.Class,
		ErrorMessage: cause.Message,
	})
	return models.Failed(string(action), msg, cause)
}

// emit writes the audit event. The SML has already been changed at this
// point, so a sink failure is logged and does not alter the outcome.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to write audit event",
			"action", event.Action,
			"subject", event.Subject,
			"error", err,
		)
	}
}

func causeOf(err error) models.Cause {
	var named interface{ ClassName() string }
	if errors.As(err, &named) {
		return models.Cause{Class: named.ClassName(), Message: err.Error()}
	}
	return models.Cause{Class: fmt.Sprintf("%T", err), Message: err.Error()}
}

func unavailable(reason string) error {
	return dErrors.Wrap(ErrActionUnavailable, dErrors.CodeConflict, reason)
}
