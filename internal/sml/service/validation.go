package service

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"smpadmin/internal/platform/config"
	"smpadmin/internal/sml/certificate"
	"smpadmin/internal/sml/models"
	"smpadmin/pkg/platform/sentinel"
	dErrors "smpadmin/pkg/domain-errors"
)

// Form fields reported by workflow validation, next to the certificate
// fields of package certificate.
const (
	FieldSML             = "sml_id"
	FieldPhysicalAddress = "physical_address"
	FieldLogicalAddress  = "logical_address"
)

const (
	CodeRequired          certificate.Code = "required"
	CodeUnknownSML        certificate.Code = "unknown_sml"
	CodeSMLNotSelectable  certificate.Code = "sml_not_selectable"
	CodeNotIPv4           certificate.Code = "not_ipv4"
	CodeInvalidURL        certificate.Code = "invalid_url"
	CodeUnsupportedScheme certificate.Code = "unsupported_scheme"
	CodeInvalidPort       certificate.Code = "invalid_port"
	CodeInvalidPath       certificate.Code = "invalid_path"
)

// validationError wraps accumulated field errors so that both
// errors.As(err, *certificate.FieldErrors) and dErrors.DetailOf work.
func validationError(errs certificate.FieldErrors) error {
	return &dErrors.Error{
		Code:    dErrors.CodeValidation,
		Message: "input validation failed",
		Err:     errs,
		Detail:  errs,
	}
}

// resolveSML loads the SML selected by id. requireClientCert applies the
// selection predicate of update and unregister.
func (s *Service) resolveSML(ctx context.Context, id string, requireClientCert bool, errs *certificate.FieldErrors) (*models.SMLInfo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		errs.Add(FieldSML, CodeRequired, "A valid SML must be selected!")
		return nil, nil
	}
	info, err := s.smls.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			errs.Add(FieldSML, CodeUnknownSML, "A valid SML must be selected!")
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load SML")
	}
	if requireClientCert && !info.ClientCertificateRequired {
		errs.Add(FieldSML, CodeSMLNotSelectable, "The SML '"+info.DisplayName+"' cannot be selected for this action!")
		return nil, nil
	}
	return info, nil
}

// validatePhysicalAddress accepts dotted-quad IPv4 addresses only.
func validatePhysicalAddress(addr string, errs *certificate.FieldErrors) {
	if addr == "" {
		errs.Add(FieldPhysicalAddress, CodeRequired, "A physical address must be provided!")
		return
	}
	if !isIPv4(addr) {
		errs.Add(FieldPhysicalAddress, CodeNotIPv4, "The provided physical address does not seem to be an IPv4 address!")
	}
}

func isIPv4(addr string) bool {
	if strings.Count(addr, ".") != 3 || strings.Contains(addr, ":") {
		return false
	}
	ip := net.ParseIP(addr)
	return ip != nil && ip.To4() != nil
}

// peppolConstraints reports whether restType restricts the logical address
// to plain http on port 80 in the root path.
func peppolConstraints(restType string) bool {
	return restType == "" || restType == config.RestTypePeppol
}

// validateLogicalAddress checks the public URL of the SMP. strict adds the
// peppol REST type constraints on scheme, port and path.
func validateLogicalAddress(addr string, strict bool, errs *certificate.FieldErrors) {
	if addr == "" {
		errs.Add(FieldLogicalAddress, CodeRequired, "A logical address must be provided in the form 'http://smp.example.org'!")
		return
	}
	u, err := url.Parse(addr)
	if err != nil || u.Scheme == "" || u.Host == "" || u.Opaque != "" {
		errs.Add(FieldLogicalAddress, CodeInvalidURL,
			"The provided logical address is not a URL. Please use the form 'http://smp.example.org'")
		return
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case strict && scheme != "http":
		errs.Add(FieldLogicalAddress, CodeUnsupportedScheme,
			"The provided logical address must use the 'http' protocol and may not use the '"+u.Scheme+
				"' protocol. Peppol SMPs are only reachable over plain http.")
	case !strict && scheme != "http" && scheme != "https":
		errs.Add(FieldLogicalAddress, CodeUnsupportedScheme,
			"The provided logical address must use the 'http' or the 'https' protocol and may not use the '"+u.Scheme+"' protocol.")
	}
	if !strict {
		return
	}
	if port := u.Port(); port != "" && port != "80" {
		errs.Add(FieldLogicalAddress, CodeInvalidPort,
			"The provided logical address must use the default http port 80 and not port "+port+
				". Peppol SMPs must listen on port 80.")
	}
	if u.Path != "" && u.Path != "/" {
		errs.Add(FieldLogicalAddress, CodeInvalidPath,
			"The provided logical address may not contain a path ("+u.Path+
				") because Peppol SMPs must be served from the root (/) path.")
	}
}
