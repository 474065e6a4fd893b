// Package certificate checks a replacement SMP certificate and its optional
// migration date against the certificate's own validity window.
//
// All comparisons are made on calendar dates. Validation is pure: it reads
// nothing but its arguments.
package certificate

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
)

const (
	BeginCertificate = "-----BEGIN CERTIFICATE-----"
	EndCertificate   = "-----END CERTIFICATE-----"
)

// Warning is advisory information attached to a successful validation.
type Warning string

// WarningNotYetValid means the certificate's notBefore is after today.
const WarningNotYetValid Warning = "not_yet_valid"

// Request is the raw user input of a certificate migration.
type Request struct {
	MigrationDate  string
	CertificatePEM string
}

// ValidatedMigration is the result of a successful validation.
type ValidatedMigration struct {
	Certificate    *x509.Certificate
	CertificatePEM string
	// MigrationDate is the date as supplied, nil when none was given.
	MigrationDate *Date
	// EffectiveDate is MigrationDate or, when absent, NotBefore.
	EffectiveDate Date
	NotBefore     Date
	NotAfter      Date
	Issuer        string
	Subject       string
	Warnings      []Warning
}

// HasWarning reports whether w was raised.
func (v *ValidatedMigration) HasWarning(w Warning) bool {
	for _, x := range v.Warnings {
		if x == w {
			return true
		}
	}
	return false
}

// ValidateRequest parses the raw migration date and validates the request.
func ValidateRequest(now Date, req Request) (*ValidatedMigration, FieldErrors) {
	migrationDate, err := ParseDate(req.MigrationDate)
	if err != nil {
		var errs FieldErrors
		errs.Add(FieldMigrationDate, CodeInvalidDate,
			"The provided certificate migration date '"+strings.TrimSpace(req.MigrationDate)+"' is invalid!")
		_, certErrs := parseCandidate(now, req.CertificatePEM)
		return nil, append(errs, certErrs...)
	}
	return Validate(now, migrationDate, req.CertificatePEM)
}

// Validate checks certificatePEM and migrationDate against now. Either a
// migration or a non-empty error list is returned, never both.
func Validate(now Date, migrationDate *Date, certificatePEM string) (*ValidatedMigration, FieldErrors) {
	var errs FieldErrors

	if migrationDate != nil && migrationDate.Compare(now) <= 0 {
		errs.Add(FieldMigrationDate, CodeDateInPast, "The certificate migration date must be in the future!")
	}

	cert, certErrs := parseCandidate(now, certificatePEM)
	errs = append(errs, certErrs...)

	var notBefore, notAfter Date
	if cert != nil {
		notBefore = DateOf(cert.NotBefore)
		notAfter = DateOf(cert.NotAfter)

		if migrationDate != nil {
			if migrationDate.Before(notBefore) {
				errs.Add(FieldMigrationDate, CodeDateOutOfWindow,
					"The provided certificate migration date "+migrationDate.String()+
						" must not be before the certificate NotBefore date "+notBefore.String()+"!")
			}
			if migrationDate.After(notAfter) {
				errs.Add(FieldMigrationDate, CodeDateOutOfWindow,
					"The provided certificate migration date "+migrationDate.String()+
						" must not be after the certificate NotAfter date "+notAfter.String()+"!")
			}
		} else if notBefore.Compare(now) <= 0 {
			errs.Add(FieldPublicKey, CodeEffectiveDateInPast,
				"The effective certificate migration date ("+notBefore.String()+
					" - taken from the new public certificate) must be in the future!")
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	effective := notBefore
	if migrationDate != nil {
		effective = *migrationDate
	}
	result := &ValidatedMigration{
		Certificate:    cert,
		CertificatePEM: strings.TrimSpace(certificatePEM),
		MigrationDate:  migrationDate,
		EffectiveDate:  effective,
		NotBefore:      notBefore,
		NotAfter:       notAfter,
		Issuer:         cert.Issuer.String(),
		Subject:        cert.Subject.String(),
	}
	if notBefore.After(now) {
		result.Warnings = append(result.Warnings, WarningNotYetValid)
	}
	return result, nil
}

// parseCandidate decodes the certificate text. The returned certificate is
// nil when it is missing, unparseable or expired; window checks only apply
// to a non-nil certificate.
func parseCandidate(now Date, certificatePEM string) (*x509.Certificate, FieldErrors) {
	var errs FieldErrors
	text := strings.TrimSpace(certificatePEM)
	if text == "" {
		errs.Add(FieldPublicKey, CodeMissingCertificate, "A new public certificate must be provided.")
		return nil, errs
	}

	cert, err := ParseCertificate(text)
	if err != nil {
		errs.Add(FieldPublicKey, CodeParseError, "The provided public certificate cannot be parsed as a X.509 certificate.")
		return nil, errs
	}

	if DateOf(cert.NotAfter).Before(now) {
		errs.Add(FieldPublicKey, CodeExpiredCertificate, "The provided public certificate is already expired!")
		cert = nil
	}
	if !strings.HasPrefix(text, BeginCertificate) {
		errs.Add(FieldPublicKey, CodePEMArmor,
			"The provided public certificate value must start with '"+BeginCertificate+"' (without the quotes)")
	}
	if !strings.HasSuffix(text, EndCertificate) {
		errs.Add(FieldPublicKey, CodePEMArmor,
			"The provided public certificate value must end with '"+EndCertificate+"' (without the quotes)")
	}
	return cert, errs
}

// ParseCertificate decodes a PEM certificate. Bare base64 DER without the
// armor lines is accepted as well.
func ParseCertificate(text string) (*x509.Certificate, error) {
	text = strings.TrimSpace(text)
	if block, _ := pem.Decode([]byte(text)); block != nil {
		return x509.ParseCertificate(block.Bytes)
	}
	der, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return nil, err
	}
	return x509.ParseCertificate(der)
}
