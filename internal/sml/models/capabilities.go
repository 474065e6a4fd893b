package models

import "time"

// Capabilities is the pre-flight view of which registration actions can be
// offered right now. It is advisory: the workflow re-checks what it needs.
type Capabilities struct {
	SMPID         string `json:"smp_id"`
	SMLConfigured bool   `json:"sml_configured"`
	SMLID         string `json:"sml_id,omitempty"`

	KeystoreValid bool   `json:"keystore_valid"`
	KeystoreError string `json:"keystore_error,omitempty"`

	CertificateNotBefore   *time.Time `json:"certificate_not_before,omitempty"`
	CertificateNotAfter    *time.Time `json:"certificate_not_after,omitempty"`
	CertificateExpired     bool       `json:"certificate_expired"`
	CertificateNotYetValid bool       `json:"certificate_not_yet_valid"`

	CanPrepareCertificateUpdate bool `json:"can_prepare_certificate_update"`

	// PublisherDNSName is the name the configured SML publishes for this SMP.
	// AlreadyRegistered reports whether it currently resolves.
	PublisherDNSName  string `json:"publisher_dns_name,omitempty"`
	AlreadyRegistered bool   `json:"already_registered"`

	CheckedAt time.Time `json:"checked_at"`
}
