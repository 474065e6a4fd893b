package models

import (
	"net/url"
	"strings"

	dErrors "smpadmin/pkg/domain-errors"
)

const (
	// DefaultURLSuffixManageSMP is appended to the management service URL
	// to reach the publisher management endpoint.
	DefaultURLSuffixManageSMP = "/manageservicemetadata"

	// DefaultURLSuffixManageParticipant is appended to reach the
	// participant management endpoint.
	DefaultURLSuffixManageParticipant = "/manageparticipantidentifier"

	// URLSuffixBDMSL is the endpoint of the BDMSL extension service that
	// offers PrepareChangeCertificate.
	URLSuffixBDMSL = "/bdmslservice"
)

// SMLInfo identifies one external SML instance.
//
// Invariants:
//   - ID, DisplayName, DNSZone and ManagementServiceURL are non-empty
//   - ManagementServiceURL is an absolute http(s) URL without trailing slash
//   - DNSZone carries no leading or trailing dot
type SMLInfo struct {
	ID                         string `json:"id"`
	DisplayName                string `json:"display_name"`
	DNSZone                    string `json:"dns_zone"`
	ManagementServiceURL       string `json:"management_service_url"`
	URLSuffixManageSMP         string `json:"url_suffix_manage_smp"`
	URLSuffixManageParticipant string `json:"url_suffix_manage_participant"`
	ClientCertificateRequired  bool   `json:"client_certificate_required"`
}

// NewSMLInfo validates and normalizes an SML endpoint description.
func NewSMLInfo(id, displayName, dnsZone, managementServiceURL, suffixManageSMP, suffixManageParticipant string, clientCertRequired bool) (*SMLInfo, error) {
	id = strings.TrimSpace(id)
	displayName = strings.TrimSpace(displayName)
	dnsZone = strings.Trim(strings.TrimSpace(dnsZone), ".")
	managementServiceURL = strings.TrimRight(strings.TrimSpace(managementServiceURL), "/")

	if id == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "SML id cannot be empty")
	}
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "SML display name cannot be empty")
	}
	if dnsZone == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "SML DNS zone cannot be empty")
	}
	u, err := url.Parse(managementServiceURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "SML management service URL must be an absolute http(s) URL")
	}
	if suffixManageSMP == "" {
		suffixManageSMP = DefaultURLSuffixManageSMP
	}
	if suffixManageParticipant == "" {
		suffixManageParticipant = DefaultURLSuffixManageParticipant
	}

	return &SMLInfo{
		ID:                         id,
		DisplayName:                displayName,
		DNSZone:                    dnsZone,
		ManagementServiceURL:       managementServiceURL,
		URLSuffixManageSMP:         suffixManageSMP,
		URLSuffixManageParticipant: suffixManageParticipant,
		ClientCertificateRequired:  clientCertRequired,
	}, nil
}

// ManageSMPEndpoint is the URL of the publisher management service.
func (s SMLInfo) ManageSMPEndpoint() string {
	return s.ManagementServiceURL + s.URLSuffixManageSMP
}

// ManageParticipantEndpoint is the URL of the participant management service.
func (s SMLInfo) ManageParticipantEndpoint() string {
	return s.ManagementServiceURL + s.URLSuffixManageParticipant
}

// BDMSLEndpoint is the URL of the BDMSL extension service.
func (s SMLInfo) BDMSLEndpoint() string {
	return s.ManagementServiceURL + URLSuffixBDMSL
}

// PublisherDNSName is the DNS name the SML publishes for a registered SMP.
func (s SMLInfo) PublisherDNSName(smpID string) string {
	return smpID + "." + s.DNSZone
}

// UsesTLS reports whether calls to this SML go over https.
func (s SMLInfo) UsesTLS() bool {
	return strings.HasPrefix(strings.ToLower(s.ManagementServiceURL), "https://")
}
