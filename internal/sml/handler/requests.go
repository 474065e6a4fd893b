package handler

import (
	"strings"

	"smpadmin/internal/sml/service"
)

// RegistrationRequest is the body of POST and PUT /admin/sml/registration.
// Blank fields fall back to the configured defaults.
type RegistrationRequest struct {
	SMLID           string `json:"sml_id" validate:"max=128"`
	PhysicalAddress string `json:"physical_address" validate:"max=64"`
	LogicalAddress  string `json:"logical_address" validate:"max=2048"`
}

func (r *RegistrationRequest) Normalize() {
	r.SMLID = strings.TrimSpace(r.SMLID)
	r.PhysicalAddress = strings.TrimSpace(r.PhysicalAddress)
	r.LogicalAddress = strings.TrimSpace(r.LogicalAddress)
}

func (r *RegistrationRequest) RegisterInput() service.RegisterInput {
	return service.RegisterInput{SMLID: r.SMLID, PhysicalAddress: r.PhysicalAddress, LogicalAddress: r.LogicalAddress}
}

func (r *RegistrationRequest) UpdateInput() service.UpdateInput {
	return service.UpdateInput{SMLID: r.SMLID, PhysicalAddress: r.PhysicalAddress, LogicalAddress: r.LogicalAddress}
}

// UnregisterRequest is the optional body of DELETE /admin/sml/registration.
type UnregisterRequest struct {
	SMLID string `json:"sml_id" validate:"max=128"`
}

func (r *UnregisterRequest) Normalize() {
	r.SMLID = strings.TrimSpace(r.SMLID)
}

// CertificateUpdateRequest is the body of POST /admin/sml/certificate. The
// certificate itself is checked by the workflow so that all field errors
// are reported together.
type CertificateUpdateRequest struct {
	MigrationDate string `json:"migration_date" validate:"max=32"`
	PublicKey     string `json:"public_key" validate:"max=65536"`
}

func (r *CertificateUpdateRequest) Normalize() {
	r.MigrationDate = strings.TrimSpace(r.MigrationDate)
}

// SMLInfoRequest is the body of POST and PUT /admin/sml/endpoints.
type SMLInfoRequest struct {
	DisplayName                string `json:"display_name" validate:"required,max=256"`
	DNSZone                    string `json:"dns_zone" validate:"required,max=253"`
	ManagementServiceURL       string `json:"management_service_url" validate:"required,url,max=2048"`
	URLSuffixManageSMP         string `json:"url_suffix_manage_smp" validate:"max=256"`
	URLSuffixManageParticipant string `json:"url_suffix_manage_participant" validate:"max=256"`
	ClientCertificateRequired  bool   `json:"client_certificate_required"`
}

func (r *SMLInfoRequest) Normalize() {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.DNSZone = strings.TrimSpace(r.DNSZone)
	r.ManagementServiceURL = strings.TrimSpace(r.ManagementServiceURL)
	r.URLSuffixManageSMP = strings.TrimSpace(r.URLSuffixManageSMP)
	r.URLSuffixManageParticipant = strings.TrimSpace(r.URLSuffixManageParticipant)
}

func (r *SMLInfoRequest) Input() service.SMLInfoInput {
	return service.SMLInfoInput{
		DisplayName:                r.DisplayName,
		DNSZone:                    r.DNSZone,
		ManagementServiceURL:       r.ManagementServiceURL,
		URLSuffixManageSMP:         r.URLSuffixManageSMP,
		URLSuffixManageParticipant: r.URLSuffixManageParticipant,
		ClientCertificateRequired:  r.ClientCertificateRequired,
	}
}
