package store

import "smpadmin/internal/sml/models"

// WellKnown lists the public SML instances every installation starts with.
func WellKnown() []models.SMLInfo {
	return []models.SMLInfo{
		{
			ID:                         "digitprod",
			DisplayName:                "SML",
			DNSZone:                    "edelivery.tech.ec.europa.eu",
			ManagementServiceURL:       "https://edelivery.tech.ec.europa.eu/edelivery-sml",
			URLSuffixManageSMP:         models.DefaultURLSuffixManageSMP,
			URLSuffixManageParticipant: models.DefaultURLSuffixManageParticipant,
			ClientCertificateRequired:  true,
		},
		{
			ID:                         "digittest",
			DisplayName:                "SMK",
			DNSZone:                    "acc.edelivery.tech.ec.europa.eu",
			ManagementServiceURL:       "https://acc.edelivery.tech.ec.europa.eu/edelivery-sml",
			URLSuffixManageSMP:         models.DefaultURLSuffixManageSMP,
			URLSuffixManageParticipant: models.DefaultURLSuffixManageParticipant,
			ClientCertificateRequired:  true,
		},
		{
			ID:                         "local",
			DisplayName:                "SML-local",
			DNSZone:                    "smj.localhost",
			ManagementServiceURL:       "http://localhost:8080",
			URLSuffixManageSMP:         models.DefaultURLSuffixManageSMP,
			URLSuffixManageParticipant: models.DefaultURLSuffixManageParticipant,
			ClientCertificateRequired:  false,
		},
	}
}
