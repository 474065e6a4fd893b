package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"

	"smpadmin/internal/sml/models"
	dErrors "smpadmin/pkg/domain-errors"
	audit "smpadmin/pkg/platform/audit"
	"smpadmin/pkg/platform/sentinel"
)

// SMLInfoInput describes an SML endpoint to create or update.
type SMLInfoInput struct {
	DisplayName                string
	DNSZone                    string
	ManagementServiceURL       string
	URLSuffixManageSMP         string
	URLSuffixManageParticipant string
	ClientCertificateRequired  bool
}

func (s *Service) ListSMLInfos(ctx context.Context) ([]models.SMLInfo, error) {
	infos, err := s.smls.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list SMLs")
	}
	return infos, nil
}

func (s *Service) GetSMLInfo(ctx context.Context, id string) (*models.SMLInfo, error) {
	info, err := s.smls.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "SML not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load SML")
	}
	return info, nil
}

// CreateSMLInfo adds an SML endpoint under a new random ID.
func (s *Service) CreateSMLInfo(ctx context.Context, in SMLInfoInput) (*models.SMLInfo, error) {
	info, err := newSMLInfo(uuid.NewString(), in)
	if err != nil {
		return nil, err
	}
	if err := s.smls.Create(ctx, *info); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "SML already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create SML")
	}
	s.invalidateCapabilities(ctx)
	s.emit(ctx, infoEvent(audit.ActionSMLInfoCreate, info))
	return info, nil
}

func (s *Service) UpdateSMLInfo(ctx context.Context, id string, in SMLInfoInput) (*models.SMLInfo, error) {
	info, err := newSMLInfo(id, in)
	if err != nil {
		return nil, err
	}
	if err := s.smls.Update(ctx, *info); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "SML not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update SML")
	}
	s.invalidateCapabilities(ctx)
	s.emit(ctx, infoEvent(audit.ActionSMLInfoUpdate, info))
	return info, nil
}

// DeleteSMLInfo removes an SML endpoint. The configured default SML cannot
// be deleted.
func (s *Service) DeleteSMLInfo(ctx context.Context, id string) error {
	if id == s.settings.DefaultSMLID {
		return dErrors.New(dErrors.CodeConflict, "the configured default SML cannot be deleted")
	}
	if err := s.smls.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "SML not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete SML")
	}
	s.invalidateCapabilities(ctx)
	s.emit(ctx, audit.Event{Action: audit.ActionSMLInfoDelete, Subject: id, Success: true})
	return nil
}

func newSMLInfo(id string, in SMLInfoInput) (*models.SMLInfo, error) {
	info, err := models.NewSMLInfo(id, in.DisplayName, in.DNSZone, in.ManagementServiceURL,
		in.URLSuffixManageSMP, in.URLSuffixManageParticipant, in.ClientCertificateRequired)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	return info, nil
}

func infoEvent(action audit.Action, info *models.SMLInfo) audit.Event {
	return audit.Event{
		Action:  action,
		Subject: info.ID,
		Args: []string{
			info.DisplayName,
			info.DNSZone,
			info.ManagementServiceURL,
			info.URLSuffixManageSMP,
			info.URLSuffixManageParticipant,
			strconv.FormatBool(info.ClientCertificateRequired),
		},
		Success: true,
	}
}
