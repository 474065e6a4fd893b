package handler

import (
	"time"

	"smpadmin/internal/sml/models"
	audit "smpadmin/pkg/platform/audit"
)

type SMLListResponse struct {
	SMLs []models.SMLInfo `json:"smls"`
}

// SelectableResponse lists the SMLs an action may target.
type SelectableResponse struct {
	Action string           `json:"action"`
	SMLs   []models.SMLInfo `json:"smls"`
}

type AuditEventResponse struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	Category     string    `json:"category"`
	Subject      string    `json:"subject"`
	Args         []string  `json:"args"`
	Success      bool      `json:"success"`
	ErrorClass   string    `json:"error_class,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ActorID      string    `json:"actor_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
}

type AuditListResponse struct {
	Events []AuditEventResponse `json:"events"`
}

func fromEvents(events []audit.Event) AuditListResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		args := e.Args
		if args == nil {
			args = []string{}
		}
		out = append(out, AuditEventResponse{
			ID:           e.ID.String(),
			Timestamp:    e.Timestamp,
			Action:       string(e.Action),
			Category:     string(e.Category()),
			Subject:      e.Subject,
			Args:         args,
			Success:      e.Success,
			ErrorClass:   e.ErrorClass,
			ErrorMessage: e.ErrorMessage,
			ActorID:      e.ActorID,
			RequestID:    e.RequestID,
		})
	}
	return AuditListResponse{Events: out}
}

func nonNil(infos []models.SMLInfo) []models.SMLInfo {
	if infos == nil {
		return []models.SMLInfo{}
	}
	return infos
}
