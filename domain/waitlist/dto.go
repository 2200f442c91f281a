package waitlist

import (
	"github.com/akeren/launchlist/internal/models"
	"github.com/akeren/launchlist/pkg/constants"
	"golang.org/x/text/unicode/norm"
)

// JoinWaitlistRequest is the landing page form payload. Validation runs in
// the service, not at bind time, so that the error messages stay fixed.
type JoinWaitlistRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,waitlist_email"`
}

// JoinWaitlistResponse echoes the stored record.
type JoinWaitlistResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ========================================
// Mappers
// ========================================

func ToWaitlistEntryModel(req *JoinWaitlistRequest, ipAddress string) *models.WaitlistEntry {
	if req == nil {
		return nil
	}
	if ipAddress == "" {
		ipAddress = constants.UnknownIPAddress
	}
	return &models.WaitlistEntry{
		Name:        norm.NFC.String(req.Name),
		Email:       req.Email,
		IPAddress:   ipAddress,
		ProjectName: constants.WaitlistProjectName,
	}
}

func ToJoinWaitlistResponse(entry *models.WaitlistEntry) JoinWaitlistResponse {
	if entry == nil {
		return JoinWaitlistResponse{}
	}
	return JoinWaitlistResponse{
		Name:  entry.Name,
		Email: entry.Email,
	}
}
