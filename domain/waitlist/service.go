package waitlist

import (
	"context"

	"github.com/akeren/launchlist/internal/log"
	apperrors "github.com/akeren/launchlist/pkg/errors"
	"github.com/go-playground/validator/v10"
)

type WaitlistService interface {
	// JoinWaitlist validates the request and stores one entry tagged with the
	// caller's IP address.
	JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest, ipAddress string) (*JoinWaitlistResponse, error)

	// CountEntries returns the number of stored entries for a project.
	CountEntries(ctx context.Context, projectName string) (int64, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	validate   *validator.Validate
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository) WaitlistService {
	return &waitlistService{
		logger:     logger,
		repository: repository,
		validate:   newValidator(),
	}
}

func (s *waitlistService) JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest, ipAddress string) (*JoinWaitlistResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		return nil, apperrors.NewInvalidRequestError(MsgNameAndEmailRequired, nil)
	}

	if err := validateJoinRequest(s.validate, req); err != nil {
		if apperrors.GetErrorType(err) == apperrors.ErrorTypeInvalidRequest {
			logger.Info("Rejected waitlist submission",
				"reason", apperrors.GetHumanReadableMessage(err),
				"violations", apperrors.FormatValidationErrors(err, req),
			)
		} else {
			logger.Error("Failed to validate waitlist submission", "error", err)
		}
		return nil, err
	}

	entry, err := s.repository.CreateEntry(ctx, ToWaitlistEntryModel(req, ipAddress))
	if err != nil {
		logger.Error("Error adding user to waitlist", "error", err)
		return nil, err
	}

	response := ToJoinWaitlistResponse(entry)
	return &response, nil
}

func (s *waitlistService) CountEntries(ctx context.Context, projectName string) (int64, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if projectName == "" {
		return 0, apperrors.NewInvalidRequestError("project name is required", nil)
	}

	count, err := s.repository.CountEntries(ctx, projectName)
	if err != nil {
		logger.Error("Failed to count waitlist entries", "project", projectName, "error", err)
		return 0, err
	}

	return count, nil
}
