package waitlist

import (
	"context"
	"errors"

	"github.com/akeren/launchlist/internal/log"
	"github.com/akeren/launchlist/internal/models"
	"github.com/akeren/launchlist/pkg/circuitbreaker"
	apperrors "github.com/akeren/launchlist/pkg/errors"
	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=waitlist

type WaitlistRepository interface {
	// CreateEntry persists a new waitlist entry and returns the stored record.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// CountEntries returns how many entries exist for a project.
	CountEntries(ctx context.Context, projectName string) (int64, error)
}

type waitlistRepository struct {
	db      *gorm.DB
	breaker circuitbreaker.CircuitBreaker
}

func NewWaitlistRepository(db *gorm.DB, logger *log.Logger) WaitlistRepository {
	cfg := circuitbreaker.DefaultConfig()
	cfg.OnStateChange = func(from, to circuitbreaker.CircuitState) {
		if logger != nil {
			logger.Warn("Waitlist store circuit changed state", "from", from.String(), "to", to.String())
		}
	}

	return NewWaitlistRepositoryWithBreaker(db, circuitbreaker.NewCircuitBreaker(cfg))
}

func NewWaitlistRepositoryWithBreaker(db *gorm.DB, breaker circuitbreaker.CircuitBreaker) WaitlistRepository {
	return &waitlistRepository{db: db, breaker: breaker}
}

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if entry == nil {
		return nil, apperrors.NewInvalidRequestError("waitlist entry cannot be nil", nil)
	}

	// Context errors belong to the caller and never count against the breaker.
	var callerErr error
	err := wr.breaker.Call(func() error {
		createErr := wr.db.WithContext(ctx).Create(entry).Error
		if createErr != nil && ctx.Err() != nil {
			callerErr = createErr
			return nil
		}
		return createErr
	})
	if err == nil && callerErr != nil {
		err = callerErr
	}
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			return nil, apperrors.NewDatabaseError("waitlist store temporarily unavailable", err)
		}
		return nil, apperrors.NewDatabaseError("unable to create waitlist entry", err)
	}

	return entry, nil
}

func (wr *waitlistRepository) CountEntries(ctx context.Context, projectName string) (int64, error) {
	var count int64

	if err := wr.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("project_name = ?", projectName).
		Count(&count).Error; err != nil {
		return 0, apperrors.NewDatabaseError("unable to count waitlist entries", err)
	}

	return count, nil
}
