package waitlist

import (
	"github.com/akeren/launchlist/config/router"
	"github.com/akeren/launchlist/internal/log"
	"github.com/akeren/launchlist/pkg/factory"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db                *gorm.DB
	logger            *log.Logger
	cache             factory.Cache
	requestsPerWindow int
}

func NewWaitlistServiceFactory(db *gorm.DB, logger *log.Logger, cache factory.Cache, requestsPerWindow int) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:                db,
		logger:            logger,
		cache:             cache,
		requestsPerWindow: requestsPerWindow,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	return NewWaitlistService(f.logger, NewWaitlistRepository(f.db, f.logger))
}

// CreateController wires the controller to the same service CreateService
// would build.
func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistControllerWithService(f.CreateService(), f.logger, f.cache, f.requestsPerWindow)
}
