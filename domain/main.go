package domain

import (
	"github.com/akeren/launchlist/config"
	"github.com/akeren/launchlist/domain/monitoring"
	"github.com/akeren/launchlist/domain/waitlist"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	waitlistRequests := 0
	if appConfig.Config != nil {
		waitlistRequests = appConfig.Config.WaitlistRateLimitRequests
	}

	appConfig.RouterService.MountController(monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger, appConfig.Cache).CreateController())
	appConfig.RouterService.MountController(waitlist.NewWaitlistServiceFactory(appConfig.DB, appConfig.Logger, appConfig.Cache, waitlistRequests).CreateController())
}
