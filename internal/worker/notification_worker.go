package worker

import (
	"github.com/nairobi-county/county-tickets/internal/service"
)

// StartNotificationWorker registers notification handlers on the dispatcher.
// Handlers run synchronously after each successful ticket write.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
