package service

import (
	"context"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
)

// NotificationService adapts the notification store to the Notifier interface
// used by closure and advance flows.
type NotificationService struct {
	Repo repository.NotificationRepository
}

func (s NotificationService) Notify(ctx context.Context, userID int64, title, message string, typ domain.NotificationType) error {
	_, err := s.Repo.Create(ctx, repository.CreateNotificationInput{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	})
	return err
}
