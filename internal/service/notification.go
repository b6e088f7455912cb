package service

import (
	"context"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.Notification, int32, error) {
	return s.noteRepo.List(ctx, caller.UserID, page, pageSize)
}

func (s *notificationService) MarkAsRead(ctx context.Context, caller Caller, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, caller.UserID)
}
