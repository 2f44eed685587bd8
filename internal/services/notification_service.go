package services

import (
	"context"

	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/types"
)

type NotificationServiceInterface interface {
	GetNotifications(ctx context.Context, actor entities.Actor, filter types.Filter, unreadOnly bool) ([]dto.NotificationDTO, uint64, error)
	CountUnread(ctx context.Context, actor entities.Actor) (uint64, error)
	MarkRead(ctx context.Context, actor entities.Actor, id uint64) error
	MarkAllRead(ctx context.Context, actor entities.Actor) error
}

type NotificationService struct {
	notificationRepo repositories.NotificationRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationService(notificationRepo repositories.NotificationRepositoryInterface, logger *zap.Logger) NotificationServiceInterface {
	return &NotificationService{notificationRepo: notificationRepo, logger: logger}
}

func (s *NotificationService) GetNotifications(ctx context.Context, actor entities.Actor, filter types.Filter, unreadOnly bool) ([]dto.NotificationDTO, uint64, error) {
	return s.notificationRepo.GetByUser(ctx, actor.ID, filter, unreadOnly)
}

func (s *NotificationService) CountUnread(ctx context.Context, actor entities.Actor) (uint64, error) {
	return s.notificationRepo.CountUnread(ctx, actor.ID)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor entities.Actor, id uint64) error {
	return s.notificationRepo.MarkRead(ctx, actor.ID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor entities.Actor) error {
	return s.notificationRepo.MarkAllRead(ctx, actor.ID)
}
