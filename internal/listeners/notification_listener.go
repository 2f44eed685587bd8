package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/eventbus"
)

// NotificationListener создаёт уведомления по событиям журнала операций:
// администраторам - о новых заявках, заявителю - о вердикте.
type NotificationListener struct {
	notificationRepo repositories.NotificationRepositoryInterface
	userRepo         repositories.UserRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationListener(
	notificationRepo repositories.NotificationRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OperationSubmittedEvent{}.Name(), l.handleOperationSubmitted)
	bus.Subscribe(events.OperationResolvedEvent{}.Name(), l.handleOperationResolved)
}

func (l *NotificationListener) handleOperationSubmitted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OperationSubmittedEvent)
	if !ok || e.AutoApproved {
		// Автоутверждённые операции администратора согласования не требуют.
		return nil
	}

	adminIDs, err := l.userRepo.ActiveAdminIDs(ctx)
	if err != nil {
		return err
	}

	verb := "приход"
	if e.Operation.Type == entities.OperationRemove {
		verb = "расход"
	}

	message := fmt.Sprintf("%s подал заявку на %s: %s (%s), количество %d",
		e.Actor.FullName, verb, e.Device.Name, e.Device.Barcode, e.Operation.Quantity)

	for _, adminID := range adminIDs {
		if adminID == e.Actor.ID {
			continue
		}
		n := entities.Notification{
			UserID:   adminID,
			Title:    "Новая заявка на операцию",
			Message:  message,
			Severity: entities.SeverityInfo,
		}
		if err := l.notificationRepo.Create(ctx, n); err != nil {
			l.logger.Error("не удалось создать уведомление администратору",
				zap.Uint64("adminID", adminID), zap.Error(err))
		}
	}

	return nil
}

func (l *NotificationListener) handleOperationResolved(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OperationResolvedEvent)
	if !ok {
		return nil
	}

	// Заявитель сам обработал свою операцию - уведомлять некого.
	if e.Operation.UserID == e.Actor.ID {
		return nil
	}

	n := entities.Notification{
		UserID: e.Operation.UserID,
	}
	if e.Operation.Status == entities.OperationApproved {
		n.Title = "Заявка утверждена"
		n.Message = fmt.Sprintf("Ваша заявка по устройству %s (%s) утверждена",
			e.Device.Name, e.Device.Barcode)
		n.Severity = entities.SeveritySuccess
	} else {
		n.Title = "Заявка отклонена"
		n.Message = fmt.Sprintf("Ваша заявка по устройству %s (%s) отклонена",
			e.Device.Name, e.Device.Barcode)
		n.Severity = entities.SeverityError
	}

	if err := l.notificationRepo.Create(ctx, n); err != nil {
		l.logger.Error("не удалось создать уведомление заявителю",
			zap.Uint64("userID", e.Operation.UserID), zap.Error(err))
		return err
	}

	return nil
}
