package listeners

import (
	"context"
	"encoding/json"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/constants"
	"inventory-system/pkg/eventbus"
)

// ActivityListener пишет журнал действий по событиям шины.
// Сбой записи журнала логируется и не влияет на основную операцию.
type ActivityListener struct {
	activityRepo repositories.ActivityRepositoryInterface
	logger       *zap.Logger
}

func NewActivityListener(activityRepo repositories.ActivityRepositoryInterface, logger *zap.Logger) *ActivityListener {
	return &ActivityListener{activityRepo: activityRepo, logger: logger}
}

func (l *ActivityListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OperationSubmittedEvent{}.Name(), l.handleOperationSubmitted)
	bus.Subscribe(events.OperationResolvedEvent{}.Name(), l.handleOperationResolved)
	bus.Subscribe(events.DeviceChangedEvent{}.Name(), l.handleDeviceChanged)
	bus.Subscribe(events.UserChangedEvent{}.Name(), l.handleUserChanged)
	bus.Subscribe(events.ReportGeneratedEvent{}.Name(), l.handleReportGenerated)
}

func (l *ActivityListener) handleOperationSubmitted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OperationSubmittedEvent)
	if !ok {
		return nil
	}

	action := constants.ActionOperationCreated
	if e.AutoApproved {
		action = constants.ActionManualStockAdded
		if e.Operation.Type == entities.OperationRemove {
			action = constants.ActionManualStockRemove
		}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"device_id":      e.Operation.DeviceID,
		"barcode":        e.Device.Barcode,
		"operation_type": e.Operation.Type,
		"quantity":       e.Operation.Quantity,
		"status":         e.Operation.Status,
	})

	return l.write(ctx, entities.ActivityEntry{
		UserID:     e.Actor.ID,
		Action:     action,
		EntityType: null.StringFrom("inventory_operation"),
		EntityID:   null.Uint64From(e.Operation.ID),
		NewValues:  null.JSONFrom(payload),
	})
}

func (l *ActivityListener) handleOperationResolved(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OperationResolvedEvent)
	if !ok {
		return nil
	}

	action := constants.ActionOperationApproved
	if e.Operation.Status == entities.OperationRejected {
		action = constants.ActionOperationRejected
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"device_id": e.Operation.DeviceID,
		"status":    e.Operation.Status,
		"quantity":  e.Operation.Quantity,
	})

	return l.write(ctx, entities.ActivityEntry{
		UserID:     e.Actor.ID,
		Action:     action,
		EntityType: null.StringFrom("inventory_operation"),
		EntityID:   null.Uint64From(e.Operation.ID),
		NewValues:  null.JSONFrom(payload),
	})
}

func (l *ActivityListener) handleDeviceChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.DeviceChangedEvent)
	if !ok {
		return nil
	}

	entry := entities.ActivityEntry{
		UserID:     e.Actor.ID,
		Action:     e.Action,
		EntityType: null.StringFrom("device"),
		EntityID:   null.Uint64From(e.DeviceID),
	}
	if len(e.OldValues) > 0 {
		entry.OldValues = null.JSONFrom(e.OldValues)
	}
	if len(e.NewValues) > 0 {
		entry.NewValues = null.JSONFrom(e.NewValues)
	}

	return l.write(ctx, entry)
}

func (l *ActivityListener) handleUserChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.UserChangedEvent)
	if !ok {
		return nil
	}

	entry := entities.ActivityEntry{
		UserID: e.Actor.ID,
		Action: e.Action,
	}
	if e.TargetID != 0 {
		entry.EntityType = null.StringFrom("user")
		entry.EntityID = null.Uint64From(e.TargetID)
	}

	return l.write(ctx, entry)
}

func (l *ActivityListener) handleReportGenerated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.ReportGeneratedEvent)
	if !ok {
		return nil
	}

	payload, _ := json.Marshal(map[string]string{"report_type": e.ReportType})

	return l.write(ctx, entities.ActivityEntry{
		UserID:    e.Actor.ID,
		Action:    constants.ActionReportGenerated,
		NewValues: null.JSONFrom(payload),
	})
}

func (l *ActivityListener) write(ctx context.Context, entry entities.ActivityEntry) error {
	if err := l.activityRepo.Create(ctx, entry); err != nil {
		l.logger.Error("не удалось записать журнал действий",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return err
	}
	return nil
}
