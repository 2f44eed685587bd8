package services

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/types"
)

type InventoryServiceInterface interface {
	SubmitOperation(ctx context.Context, actor entities.Actor, payload dto.SubmitOperationDTO) (*dto.OperationResultDTO, error)
	ManualAdjust(ctx context.Context, actor entities.Actor, opType entities.OperationType, payload dto.ManualAdjustDTO) (*dto.OperationResultDTO, error)
	ApproveOperation(ctx context.Context, actor entities.Actor, id uint64, payload dto.ResolveOperationDTO) (*dto.OperationDTO, error)
	RejectOperation(ctx context.Context, actor entities.Actor, id uint64, payload dto.ResolveOperationDTO) (*dto.OperationDTO, error)
	GetOperation(ctx context.Context, actor entities.Actor, id uint64) (*dto.OperationDTO, error)
	GetOperations(ctx context.Context, actor entities.Actor, filter types.Filter, opFilter dto.OperationListFilterDTO) ([]dto.OperationDTO, uint64, error)
	GetEffectiveQuantity(ctx context.Context, deviceID uint64) (int64, error)
}

type InventoryService struct {
	deviceRepo    repositories.DeviceRepositoryInterface
	operationRepo repositories.OperationRepositoryInterface
	txManager     repositories.TxManagerInterface
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewInventoryService(
	deviceRepo repositories.DeviceRepositoryInterface,
	operationRepo repositories.OperationRepositoryInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) InventoryServiceInterface {
	return &InventoryService{
		deviceRepo:    deviceRepo,
		operationRepo: operationRepo,
		txManager:     txManager,
		bus:           bus,
		logger:        logger,
	}
}

// resolveAndLockDevice находит устройство по id или штрих-коду и блокирует
// его строку до конца транзакции. Блокировка сериализует конкурирующие
// заявки по одному устройству.
func (s *InventoryService) resolveAndLockDevice(ctx context.Context, tx pgx.Tx, deviceID uint64, barcode string) (*entities.Device, error) {
	if deviceID == 0 && barcode == "" {
		return nil, apperrors.NewInvalidInputError("укажите device_id или barcode")
	}

	if deviceID == 0 {
		device, err := s.deviceRepo.FindByBarcode(ctx, tx, barcode)
		if err != nil {
			return nil, err
		}
		deviceID = device.ID
	}

	return s.deviceRepo.FindForUpdate(ctx, tx, deviceID)
}

func (s *InventoryService) SubmitOperation(ctx context.Context, actor entities.Actor, payload dto.SubmitOperationDTO) (*dto.OperationResultDTO, error) {
	opType := entities.OperationType(payload.Type)
	return s.admit(ctx, actor, opType, payload.DeviceID, payload.Barcode,
		payload.Quantity, payload.Reason, payload.Notes, payload.Location, actor.Role.IsAdmin())
}

// ManualAdjust - корректировка, тип операции задан маршрутом. Политика та же,
// что и у обычной заявки: администратор получает автоутверждение,
// сотрудник - pending.
func (s *InventoryService) ManualAdjust(ctx context.Context, actor entities.Actor, opType entities.OperationType, payload dto.ManualAdjustDTO) (*dto.OperationResultDTO, error) {
	return s.admit(ctx, actor, opType, payload.DeviceID, payload.Barcode,
		payload.Quantity, payload.Reason, payload.Notes, payload.Location, actor.Role.IsAdmin())
}

// admit - единственный путь записи в журнал. Проверки идут в фиксированном
// порядке: устройство, количество, тип, достаточность остатка.
func (s *InventoryService) admit(
	ctx context.Context,
	actor entities.Actor,
	opType entities.OperationType,
	deviceID uint64,
	barcode string,
	quantity int64,
	reason, notes, location null.String,
	autoApprove bool,
) (*dto.OperationResultDTO, error) {
	var device *entities.Device
	var op entities.Operation

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		device, err = s.resolveAndLockDevice(ctx, tx, deviceID, barcode)
		if err != nil {
			return err
		}

		if quantity <= 0 {
			return apperrors.NewInvalidInputError("количество должно быть положительным")
		}
		if !opType.Valid() {
			return apperrors.ErrInvalidOperationType
		}

		approvedSum, err := s.operationRepo.SumApproved(ctx, tx, device.ID)
		if err != nil {
			return err
		}
		effective := EffectiveQuantity(device.BaselineQuantity, approvedSum)

		// Расход проверяется против остатка и для заявок, и для
		// автоутверждённых корректировок.
		if opType == entities.OperationRemove && !CanRemove(effective, quantity) {
			return apperrors.NewInsufficientQuantityError(quantity, effective)
		}

		op = entities.Operation{
			DeviceID: device.ID,
			UserID:   actor.ID,
			Type:     opType,
			Quantity: quantity,
			Reason:   reason,
			Notes:    notes,
			Location: location,
			Status:   entities.OperationPending,
		}
		if autoApprove {
			op.Status = entities.OperationApproved
			op.ApprovedBy = null.Uint64From(actor.ID)
			op.ApprovalDate = null.TimeFrom(time.Now())
		}

		op.ID, err = s.operationRepo.Create(ctx, tx, op)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.OperationSubmittedEvent{
		Operation:    op,
		Device:       *device,
		Actor:        actor,
		AutoApproved: autoApprove,
	})

	s.logger.Info("операция зафиксирована в журнале",
		zap.Uint64("operationID", op.ID),
		zap.Uint64("deviceID", device.ID),
		zap.String("type", string(op.Type)),
		zap.String("status", string(op.Status)),
	)

	available, err := s.GetEffectiveQuantity(ctx, device.ID)
	result := &dto.OperationResultDTO{
		OperationID: op.ID,
		Status:      string(op.Status),
		Device: dto.ShortDeviceDTO{
			ID:      device.ID,
			Name:    device.Name,
			Barcode: device.Barcode,
		},
	}
	if err == nil {
		result.AvailableQuantity = null.Int64From(available)
	}

	return result, nil
}

func (s *InventoryService) ApproveOperation(ctx context.Context, actor entities.Actor, id uint64, payload dto.ResolveOperationDTO) (*dto.OperationDTO, error) {
	return s.resolve(ctx, actor, id, entities.OperationApproved, payload.Notes)
}

func (s *InventoryService) RejectOperation(ctx context.Context, actor entities.Actor, id uint64, payload dto.ResolveOperationDTO) (*dto.OperationDTO, error) {
	return s.resolve(ctx, actor, id, entities.OperationRejected, payload.Notes)
}

func (s *InventoryService) resolve(ctx context.Context, actor entities.Actor, id uint64, status entities.OperationStatus, notes null.String) (*dto.OperationDTO, error) {
	if !actor.Role.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	var op *entities.Operation
	var device *entities.Device

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		op, err = s.operationRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		// Блокировка устройства сериализует утверждение с приёмом новых
		// операций по тому же устройству.
		device, err = s.deviceRepo.FindForUpdate(ctx, tx, op.DeviceID)
		if err != nil {
			return err
		}

		// Утверждение расхода повторяет проверку остатка: между подачей
		// и вердиктом могли пройти другие операции.
		if status == entities.OperationApproved && op.Type == entities.OperationRemove {
			approvedSum, err := s.operationRepo.SumApproved(ctx, tx, device.ID)
			if err != nil {
				return err
			}
			effective := EffectiveQuantity(device.BaselineQuantity, approvedSum)
			if !CanRemove(effective, op.Quantity) {
				return apperrors.NewInsufficientQuantityError(op.Quantity, effective)
			}
		}

		won, err := s.operationRepo.Resolve(ctx, tx, id, status, actor.ID, notes)
		if err != nil {
			return err
		}
		if !won {
			// Кто-то успел раньше: перечитываем и сообщаем о терминальном статусе.
			return apperrors.ErrNotApprovable
		}

		op.Status = status
		op.ApprovedBy = null.Uint64From(actor.ID)
		op.ApprovalDate = null.TimeFrom(time.Now())
		if notes.Valid {
			op.Notes = notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.OperationResolvedEvent{
		Operation: *op,
		Device:    *device,
		Actor:     actor,
	})

	s.logger.Info("операция обработана",
		zap.Uint64("operationID", id),
		zap.String("status", string(status)),
		zap.Uint64("adminID", actor.ID),
	)

	return s.operationRepo.FindDetailByID(ctx, id)
}

func (s *InventoryService) GetOperation(ctx context.Context, actor entities.Actor, id uint64) (*dto.OperationDTO, error) {
	op, err := s.operationRepo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Сотрудник видит только собственные операции.
	if !actor.Role.IsAdmin() && op.UserID != actor.ID {
		return nil, apperrors.ErrForbidden
	}
	return op, nil
}

func (s *InventoryService) GetOperations(ctx context.Context, actor entities.Actor, filter types.Filter, opFilter dto.OperationListFilterDTO) ([]dto.OperationDTO, uint64, error) {
	if !actor.Role.IsAdmin() {
		opFilter.UserID = actor.ID
	}
	return s.operationRepo.GetAll(ctx, filter, opFilter)
}

func (s *InventoryService) GetEffectiveQuantity(ctx context.Context, deviceID uint64) (int64, error) {
	device, err := s.deviceRepo.FindByID(ctx, nil, deviceID)
	if err != nil {
		return 0, err
	}
	approvedSum, err := s.operationRepo.SumApproved(ctx, nil, deviceID)
	if err != nil {
		return 0, err
	}

	effective := EffectiveQuantity(device.BaselineQuantity, approvedSum)
	// Отрицательная свёртка невозможна при корректном контроле приёма:
	// журнал или базовое количество повреждены.
	if effective < 0 {
		s.logger.Warn("отрицательный рассчитанный остаток",
			zap.Uint64("deviceID", deviceID),
			zap.Int64("baseline", device.BaselineQuantity),
			zap.Int64("approvedSum", approvedSum),
			zap.Int64("effective", effective),
		)
	}
	return effective, nil
}
