package services

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/constants"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/types"
)

type DeviceServiceInterface interface {
	GetDevices(ctx context.Context, filter types.Filter, deviceFilter dto.DeviceListFilterDTO) ([]dto.DeviceDTO, uint64, error)
	FindDevice(ctx context.Context, id uint64) (*dto.DeviceDTO, error)
	FindDeviceByBarcode(ctx context.Context, actor entities.Actor, barcode string) (*dto.DeviceDTO, error)
	CreateDevice(ctx context.Context, actor entities.Actor, payload dto.CreateDeviceDTO) (*dto.DeviceDTO, error)
	UpdateDevice(ctx context.Context, actor entities.Actor, id uint64, payload dto.UpdateDeviceDTO) (*dto.DeviceDTO, error)
	DeleteDevice(ctx context.Context, actor entities.Actor, id uint64) error
}

type DeviceService struct {
	deviceRepo    repositories.DeviceRepositoryInterface
	operationRepo repositories.OperationRepositoryInterface
	txManager     repositories.TxManagerInterface
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewDeviceService(
	deviceRepo repositories.DeviceRepositoryInterface,
	operationRepo repositories.OperationRepositoryInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) DeviceServiceInterface {
	return &DeviceService{
		deviceRepo:    deviceRepo,
		operationRepo: operationRepo,
		txManager:     txManager,
		bus:           bus,
		logger:        logger,
	}
}

func (s *DeviceService) GetDevices(ctx context.Context, filter types.Filter, deviceFilter dto.DeviceListFilterDTO) ([]dto.DeviceDTO, uint64, error) {
	return s.deviceRepo.GetAll(ctx, filter, deviceFilter)
}

func (s *DeviceService) toDTO(ctx context.Context, device *entities.Device) (*dto.DeviceDTO, error) {
	approvedSum, err := s.operationRepo.SumApproved(ctx, nil, device.ID)
	if err != nil {
		return nil, err
	}

	return &dto.DeviceDTO{
		ID:                 device.ID,
		Barcode:            device.Barcode,
		Name:               device.Name,
		Type:               device.Type,
		Brand:              device.Brand,
		Model:              device.Model,
		SerialNumber:       device.SerialNumber,
		Description:        device.Description,
		PurchaseDate:       device.PurchaseDate,
		PurchasePrice:      device.PurchasePrice,
		WarrantyExpiry:     device.WarrantyExpiry,
		Location:           device.Location,
		Status:             string(device.Status),
		BaselineQuantity:   device.BaselineQuantity,
		MinimumQuantity:    device.MinimumQuantity,
		CalculatedQuantity: EffectiveQuantity(device.BaselineQuantity, approvedSum),
		CreatedAt:          device.CreatedAt.Format("2006-01-02, 15:04:05"),
	}, nil
}

func (s *DeviceService) FindDevice(ctx context.Context, id uint64) (*dto.DeviceDTO, error) {
	device, err := s.deviceRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, device)
}

// FindDeviceByBarcode - поиск сканером; факт поиска попадает в журнал действий.
func (s *DeviceService) FindDeviceByBarcode(ctx context.Context, actor entities.Actor, barcode string) (*dto.DeviceDTO, error) {
	device, err := s.deviceRepo.FindByBarcode(ctx, nil, barcode)
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]string{"barcode": barcode})
	s.bus.Publish(ctx, events.DeviceChangedEvent{
		Action:    constants.ActionDeviceSearched,
		DeviceID:  device.ID,
		Actor:     actor,
		NewValues: payload,
	})

	return s.toDTO(ctx, device)
}

func (s *DeviceService) CreateDevice(ctx context.Context, actor entities.Actor, payload dto.CreateDeviceDTO) (*dto.DeviceDTO, error) {
	device := entities.Device{
		Barcode:        payload.Barcode,
		Name:           payload.Name,
		Type:           payload.Type,
		Brand:          payload.Brand,
		Model:          payload.Model,
		SerialNumber:   payload.SerialNumber,
		Description:    payload.Description,
		PurchaseDate:   payload.PurchaseDate,
		PurchasePrice:  payload.PurchasePrice,
		WarrantyExpiry: payload.WarrantyExpiry,
		Location:       payload.Location,
		Status:         entities.DeviceAvailable,
	}
	if payload.BaselineQuantity != nil {
		device.BaselineQuantity = *payload.BaselineQuantity
	}
	if payload.MinimumQuantity != nil {
		device.MinimumQuantity = *payload.MinimumQuantity
	}

	id, err := s.deviceRepo.Create(ctx, nil, device)
	if err != nil {
		return nil, err
	}
	device.ID = id

	newValues, _ := json.Marshal(payload)
	s.bus.Publish(ctx, events.DeviceChangedEvent{
		Action:    constants.ActionDeviceAdded,
		DeviceID:  id,
		Actor:     actor,
		NewValues: newValues,
	})

	s.logger.Info("устройство создано",
		zap.Uint64("deviceID", id),
		zap.String("barcode", device.Barcode),
	)

	return s.FindDevice(ctx, id)
}

func (s *DeviceService) UpdateDevice(ctx context.Context, actor entities.Actor, id uint64, payload dto.UpdateDeviceDTO) (*dto.DeviceDTO, error) {
	var oldValues []byte

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		device, err := s.deviceRepo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		oldValues, _ = json.Marshal(device)

		if payload.Name != nil {
			device.Name = *payload.Name
		}
		if payload.Type != nil {
			device.Type = *payload.Type
		}
		if payload.Brand.Valid {
			device.Brand = payload.Brand
		}
		if payload.Model.Valid {
			device.Model = payload.Model
		}
		if payload.SerialNumber.Valid {
			device.SerialNumber = payload.SerialNumber
		}
		if payload.Description.Valid {
			device.Description = payload.Description
		}
		if payload.PurchaseDate.Valid {
			device.PurchaseDate = payload.PurchaseDate
		}
		if payload.PurchasePrice.Valid {
			device.PurchasePrice = payload.PurchasePrice
		}
		if payload.WarrantyExpiry.Valid {
			device.WarrantyExpiry = payload.WarrantyExpiry
		}
		if payload.Location.Valid {
			device.Location = payload.Location
		}
		if payload.Status != nil {
			status := entities.DeviceStatus(*payload.Status)
			if !status.Valid() {
				return apperrors.NewInvalidInputError("недопустимый статус устройства: %s", *payload.Status)
			}
			device.Status = status
		}
		// Прямая правка базового количества - единственный способ его
		// изменить после создания; журнал операций при этом не трогается.
		if payload.BaselineQuantity != nil {
			if *payload.BaselineQuantity < 0 {
				return apperrors.NewInvalidInputError("базовое количество не может быть отрицательным")
			}
			device.BaselineQuantity = *payload.BaselineQuantity
		}
		if payload.MinimumQuantity != nil {
			if *payload.MinimumQuantity < 0 {
				return apperrors.NewInvalidInputError("минимальное количество не может быть отрицательным")
			}
			device.MinimumQuantity = *payload.MinimumQuantity
		}

		return s.deviceRepo.Update(ctx, tx, id, *device)
	})
	if err != nil {
		return nil, err
	}

	newValues, _ := json.Marshal(payload)
	s.bus.Publish(ctx, events.DeviceChangedEvent{
		Action:    constants.ActionDeviceUpdated,
		DeviceID:  id,
		Actor:     actor,
		OldValues: oldValues,
		NewValues: newValues,
	})

	return s.FindDevice(ctx, id)
}

// DeleteDevice удаляет устройство, если с ним не связано ни одной операции.
func (s *DeviceService) DeleteDevice(ctx context.Context, actor entities.Actor, id uint64) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.deviceRepo.FindByID(ctx, tx, id); err != nil {
			return err
		}

		count, err := s.deviceRepo.CountOperations(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrHasDependentOperations
		}

		return s.deviceRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.DeviceChangedEvent{
		Action:   constants.ActionDeviceDeleted,
		DeviceID: id,
		Actor:    actor,
	})

	s.logger.Info("устройство удалено", zap.Uint64("deviceID", id))
	return nil
}
