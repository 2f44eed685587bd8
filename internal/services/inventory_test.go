package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/types"
)

// fakeTxManager выполняет функцию без реальной транзакции: фейковым
// хранилищам блокировки не нужны.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeDeviceRepo struct {
	devices map[uint64]*entities.Device
}

func (r *fakeDeviceRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.Device, error) {
	d, ok := r.devices[id]
	if !ok {
		return nil, apperrors.ErrDeviceNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDeviceRepo) FindByBarcode(_ context.Context, _ pgx.Tx, barcode string) (*entities.Device, error) {
	for _, d := range r.devices {
		if d.Barcode == barcode {
			copied := *d
			return &copied, nil
		}
	}
	return nil, apperrors.ErrDeviceNotFound
}

func (r *fakeDeviceRepo) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Device, error) {
	return r.FindByID(ctx, tx, id)
}

func (r *fakeDeviceRepo) GetAll(context.Context, types.Filter, dto.DeviceListFilterDTO) ([]dto.DeviceDTO, uint64, error) {
	return nil, 0, nil
}

func (r *fakeDeviceRepo) Create(_ context.Context, _ pgx.Tx, device entities.Device) (uint64, error) {
	id := uint64(len(r.devices) + 1)
	device.ID = id
	r.devices[id] = &device
	return id, nil
}

func (r *fakeDeviceRepo) Update(_ context.Context, _ pgx.Tx, id uint64, device entities.Device) error {
	if _, ok := r.devices[id]; !ok {
		return apperrors.ErrDeviceNotFound
	}
	device.ID = id
	r.devices[id] = &device
	return nil
}

func (r *fakeDeviceRepo) Delete(_ context.Context, _ pgx.Tx, id uint64) error {
	if _, ok := r.devices[id]; !ok {
		return apperrors.ErrDeviceNotFound
	}
	delete(r.devices, id)
	return nil
}

func (r *fakeDeviceRepo) CountOperations(context.Context, pgx.Tx, uint64) (uint64, error) {
	return 0, nil
}

type fakeOperationRepo struct {
	ops     map[uint64]*entities.Operation
	nextID  uint64
	devices *fakeDeviceRepo
}

func newFakeOperationRepo(devices *fakeDeviceRepo) *fakeOperationRepo {
	return &fakeOperationRepo{ops: make(map[uint64]*entities.Operation), nextID: 1, devices: devices}
}

func (r *fakeOperationRepo) Create(_ context.Context, _ pgx.Tx, op entities.Operation) (uint64, error) {
	if _, ok := r.devices.devices[op.DeviceID]; !ok {
		return 0, apperrors.ErrDeviceNotFound
	}
	op.ID = r.nextID
	r.nextID++
	r.ops[op.ID] = &op
	return op.ID, nil
}

func (r *fakeOperationRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.Operation, error) {
	op, ok := r.ops[id]
	if !ok {
		return nil, apperrors.ErrOperationNotFound
	}
	copied := *op
	return &copied, nil
}

func (r *fakeOperationRepo) FindDetailByID(_ context.Context, id uint64) (*dto.OperationDTO, error) {
	op, ok := r.ops[id]
	if !ok {
		return nil, apperrors.ErrOperationNotFound
	}
	detail := dto.OperationDTO{
		ID:       op.ID,
		DeviceID: op.DeviceID,
		UserID:   op.UserID,
		Type:     string(op.Type),
		Quantity: op.Quantity,
		Status:   string(op.Status),
		Notes:    op.Notes,
	}
	if d, ok := r.devices.devices[op.DeviceID]; ok {
		detail.DeviceName = d.Name
		detail.Barcode = d.Barcode
	}
	return &detail, nil
}

func (r *fakeOperationRepo) SumApproved(_ context.Context, _ pgx.Tx, deviceID uint64) (int64, error) {
	var sum int64
	for _, op := range r.ops {
		if op.DeviceID == deviceID && op.Status == entities.OperationApproved {
			sum += op.Type.SignedQuantity(op.Quantity)
		}
	}
	return sum, nil
}

func (r *fakeOperationRepo) Resolve(_ context.Context, _ pgx.Tx, id uint64, status entities.OperationStatus, approvedBy uint64, notes null.String) (bool, error) {
	op, ok := r.ops[id]
	if !ok || op.Status != entities.OperationPending {
		return false, nil
	}
	op.Status = status
	op.ApprovedBy = null.Uint64From(approvedBy)
	if notes.Valid {
		op.Notes = notes
	}
	return true, nil
}

func (r *fakeOperationRepo) GetAll(_ context.Context, _ types.Filter, opFilter dto.OperationListFilterDTO) ([]dto.OperationDTO, uint64, error) {
	result := make([]dto.OperationDTO, 0)
	for _, op := range r.ops {
		if opFilter.UserID != 0 && op.UserID != opFilter.UserID {
			continue
		}
		detail, _ := r.FindDetailByID(context.Background(), op.ID)
		result = append(result, *detail)
	}
	return result, uint64(len(result)), nil
}

func (r *fakeOperationRepo) CountByUser(_ context.Context, _ pgx.Tx, userID uint64) (uint64, error) {
	var count uint64
	for _, op := range r.ops {
		if op.UserID == userID || (op.ApprovedBy.Valid && op.ApprovedBy.Uint64 == userID) {
			count++
		}
	}
	return count, nil
}

var (
	testAdmin    = entities.Actor{ID: 1, Role: entities.RoleAdmin, FullName: "Администратор"}
	testEmployee = entities.Actor{ID: 2, Role: entities.RoleEmployee, FullName: "Сотрудник"}
)

// newTestInventoryService собирает сервис на фейковых хранилищах с одним
// устройством (id=1, штрих-код, базовое количество 10).
func newTestInventoryService() (InventoryServiceInterface, *fakeDeviceRepo, *fakeOperationRepo) {
	deviceRepo := &fakeDeviceRepo{devices: map[uint64]*entities.Device{
		1: {ID: 1, Barcode: "4870001000011", Name: "Ноутбук", Type: "laptop", Status: entities.DeviceAvailable, BaselineQuantity: 10},
	}}
	opRepo := newFakeOperationRepo(deviceRepo)
	svc := NewInventoryService(deviceRepo, opRepo, fakeTxManager{}, eventbus.New(zap.NewNop()), zap.NewNop())
	return svc, deviceRepo, opRepo
}

func TestInventoryService_SubmitOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("employee submission stays pending", func(t *testing.T) {
		svc, _, opRepo := newTestInventoryService()

		result, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{
			DeviceID: 1, Type: "remove", Quantity: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, "pending", result.Status)
		assert.Equal(t, "Ноутбук", result.Device.Name)
		// Заявка ещё не утверждена и остаток не трогает.
		require.True(t, result.AvailableQuantity.Valid)
		assert.Equal(t, int64(10), result.AvailableQuantity.Int64)

		op := opRepo.ops[result.OperationID]
		assert.Equal(t, entities.OperationPending, op.Status)
		assert.False(t, op.ApprovedBy.Valid)
	})

	t.Run("admin submission auto-approves", func(t *testing.T) {
		svc, _, opRepo := newTestInventoryService()

		result, err := svc.SubmitOperation(ctx, testAdmin, dto.SubmitOperationDTO{
			DeviceID: 1, Type: "add", Quantity: 5,
		})
		require.NoError(t, err)
		assert.Equal(t, "approved", result.Status)
		require.True(t, result.AvailableQuantity.Valid)
		assert.Equal(t, int64(15), result.AvailableQuantity.Int64)

		op := opRepo.ops[result.OperationID]
		assert.Equal(t, null.Uint64From(testAdmin.ID), op.ApprovedBy)
	})

	t.Run("device by barcode", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()

		result, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{
			Barcode: "4870001000011", Type: "add", Quantity: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), result.Device.ID)
	})

	t.Run("device reference required", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()

		_, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{Type: "add", Quantity: 1})
		var invalidErr *apperrors.InvalidInputError
		assert.ErrorAs(t, err, &invalidErr)
	})

	t.Run("unknown barcode", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()

		_, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{
			Barcode: "0000000000000", Type: "add", Quantity: 1,
		})
		assert.ErrorIs(t, err, apperrors.ErrDeviceNotFound)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()

		_, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{
			DeviceID: 1, Type: "add", Quantity: 0,
		})
		var invalidErr *apperrors.InvalidInputError
		assert.ErrorAs(t, err, &invalidErr)
	})

	t.Run("invalid operation type", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()

		_, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{
			DeviceID: 1, Type: "transfer", Quantity: 1,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidOperationType)
	})

	t.Run("insufficient quantity for removal", func(t *testing.T) {
		svc, _, opRepo := newTestInventoryService()

		_, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{
			DeviceID: 1, Type: "remove", Quantity: 11,
		})
		var insufficientErr *apperrors.InsufficientQuantityError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, int64(11), insufficientErr.Requested)
		assert.Equal(t, int64(10), insufficientErr.Available)
		assert.Empty(t, opRepo.ops, "Отклонённая на входе заявка не попадает в журнал")
	})

	t.Run("removal down to zero is allowed", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()

		result, err := svc.SubmitOperation(ctx, testAdmin, dto.SubmitOperationDTO{
			DeviceID: 1, Type: "remove", Quantity: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.AvailableQuantity.Int64)
	})
}

func TestInventoryService_ManualAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("employee adjustment stays pending", func(t *testing.T) {
		svc, _, opRepo := newTestInventoryService()

		result, err := svc.ManualAdjust(ctx, testEmployee, entities.OperationRemove, dto.ManualAdjustDTO{DeviceID: 1, Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, "pending", result.Status, "Корректировка сотрудника ждёт согласования, как и обычная заявка")
		assert.Equal(t, int64(10), result.AvailableQuantity.Int64, "Несогласованная корректировка остаток не меняет")

		op := opRepo.ops[result.OperationID]
		assert.Equal(t, entities.OperationPending, op.Status)
		assert.False(t, op.ApprovedBy.Valid)
	})

	t.Run("employee adjustment checked against remainder", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()

		_, err := svc.ManualAdjust(ctx, testEmployee, entities.OperationRemove, dto.ManualAdjustDTO{DeviceID: 1, Quantity: 11})
		var insufficientErr *apperrors.InsufficientQuantityError
		assert.ErrorAs(t, err, &insufficientErr)
	})

	t.Run("admin adjustment is approved immediately", func(t *testing.T) {
		svc, _, opRepo := newTestInventoryService()

		result, err := svc.ManualAdjust(ctx, testAdmin, entities.OperationRemove, dto.ManualAdjustDTO{DeviceID: 1, Quantity: 4})
		require.NoError(t, err)
		assert.Equal(t, "approved", result.Status)
		assert.Equal(t, int64(6), result.AvailableQuantity.Int64)
		assert.Equal(t, entities.OperationApproved, opRepo.ops[result.OperationID].Status)
	})

	t.Run("adjustment checked against remainder", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()

		_, err := svc.ManualAdjust(ctx, testAdmin, entities.OperationRemove, dto.ManualAdjustDTO{DeviceID: 1, Quantity: 50})
		var insufficientErr *apperrors.InsufficientQuantityError
		assert.ErrorAs(t, err, &insufficientErr)
	})
}

func TestInventoryService_ApproveOperation(t *testing.T) {
	ctx := context.Background()

	submitPending := func(t *testing.T, svc InventoryServiceInterface, opType string, quantity int64) uint64 {
		t.Helper()
		result, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{
			DeviceID: 1, Type: opType, Quantity: quantity,
		})
		require.NoError(t, err)
		return result.OperationID
	}

	t.Run("forbidden for employee", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()
		opID := submitPending(t, svc, "add", 1)

		_, err := svc.ApproveOperation(ctx, testEmployee, opID, dto.ResolveOperationDTO{})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("approve removal", func(t *testing.T) {
		svc, _, opRepo := newTestInventoryService()
		opID := submitPending(t, svc, "remove", 3)

		detail, err := svc.ApproveOperation(ctx, testAdmin, opID, dto.ResolveOperationDTO{Notes: null.StringFrom("проверено")})
		require.NoError(t, err)
		assert.Equal(t, "approved", detail.Status)
		assert.Equal(t, "проверено", detail.Notes.String)
		assert.Equal(t, null.Uint64From(testAdmin.ID), opRepo.ops[opID].ApprovedBy)

		remaining, err := svc.GetEffectiveQuantity(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(7), remaining, "Утверждённый расход уменьшает остаток")
	})

	t.Run("reject keeps remainder", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()
		opID := submitPending(t, svc, "remove", 3)

		detail, err := svc.RejectOperation(ctx, testAdmin, opID, dto.ResolveOperationDTO{})
		require.NoError(t, err)
		assert.Equal(t, "rejected", detail.Status)

		remaining, _ := svc.GetEffectiveQuantity(ctx, 1)
		assert.Equal(t, int64(10), remaining, "Отклонённая операция в свёртку не входит")
	})

	t.Run("sufficiency re-checked at approval", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()
		// Две заявки по 6: каждая по отдельности проходит, вместе - нет.
		firstID := submitPending(t, svc, "remove", 6)
		secondID := submitPending(t, svc, "remove", 6)

		_, err := svc.ApproveOperation(ctx, testAdmin, firstID, dto.ResolveOperationDTO{})
		require.NoError(t, err)

		_, err = svc.ApproveOperation(ctx, testAdmin, secondID, dto.ResolveOperationDTO{})
		var insufficientErr *apperrors.InsufficientQuantityError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, int64(6), insufficientErr.Requested)
		assert.Equal(t, int64(4), insufficientErr.Available)
	})

	t.Run("already resolved", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()
		opID := submitPending(t, svc, "add", 1)

		_, err := svc.ApproveOperation(ctx, testAdmin, opID, dto.ResolveOperationDTO{})
		require.NoError(t, err)

		_, err = svc.RejectOperation(ctx, testAdmin, opID, dto.ResolveOperationDTO{})
		assert.ErrorIs(t, err, apperrors.ErrNotApprovable)
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := newTestInventoryService()

		_, err := svc.ApproveOperation(ctx, testAdmin, 99999, dto.ResolveOperationDTO{})
		assert.ErrorIs(t, err, apperrors.ErrOperationNotFound)
	})
}

func TestInventoryService_GetEffectiveQuantity_NegativeFoldLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	deviceRepo := &fakeDeviceRepo{devices: map[uint64]*entities.Device{
		1: {ID: 1, Barcode: "4870001000011", Name: "Ноутбук", Type: "laptop", Status: entities.DeviceAvailable, BaselineQuantity: 0},
	}}
	opRepo := newFakeOperationRepo(deviceRepo)
	// Повреждённый журнал: утверждённый расход без покрытия, минуя контроль приёма.
	opRepo.ops[1] = &entities.Operation{ID: 1, DeviceID: 1, Type: entities.OperationRemove, Quantity: 5, Status: entities.OperationApproved}
	svc := NewInventoryService(deviceRepo, opRepo, fakeTxManager{}, eventbus.New(zap.NewNop()), zap.New(core))

	quantity, err := svc.GetEffectiveQuantity(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), quantity, "Аномалия возвращается как есть, без маскировки")

	require.Equal(t, 1, logs.Len(), "Отрицательная свёртка должна попасть в лог")
	assert.Equal(t, "отрицательный рассчитанный остаток", logs.All()[0].Message)
}

func TestInventoryService_GetOperation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestInventoryService()

	result, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{DeviceID: 1, Type: "add", Quantity: 1})
	require.NoError(t, err)

	t.Run("owner sees own operation", func(t *testing.T) {
		detail, err := svc.GetOperation(ctx, testEmployee, result.OperationID)
		require.NoError(t, err)
		assert.Equal(t, testEmployee.ID, detail.UserID)
	})

	t.Run("admin sees any operation", func(t *testing.T) {
		_, err := svc.GetOperation(ctx, testAdmin, result.OperationID)
		assert.NoError(t, err)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		stranger := entities.Actor{ID: 42, Role: entities.RoleEmployee}
		_, err := svc.GetOperation(ctx, stranger, result.OperationID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestInventoryService_GetOperations_ScopedForEmployee(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestInventoryService()

	_, err := svc.SubmitOperation(ctx, testEmployee, dto.SubmitOperationDTO{DeviceID: 1, Type: "add", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.SubmitOperation(ctx, testAdmin, dto.SubmitOperationDTO{DeviceID: 1, Type: "add", Quantity: 2})
	require.NoError(t, err)

	// Сотрудник получает только свои операции, даже запросив все.
	ops, total, err := svc.GetOperations(ctx, testEmployee, types.Filter{Limit: 20}, dto.OperationListFilterDTO{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, ops, 1)
	assert.Equal(t, testEmployee.ID, ops[0].UserID)

	_, total, err = svc.GetOperations(ctx, testAdmin, types.Filter{Limit: 20}, dto.OperationListFilterDTO{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
}
