package repositories

import (
	"context"
	"testing"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDeviceRepository_Integration_CreateAndFind(t *testing.T) {
	require.NotNil(t, testPool, "testPool не инициализирован")
	cleanupTables(t, testPool)
	repo := NewDeviceRepository(testPool, zap.NewNop())

	device := entities.Device{
		Barcode:          "4870005555551",
		Name:             "Монитор Dell U2422H",
		Type:             "monitor",
		Brand:            null.StringFrom("Dell"),
		Status:           entities.DeviceAvailable,
		BaselineQuantity: 15,
		MinimumQuantity:  3,
	}

	newID, err := repo.Create(context.Background(), nil, device)
	require.NoError(t, err)
	require.True(t, newID > 0)

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(context.Background(), nil, newID)
		require.NoError(t, err)
		assert.Equal(t, "Монитор Dell U2422H", found.Name)
		assert.Equal(t, int64(15), found.BaselineQuantity)
	})

	t.Run("find by barcode", func(t *testing.T) {
		found, err := repo.FindByBarcode(context.Background(), nil, "4870005555551")
		require.NoError(t, err)
		assert.Equal(t, newID, found.ID)
	})

	t.Run("duplicate barcode", func(t *testing.T) {
		_, err := repo.Create(context.Background(), nil, device)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateBarcode)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(context.Background(), nil, 99999)
		assert.ErrorIs(t, err, apperrors.ErrDeviceNotFound)

		_, err = repo.FindByBarcode(context.Background(), nil, "0000000000000")
		assert.ErrorIs(t, err, apperrors.ErrDeviceNotFound)
	})
}

func TestDeviceRepository_Integration_GetAllCalculatedQuantity(t *testing.T) {
	cleanupTables(t, testPool)
	_, employeeID, deviceID := seedData(t, testPool)
	repo := NewDeviceRepository(testPool, zap.NewNop())

	// Базовое количество 10, утверждённые операции +5 -3, pending не учитывается.
	insertOperation(t, testPool, deviceID, employeeID, "add", 5, "approved")
	insertOperation(t, testPool, deviceID, employeeID, "remove", 3, "approved")
	insertOperation(t, testPool, deviceID, employeeID, "remove", 100, "pending")

	devices, total, err := repo.GetAll(context.Background(), types.Filter{Limit: 20}, dto.DeviceListFilterDTO{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, devices, 1)
	assert.Equal(t, int64(12), devices[0].CalculatedQuantity, "Остаток: 10 + 5 - 3 = 12")
	assert.Equal(t, int64(10), devices[0].BaselineQuantity, "Базовое количество операциями не меняется")
}

func TestDeviceRepository_Integration_GetAllFilters(t *testing.T) {
	cleanupTables(t, testPool)
	seedData(t, testPool)
	repo := NewDeviceRepository(testPool, zap.NewNop())

	_, err := repo.Create(context.Background(), nil, entities.Device{
		Barcode: "4870005555568", Name: "Принтер HP M404", Type: "printer", Status: entities.DeviceMaintenance,
	})
	require.NoError(t, err)

	t.Run("search by name", func(t *testing.T) {
		devices, total, err := repo.GetAll(context.Background(), types.Filter{Limit: 20}, dto.DeviceListFilterDTO{Search: "принтер"})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, devices, 1)
		assert.Equal(t, "Принтер HP M404", devices[0].Name)
	})

	t.Run("filter by status", func(t *testing.T) {
		_, total, err := repo.GetAll(context.Background(), types.Filter{Limit: 20}, dto.DeviceListFilterDTO{Status: "maintenance"})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
	})

	t.Run("filter by type", func(t *testing.T) {
		_, total, err := repo.GetAll(context.Background(), types.Filter{Limit: 20}, dto.DeviceListFilterDTO{Type: "laptop"})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
	})
}

func TestDeviceRepository_Integration_Update(t *testing.T) {
	cleanupTables(t, testPool)
	_, _, deviceID := seedData(t, testPool)
	repo := NewDeviceRepository(testPool, zap.NewNop())

	device, err := repo.FindByID(context.Background(), nil, deviceID)
	require.NoError(t, err)

	device.Name = "Тестовый ноутбук (обновлён)"
	device.BaselineQuantity = 25
	err = repo.Update(context.Background(), nil, deviceID, *device)
	require.NoError(t, err)

	updated, err := repo.FindByID(context.Background(), nil, deviceID)
	require.NoError(t, err)
	assert.Equal(t, "Тестовый ноутбук (обновлён)", updated.Name)
	assert.Equal(t, int64(25), updated.BaselineQuantity)

	err = repo.Update(context.Background(), nil, 99999, *device)
	assert.ErrorIs(t, err, apperrors.ErrDeviceNotFound)
}

func TestDeviceRepository_Integration_Delete(t *testing.T) {
	cleanupTables(t, testPool)
	_, employeeID, deviceID := seedData(t, testPool)
	repo := NewDeviceRepository(testPool, zap.NewNop())

	t.Run("blocked by ledger", func(t *testing.T) {
		insertOperation(t, testPool, deviceID, employeeID, "add", 1, "approved")

		count, err := repo.CountOperations(context.Background(), nil, deviceID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)

		err = repo.Delete(context.Background(), nil, deviceID)
		assert.ErrorIs(t, err, apperrors.ErrHasDependentOperations, "Устройство с историей операций удалять нельзя")
	})

	t.Run("success without history", func(t *testing.T) {
		freeID, err := repo.Create(context.Background(), nil, entities.Device{
			Barcode: "4870005555575", Name: "Сканер без истории", Type: "scanner", Status: entities.DeviceAvailable,
		})
		require.NoError(t, err)

		err = repo.Delete(context.Background(), nil, freeID)
		require.NoError(t, err)

		_, err = repo.FindByID(context.Background(), nil, freeID)
		assert.ErrorIs(t, err, apperrors.ErrDeviceNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		err := repo.Delete(context.Background(), nil, 99999)
		assert.ErrorIs(t, err, apperrors.ErrDeviceNotFound)
	})
}
