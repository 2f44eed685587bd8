package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

const (
	deviceTable  = "devices"
	deviceFields = "id, barcode, name, type, brand, model, serial_number, description, purchase_date, purchase_price, warranty_expiry, location, status, baseline_quantity, minimum_quantity, created_at, updated_at"
)

// calculatedQuantitySQL - свёртка журнала: базовое количество плюс сумма
// утверждённых операций со знаком. Единственное место, где остаток считается в SQL.
const calculatedQuantitySQL = `d.baseline_quantity + COALESCE((
	SELECT SUM(CASE WHEN o.operation_type = 'add' THEN o.quantity ELSE -o.quantity END)
	FROM inventory_operations o
	WHERE o.device_id = d.id AND o.status = 'approved'
), 0)`

type DeviceRepositoryInterface interface {
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Device, error)
	FindByBarcode(ctx context.Context, tx pgx.Tx, barcode string) (*entities.Device, error)
	// FindForUpdate блокирует строку устройства до конца транзакции.
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Device, error)
	GetAll(ctx context.Context, filter types.Filter, deviceFilter dto.DeviceListFilterDTO) ([]dto.DeviceDTO, uint64, error)
	Create(ctx context.Context, tx pgx.Tx, device entities.Device) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, id uint64, device entities.Device) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
	CountOperations(ctx context.Context, tx pgx.Tx, deviceID uint64) (uint64, error)
}

type deviceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDeviceRepository(storage *pgxpool.Pool, logger *zap.Logger) DeviceRepositoryInterface {
	return &deviceRepository{storage: storage, logger: logger}
}

func (r *deviceRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *deviceRepository) scanRow(row pgx.Row) (*entities.Device, error) {
	var d entities.Device
	err := row.Scan(
		&d.ID, &d.Barcode, &d.Name, &d.Type, &d.Brand, &d.Model, &d.SerialNumber,
		&d.Description, &d.PurchaseDate, &d.PurchasePrice, &d.WarrantyExpiry,
		&d.Location, &d.Status, &d.BaselineQuantity, &d.MinimumQuantity,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDeviceNotFound
		}
		return nil, apperrors.NewStorageError("сканирование devices", err)
	}
	return &d, nil
}

func (r *deviceRepository) findOne(ctx context.Context, querier Querier, where sq.Eq, suffix string) (*entities.Device, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(deviceFields).From(deviceTable).Where(where)
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для поиска устройства: %w", err)
	}
	return r.scanRow(querier.QueryRow(ctx, query, args...))
}

func (r *deviceRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Device, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id}, "")
}

func (r *deviceRepository) FindByBarcode(ctx context.Context, tx pgx.Tx, barcode string) (*entities.Device, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"barcode": barcode}, "")
}

func (r *deviceRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Device, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id}, "FOR UPDATE")
}

func (r *deviceRepository) GetAll(ctx context.Context, filter types.Filter, deviceFilter dto.DeviceListFilterDTO) ([]dto.DeviceDTO, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(*)").From(deviceTable + " d")
	listBuilder := psql.Select(
		"d.id", "d.barcode", "d.name", "d.type", "d.brand", "d.model",
		"d.serial_number", "d.description", "d.purchase_date", "d.purchase_price",
		"d.warranty_expiry", "d.location", "d.status",
		"d.baseline_quantity", "d.minimum_quantity",
		calculatedQuantitySQL+" AS calculated_quantity",
		"d.created_at",
	).From(deviceTable + " d")

	if deviceFilter.Search != "" {
		pattern := "%" + deviceFilter.Search + "%"
		cond := sq.Or{
			sq.ILike{"d.name": pattern},
			sq.ILike{"d.barcode": pattern},
			sq.ILike{"d.model": pattern},
		}
		countBuilder = countBuilder.Where(cond)
		listBuilder = listBuilder.Where(cond)
	}
	if deviceFilter.Status != "" {
		countBuilder = countBuilder.Where(sq.Eq{"d.status": deviceFilter.Status})
		listBuilder = listBuilder.Where(sq.Eq{"d.status": deviceFilter.Status})
	}
	if deviceFilter.Type != "" {
		countBuilder = countBuilder.Where(sq.Eq{"d.type": deviceFilter.Type})
		listBuilder = listBuilder.Where(sq.Eq{"d.type": deviceFilter.Type})
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта устройств: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStorageError("подсчёт devices", err)
	}

	listBuilder = listBuilder.
		OrderBy("d.name ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка устройств: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("выборка devices", err)
	}
	defer rows.Close()

	devices := make([]dto.DeviceDTO, 0)
	for rows.Next() {
		var d dto.DeviceDTO
		var createdAt time.Time
		err := rows.Scan(
			&d.ID, &d.Barcode, &d.Name, &d.Type, &d.Brand, &d.Model,
			&d.SerialNumber, &d.Description, &d.PurchaseDate, &d.PurchasePrice,
			&d.WarrantyExpiry, &d.Location, &d.Status,
			&d.BaselineQuantity, &d.MinimumQuantity,
			&d.CalculatedQuantity,
			&createdAt,
		)
		if err != nil {
			return nil, 0, apperrors.NewStorageError("сканирование списка devices", err)
		}
		d.CreatedAt = createdAt.Format("2006-01-02, 15:04:05")
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewStorageError("обход списка devices", err)
	}

	return devices, total, nil
}

func (r *deviceRepository) Create(ctx context.Context, tx pgx.Tx, device entities.Device) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(deviceTable).
		Columns("barcode", "name", "type", "brand", "model", "serial_number",
			"description", "purchase_date", "purchase_price", "warranty_expiry",
			"location", "status", "baseline_quantity", "minimum_quantity",
			"created_at", "updated_at").
		Values(device.Barcode, device.Name, device.Type, device.Brand, device.Model,
			device.SerialNumber, device.Description, device.PurchaseDate,
			device.PurchasePrice, device.WarrantyExpiry, device.Location,
			device.Status, device.BaselineQuantity, device.MinimumQuantity,
			sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса создания устройства: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, apperrors.ErrDuplicateBarcode
		}
		return 0, apperrors.NewStorageError("создание devices", err)
	}
	return newID, nil
}

func (r *deviceRepository) Update(ctx context.Context, tx pgx.Tx, id uint64, device entities.Device) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(deviceTable).
		Set("name", device.Name).
		Set("type", device.Type).
		Set("brand", device.Brand).
		Set("model", device.Model).
		Set("serial_number", device.SerialNumber).
		Set("description", device.Description).
		Set("purchase_date", device.PurchaseDate).
		Set("purchase_price", device.PurchasePrice).
		Set("warranty_expiry", device.WarrantyExpiry).
		Set("location", device.Location).
		Set("status", device.Status).
		Set("baseline_quantity", device.BaselineQuantity).
		Set("minimum_quantity", device.MinimumQuantity).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса обновления устройства: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicateBarcode
		}
		return apperrors.NewStorageError("обновление devices", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrDeviceNotFound
	}
	return nil
}

func (r *deviceRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	result, err := r.getQuerier(tx).Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ErrHasDependentOperations
		}
		return apperrors.NewStorageError("удаление devices", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrDeviceNotFound
	}
	return nil
}

func (r *deviceRepository) CountOperations(ctx context.Context, tx pgx.Tx, deviceID uint64) (uint64, error) {
	var count uint64
	err := r.getQuerier(tx).QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_operations WHERE device_id = $1`, deviceID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStorageError("подсчёт операций устройства", err)
	}
	return count, nil
}
