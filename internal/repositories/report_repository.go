package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-system/internal/dto"
	apperrors "inventory-system/pkg/errors"
)

type ReportRepositoryInterface interface {
	InventoryReport(ctx context.Context, filter dto.ReportFilterDTO) ([]dto.InventoryReportRowDTO, error)
	EmployeeOperations(ctx context.Context, filter dto.ReportFilterDTO) ([]dto.EmployeeOperationsRowDTO, error)
	MostUsedDevices(ctx context.Context, limit uint64) ([]dto.MostUsedDeviceRowDTO, error)
	DailyOperations(ctx context.Context, filter dto.ReportFilterDTO) ([]dto.DailyOperationsRowDTO, error)
	Stats(ctx context.Context) (*dto.InventoryStatsDTO, error)
}

type reportRepository struct {
	storage *pgxpool.Pool
}

func NewReportRepository(storage *pgxpool.Pool) ReportRepositoryInterface {
	return &reportRepository{storage: storage}
}

func (r *reportRepository) InventoryReport(ctx context.Context, filter dto.ReportFilterDTO) ([]dto.InventoryReportRowDTO, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	builder := psql.Select(
		"d.id", "d.barcode", "d.name", "d.type", "d.brand", "d.model",
		"d.status", "d.location", "d.baseline_quantity", "d.minimum_quantity",
		`COALESCE(SUM(o.quantity) FILTER (WHERE o.status = 'approved' AND o.operation_type = 'add'), 0) AS total_added`,
		`COALESCE(SUM(o.quantity) FILTER (WHERE o.status = 'approved' AND o.operation_type = 'remove'), 0) AS total_removed`,
	).
		From("devices d").
		LeftJoin("inventory_operations o ON o.device_id = d.id").
		GroupBy("d.id").
		OrderBy("d.name ASC")

	if filter.DeviceType != "" {
		builder = builder.Where(sq.Eq{"d.type": filter.DeviceType})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"d.status": filter.Status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса отчёта по складу: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("отчёт по складу", err)
	}
	defer rows.Close()

	result := make([]dto.InventoryReportRowDTO, 0)
	for rows.Next() {
		var row dto.InventoryReportRowDTO
		err := rows.Scan(
			&row.DeviceID, &row.Barcode, &row.Name, &row.Type, &row.Brand, &row.Model,
			&row.Status, &row.Location, &row.BaselineQuantity, &row.MinimumQuantity,
			&row.TotalAdded, &row.TotalRemoved,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("сканирование отчёта по складу", err)
		}
		row.CalculatedQuantity = row.BaselineQuantity + row.TotalAdded - row.TotalRemoved
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepository) EmployeeOperations(ctx context.Context, filter dto.ReportFilterDTO) ([]dto.EmployeeOperationsRowDTO, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	builder := psql.Select(
		"u.id", "u.full_name", "u.username", "u.department",
		"COUNT(o.id) AS total_operations",
		`COUNT(o.id) FILTER (WHERE o.operation_type = 'add') AS add_operations`,
		`COUNT(o.id) FILTER (WHERE o.operation_type = 'remove') AS remove_operations`,
		`COUNT(o.id) FILTER (WHERE o.status = 'pending') AS pending_operations`,
		`COUNT(o.id) FILTER (WHERE o.status = 'approved') AS approved_operations`,
		`COUNT(o.id) FILTER (WHERE o.status = 'rejected') AS rejected_operations`,
		`COALESCE(SUM(o.quantity) FILTER (WHERE o.status = 'approved' AND o.operation_type = 'add'), 0) AS total_added_quantity`,
		`COALESCE(SUM(o.quantity) FILTER (WHERE o.status = 'approved' AND o.operation_type = 'remove'), 0) AS total_removed_quantity`,
	).
		From("users u").
		LeftJoin("inventory_operations o ON o.user_id = u.id").
		GroupBy("u.id").
		OrderBy("total_operations DESC")

	if filter.UserID != 0 {
		builder = builder.Where(sq.Eq{"u.id": filter.UserID})
	}
	if filter.DateFrom != "" {
		builder = builder.Where(sq.GtOrEq{"o.operation_date": filter.DateFrom})
	}
	if filter.DateTo != "" {
		builder = builder.Where(sq.LtOrEq{"o.operation_date": filter.DateTo})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса отчёта по сотрудникам: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("отчёт по сотрудникам", err)
	}
	defer rows.Close()

	result := make([]dto.EmployeeOperationsRowDTO, 0)
	for rows.Next() {
		var row dto.EmployeeOperationsRowDTO
		err := rows.Scan(
			&row.UserID, &row.FullName, &row.Username, &row.Department,
			&row.TotalOperations, &row.AddOperations, &row.RemoveOperations,
			&row.PendingOperations, &row.ApprovedOperations, &row.RejectedOperations,
			&row.TotalAddedQuantity, &row.TotalRemovedQuantity,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("сканирование отчёта по сотрудникам", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepository) MostUsedDevices(ctx context.Context, limit uint64) ([]dto.MostUsedDeviceRowDTO, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT d.id, d.name, d.barcode,
		       COUNT(o.id) AS operations_count,
		       COALESCE(SUM(o.quantity), 0) AS total_quantity
		FROM devices d
		JOIN inventory_operations o ON o.device_id = d.id
		GROUP BY d.id
		ORDER BY operations_count DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("отчёт по популярным устройствам", err)
	}
	defer rows.Close()

	result := make([]dto.MostUsedDeviceRowDTO, 0)
	for rows.Next() {
		var row dto.MostUsedDeviceRowDTO
		if err := rows.Scan(&row.DeviceID, &row.Name, &row.Barcode, &row.OperationsCount, &row.TotalQuantity); err != nil {
			return nil, apperrors.NewStorageError("сканирование отчёта по устройствам", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepository) DailyOperations(ctx context.Context, filter dto.ReportFilterDTO) ([]dto.DailyOperationsRowDTO, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	builder := psql.Select(
		`TO_CHAR(o.operation_date, 'YYYY-MM-DD') AS day`,
		"COUNT(*) AS total_operations",
		`COUNT(*) FILTER (WHERE o.operation_type = 'add') AS add_operations`,
		`COUNT(*) FILTER (WHERE o.operation_type = 'remove') AS remove_operations`,
	).
		From("inventory_operations o").
		GroupBy("day").
		OrderBy("day DESC")

	if filter.DateFrom != "" {
		builder = builder.Where(sq.GtOrEq{"o.operation_date": filter.DateFrom})
	}
	if filter.DateTo != "" {
		builder = builder.Where(sq.LtOrEq{"o.operation_date": filter.DateTo})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса отчёта по дням: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("отчёт по дням", err)
	}
	defer rows.Close()

	result := make([]dto.DailyOperationsRowDTO, 0)
	for rows.Next() {
		var row dto.DailyOperationsRowDTO
		if err := rows.Scan(&row.Day, &row.TotalOperations, &row.AddOperations, &row.RemoveOperations); err != nil {
			return nil, apperrors.NewStorageError("сканирование отчёта по дням", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepository) Stats(ctx context.Context) (*dto.InventoryStatsDTO, error) {
	var stats dto.InventoryStatsDTO
	err := r.storage.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM devices),
			(SELECT COUNT(*) FROM devices WHERE status = 'available'),
			(SELECT COUNT(*) FROM devices WHERE status = 'assigned'),
			(SELECT COUNT(*) FROM inventory_operations WHERE status = 'pending'),
			(SELECT COUNT(*) FROM inventory_operations WHERE operation_date >= CURRENT_DATE),
			(SELECT COUNT(*) FROM devices d
			 WHERE d.minimum_quantity > 0
			   AND d.baseline_quantity + COALESCE((
					SELECT SUM(CASE WHEN o.operation_type = 'add' THEN o.quantity ELSE -o.quantity END)
					FROM inventory_operations o
					WHERE o.device_id = d.id AND o.status = 'approved'
			   ), 0) <= d.minimum_quantity)`,
	).Scan(
		&stats.TotalDevices, &stats.AvailableDevices, &stats.AssignedDevices,
		&stats.PendingOperations, &stats.TodayOperations, &stats.LowStockDevices,
	)
	if err != nil {
		return nil, apperrors.NewStorageError("сводка по складу", err)
	}
	return &stats, nil
}
