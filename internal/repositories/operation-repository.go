package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

const operationTable = "inventory_operations"

const operationJoinedFields = `
	o.id, o.device_id, d.name, d.barcode, d.type,
	o.user_id, u.full_name,
	o.operation_type, o.quantity, o.reason, o.notes, o.location, o.status,
	approver.full_name, o.approval_date, o.operation_date`

type OperationRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, op entities.Operation) (uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Operation, error)
	FindDetailByID(ctx context.Context, id uint64) (*dto.OperationDTO, error)
	// SumApproved возвращает знаковую сумму утверждённых операций устройства.
	// Внутри транзакции с заблокированной строкой устройства сумма стабильна.
	SumApproved(ctx context.Context, tx pgx.Tx, deviceID uint64) (int64, error)
	// Resolve атомарно переводит pending-операцию в терминальный статус.
	// Возвращает false, если операция не найдена либо уже не pending.
	Resolve(ctx context.Context, tx pgx.Tx, id uint64, status entities.OperationStatus, approvedBy uint64, notes null.String) (bool, error)
	GetAll(ctx context.Context, filter types.Filter, opFilter dto.OperationListFilterDTO) ([]dto.OperationDTO, uint64, error)
	CountByUser(ctx context.Context, tx pgx.Tx, userID uint64) (uint64, error)
}

type operationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOperationRepository(storage *pgxpool.Pool, logger *zap.Logger) OperationRepositoryInterface {
	return &operationRepository{storage: storage, logger: logger}
}

func (r *operationRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *operationRepository) Create(ctx context.Context, tx pgx.Tx, op entities.Operation) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(operationTable).
		Columns("device_id", "user_id", "operation_type", "quantity",
			"status", "reason", "notes", "location",
			"approved_by", "approval_date", "operation_date", "created_at", "updated_at").
		Values(op.DeviceID, op.UserID, op.Type, op.Quantity,
			op.Status, op.Reason, op.Notes, op.Location,
			op.ApprovedBy, op.ApprovalDate, sq.Expr("NOW()"), sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса создания операции: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, apperrors.ErrDeviceNotFound
		}
		return 0, apperrors.NewStorageError("создание inventory_operations", err)
	}
	return newID, nil
}

func (r *operationRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Operation, error) {
	var op entities.Operation
	err := r.getQuerier(tx).QueryRow(ctx, `
		SELECT id, device_id, user_id, operation_type, quantity,
		       reason, notes, location, status, approved_by, approval_date, operation_date
		FROM inventory_operations
		WHERE id = $1`, id,
	).Scan(
		&op.ID, &op.DeviceID, &op.UserID, &op.Type, &op.Quantity,
		&op.Reason, &op.Notes, &op.Location, &op.Status,
		&op.ApprovedBy, &op.ApprovalDate, &op.OperationDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOperationNotFound
		}
		return nil, apperrors.NewStorageError("поиск inventory_operations", err)
	}
	return &op, nil
}

func (r *operationRepository) FindDetailByID(ctx context.Context, id uint64) (*dto.OperationDTO, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_operations o
		JOIN devices d ON d.id = o.device_id
		JOIN users u ON u.id = o.user_id
		LEFT JOIN users approver ON approver.id = o.approved_by
		WHERE o.id = $1`, operationJoinedFields)

	op, err := r.scanJoinedRow(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return op, nil
}

func (r *operationRepository) scanJoinedRow(row pgx.Row) (*dto.OperationDTO, error) {
	var op dto.OperationDTO
	var approvalDate null.Time
	var operationDate time.Time

	err := row.Scan(
		&op.ID, &op.DeviceID, &op.DeviceName, &op.Barcode, &op.DeviceType,
		&op.UserID, &op.UserName,
		&op.Type, &op.Quantity, &op.Reason, &op.Notes, &op.Location, &op.Status,
		&op.ApprovedByName, &approvalDate, &operationDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOperationNotFound
		}
		return nil, apperrors.NewStorageError("сканирование inventory_operations", err)
	}

	if approvalDate.Valid {
		op.ApprovalDate = null.StringFrom(approvalDate.Time.Format("2006-01-02, 15:04:05"))
	}
	op.OperationDate = operationDate.Format("2006-01-02, 15:04:05")

	return &op, nil
}

func (r *operationRepository) SumApproved(ctx context.Context, tx pgx.Tx, deviceID uint64) (int64, error) {
	var sum int64
	err := r.getQuerier(tx).QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN operation_type = 'add' THEN quantity ELSE -quantity END), 0)
		FROM inventory_operations
		WHERE device_id = $1 AND status = 'approved'`, deviceID,
	).Scan(&sum)
	if err != nil {
		return 0, apperrors.NewStorageError("свёртка утверждённых операций", err)
	}
	return sum, nil
}

func (r *operationRepository) Resolve(ctx context.Context, tx pgx.Tx, id uint64, status entities.OperationStatus, approvedBy uint64, notes null.String) (bool, error) {
	// Сравнение со статусом прямо в WHERE исключает гонку двух администраторов:
	// выигрывает ровно один UPDATE.
	result, err := r.getQuerier(tx).Exec(ctx, `
		UPDATE inventory_operations
		SET status = $2,
		    approved_by = $3,
		    approval_date = NOW(),
		    notes = COALESCE($4, notes),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, status, approvedBy, notes,
	)
	if err != nil {
		return false, apperrors.NewStorageError("смена статуса операции", err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *operationRepository) GetAll(ctx context.Context, filter types.Filter, opFilter dto.OperationListFilterDTO) ([]dto.OperationDTO, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	conds := sq.And{}
	if opFilter.UserID != 0 {
		conds = append(conds, sq.Eq{"o.user_id": opFilter.UserID})
	}
	if opFilter.DeviceID != 0 {
		conds = append(conds, sq.Eq{"o.device_id": opFilter.DeviceID})
	}
	if opFilter.Type != "" {
		conds = append(conds, sq.Eq{"o.operation_type": opFilter.Type})
	}
	if opFilter.Status != "" {
		conds = append(conds, sq.Eq{"o.status": opFilter.Status})
	}
	if opFilter.DateFrom != "" {
		conds = append(conds, sq.GtOrEq{"o.operation_date": opFilter.DateFrom})
	}
	if opFilter.DateTo != "" {
		conds = append(conds, sq.LtOrEq{"o.operation_date": opFilter.DateTo})
	}

	countBuilder := psql.Select("COUNT(*)").From(operationTable + " o")
	if len(conds) > 0 {
		countBuilder = countBuilder.Where(conds)
	}
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта операций: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStorageError("подсчёт inventory_operations", err)
	}

	listBuilder := psql.Select(operationJoinedFields).
		From(operationTable + " o").
		Join("devices d ON d.id = o.device_id").
		Join("users u ON u.id = o.user_id").
		LeftJoin("users approver ON approver.id = o.approved_by")
	if len(conds) > 0 {
		listBuilder = listBuilder.Where(conds)
	}
	listBuilder = listBuilder.
		OrderBy("o.operation_date DESC", "o.id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка операций: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("выборка inventory_operations", err)
	}
	defer rows.Close()

	operations := make([]dto.OperationDTO, 0)
	for rows.Next() {
		op, err := r.scanJoinedRow(rows)
		if err != nil {
			return nil, 0, err
		}
		operations = append(operations, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewStorageError("обход списка inventory_operations", err)
	}

	return operations, total, nil
}

func (r *operationRepository) CountByUser(ctx context.Context, tx pgx.Tx, userID uint64) (uint64, error) {
	var count uint64
	err := r.getQuerier(tx).QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_operations
		WHERE user_id = $1 OR approved_by = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStorageError("подсчёт операций пользователя", err)
	}
	return count, nil
}
