package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

type ActivityRepositoryInterface interface {
	Create(ctx context.Context, entry entities.ActivityEntry) error
	GetAll(ctx context.Context, filter types.Filter, activityFilter dto.ActivityListFilterDTO) ([]dto.ActivityEntryDTO, uint64, error)
}

type activityRepository struct {
	storage *pgxpool.Pool
}

func NewActivityRepository(storage *pgxpool.Pool) ActivityRepositoryInterface {
	return &activityRepository{storage: storage}
}

func (r *activityRepository) Create(ctx context.Context, entry entities.ActivityEntry) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO activity_log (user_id, action, entity_type, entity_id, old_values, new_values, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		entry.UserID, entry.Action, entry.EntityType, entry.EntityID, entry.OldValues, entry.NewValues,
	)
	if err != nil {
		return apperrors.NewStorageError("создание activity_log", err)
	}
	return nil
}

func (r *activityRepository) GetAll(ctx context.Context, filter types.Filter, activityFilter dto.ActivityListFilterDTO) ([]dto.ActivityEntryDTO, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	conds := sq.And{}
	if activityFilter.UserID != 0 {
		conds = append(conds, sq.Eq{"a.user_id": activityFilter.UserID})
	}
	if activityFilter.Action != "" {
		conds = append(conds, sq.Eq{"a.action": activityFilter.Action})
	}
	if activityFilter.DateFrom != "" {
		conds = append(conds, sq.GtOrEq{"a.created_at": activityFilter.DateFrom})
	}
	if activityFilter.DateTo != "" {
		conds = append(conds, sq.LtOrEq{"a.created_at": activityFilter.DateTo})
	}

	countBuilder := psql.Select("COUNT(*)").From("activity_log a")
	if len(conds) > 0 {
		countBuilder = countBuilder.Where(conds)
	}
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта журнала действий: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStorageError("подсчёт activity_log", err)
	}

	listBuilder := psql.Select(
		"a.id", "a.user_id", "u.full_name", "a.action",
		"a.entity_type", "a.entity_id", "a.old_values", "a.new_values", "a.created_at",
	).
		From("activity_log a").
		Join("users u ON u.id = a.user_id")
	if len(conds) > 0 {
		listBuilder = listBuilder.Where(conds)
	}

	query, args, err := listBuilder.
		OrderBy("a.created_at DESC", "a.id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса журнала действий: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("выборка activity_log", err)
	}
	defer rows.Close()

	entries := make([]dto.ActivityEntryDTO, 0)
	for rows.Next() {
		var e dto.ActivityEntryDTO
		var entry entities.ActivityEntry
		var createdAt time.Time
		err := rows.Scan(
			&e.ID, &e.UserID, &e.UserName, &e.Action,
			&entry.EntityType, &entry.EntityID, &entry.OldValues, &entry.NewValues,
			&createdAt,
		)
		if err != nil {
			return nil, 0, apperrors.NewStorageError("сканирование activity_log", err)
		}
		e.EntityType = entry.EntityType.String
		e.EntityID = entry.EntityID.Uint64
		e.OldValues = string(entry.OldValues.JSON)
		e.NewValues = string(entry.NewValues.JSON)
		e.CreatedAt = createdAt.Format("2006-01-02, 15:04:05")
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewStorageError("обход activity_log", err)
	}

	return entries, total, nil
}
