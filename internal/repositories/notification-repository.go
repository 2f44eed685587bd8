package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n entities.Notification) error
	GetByUser(ctx context.Context, userID uint64, filter types.Filter, unreadOnly bool) ([]dto.NotificationDTO, uint64, error)
	CountUnread(ctx context.Context, userID uint64) (uint64, error)
	MarkRead(ctx context.Context, userID uint64, id uint64) error
	MarkAllRead(ctx context.Context, userID uint64) error
}

type notificationRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationRepository(storage *pgxpool.Pool) NotificationRepositoryInterface {
	return &notificationRepository{storage: storage}
}

func (r *notificationRepository) Create(ctx context.Context, n entities.Notification) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO notifications (user_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())`,
		n.UserID, n.Title, n.Message, n.Severity,
	)
	if err != nil {
		return apperrors.NewStorageError("создание notifications", err)
	}
	return nil
}

func (r *notificationRepository) GetByUser(ctx context.Context, userID uint64, filter types.Filter, unreadOnly bool) ([]dto.NotificationDTO, uint64, error) {
	countQuery := `SELECT COUNT(*) FROM notifications WHERE user_id = $1`
	listQuery := `
		SELECT id, title, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		countQuery += ` AND is_read = FALSE`
		listQuery += ` AND is_read = FALSE`
	}
	listQuery += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStorageError("подсчёт notifications", err)
	}

	rows, err := r.storage.Query(ctx, listQuery, userID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("выборка notifications", err)
	}
	defer rows.Close()

	notifications := make([]dto.NotificationDTO, 0)
	for rows.Next() {
		var n dto.NotificationDTO
		var createdAt time.Time
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Severity, &n.IsRead, &createdAt); err != nil {
			return nil, 0, apperrors.NewStorageError("сканирование notifications", err)
		}
		n.CreatedAt = createdAt.Format("2006-01-02, 15:04:05")
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewStorageError("обход notifications", err)
	}

	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint64) (uint64, error) {
	var count uint64
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStorageError("подсчёт непрочитанных notifications", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID uint64, id uint64) error {
	// user_id в WHERE не даёт пометить чужое уведомление.
	result, err := r.storage.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewStorageError("отметка notifications", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint64) error {
	_, err := r.storage.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return apperrors.NewStorageError("отметка всех notifications", err)
	}
	return nil
}
