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
	userTable  = "users"
	userFields = "id, username, password_hash, full_name, email, phone, role, department, is_active, created_at, updated_at"
)

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error)
	FindByUsername(ctx context.Context, tx pgx.Tx, username string) (*entities.User, error)
	// ActiveAdminIDs возвращает идентификаторы всех активных администраторов.
	ActiveAdminIDs(ctx context.Context) ([]uint64, error)
	GetAll(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error)
	Create(ctx context.Context, tx pgx.Tx, user entities.User) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, id uint64, user entities.User) error
	UpdatePassword(ctx context.Context, tx pgx.Tx, id uint64, passwordHash string) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type userRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &userRepository{storage: storage, logger: logger}
}

func (r *userRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *userRepository) scanRow(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Phone,
		&u.Role, &u.Department, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("сканирование users", err)
	}
	return &u, nil
}

func (r *userRepository) findOne(ctx context.Context, querier Querier, where sq.Eq) (*entities.User, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(userFields).From(userTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для поиска пользователя: %w", err)
	}
	return r.scanRow(querier.QueryRow(ctx, query, args...))
}

func (r *userRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id})
}

func (r *userRepository) FindByUsername(ctx context.Context, tx pgx.Tx, username string) (*entities.User, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"username": username})
}

func (r *userRepository) ActiveAdminIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT id FROM users WHERE role = 'admin' AND is_active = TRUE`)
	if err != nil {
		return nil, apperrors.NewStorageError("выборка администраторов", err)
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewStorageError("сканирование администраторов", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *userRepository) GetAll(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(*)").From(userTable + " u")
	listBuilder := psql.Select(
		"u.id", "u.username", "u.full_name", "u.email", "u.phone",
		"u.role", "u.department", "u.is_active",
		"(SELECT COUNT(*) FROM inventory_operations o WHERE o.user_id = u.id) AS operations_count",
		"u.created_at",
	).From(userTable + " u")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		cond := sq.Or{
			sq.ILike{"u.username": pattern},
			sq.ILike{"u.full_name": pattern},
		}
		countBuilder = countBuilder.Where(cond)
		listBuilder = listBuilder.Where(cond)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта пользователей: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStorageError("подсчёт users", err)
	}

	query, args, err := listBuilder.
		OrderBy("u.full_name ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка пользователей: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("выборка users", err)
	}
	defer rows.Close()

	users := make([]dto.UserDTO, 0)
	for rows.Next() {
		var u dto.UserDTO
		var createdAt time.Time
		err := rows.Scan(
			&u.ID, &u.Username, &u.FullName, &u.Email, &u.Phone,
			&u.Role, &u.Department, &u.IsActive,
			&u.OperationsCount,
			&createdAt,
		)
		if err != nil {
			return nil, 0, apperrors.NewStorageError("сканирование списка users", err)
		}
		u.CreatedAt = createdAt.Format("2006-01-02, 15:04:05")
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewStorageError("обход списка users", err)
	}

	return users, total, nil
}

func (r *userRepository) Create(ctx context.Context, tx pgx.Tx, user entities.User) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(userTable).
		Columns("username", "password_hash", "full_name", "email", "phone",
			"role", "department", "is_active", "created_at", "updated_at").
		Values(user.Username, user.PasswordHash, user.FullName, user.Email, user.Phone,
			user.Role, user.Department, user.IsActive, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса создания пользователя: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, apperrors.ErrDuplicateUsername
		}
		return 0, apperrors.NewStorageError("создание users", err)
	}
	return newID, nil
}

func (r *userRepository) Update(ctx context.Context, tx pgx.Tx, id uint64, user entities.User) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(userTable).
		Set("full_name", user.FullName).
		Set("email", user.Email).
		Set("phone", user.Phone).
		Set("role", user.Role).
		Set("department", user.Department).
		Set("is_active", user.IsActive).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса обновления пользователя: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return apperrors.NewStorageError("обновление users", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, tx pgx.Tx, id uint64, passwordHash string) error {
	result, err := r.getQuerier(tx).Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return apperrors.NewStorageError("смена пароля", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	result, err := r.getQuerier(tx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ErrHasDependentOperations
		}
		return apperrors.NewStorageError("удаление users", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
