package services

import (
	"context"

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
	"inventory-system/pkg/utils"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error)
	FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error)
	CreateUser(ctx context.Context, actor entities.Actor, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, actor entities.Actor, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, actor entities.Actor, id uint64) error
	ResetPassword(ctx context.Context, actor entities.Actor, id uint64, payload dto.ResetPasswordDTO) error
}

type UserService struct {
	userRepo      repositories.UserRepositoryInterface
	operationRepo repositories.OperationRepositoryInterface
	txManager     repositories.TxManagerInterface
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	operationRepo repositories.OperationRepositoryInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		userRepo:      userRepo,
		operationRepo: operationRepo,
		txManager:     txManager,
		bus:           bus,
		logger:        logger,
	}
}

func toUserDTO(user *entities.User) *dto.UserDTO {
	return &dto.UserDTO{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		Email:      user.Email,
		Phone:      user.Phone,
		Role:       string(user.Role),
		Department: user.Department,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt.Format("2006-01-02, 15:04:05"),
	}
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	return s.userRepo.GetAll(ctx, filter)
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

func (s *UserService) CreateUser(ctx context.Context, actor entities.Actor, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	role := entities.RoleEmployee
	if payload.Role != "" {
		role = entities.Role(payload.Role)
		if !role.Valid() {
			return nil, apperrors.NewInvalidInputError("недопустимая роль: %s", payload.Role)
		}
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	user := entities.User{
		Username:     payload.Username,
		PasswordHash: hash,
		FullName:     payload.FullName,
		Email:        payload.Email,
		Phone:        payload.Phone,
		Role:         role,
		Department:   payload.Department,
		IsActive:     true,
	}

	id, err := s.userRepo.Create(ctx, nil, user)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.UserChangedEvent{
		Action:   constants.ActionUserCreated,
		TargetID: id,
		Actor:    actor,
	})

	s.logger.Info("пользователь создан",
		zap.Uint64("userID", id),
		zap.String("username", user.Username),
		zap.String("role", string(role)),
	)

	return s.FindUser(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, actor entities.Actor, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		user, err := s.userRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if payload.FullName != nil {
			user.FullName = *payload.FullName
		}
		if payload.Email.Valid {
			user.Email = payload.Email
		}
		if payload.Phone.Valid {
			user.Phone = payload.Phone
		}
		if payload.Department.Valid {
			user.Department = payload.Department
		}
		if payload.Role != nil {
			role := entities.Role(*payload.Role)
			if !role.Valid() {
				return apperrors.NewInvalidInputError("недопустимая роль: %s", *payload.Role)
			}
			// Главный администратор остаётся администратором.
			if id == constants.PrimaryAdminID && role != entities.RoleAdmin {
				return apperrors.ErrPrimaryAdminImmutable
			}
			user.Role = role
		}
		if payload.IsActive != nil {
			if id == constants.PrimaryAdminID && !*payload.IsActive {
				return apperrors.ErrPrimaryAdminImmutable
			}
			user.IsActive = *payload.IsActive
		}

		return s.userRepo.Update(ctx, tx, id, *user)
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.UserChangedEvent{
		Action:   constants.ActionUserUpdated,
		TargetID: id,
		Actor:    actor,
	})

	return s.FindUser(ctx, id)
}

// DeleteUser удаляет учётную запись с тремя защитами: главный администратор
// неприкосновенен, нельзя удалить себя, нельзя удалить автора или
// согласующего существующих операций.
func (s *UserService) DeleteUser(ctx context.Context, actor entities.Actor, id uint64) error {
	if id == constants.PrimaryAdminID {
		return apperrors.ErrPrimaryAdminImmutable
	}
	if id == actor.ID {
		return apperrors.ErrSelfDelete
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.userRepo.FindByID(ctx, tx, id); err != nil {
			return err
		}

		count, err := s.operationRepo.CountByUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrHasDependentOperations
		}

		return s.userRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.UserChangedEvent{
		Action:   constants.ActionUserDeleted,
		TargetID: id,
		Actor:    actor,
	})

	s.logger.Info("пользователь удалён", zap.Uint64("userID", id))
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, actor entities.Actor, id uint64, payload dto.ResetPasswordDTO) error {
	hash, err := utils.HashPassword(payload.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, nil, id, hash); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.UserChangedEvent{
		Action:   constants.ActionPasswordReset,
		TargetID: id,
		Actor:    actor,
	})

	return nil
}
