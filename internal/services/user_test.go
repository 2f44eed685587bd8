package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/types"
)

type fakeUserRepo struct {
	users map[uint64]*entities.User
}

func (r *fakeUserRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, _ pgx.Tx, username string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) ActiveAdminIDs(context.Context) ([]uint64, error) {
	ids := make([]uint64, 0)
	for _, u := range r.users {
		if u.Role.IsAdmin() && u.IsActive {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (r *fakeUserRepo) GetAll(context.Context, types.Filter) ([]dto.UserDTO, uint64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ pgx.Tx, user entities.User) (uint64, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return 0, apperrors.ErrDuplicateUsername
		}
	}
	id := uint64(len(r.users) + 1)
	user.ID = id
	r.users[id] = &user
	return id, nil
}

func (r *fakeUserRepo) Update(_ context.Context, _ pgx.Tx, id uint64, user entities.User) error {
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	user.ID = id
	r.users[id] = &user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, _ pgx.Tx, id uint64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, _ pgx.Tx, id uint64) error {
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// newTestUserService: пользователь с id=1 - главный администратор.
func newTestUserService(withOperations bool) (UserServiceInterface, *fakeUserRepo) {
	userRepo := &fakeUserRepo{users: map[uint64]*entities.User{
		1: {ID: 1, Username: "admin", FullName: "Главный администратор", Role: entities.RoleAdmin, IsActive: true},
		2: {ID: 2, Username: "second_admin", FullName: "Второй администратор", Role: entities.RoleAdmin, IsActive: true},
		3: {ID: 3, Username: "employee", FullName: "Сотрудник", Role: entities.RoleEmployee, IsActive: true},
	}}

	deviceRepo := &fakeDeviceRepo{devices: map[uint64]*entities.Device{
		1: {ID: 1, Barcode: "4870001000011", Name: "Ноутбук", Type: "laptop", Status: entities.DeviceAvailable, BaselineQuantity: 10},
	}}
	opRepo := newFakeOperationRepo(deviceRepo)
	if withOperations {
		_, _ = opRepo.Create(context.Background(), nil, entities.Operation{
			DeviceID: 1, UserID: 3, Type: entities.OperationAdd, Quantity: 1, Status: entities.OperationApproved,
		})
	}

	svc := NewUserService(userRepo, opRepo, fakeTxManager{}, eventbus.New(zap.NewNop()), zap.NewNop())
	return svc, userRepo
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to employee role", func(t *testing.T) {
		svc, repo := newTestUserService(false)

		created, err := svc.CreateUser(ctx, testAdmin, dto.CreateUserDTO{
			Username: "newcomer", Password: "secret123", FullName: "Новый Сотрудник",
		})
		require.NoError(t, err)
		assert.Equal(t, "employee", created.Role)
		assert.True(t, created.IsActive)
		assert.NotEqual(t, "secret123", repo.users[created.ID].PasswordHash, "Пароль хранится только в виде хэша")
	})

	t.Run("invalid role", func(t *testing.T) {
		svc, _ := newTestUserService(false)

		_, err := svc.CreateUser(ctx, testAdmin, dto.CreateUserDTO{
			Username: "x", Password: "p", FullName: "y", Role: "superuser",
		})
		var invalidErr *apperrors.InvalidInputError
		assert.ErrorAs(t, err, &invalidErr)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, _ := newTestUserService(false)

		_, err := svc.CreateUser(ctx, testAdmin, dto.CreateUserDTO{
			Username: "employee", Password: "p", FullName: "Дубликат",
		})
		assert.ErrorIs(t, err, apperrors.ErrDuplicateUsername)
	})
}

func TestUserService_UpdateUser_PrimaryAdminGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("primary admin keeps admin role", func(t *testing.T) {
		svc, _ := newTestUserService(false)

		role := "employee"
		_, err := svc.UpdateUser(ctx, testAdmin, 1, dto.UpdateUserDTO{Role: &role})
		assert.ErrorIs(t, err, apperrors.ErrPrimaryAdminImmutable)
	})

	t.Run("primary admin cannot be deactivated", func(t *testing.T) {
		svc, _ := newTestUserService(false)

		inactive := false
		_, err := svc.UpdateUser(ctx, testAdmin, 1, dto.UpdateUserDTO{IsActive: &inactive})
		assert.ErrorIs(t, err, apperrors.ErrPrimaryAdminImmutable)
	})

	t.Run("other admin may be demoted", func(t *testing.T) {
		svc, repo := newTestUserService(false)

		role := "employee"
		updated, err := svc.UpdateUser(ctx, testAdmin, 2, dto.UpdateUserDTO{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, "employee", updated.Role)
		assert.Equal(t, entities.RoleEmployee, repo.users[2].Role)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	actor := entities.Actor{ID: 2, Role: entities.RoleAdmin}

	t.Run("primary admin immutable", func(t *testing.T) {
		svc, _ := newTestUserService(false)
		err := svc.DeleteUser(ctx, actor, 1)
		assert.ErrorIs(t, err, apperrors.ErrPrimaryAdminImmutable)
	})

	t.Run("self delete forbidden", func(t *testing.T) {
		svc, _ := newTestUserService(false)
		err := svc.DeleteUser(ctx, actor, 2)
		assert.ErrorIs(t, err, apperrors.ErrSelfDelete)
	})

	t.Run("blocked by ledger history", func(t *testing.T) {
		svc, repo := newTestUserService(true)
		err := svc.DeleteUser(ctx, actor, 3)
		assert.ErrorIs(t, err, apperrors.ErrHasDependentOperations)
		_, exists := repo.users[3]
		assert.True(t, exists, "Пользователь с операциями в журнале остаётся")
	})

	t.Run("success without history", func(t *testing.T) {
		svc, repo := newTestUserService(false)
		err := svc.DeleteUser(ctx, actor, 3)
		require.NoError(t, err)
		_, exists := repo.users[3]
		assert.False(t, exists)
	})

	t.Run("not found", func(t *testing.T) {
		svc, _ := newTestUserService(false)
		err := svc.DeleteUser(ctx, actor, 99)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
