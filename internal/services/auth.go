package services

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/config"
	"inventory-system/pkg/constants"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/service"
	"inventory-system/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponseDTO, error)
	ChangePassword(ctx context.Context, actor entities.Actor, payload dto.ChangePasswordDTO) error
	Logout(ctx context.Context, actor entities.Actor) error
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	bus        *eventbus.Bus
	logger     *zap.Logger
	cfg        config.AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	bus *eventbus.Bus,
	logger *zap.Logger,
	cfg config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		bus:        bus,
		logger:     logger,
		cfg:        cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error) {
	logger := s.logger.With(zap.String("username", payload.Username))

	// Блокировка по числу неудачных попыток.
	lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, payload.Username)
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		logger.Warn("попытка входа в заблокированную учётную запись")
		return nil, apperrors.ErrAccountLocked
	}

	user, err := s.userRepo.FindByUsername(ctx, nil, payload.Username)
	if err != nil || user == nil || !user.IsActive || !utils.CheckPassword(user.PasswordHash, payload.Password) {
		s.recordFailedAttempt(ctx, payload.Username)
		logger.Warn("неудачная попытка входа")
		return nil, apperrors.ErrInvalidCredentials
	}

	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, payload.Username)
	_ = s.cacheRepo.Del(ctx, attemptsKey)

	accessToken, refreshToken, err := s.jwtService.GenerateTokens(user)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.UserChangedEvent{
		Action: constants.ActionLogin,
		Actor:  entities.Actor{ID: user.ID, Role: user.Role, FullName: user.FullName},
	})

	logger.Info("успешный вход", zap.Uint64("userID", user.ID))

	return &dto.LoginResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *toUserDTO(user),
	}, nil
}

func (s *AuthService) recordFailedAttempt(ctx context.Context, username string) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, username)

	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Error("не удалось учесть неудачную попытку входа", zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}

	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, username)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		s.logger.Warn("учётная запись заблокирована после неудачных попыток",
			zap.String("username", username),
			zap.String("attempts", strconv.FormatInt(attempts, 10)),
		)
	}
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, nil, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	accessToken, newRefreshToken, err := s.jwtService.GenerateTokens(user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         *toUserDTO(user),
	}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, actor entities.Actor, payload dto.ChangePasswordDTO) error {
	user, err := s.userRepo.FindByID(ctx, nil, actor.ID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, payload.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(payload.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, nil, actor.ID, hash); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.UserChangedEvent{
		Action: constants.ActionPasswordChanged,
		Actor:  actor,
	})

	return nil
}

func (s *AuthService) Logout(ctx context.Context, actor entities.Actor) error {
	s.bus.Publish(ctx, events.UserChangedEvent{
		Action: constants.ActionLogout,
		Actor:  actor,
	})
	return nil
}
