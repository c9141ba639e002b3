package service

import (
	"errors"
	"fmt"
	"math_quest_backend/internal/model"
	"math_quest_backend/internal/repository"
	"math_quest_backend/internal/util"
	"math_quest_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService 用户角色管理
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

// ParseRole 只接受 student 和 admin
func ParseRole(s string) (model.UserRole, error) {
	switch role := model.UserRole(strings.ToLower(strings.TrimSpace(s))); role {
	case model.Student, model.Admin:
		return role, nil
	default:
		return "", fmt.Errorf("%w: %q", util.ErrInvalidRole, s)
	}
}

// SetRole 按邮箱修改用户角色，新角色在用户下次登录签发 token 后生效
func (s *UserService) SetRole(email string, role model.UserRole) (*model.User, error) {
	role, err := ParseRole(string(role))
	if err != nil {
		return nil, err
	}

	existingUser, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if existingUser.Role == role {
		return existingUser, nil
	}
	existingUser.Role = role
	if err := s.UserRepo.Update(existingUser); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	logger.Log.Info("User role updated",
		zap.Uint("user_id", existingUser.ID),
		zap.String("role", string(role)))
	return existingUser, nil
}
