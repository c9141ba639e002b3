package service

import (
	"errors"
	"fmt"
	"math_quest_backend/internal/config"
	"math_quest_backend/internal/model"
	"math_quest_backend/internal/repository"
	"math_quest_backend/internal/util"
	"math_quest_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Progress *ProgressService
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, progress *ProgressService, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Progress: progress,
		Cfg:      cfg,
	}
}

// Profile 用户资料，总分和完成数由进度记录实时计算
type Profile struct {
	*model.User
	model.UserStats
}

func (s *AuthService) Register(user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	if user.Role == "" {
		user.Role = model.Student
	}
	if err := s.UserRepo.Create(user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	now := time.Now()
	if err := s.UserRepo.UpdateLastLogin(user.ID, now); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}
	return token, user, nil
}

func (s *AuthService) Profile(userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	stats, err := s.Progress.UserStats(userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, UserStats: stats}, nil
}
