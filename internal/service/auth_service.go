package service

import (
	"errors"
	"fmt"
	"time"

	"ckan-go/internal/config"
	"ckan-go/internal/dto"
	"ckan-go/internal/models"
	"ckan-go/internal/repository"
	"ckan-go/internal/utils"
)

var (
	// ErrNameTaken 用户名已存在
	ErrNameTaken = errors.New("That login name is not available.")
	// ErrBadCredentials 用户名或密码错误
	ErrBadCredentials = errors.New("用户名或密码错误")
	// ErrUserInactive 用户已被禁用
	ErrUserInactive = errors.New("用户已被禁用")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("用户不存在")
)

// AuthService 认证服务
type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *utils.JWTManager
	settings   *config.Settings
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, jwtManager *utils.JWTManager, settings *config.Settings) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		settings:   settings,
	}
}

// Register 用户注册
func (s *AuthService) Register(req *dto.RegisterRequest) (*models.User, error) {
	exists, err := s.userRepo.ExistsByName(req.Name)
	if err != nil {
		return nil, fmt.Errorf("检查用户名失败: %w", err)
	}
	if exists {
		return nil, ErrNameTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Fullname:     req.Fullname,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		State:        models.StateActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByName(req.Name)
	if err != nil {
		return nil, ErrBadCredentials
	}

	if err := utils.CheckPassword(req.Password, user.PasswordHash); err != nil {
		return nil, ErrBadCredentials
	}

	if !user.IsActive() {
		return nil, ErrUserInactive
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Name, user.Sysadmin)
	if err != nil {
		return nil, fmt.Errorf("生成Token失败: %w", err)
	}

	info := ToUserInfo(user)
	info.Email = user.Email
	return &dto.LoginResponse{
		Token:       token,
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(s.jwtManager.ExpireTime()).UTC().Format(time.RFC3339),
		User:        info,
	}, nil
}

// GetMe 获取当前用户信息；已删除的用户视为禁用
func (s *AuthService) GetMe(userID string) (*dto.MeResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive() {
		return nil, ErrUserInactive
	}

	info := ToUserInfo(user)
	info.Email = user.Email
	capacity := "user"
	if user.Sysadmin {
		capacity = "sysadmin"
	}
	return &dto.MeResponse{
		User:       info,
		Capacity:   capacity,
		AuthHeader: "Authorization",
	}, nil
}

// InitSysadmin 初始化管理员账户，未配置或已存在管理员时跳过
func (s *AuthService) InitSysadmin() (*models.User, error) {
	admin, err := s.userRepo.GetSysadmin()
	if err != nil {
		return nil, fmt.Errorf("查询管理员失败: %w", err)
	}
	if admin != nil {
		return admin, nil
	}

	name := s.settings.CKAN.Sysadmin.Name
	if name == "" {
		return nil, nil
	}

	passwordHash := s.settings.CKAN.Sysadmin.Password
	if !utils.IsPasswordHash(passwordHash) {
		hashedPassword, err := utils.HashPassword(passwordHash)
		if err != nil {
			return nil, fmt.Errorf("密码哈希失败: %w", err)
		}
		passwordHash = hashedPassword
	}

	user := &models.User{
		Name:         name,
		PasswordHash: passwordHash,
		Sysadmin:     true,
		State:        models.StateActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("创建管理员失败: %w", err)
	}
	return user, nil
}

// ToUserInfo 转换为对外的用户信息
func ToUserInfo(user *models.User) dto.UserInfo {
	return dto.UserInfo{
		ID:       user.ID,
		Name:     user.Name,
		Fullname: user.Fullname,
		Sysadmin: user.Sysadmin,
		State:    user.State,
	}
}
