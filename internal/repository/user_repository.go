package repository

import (
	"errors"

	"ckan-go/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问层
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户Repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 创建用户
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID 根据ID获取用户
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByName 根据用户名获取用户
func (r *UserRepository) GetByName(name string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("name = ?", name).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDOrName 根据ID或用户名获取用户
func (r *UserRepository) GetByIDOrName(ref string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ? OR name = ?", ref, ref).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByName 检查用户名是否存在
func (r *UserRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// GetSysadmin 获取任一管理员
func (r *UserRepository) GetSysadmin() (*models.User, error) {
	var user models.User
	err := r.db.Where("sysadmin = ?", true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete 删除用户（连同其评分）
func (r *UserRepository) Delete(id string) error {
	return r.db.Select("Ratings").Delete(&models.User{ID: id}).Error
}

// List 获取用户列表
func (r *UserRepository) List(offset, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}
