package repository

import (
	"ckan-go/internal/models"

	"gorm.io/gorm"
)

// GroupRepository 分组数据访问层
type GroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建分组Repository
func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create 创建分组
func (r *GroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

// ExistsByName 检查名称是否被占用
func (r *GroupRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Group{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}
