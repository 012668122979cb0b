package repository

import (
	"ckan-go/internal/models"

	"gorm.io/gorm"
)

// ResourceViewRepository 资源视图数据访问层
type ResourceViewRepository struct {
	db *gorm.DB
}

// NewResourceViewRepository 创建资源视图Repository
func NewResourceViewRepository(db *gorm.DB) *ResourceViewRepository {
	return &ResourceViewRepository{db: db}
}

// Create 创建视图，排序追加到末尾
func (r *ResourceViewRepository) Create(view *models.ResourceView) error {
	var count int64
	if err := r.db.Model(&models.ResourceView{}).Where("resource_id = ?", view.ResourceID).Count(&count).Error; err != nil {
		return err
	}
	view.Order = int(count)
	return r.db.Create(view).Error
}

// GetByID 根据ID获取视图
func (r *ResourceViewRepository) GetByID(id string) (*models.ResourceView, error) {
	var view models.ResourceView
	if err := r.db.Where("id = ?", id).First(&view).Error; err != nil {
		return nil, err
	}
	return &view, nil
}

// ListByResource 获取资源的视图列表
func (r *ResourceViewRepository) ListByResource(resourceID string) ([]models.ResourceView, error) {
	var views []models.ResourceView
	err := r.db.Where("resource_id = ?", resourceID).Order(`"order" ASC`).Find(&views).Error
	return views, err
}
