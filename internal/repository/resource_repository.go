package repository

import (
	"ckan-go/internal/models"

	"gorm.io/gorm"
)

// ResourceRepository 资源数据访问层
type ResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository 创建资源Repository
func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create 创建资源，位置追加到数据集末尾
func (r *ResourceRepository) Create(res *models.Resource) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Resource{}).
			Where("package_id = ? AND state = ?", res.PackageID, models.StateActive).
			Count(&count).Error; err != nil {
			return err
		}
		res.Position = int(count)
		return tx.Create(res).Error
	})
}

// GetByID 根据ID获取资源
func (r *ResourceRepository) GetByID(id string) (*models.Resource, error) {
	var res models.Resource
	if err := r.db.Where("id = ? AND state = ?", id, models.StateActive).First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// ListByPackage 获取数据集的资源
func (r *ResourceRepository) ListByPackage(packageID string) ([]models.Resource, error) {
	var resources []models.Resource
	err := r.db.Where("package_id = ? AND state = ?", packageID, models.StateActive).
		Order("position ASC").Find(&resources).Error
	return resources, err
}

// Update 更新资源
func (r *ResourceRepository) Update(res *models.Resource) error {
	return r.db.Omit("Views").Save(res).Error
}

// Delete 删除资源（连同视图）
func (r *ResourceRepository) Delete(id string) error {
	return r.db.Select("Views").Delete(&models.Resource{ID: id}).Error
}
