package repository

import (
	"ckan-go/internal/models"

	"gorm.io/gorm"
)

// PackageRepository 数据集数据访问层
type PackageRepository struct {
	db *gorm.DB
}

// NewPackageRepository 创建数据集Repository
func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

// Create 创建数据集
func (r *PackageRepository) Create(pkg *models.Package) error {
	return r.db.Omit("Resources").Create(pkg).Error
}

// GetByIDOrName 根据ID或名称获取数据集（含资源）
func (r *PackageRepository) GetByIDOrName(ref string) (*models.Package, error) {
	var pkg models.Package
	err := r.db.Preload("Resources", func(db *gorm.DB) *gorm.DB {
		return db.Where("state = ?", models.StateActive).Order("position ASC")
	}).Where("id = ? OR name = ?", ref, ref).First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ExistsByName 检查名称是否被占用
func (r *PackageRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Package{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// Update 更新数据集
func (r *PackageRepository) Update(pkg *models.Package) error {
	return r.db.Omit("Resources", "Ratings").Save(pkg).Error
}

// Delete 删除数据集（连同资源与评分）
func (r *PackageRepository) Delete(id string) error {
	return r.db.Select("Resources", "Ratings").Delete(&models.Package{ID: id}).Error
}

// ListNames 获取可见数据集名称列表
func (r *PackageRepository) ListNames(offset, limit int) ([]string, error) {
	var names []string
	query := r.db.Model(&models.Package{}).
		Where("state = ? AND private = ?", models.StateActive, false).
		Order("name ASC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Pluck("name", &names).Error
	return names, err
}
