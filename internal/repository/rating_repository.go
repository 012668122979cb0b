package repository

import (
	"errors"

	"ckan-go/internal/models"

	"gorm.io/gorm"
)

// RatingRepository 评分数据访问层，不校验分值范围
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository 创建评分Repository
func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create 创建评分
func (r *RatingRepository) Create(rating *models.Rating) error {
	return r.db.Create(rating).Error
}

// FindForRater 查找某用户（或匿名IP）对数据集的评分，不存在时返回 nil
func (r *RatingRepository) FindForRater(packageID string, userID *string, ip string) (*models.Rating, error) {
	query := r.db.Where("package_id = ?", packageID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Where("user_id IS NULL AND user_ip_address = ?", ip)
	}

	var rating models.Rating
	err := query.First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// Aggregate 获取数据集的平均分和评分数
func (r *RatingRepository) Aggregate(packageID string) (*models.RatingAggregate, error) {
	var agg models.RatingAggregate
	err := r.db.Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("package_id = ?", packageID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// ListByPackage 获取数据集的全部评分
func (r *RatingRepository) ListByPackage(packageID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.Where("package_id = ?", packageID).Order("created ASC").Find(&ratings).Error
	return ratings, err
}

// Count 评分总数
func (r *RatingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Rating{}).Count(&count).Error
	return count, err
}

// DeleteAll 删除全部评分
func (r *RatingRepository) DeleteAll() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&models.Rating{})
	return result.RowsAffected, result.Error
}

// DeleteAnonymous 删除匿名评分
func (r *RatingRepository) DeleteAnonymous() (int64, error) {
	result := r.db.Where("user_id IS NULL").Delete(&models.Rating{})
	return result.RowsAffected, result.Error
}
