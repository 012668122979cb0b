package service

import (
	"context"
	"errors"
	"fmt"

	"ckan-go/internal/models"
	"ckan-go/internal/repository"
	"ckan-go/pkg/ratelimit"
)

// ErrAlreadyRated 同一评分者对同一数据集只能评分一次
var ErrAlreadyRated = errors.New("You have already rated this dataset")

// RatingService 评分服务
type RatingService struct {
	ratingRepo *repository.RatingRepository
	limiter    *ratelimit.Limiter
}

// NewRatingService 创建评分服务，limiter 可为 nil
func NewRatingService(ratingRepo *repository.RatingRepository, limiter *ratelimit.Limiter) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		limiter:    limiter,
	}
}

// Rate 提交评分；userID 为 nil 时按 IP 识别匿名评分者
func (s *RatingService) Rate(ctx context.Context, packageID string, userID *string, ip string, value float64) (*models.Rating, error) {
	rater := ip
	if userID != nil {
		rater = *userID
	}

	existing, err := s.ratingRepo.FindForRater(packageID, userID, ip)
	if err != nil {
		return nil, fmt.Errorf("查询评分失败: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyRated
	}

	// 重复评分不占用限流配额
	if err := s.limiter.Allow(ctx, rater); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		UserID:    userID,
		PackageID: packageID,
		Rating:    value,
	}
	if userID == nil {
		rating.UserIPAddress = ip
	}
	if err := s.ratingRepo.Create(rating); err != nil {
		return nil, fmt.Errorf("保存评分失败: %w", err)
	}
	return rating, nil
}

// Summary 数据集评分汇总
func (s *RatingService) Summary(packageID string) (*models.RatingAggregate, error) {
	agg, err := s.ratingRepo.Aggregate(packageID)
	if err != nil {
		return nil, fmt.Errorf("统计评分失败: %w", err)
	}
	return agg, nil
}
