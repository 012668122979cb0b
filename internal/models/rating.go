package models

import (
	"time"

	"gorm.io/gorm"
)

// 评分取值约定，映射层不做强制
const (
	MinRating = 1.0
	MaxRating = 5.0
)

// Rating 数据集评分，user_id 与 user_ip_address 二选一（匿名用户记录IP）
type Rating struct {
	ID            string    `gorm:"primaryKey;type:text" json:"id"`
	UserID        *string   `gorm:"type:text;index" json:"user_id"`
	UserIPAddress string    `gorm:"column:user_ip_address;type:text" json:"user_ip_address,omitempty"`
	PackageID     string    `gorm:"type:text;index" json:"package_id"`
	Rating        float64   `json:"rating"`
	Created       time.Time `gorm:"autoCreateTime" json:"created"`
}

// TableName 指定表名
func (Rating) TableName() string {
	return "rating"
}

// BeforeCreate 生成主键
func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = makeUUID()
	}
	return nil
}

// IsAnonymous 是否匿名评分
func (r *Rating) IsAnonymous() bool {
	return r.UserID == nil
}

// RatingAggregate 数据集评分汇总
type RatingAggregate struct {
	Average float64 `json:"rating_average"`
	Count   int64   `json:"ratings_count"`
}
