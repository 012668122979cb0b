package models

import (
	"time"

	"gorm.io/gorm"
)

// 对象状态
const (
	StateActive  = "active"
	StateDeleted = "deleted"
	StateDraft   = "draft"
)

// Package 数据集模型
type Package struct {
	ID               string    `gorm:"primaryKey;type:text" json:"id"`
	Name             string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Title            string    `gorm:"size:255" json:"title"`
	Notes            string    `gorm:"type:text" json:"notes"`
	URL              string    `gorm:"size:500" json:"url"`
	Version          string    `gorm:"size:100" json:"version"`
	LicenseID        string    `gorm:"size:100" json:"license_id"`
	Private          bool      `gorm:"default:false" json:"private"`
	State            string    `gorm:"size:20;default:'active'" json:"state"`
	CreatorUserID    *string   `gorm:"type:text;index" json:"creator_user_id"`
	MetadataCreated  time.Time `gorm:"autoCreateTime" json:"metadata_created"`
	MetadataModified time.Time `gorm:"autoUpdateTime" json:"metadata_modified"`

	// 关联
	Resources []Resource `gorm:"foreignKey:PackageID;constraint:OnDelete:CASCADE" json:"resources,omitempty"`
	Ratings   []Rating   `gorm:"foreignKey:PackageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Package) TableName() string {
	return "package"
}

// BeforeCreate 生成主键
func (p *Package) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = makeUUID()
	}
	return nil
}
