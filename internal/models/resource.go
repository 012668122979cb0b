package models

import (
	"time"

	"gorm.io/gorm"
)

// Resource 数据集资源模型
type Resource struct {
	ID           string     `gorm:"primaryKey;type:text" json:"id"`
	PackageID    string     `gorm:"type:text;index;not null" json:"package_id"`
	URL          string     `gorm:"type:text" json:"url"`
	Format       string     `gorm:"size:100" json:"format"`
	Name         string     `gorm:"size:255" json:"name"`
	Description  string     `gorm:"type:text" json:"description"`
	MimeType     string     `gorm:"size:100" json:"mimetype"`
	Size         *int64     `json:"size"`
	Position     int        `gorm:"default:0" json:"position"`
	State        string     `gorm:"size:20;default:'active'" json:"state"`
	Created      time.Time  `gorm:"autoCreateTime" json:"created"`
	LastModified *time.Time `json:"last_modified"`

	// 关联
	Views []ResourceView `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Resource) TableName() string {
	return "resource"
}

// BeforeCreate 生成主键
func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = makeUUID()
	}
	return nil
}
