package models

import (
	"time"

	"gorm.io/gorm"
)

// Group 分组模型
type Group struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Title       string    `gorm:"size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	State       string    `gorm:"size:20;default:'active'" json:"state"`
	Created     time.Time `gorm:"autoCreateTime" json:"created"`
}

// TableName 指定表名
func (Group) TableName() string {
	return "group"
}

// BeforeCreate 生成主键
func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = makeUUID()
	}
	return nil
}
