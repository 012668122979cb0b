package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
type User struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Fullname     string    `gorm:"size:255" json:"fullname"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Sysadmin     bool      `gorm:"default:false" json:"sysadmin"`
	State        string    `gorm:"size:20;default:'active'" json:"state"`
	Created      time.Time `gorm:"autoCreateTime" json:"created"`

	// 关联
	Ratings []Rating `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "user"
}

// BeforeCreate 生成主键
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = makeUUID()
	}
	return nil
}

// IsActive 用户是否可用
func (u *User) IsActive() bool {
	return u.State == StateActive
}
