package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// ResourceView 资源视图模型
type ResourceView struct {
	ID          string  `gorm:"primaryKey;type:text" json:"id"`
	ResourceID  string  `gorm:"type:text;index;not null" json:"resource_id"`
	Title       string  `gorm:"size:255" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	ViewType    string  `gorm:"size:100;not null" json:"view_type"`
	Order       int     `gorm:"column:order;default:0" json:"order"`
	Config      JSONMap `gorm:"type:text" json:"config"`
}

// TableName 指定表名
func (ResourceView) TableName() string {
	return "resource_view"
}

// BeforeCreate 生成主键
func (v *ResourceView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = makeUUID()
	}
	return nil
}

// JSONMap 自定义JSON类型
type JSONMap map[string]interface{}

// Scan 实现sql.Scanner接口
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("无法解析JSONMap: %T", value)
	}

	return json.Unmarshal(bytes, j)
}

// Value 实现driver.Valuer接口
func (j JSONMap) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
