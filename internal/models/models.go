package models

import (
	"fmt"
	"strings"

	"ckan-go/internal/config"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 全局数据库实例
var DB *gorm.DB

// InitDB 初始化数据库
func InitDB(settings *config.Settings) error {
	db, err := Open(settings.SQLAlchemy.URL)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open 按 sqlalchemy.url 打开数据库（sqlite:///path 或 postgresql://...）
func Open(url string) (*gorm.DB, error) {
	dialector, err := dialectorFor(url)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	return db, nil
}

func dialectorFor(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		// sqlite:///relative.db, sqlite:////abs/path.db, sqlite:// 为内存库
		path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "/")
		if path == "" || path == ":memory:" {
			return sqlite.Open("file::memory:?cache=shared&_foreign_keys=on"), nil
		}
		return sqlite.Open(path + "?_foreign_keys=on"), nil
	case strings.HasPrefix(url, "postgresql://"), strings.HasPrefix(url, "postgres://"):
		return postgres.Open(url), nil
	}
	return nil, fmt.Errorf("不支持的数据库地址: %s", url)
}

// AutoMigrate 自动迁移数据库表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Group{},
		&Package{},
		&Resource{},
		&ResourceView{},
		&Rating{},
	)
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return DB
}

// makeUUID 生成主键
func makeUUID() string {
	return uuid.NewString()
}
