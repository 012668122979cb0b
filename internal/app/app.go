// Package app 组装应用：加载运行环境并构建 HTTP 引擎
package app

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"ckan-go/internal/config"
	"ckan-go/internal/logging"
	"ckan-go/internal/logic"
	"ckan-go/internal/models"
	"ckan-go/internal/plugins"
	"ckan-go/internal/router"
	"ckan-go/internal/utils"
	"ckan-go/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	// 内置插件
	_ "ckan-go/internal/ext"
)

// App 已组装的应用
type App struct {
	Config   config.Config
	Settings *config.Settings
	DB       *gorm.DB
	Plugins  *plugins.Manager
	Registry *logic.Registry
	Limiter  *ratelimit.Limiter
	JWT      *utils.JWTManager
	Engine   *gin.Engine
}

// ServeHTTP 实现 http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Engine.ServeHTTP(w, r)
}

// Close 释放数据库与Redis连接
func (a *App) Close() error {
	if err := a.Limiter.Close(); err != nil {
		return err
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

// MakeApp 加载运行环境后构建 HTTP 引擎
func MakeApp(cfg config.Config) (*App, error) {
	a, err := LoadEnvironment(cfg)
	if err != nil {
		return nil, err
	}

	a.JWT = utils.NewJWTManager(
		a.Settings.APIToken.JWT.Encode.Secret,
		a.Settings.APIToken.JWT.Algorithm,
		a.Settings.APIToken.GetExpireDuration(),
		a.Settings.CKAN.SiteID,
	)
	a.Engine = router.SetupRouter(a.Settings, a.JWT, logging.Logger(), a.DB, a.Registry)

	tmpl, err := loadTemplates(cfg)
	if err != nil {
		return nil, err
	}
	if tmpl != nil {
		a.Engine.SetHTMLTemplate(tmpl)
	}
	return a, nil
}

// LoadEnvironment 解析配置、连接数据库、加载插件并构建注册表
func LoadEnvironment(cfg config.Config) (*App, error) {
	settings, err := config.NewSettings(cfg)
	if err != nil {
		return nil, err
	}

	if err := models.InitDB(settings); err != nil {
		return nil, fmt.Errorf("数据库初始化失败: %w", err)
	}
	db := models.GetDB()

	manager := plugins.NewManager()
	if err := manager.Load(settings.CKAN.PluginNames()...); err != nil {
		return nil, err
	}
	manager.UpdateConfig(cfg)

	limiter, err := ratelimit.NewFromURL(
		settings.CKAN.Redis.URL,
		settings.CKAN.Ratings.PerHour,
		fmt.Sprintf("ckan:%s:rating:", settings.CKAN.SiteID),
		time.Hour,
	)
	if err != nil {
		return nil, err
	}

	registry, err := logic.NewRegistry(db, manager, logic.Options{
		SiteURL:       settings.CKAN.SiteURL,
		RatingLimiter: limiter,
	})
	if err != nil {
		return nil, err
	}

	logging.Logger().WithField("plugins", settings.CKAN.PluginNames()).Info("environment loaded")

	return &App{
		Config:   cfg,
		Settings: settings,
		DB:       db,
		Plugins:  manager,
		Registry: registry,
		Limiter:  limiter,
	}, nil
}

// loadTemplates 合并插件注册的模板目录
func loadTemplates(cfg config.Config) (*template.Template, error) {
	dirs := plugins.TemplateDirectories(cfg)
	if len(dirs) == 0 {
		return nil, nil
	}

	tmpl := template.New("")
	for _, dir := range dirs {
		if _, err := tmpl.ParseFS(dir, "*.html"); err != nil {
			return nil, fmt.Errorf("加载模板失败: %w", err)
		}
	}
	return tmpl, nil
}
