package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings 应用配置结构（由扁平配置解码得到）
type Settings struct {
	SQLAlchemy SQLAlchemySettings `mapstructure:"sqlalchemy"`
	CKAN       CKANSettings       `mapstructure:"ckan"`
	APIToken   APITokenSettings   `mapstructure:"api_token"`
}

// SQLAlchemySettings 数据库配置
type SQLAlchemySettings struct {
	URL string `mapstructure:"url"`
}

// CKANSettings 站点配置
type CKANSettings struct {
	SiteURL        string          `mapstructure:"site_url"`
	SiteID         string          `mapstructure:"site_id"`
	Host           string          `mapstructure:"host"`
	Port           int             `mapstructure:"port"`
	ProductionMode bool            `mapstructure:"production_mode"`
	Plugins        string          `mapstructure:"plugins"`
	Redis          RedisSettings   `mapstructure:"redis"`
	Ratings        RatingSettings  `mapstructure:"ratings"`
	Sysadmin       SysadminConfig  `mapstructure:"sysadmin"`
	CORS           CORSSettings    `mapstructure:"cors"`
	Preview        PreviewSettings `mapstructure:"preview"`
}

// GetAddress 获取服务器地址
func (s *CKANSettings) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PluginNames 获取启用的插件列表
func (s *CKANSettings) PluginNames() []string {
	return strings.Fields(s.Plugins)
}

// RedisSettings Redis配置
type RedisSettings struct {
	URL string `mapstructure:"url"`
}

// RatingSettings 评分配置
type RatingSettings struct {
	PerHour int `mapstructure:"per_hour"`
}

// SysadminConfig 初始管理员
type SysadminConfig struct {
	Name     string `mapstructure:"name"`
	Password string `mapstructure:"password"`
}

// CORSSettings CORS配置
type CORSSettings struct {
	OriginWhitelist string `mapstructure:"origin_whitelist"`
	OriginAllowAll  bool   `mapstructure:"origin_allow_all"`
}

// Origins 允许的来源列表
func (c *CORSSettings) Origins() []string {
	if c.OriginAllowAll {
		return []string{"*"}
	}
	return strings.Fields(c.OriginWhitelist)
}

// PreviewSettings 预览配置
type PreviewSettings struct {
	AudioFormats string `mapstructure:"audio_formats"`
}

// APITokenSettings API Token 配置
type APITokenSettings struct {
	JWT           JWTSettings `mapstructure:"jwt"`
	ExpireMinutes int         `mapstructure:"expire_minutes"`
}

// GetExpireDuration 获取过期时间
func (a *APITokenSettings) GetExpireDuration() time.Duration {
	return time.Duration(a.ExpireMinutes) * time.Minute
}

// JWTSettings JWT配置
type JWTSettings struct {
	Encode    JWTEncodeSettings `mapstructure:"encode"`
	Algorithm string            `mapstructure:"algorithm"`
}

// JWTEncodeSettings JWT签名配置
type JWTEncodeSettings struct {
	Secret string `mapstructure:"secret"`
}

// settingDefaults 已知选项及其默认值
var settingDefaults = map[string]any{
	"sqlalchemy.url":              "",
	"ckan.site_url":               "",
	"ckan.site_id":                "default",
	"ckan.host":                   "0.0.0.0",
	"ckan.port":                   5000,
	"ckan.production_mode":        false,
	"ckan.plugins":                "",
	"ckan.redis.url":              "",
	"ckan.ratings.per_hour":       20,
	"ckan.sysadmin.name":          "",
	"ckan.sysadmin.password":      "",
	"ckan.cors.origin_whitelist":  "",
	"ckan.cors.origin_allow_all":  false,
	"ckan.preview.audio_formats":  "",
	"api_token.jwt.encode.secret": "",
	"api_token.jwt.algorithm":     "HS256",
	"api_token.expire_minutes":    43200,
}

// NewSettings 从扁平配置解码 Settings，环境变量 CKAN_<KEY> 优先于文件
func NewSettings(cfg Config) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("CKAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, def := range settingDefaults {
		if raw, ok := cfg[key].(string); ok && raw != "" {
			v.SetDefault(key, raw)
			continue
		}
		v.SetDefault(key, def)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validateSettings(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// validateSettings 验证配置
func validateSettings(s *Settings) error {
	if s.CKAN.Port <= 0 || s.CKAN.Port > 65535 {
		return newConfigurationError("无效的服务器端口: %d", s.CKAN.Port)
	}
	if s.SQLAlchemy.URL == "" {
		return newConfigurationError("sqlalchemy.url 不能为空")
	}
	if s.APIToken.JWT.Encode.Secret == "" {
		return newConfigurationError("api_token.jwt.encode.secret 不能为空")
	}
	return nil
}
