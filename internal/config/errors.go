package config

import "fmt"

// ConfigurationError 配置错误（文件缺失、循环引用、非法配置项）
type ConfigurationError struct {
	Msg string
}

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}
