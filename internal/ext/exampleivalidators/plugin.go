// Package exampleivalidators 提供示例校验器
package exampleivalidators

import (
	"ckan-go/internal/logic/validators"
	"ckan-go/internal/plugins"
	"ckan-go/internal/types"
)

// PluginName 插件名
const PluginName = "example_ivalidators"

func init() {
	plugins.Register(PluginName, func() plugins.Plugin { return &Plugin{} })
}

// Plugin 注册 equals_fortytwo、negate、unicode_only
type Plugin struct{}

func (*Plugin) Name() string { return PluginName }

func (*Plugin) GetValidators() map[string]types.Validator {
	return map[string]types.Validator{
		"equals_fortytwo": EqualsFortyTwo,
		"negate":          Negate,
		"unicode_only":    UnicodeOnly,
	}
}

// EqualsFortyTwo 只接受数值 42
func EqualsFortyTwo(value any) (any, error) {
	if f, ok := number(value); !ok || f != 42 {
		return nil, types.NewInvalid("not 42")
	}
	return value, nil
}

// Negate 数值取反
func Negate(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return -v, nil
	case int64:
		return -v, nil
	case float64:
		return -v, nil
	case float32:
		return -v, nil
	}
	return nil, types.NewInvalid("bad operand type for unary -: %T", value)
}

// UnicodeOnly 字节按 UTF-8 解码（失败时按 cp1252），其它值转为文本
func UnicodeOnly(value any) (any, error) {
	if b, ok := value.([]byte); ok {
		return validators.DecodeText(b), nil
	}
	return validators.UnicodeSafe(value)
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	return 0, false
}
