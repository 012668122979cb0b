package validators

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"ckan-go/internal/types"
	"ckan-go/internal/utils"

	"golang.org/x/text/encoding/charmap"
)

// core 内置校验器
var core = map[string]types.Validator{
	"ignore_empty":             IgnoreEmpty,
	"ignore_missing":           IgnoreMissing,
	"not_empty":                NotEmpty,
	"unicode_safe":             UnicodeSafe,
	"int_validator":            IntValidator,
	"natural_number_validator": NaturalNumberValidator,
	"boolean_validator":        BooleanValidator,
	"rating_value":             RatingValue,
	"url_validator":            URLValidator,
	"name_validator":           NameValidator,
}

// Core 返回内置校验器副本
func Core() map[string]types.Validator {
	out := make(map[string]types.Validator, len(core))
	for k, v := range core {
		out[k] = v
	}
	return out
}

// Get 获取内置校验器
func Get(name string) (types.Validator, bool) {
	v, ok := core[name]
	return v, ok
}

// MustGet 获取内置校验器，不存在时 panic
func MustGet(name string) types.Validator {
	v, ok := core[name]
	if !ok {
		panic("validators: unknown validator " + name)
	}
	return v
}

func isEmpty(value any) bool {
	if value == nil || types.IsMissing(value) {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	}
	return false
}

// IgnoreEmpty 空值时丢弃字段并中止后续校验
func IgnoreEmpty(value any) (any, error) {
	if isEmpty(value) {
		return nil, types.StopOnError{}
	}
	return value, nil
}

// IgnoreMissing 缺失或 nil 时丢弃字段并中止后续校验
func IgnoreMissing(value any) (any, error) {
	if value == nil || types.IsMissing(value) {
		return nil, types.StopOnError{}
	}
	return value, nil
}

// NotEmpty 必填
func NotEmpty(value any) (any, error) {
	if isEmpty(value) {
		return nil, types.NewInvalid("Missing value")
	}
	return value, nil
}

// DecodeText 按 UTF-8 解码字节，非法时按 cp1252 解码
func DecodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// UnicodeSafe 把任意值转成文本
func UnicodeSafe(value any) (any, error) {
	if value == nil || types.IsMissing(value) {
		return value, nil
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return DecodeText(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value), nil
	}
	return string(b), nil
}

// IntValidator 转换为整数，空值返回 nil
func IntValidator(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	case float32:
		if float64(v) == math.Trunc(float64(v)) {
			return int(v), nil
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
	}
	return nil, types.NewInvalid("Invalid integer")
}

// NaturalNumberValidator 非负整数
func NaturalNumberValidator(value any) (any, error) {
	v, err := IntValidator(value)
	if err != nil || v == nil {
		return v, err
	}
	if v.(int) < 0 {
		return nil, types.NewInvalid("Must be a natural number")
	}
	return v, nil
}

// BooleanValidator 转换为布尔值，空值视为 false
func BooleanValidator(value any) (any, error) {
	if isEmpty(value) {
		return false, nil
	}
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "t", "y", "1", "on":
			return true, nil
		}
		return false, nil
	}
	return false, nil
}

// ToFloat 把数值或数字字符串转换为 float64
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// RatingValue 评分必须是 1-5 之间的数值
func RatingValue(value any) (any, error) {
	f, ok := ToFloat(value)
	if !ok {
		return nil, types.NewInvalid("Rating must be a number")
	}
	if math.IsNaN(f) || f < 1.0 || f > 5.0 {
		return nil, types.NewInvalid("Rating must be between 1 and 5.")
	}
	return f, nil
}

// URLValidator 校验 http/https/ftp 地址，空值放行
func URLValidator(value any) (any, error) {
	s, _ := value.(string)
	if isEmpty(value) {
		return value, nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "ftp") {
		return nil, types.NewInvalid("Please provide a valid URL")
	}
	return s, nil
}

// NameValidator 校验对象名
func NameValidator(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, types.NewInvalid("Names must be strings")
	}
	if err := utils.ValidateVar(s, "ckanname"); err != nil {
		return nil, types.NewInvalid("%s", err.Error())
	}
	return s, nil
}
