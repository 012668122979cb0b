package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	// 数据集/用户/分组名：小写字母数字及 -_，2-100 位
	namePattern = regexp.MustCompile(`^[a-z0-9_\-]{2,100}$`)
)

// InitValidator 初始化验证器，并把自定义规则注册到 gin 的绑定验证器
func InitValidator() {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("ckanname", validateName)

		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterValidation("ckanname", validateName)
		}
	})
}

// GetValidator 获取验证器实例
func GetValidator() *validator.Validate {
	InitValidator()
	return validate
}

// validateName 验证对象名
func validateName(fl validator.FieldLevel) bool {
	return namePattern.MatchString(fl.Field().String())
}

// ValidateVar 按规则验证单个值
func ValidateVar(value interface{}, tag string) error {
	if err := GetValidator().Var(value, tag); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError 格式化验证错误
func formatValidationError(err error) error {
	var messages []string

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			param := e.Param()

			var message string
			switch e.Tag() {
			case "required":
				message = fmt.Sprintf("%s是必填字段", field)
			case "min":
				message = fmt.Sprintf("%s长度不能小于%s", field, param)
			case "max":
				message = fmt.Sprintf("%s长度不能大于%s", field, param)
			case "email":
				message = fmt.Sprintf("%s必须是有效的邮箱地址", field)
			case "ckanname":
				message = "Must be purely lowercase alphanumeric (ascii) characters and these symbols: -_"
			default:
				message = fmt.Sprintf("%s验证失败: %s", field, e.Tag())
			}
			messages = append(messages, strings.TrimSpace(message))
		}
	}

	if len(messages) > 0 {
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}
