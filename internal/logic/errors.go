package logic

import (
	"fmt"
	"sort"
	"strings"

	"ckan-go/internal/types"

	"github.com/hashicorp/go-multierror"
)

// NotAuthorized 权限不足
type NotAuthorized struct {
	Msg string
}

func (e *NotAuthorized) Error() string {
	if e.Msg == "" {
		return "Not authorized"
	}
	return e.Msg
}

// NotFound 对象不存在
type NotFound struct {
	Msg string
}

func (e *NotFound) Error() string {
	if e.Msg == "" {
		return "Not found"
	}
	return e.Msg
}

func notFound(format string, args ...any) *NotFound {
	return &NotFound{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError 字段校验失败
type ValidationError struct {
	Errors types.ErrorDict
	err    *multierror.Error
}

// NewValidationError 由字段错误构造校验错误
func NewValidationError(errs types.ErrorDict) *ValidationError {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var merr *multierror.Error
	for _, field := range fields {
		for _, msg := range errs[field] {
			merr = multierror.Append(merr, fmt.Errorf("%s: %s", field, msg))
		}
	}
	if merr != nil {
		merr.ErrorFormat = func(es []error) string {
			parts := make([]string, len(es))
			for i, e := range es {
				parts[i] = e.Error()
			}
			return strings.Join(parts, "; ")
		}
	}
	return &ValidationError{Errors: errs, err: merr}
}

func fieldError(field, msg string) *ValidationError {
	return NewValidationError(types.ErrorDict{field: {msg}})
}

func (e *ValidationError) Error() string {
	if e.err == nil {
		return "Validation error"
	}
	return e.err.Error()
}

// Unwrap 返回逐条的字段错误
func (e *ValidationError) Unwrap() []error {
	if e.err == nil {
		return nil
	}
	return e.err.Errors
}

// ActionNotFound 动作不存在
type ActionNotFound struct {
	Name string
}

func (e *ActionNotFound) Error() string {
	return fmt.Sprintf("Action name not known: %s", e.Name)
}
