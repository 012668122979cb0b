package types

import (
	"fmt"

	"gorm.io/gorm"
)

// DataDict 动作/钩子之间传递的通用数据字典
type DataDict = map[string]any

// ErrorDict 字段名 -> 错误信息列表
type ErrorDict = map[string][]string

// Context 动作调用上下文
type Context struct {
	User         string
	UserID       string
	UserIsAdmin  bool
	IPAddress    string
	Session      *gorm.DB
	IgnoreAuth   bool
	ForView      bool
	ForEdit      bool
	APIVersion   int
	Schema       Schema
	Package      any
	Resource     any
	ReturnIDOnly bool
	Message      string

	// Checker 供权限函数内部再做权限检查
	Checker AccessChecker

	// authAudit 记录本次调用已检查过的权限函数
	authAudit []string
}

// AuditAuth 记录权限检查
func (c *Context) AuditAuth(name string) {
	c.authAudit = append(c.authAudit, name)
}

// AuthAudit 返回已检查过的权限函数名
func (c *Context) AuthAudit() []string {
	return append([]string(nil), c.authAudit...)
}

// IsAnonymous 是否匿名访问
func (c *Context) IsAnonymous() bool {
	return c.User == "" && c.UserID == ""
}

// AccessChecker 权限检查入口
type AccessChecker interface {
	CheckAccess(name string, ctx *Context, data DataDict) error
}

// AuthResult 权限函数返回值
type AuthResult struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
}

// Allow 允许
func Allow() AuthResult {
	return AuthResult{Success: true}
}

// Deny 拒绝
func Deny(msg string) AuthResult {
	return AuthResult{Success: false, Msg: msg}
}

// AuthFunction 权限函数签名
type AuthFunction func(ctx *Context, data DataDict) AuthResult

// Action 动作函数签名
type Action func(ctx *Context, data DataDict) (any, error)

// Validator 单值校验器，失败时返回 *Invalid
type Validator func(value any) (any, error)

// Schema 字段 -> 校验器链
type Schema map[string][]Validator

// missing 表示字段不存在的哨兵值
type missing struct{}

func (missing) String() string { return "<missing>" }

// Missing 字段缺失
var Missing any = missing{}

// IsMissing 判断值是否缺失
func IsMissing(v any) bool {
	_, ok := v.(missing)
	return ok
}

// StopOnError 校验器返回后中止后续校验器且不记录错误
type StopOnError struct{}

func (StopOnError) Error() string { return "stop on error" }

// Invalid 校验失败
type Invalid struct {
	Msg string
}

// NewInvalid 创建校验失败错误
func NewInvalid(format string, args ...any) *Invalid {
	return &Invalid{Msg: fmt.Sprintf(format, args...)}
}

func (e *Invalid) Error() string {
	return e.Msg
}
