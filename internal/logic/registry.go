package logic

import (
	"fmt"
	"sort"

	"ckan-go/internal/logging"
	"ckan-go/internal/logic/validators"
	"ckan-go/internal/models"
	"ckan-go/internal/plugins"
	"ckan-go/internal/repository"
	"ckan-go/internal/types"
	"ckan-go/pkg/ratelimit"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Registry 汇总内置与插件提供的权限函数、校验器和动作
type Registry struct {
	db      *gorm.DB
	manager *plugins.Manager
	opts    Options

	authFunctions map[string]types.AuthFunction
	validators    map[string]types.Validator
	actions       map[string]types.Action
}

// Options 注册表的可选依赖
type Options struct {
	// SiteURL 站点地址，用于 status_show
	SiteURL string
	// RatingLimiter 评分限流，可为 nil
	RatingLimiter *ratelimit.Limiter
}

// NewRegistry 创建注册表；插件之间重复提供同名权限函数或动作、校验器重名均视为错误
func NewRegistry(db *gorm.DB, manager *plugins.Manager, opts Options) (*Registry, error) {
	if manager == nil {
		manager = plugins.NewManager()
	}
	r := &Registry{
		db:      db,
		manager: manager,
		opts:    opts,
	}

	if err := r.buildAuthFunctions(); err != nil {
		return nil, err
	}
	if err := r.buildValidators(); err != nil {
		return nil, err
	}
	if err := r.buildActions(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) buildAuthFunctions() error {
	r.authFunctions = coreAuthFunctions()

	provider := make(map[string]string)
	for _, p := range plugins.Implementing[plugins.IAuthFunctions](r.manager) {
		for name, fn := range p.GetAuthFunctions() {
			if other, ok := provider[name]; ok {
				return fmt.Errorf("The auth function %q is already implemented in %q", name, other)
			}
			provider[name] = p.Name()
			r.authFunctions[name] = fn
		}
	}
	return nil
}

func (r *Registry) buildValidators() error {
	r.validators = validators.Core()

	for _, p := range plugins.Implementing[plugins.IValidators](r.manager) {
		for name, fn := range p.GetValidators() {
			if _, ok := r.validators[name]; ok {
				return fmt.Errorf("The validator %q is already defined", name)
			}
			r.validators[name] = fn
		}
	}
	return nil
}

func (r *Registry) buildActions() error {
	r.actions = r.coreActions()

	provider := make(map[string]string)
	for _, p := range plugins.Implementing[plugins.IActions](r.manager) {
		for name, fn := range p.GetActions() {
			if other, ok := provider[name]; ok {
				return fmt.Errorf("The action %q is already implemented in %q", name, other)
			}
			provider[name] = p.Name()
			r.actions[name] = fn
		}
	}
	return nil
}

// Manager 返回插件管理器
func (r *Registry) Manager() *plugins.Manager {
	return r.manager
}

// DB 返回数据库连接
func (r *Registry) DB() *gorm.DB {
	return r.db
}

// GetValidator 按名称获取校验器
func (r *Registry) GetValidator(name string) (types.Validator, error) {
	v, ok := r.validators[name]
	if !ok {
		return nil, fmt.Errorf("Validator %q does not exist", name)
	}
	return v, nil
}

// chain 把校验器名称组合成校验链；名称均来自内置集合
func (r *Registry) chain(names ...string) []types.Validator {
	out := make([]types.Validator, 0, len(names))
	for _, name := range names {
		v, err := r.GetValidator(name)
		if err != nil {
			panic(err)
		}
		out = append(out, v)
	}
	return out
}

// GetAuthFunction 按名称获取权限函数
func (r *Registry) GetAuthFunction(name string) (types.AuthFunction, bool) {
	fn, ok := r.authFunctions[name]
	return fn, ok
}

// AuthFunctionNames 返回全部权限函数名（已排序）
func (r *Registry) AuthFunctionNames() []string {
	return sortedKeys(r.authFunctions)
}

// GetAction 按名称获取动作
func (r *Registry) GetAction(name string) (types.Action, error) {
	fn, ok := r.actions[name]
	if !ok {
		return nil, &ActionNotFound{Name: name}
	}
	return fn, nil
}

// ActionNames 返回全部动作名（已排序）
func (r *Registry) ActionNames() []string {
	return sortedKeys(r.actions)
}

// NewContext 创建绑定到本注册表的上下文
func (r *Registry) NewContext() *types.Context {
	return &types.Context{Session: r.db, Checker: r, APIVersion: 3}
}

// CheckAccess 执行权限检查；ignore_auth 与系统管理员直接放行
func (r *Registry) CheckAccess(name string, ctx *types.Context, data types.DataDict) error {
	r.prepare(ctx)
	ctx.AuditAuth(name)

	fn, ok := r.authFunctions[name]
	if !ok {
		return fmt.Errorf("Authorization function not found: %s", name)
	}
	if ctx.IgnoreAuth || ctx.UserIsAdmin {
		return nil
	}
	if data == nil {
		data = types.DataDict{}
	}

	result := fn(ctx, data)
	if !result.Success {
		logging.Logger().WithFields(logrus.Fields{
			"auth_function": name,
			"user":          ctx.User,
			"object":        authObject(ctx),
		}).Debug("access denied")
		return &NotAuthorized{Msg: result.Msg}
	}
	return nil
}

// authObject 权限检查针对的对象，无具体对象时为站点本身
func authObject(ctx *types.Context) string {
	if pkg, ok := ctx.Package.(*models.Package); ok && pkg != nil {
		return pkg.Name
	}
	if res, ok := ctx.Resource.(*models.Resource); ok && res != nil {
		return res.ID
	}
	return models.SystemByName("").Name()
}

// Call 调用动作
func (r *Registry) Call(name string, ctx *types.Context, data types.DataDict) (any, error) {
	fn, err := r.GetAction(name)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = r.NewContext()
	}
	r.prepare(ctx)
	if data == nil {
		data = types.DataDict{}
	}
	return fn(ctx, data)
}

// prepare 补全上下文的会话、权限检查器和当前用户
func (r *Registry) prepare(ctx *types.Context) {
	if ctx.Session == nil {
		ctx.Session = r.db
	}
	if ctx.Checker == nil {
		ctx.Checker = r
	}
	if ctx.UserID == "" && ctx.User != "" && ctx.Session != nil {
		user, err := repository.NewUserRepository(ctx.Session).GetByIDOrName(ctx.User)
		if err == nil && user.State == models.StateActive {
			ctx.UserID = user.ID
			ctx.User = user.Name
			ctx.UserIsAdmin = user.Sysadmin
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
