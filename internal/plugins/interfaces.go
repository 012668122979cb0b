package plugins

import (
	"ckan-go/internal/config"
	"ckan-go/internal/types"
)

// Plugin 所有插件的公共接口
type Plugin interface {
	Name() string
}

// IConfigurer 在应用启动时修改配置
type IConfigurer interface {
	Plugin
	UpdateConfig(cfg config.Config)
}

// ViewInfo 资源视图描述
type ViewInfo struct {
	Name            string       `json:"name"`
	Title           string       `json:"title"`
	Icon            string       `json:"icon"`
	Schema          types.Schema `json:"-"`
	IFramed         bool         `json:"iframed"`
	AlwaysAvailable bool         `json:"always_available"`
	DefaultTitle    string       `json:"default_title"`
}

// IResourceView 资源视图插件
type IResourceView interface {
	Plugin
	Info() ViewInfo
	CanView(data types.DataDict) bool
	ViewTemplate(ctx *types.Context, data types.DataDict) string
	FormTemplate(ctx *types.Context, data types.DataDict) string
}

// IAuthFunctions 提供或覆盖权限函数
type IAuthFunctions interface {
	Plugin
	GetAuthFunctions() map[string]types.AuthFunction
}

// IActions 提供或覆盖动作
type IActions interface {
	Plugin
	GetActions() map[string]types.Action
}

// IValidators 提供自定义校验器
type IValidators interface {
	Plugin
	GetValidators() map[string]types.Validator
}

// IResourceController 资源生命周期钩子
type IResourceController interface {
	Plugin
	BeforeCreate(ctx *types.Context, resource types.DataDict)
	AfterCreate(ctx *types.Context, resource types.DataDict)
	BeforeUpdate(ctx *types.Context, current, resource types.DataDict)
	AfterUpdate(ctx *types.Context, resource types.DataDict)
	BeforeDelete(ctx *types.Context, resource types.DataDict, resources []types.DataDict)
	AfterDelete(ctx *types.Context, resources []types.DataDict)
	BeforeShow(resource types.DataDict)
}

// ResourceControllerBase 供嵌入的空实现
type ResourceControllerBase struct{}

func (ResourceControllerBase) BeforeCreate(*types.Context, types.DataDict) {}
func (ResourceControllerBase) AfterCreate(*types.Context, types.DataDict) {}
func (ResourceControllerBase) BeforeUpdate(*types.Context, types.DataDict, types.DataDict) {}
func (ResourceControllerBase) AfterUpdate(*types.Context, types.DataDict) {}
func (ResourceControllerBase) BeforeDelete(*types.Context, types.DataDict, []types.DataDict) {}
func (ResourceControllerBase) AfterDelete(*types.Context, []types.DataDict) {}
func (ResourceControllerBase) BeforeShow(types.DataDict) {}

// hookNames 插件信息展示用的接口名
var hookNames = []struct {
	name  string
	match func(Plugin) bool
}{
	{"IConfigurer", func(p Plugin) bool { _, ok := p.(IConfigurer); return ok }},
	{"IResourceView", func(p Plugin) bool { _, ok := p.(IResourceView); return ok }},
	{"IAuthFunctions", func(p Plugin) bool { _, ok := p.(IAuthFunctions); return ok }},
	{"IActions", func(p Plugin) bool { _, ok := p.(IActions); return ok }},
	{"IValidators", func(p Plugin) bool { _, ok := p.(IValidators); return ok }},
	{"IResourceController", func(p Plugin) bool { _, ok := p.(IResourceController); return ok }},
}

// Interfaces 返回插件实现的钩子接口名
func Interfaces(p Plugin) []string {
	var names []string
	for _, h := range hookNames {
		if h.match(p) {
			names = append(names, h.name)
		}
	}
	return names
}
