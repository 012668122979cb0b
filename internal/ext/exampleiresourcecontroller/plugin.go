// Package exampleiresourcecontroller 统计资源生命周期钩子的调用次数
package exampleiresourcecontroller

import (
	"sync"

	"ckan-go/internal/plugins"
	"ckan-go/internal/types"
)

// PluginName 插件名
const PluginName = "example_iresourcecontroller"

func init() {
	plugins.Register(PluginName, func() plugins.Plugin { return New() })
}

// Plugin 按钩子名计数
type Plugin struct {
	mu      sync.Mutex
	counter map[string]int
}

// New 创建插件
func New() *Plugin {
	return &Plugin{counter: make(map[string]int)}
}

func (*Plugin) Name() string { return PluginName }

func (p *Plugin) incr(hook string) {
	p.mu.Lock()
	p.counter[hook]++
	p.mu.Unlock()
}

// Counter 返回计数快照
func (p *Plugin) Counter() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.counter))
	for k, v := range p.counter {
		out[k] = v
	}
	return out
}

func (p *Plugin) BeforeCreate(*types.Context, types.DataDict) { p.incr("before_create") }

func (p *Plugin) AfterCreate(*types.Context, types.DataDict) { p.incr("after_create") }

func (p *Plugin) BeforeUpdate(*types.Context, types.DataDict, types.DataDict) {
	p.incr("before_update")
}

func (p *Plugin) AfterUpdate(*types.Context, types.DataDict) { p.incr("after_update") }

func (p *Plugin) BeforeDelete(*types.Context, types.DataDict, []types.DataDict) {
	p.incr("before_delete")
}

func (p *Plugin) AfterDelete(*types.Context, []types.DataDict) { p.incr("after_delete") }

func (p *Plugin) BeforeShow(types.DataDict) { p.incr("before_show") }
