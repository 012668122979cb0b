package plugins

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"ckan-go/internal/config"
)

// Factory 创建插件实例
type Factory func() Plugin

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register 注册插件工厂，重复注册同名插件会 panic
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("plugins: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("plugins: Register called twice for plugin " + name)
	}
	registry[name] = factory
}

// Registered 返回已注册的插件名（已排序）
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NotFoundError 插件未注册
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plugin %q not found", e.Name)
}

// Manager 按配置顺序加载插件，每个插件只实例化一次
type Manager struct {
	plugins []Plugin
	byName  map[string]Plugin
}

// NewManager 创建插件管理器
func NewManager() *Manager {
	return &Manager{byName: make(map[string]Plugin)}
}

// Load 加载插件，已加载的插件会被跳过
func (m *Manager) Load(names ...string) error {
	for _, name := range names {
		if _, ok := m.byName[name]; ok {
			continue
		}

		registryMu.RLock()
		factory, ok := registry[name]
		registryMu.RUnlock()
		if !ok {
			return &NotFoundError{Name: name}
		}

		m.Add(name, factory())
	}
	return nil
}

// Add 直接加入插件实例
func (m *Manager) Add(name string, p Plugin) {
	if _, ok := m.byName[name]; ok {
		return
	}
	m.byName[name] = p
	m.plugins = append(m.plugins, p)
}

// Get 按名称获取已加载插件
func (m *Manager) Get(name string) (Plugin, bool) {
	p, ok := m.byName[name]
	return p, ok
}

// Plugins 返回按加载顺序排列的插件
func (m *Manager) Plugins() []Plugin {
	return append([]Plugin(nil), m.plugins...)
}

// UpdateConfig 依次调用 IConfigurer 插件
func (m *Manager) UpdateConfig(cfg config.Config) {
	for _, p := range Implementing[IConfigurer](m) {
		p.UpdateConfig(cfg)
	}
}

// Implementing 返回实现指定钩子的插件（按加载顺序）
func Implementing[T any](m *Manager) []T {
	var out []T
	for _, p := range m.plugins {
		if impl, ok := p.(T); ok {
			out = append(out, impl)
		}
	}
	return out
}

// TemplateDirsKey 配置中保存插件模板目录的键
const TemplateDirsKey = "extra_template_paths"

// AddTemplateDirectory 把插件的模板目录加入配置
func AddTemplateDirectory(cfg config.Config, dir fs.FS) {
	dirs, _ := cfg[TemplateDirsKey].([]fs.FS)
	cfg[TemplateDirsKey] = append(dirs, dir)
}

// TemplateDirectories 返回插件加入的模板目录
func TemplateDirectories(cfg config.Config) []fs.FS {
	dirs, _ := cfg[TemplateDirsKey].([]fs.FS)
	return dirs
}
