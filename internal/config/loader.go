package config

import (
	"path/filepath"
	"sort"
	"strings"

	"ckan-go/internal/logging"

	"gopkg.in/ini.v1"
)

const (
	// MainSection 应用主配置段
	MainSection = "app:main"
	// GlobalConfKey 解析器默认值的镜像
	GlobalConfKey = "global_conf"

	useOption    = "use"
	configScheme = "config"
)

var iniOptions = ini.LoadOptions{
	InsensitiveKeys:            true,
	AllowPythonMultilineValues: true,
	IgnoreInlineComment:        true,
}

// Loader 按 use = config:<path> 链式读取 INI 配置
type Loader struct {
	configFile string
	section    string
	config     Config
	defaults   map[string]string
	files      []string
}

// NewLoader 从起始文件开始加载整条配置链
func NewLoader(filename string) (*Loader, error) {
	filename = strings.TrimSpace(filename)
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, newConfigurationError("无法解析配置文件路径 %s: %v", filename, err)
	}

	l := &Loader{
		configFile: abs,
		section:    MainSection,
		config:     Config{},
		defaults:   map[string]string{"__file__": abs},
	}
	if err := l.createConfigObject(); err != nil {
		return nil, err
	}
	return l, nil
}

// Config 返回合并后配置的副本
func (l *Loader) Config() Config {
	return l.config.Copy()
}

// Files 返回按读取顺序排列的配置文件
func (l *Loader) Files() []string {
	return append([]string(nil), l.files...)
}

func (l *Loader) createConfigObject() error {
	path := l.configFile
	pf, err := l.readConfigFile(path)
	if err != nil {
		return err
	}

	globalConf := make(map[string]string, len(l.defaults))
	for k, v := range l.defaults {
		globalConf[k] = v
	}
	l.config[GlobalConfKey] = globalConf

	l.updateConfig(pf)
	l.files = []string{path}

	for {
		use := pf.get(useOption)
		scheme, target, found := strings.Cut(use, ":")
		if !found || scheme != configScheme {
			break
		}

		if filepath.IsAbs(target) {
			path = filepath.Clean(target)
		} else {
			path = filepath.Join(filepath.Dir(path), target)
		}
		for _, loaded := range l.files {
			if loaded == path {
				chain := strings.Join(append(l.Files(), path), " -> ")
				return newConfigurationError("Circular dependency located in the configuration chain: %s", chain)
			}
		}
		l.files = append(l.files, path)

		if pf, err = l.readConfigFile(path); err != nil {
			return err
		}
		l.updateConfig(pf)
	}

	logging.Logger().WithField("files", l.files).Debug("Loaded configuration from the following files")
	return nil
}

// parsedFile 单个已读取的配置文件
type parsedFile struct {
	file    *ini.File
	section *ini.Section
}

// readConfigFile 读取单个文件并返回其主配置段，同时刷新解析器默认值
func (l *Loader) readConfigFile(filename string) (*parsedFile, error) {
	l.defaults["here"] = filepath.Dir(filename)

	f, err := ini.LoadSources(iniOptions, filename)
	if err != nil {
		return nil, newConfigurationError("读取配置文件失败 %s: %v", filename, err)
	}

	def := f.Section(ini.DefaultSection)
	for _, key := range def.Keys() {
		l.defaults[key.Name()] = key.Value()
	}
	for name, value := range l.defaults {
		def.Key(name).SetValue(value)
	}

	section, err := f.GetSection(l.section)
	if err != nil {
		return nil, newConfigurationError("配置文件 %s 缺少 [%s] 段", filename, l.section)
	}
	return &parsedFile{file: f, section: section}, nil
}

// updateConfig 合并一个配置段：未出现过的选项或解析器默认值才会写入
func (l *Loader) updateConfig(pf *parsedFile) {
	globalConf := l.config[GlobalConfKey].(map[string]string)

	for _, option := range pf.options() {
		_, present := l.config[option]
		_, isDefault := l.defaults[option]
		if present && !isDefault {
			continue
		}

		value := pf.get(option)
		l.config[option] = value
		if isDefault {
			globalConf[option] = value
		}
	}
}

// options 返回主配置段及默认段的全部选项名（已排序）
func (pf *parsedFile) options() []string {
	seen := make(map[string]struct{})
	for _, name := range pf.section.KeyStrings() {
		seen[name] = struct{}{}
	}
	for _, name := range pf.file.Section(ini.DefaultSection).KeyStrings() {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// get 读取选项（先查本段再查默认段），并展开 %(name)s 引用
func (pf *parsedFile) get(option string) string {
	if pf.section.HasKey(option) {
		return pf.section.Key(option).String()
	}
	def := pf.file.Section(ini.DefaultSection)
	if def.HasKey(option) {
		return def.Key(option).String()
	}
	return ""
}
