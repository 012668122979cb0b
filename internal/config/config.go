package config

import (
	"strconv"
	"strings"
)

// Config 扁平配置：选项名 -> 字符串（global_conf 为嵌套的字符串映射）
type Config map[string]any

// Copy 浅拷贝配置，global_conf 单独复制
func (c Config) Copy() Config {
	out := make(Config, len(c))
	for k, v := range c {
		if m, ok := v.(map[string]string); ok {
			cp := make(map[string]string, len(m))
			for mk, mv := range m {
				cp[mk] = mv
			}
			v = cp
		}
		out[k] = v
	}
	return out
}

// Get 获取字符串选项，缺失时返回默认值
func (c Config) Get(key, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}

// GetBool 获取布尔选项
func (c Config) GetBool(key string, def bool) bool {
	v, ok := c[key].(string)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1":
		return true
	case "false", "no", "off", "0":
		return false
	}
	return def
}

// GetInt 获取整数选项
func (c Config) GetInt(key string, def int) int {
	v, ok := c[key].(string)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// GetList 获取以空白分隔的列表选项
func (c Config) GetList(key, def string) []string {
	return strings.Fields(c.Get(key, def))
}

// GlobalConf 返回解析器默认值
func (c Config) GlobalConf() map[string]string {
	m, _ := c[GlobalConfKey].(map[string]string)
	return m
}
