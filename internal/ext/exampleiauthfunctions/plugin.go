// Package exampleiauthfunctions 演示如何覆盖内置权限函数
package exampleiauthfunctions

import (
	"ckan-go/internal/plugins"
	"ckan-go/internal/types"
)

// PluginName 插件名
const PluginName = "example_iauthfunctions_v2"

func init() {
	plugins.Register(PluginName, func() plugins.Plugin { return &Plugin{} })
}

// Plugin 禁止任何人创建分组
type Plugin struct{}

func (*Plugin) Name() string { return PluginName }

func (*Plugin) GetAuthFunctions() map[string]types.AuthFunction {
	return map[string]types.AuthFunction{"group_create": groupCreate}
}

func groupCreate(*types.Context, types.DataDict) types.AuthResult {
	return types.Deny("No one is allowed to create groups")
}
