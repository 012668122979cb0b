// Package audioview 用 <audio> 标签展示音频资源
package audioview

import (
	"embed"
	"io/fs"
	"strings"

	"ckan-go/internal/config"
	"ckan-go/internal/logic/validators"
	"ckan-go/internal/plugins"
	"ckan-go/internal/types"
)

// PluginName 插件名
const PluginName = "audio_view"

// DefaultAudioFormats 默认支持的音频格式
const DefaultAudioFormats = "wav ogg mp3"

//go:embed theme/templates/*.html
var theme embed.FS

func init() {
	plugins.Register(PluginName, func() plugins.Plugin { return New() })
}

// AudioView 音频视图插件
type AudioView struct {
	formats []string
}

// New 创建插件，使用默认格式
func New() *AudioView {
	return &AudioView{formats: strings.Fields(DefaultAudioFormats)}
}

func (*AudioView) Name() string { return PluginName }

// UpdateConfig 注册模板目录并读取 ckan.preview.audio_formats
func (p *AudioView) UpdateConfig(cfg config.Config) {
	templates, err := fs.Sub(theme, "theme/templates")
	if err == nil {
		plugins.AddTemplateDirectory(cfg, templates)
	}

	formats := DefaultAudioFormats
	if v, ok := cfg["ckan.preview.audio_formats"].(string); ok {
		formats = v
	}
	p.formats = strings.Fields(formats)
}

// Formats 当前支持的格式
func (p *AudioView) Formats() []string {
	return append([]string(nil), p.formats...)
}

func (*AudioView) Info() plugins.ViewInfo {
	return plugins.ViewInfo{
		Name:  PluginName,
		Title: "Audio",
		Icon:  "file-audio-o",
		Schema: types.Schema{
			"audio_url": {validators.MustGet("ignore_empty"), validators.MustGet("unicode_safe")},
		},
		IFramed:         false,
		AlwaysAvailable: true,
		DefaultTitle:    "Audio",
	}
}

// CanView 资源格式（不区分大小写）在支持列表中
func (p *AudioView) CanView(data types.DataDict) bool {
	resource, _ := data["resource"].(types.DataDict)
	format, _ := resource["format"].(string)
	format = strings.ToLower(format)
	for _, f := range p.formats {
		if f == format {
			return true
		}
	}
	return false
}

func (*AudioView) ViewTemplate(*types.Context, types.DataDict) string { return "audio_view.html" }

func (*AudioView) FormTemplate(*types.Context, types.DataDict) string { return "audio_form.html" }
