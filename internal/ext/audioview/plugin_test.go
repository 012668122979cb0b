package audioview

import (
	"bytes"
	"html/template"
	"testing"

	"ckan-go/internal/config"
	"ckan-go/internal/logic/validators"
	"ckan-go/internal/plugins"
	"ckan-go/internal/types"

	"github.com/stretchr/testify/require"
)

func TestAudioView_canView(t *testing.T) {
	require := require.New(t)
	p := New()

	view := func(format string) types.DataDict {
		return types.DataDict{"resource": types.DataDict{"format": format}}
	}
	require.True(p.CanView(view("MP3")))
	require.True(p.CanView(view("ogg")))
	require.False(p.CanView(view("flac")))
	require.False(p.CanView(types.DataDict{"resource": types.DataDict{}}))

	cfg := config.Config{"ckan.preview.audio_formats": "flac  WAV"}
	p.UpdateConfig(cfg)
	require.Equal([]string{"flac", "WAV"}, p.Formats())
	require.True(p.CanView(view("FLAC")))
	require.False(p.CanView(view("mp3")))
	// 配置值不做小写化
	require.False(p.CanView(view("wav")))
	require.Len(plugins.TemplateDirectories(cfg), 1)
}

func TestAudioView_info(t *testing.T) {
	require := require.New(t)
	info := New().Info()

	require.Equal("audio_view", info.Name)
	require.Equal("Audio", info.Title)
	require.Equal("file-audio-o", info.Icon)
	require.False(info.IFramed)
	require.True(info.AlwaysAvailable)
	require.Equal("Audio", info.DefaultTitle)

	clean, errs := validators.Validate(types.DataDict{"audio_url": ""}, info.Schema)
	require.Nil(errs)
	require.NotContains(clean, "audio_url")

	clean, errs = validators.Validate(types.DataDict{"audio_url": []byte("http://x/a.mp3")}, info.Schema)
	require.Nil(errs)
	require.Equal("http://x/a.mp3", clean["audio_url"])
}

func TestAudioView_templates(t *testing.T) {
	require := require.New(t)
	p := New()
	cfg := config.Config{}
	p.UpdateConfig(cfg)
	require.Equal([]string{"wav", "ogg", "mp3"}, p.Formats())

	tmpl, err := template.ParseFS(plugins.TemplateDirectories(cfg)[0], "*.html")
	require.NoError(err)

	data := types.DataDict{
		"resource_view": types.DataDict{},
		"resource":      types.DataDict{"url": "http://example.com/song.ogg"},
	}
	var buf bytes.Buffer
	require.NoError(tmpl.ExecuteTemplate(&buf, p.ViewTemplate(nil, data), data))
	require.Contains(buf.String(), `src="http://example.com/song.ogg"`)

	buf.Reset()
	data["resource_view"] = types.DataDict{"audio_url": "http://example.com/other.wav"}
	require.NoError(tmpl.ExecuteTemplate(&buf, p.FormTemplate(nil, data), data))
	require.Contains(buf.String(), `value="http://example.com/other.wav"`)
}
