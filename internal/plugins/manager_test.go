package plugins

import (
	"testing"
	"testing/fstest"

	"ckan-go/internal/config"
	"ckan-go/internal/types"

	"github.com/stretchr/testify/require"
)

type testConfigurer struct {
	name  string
	calls int
}

func (p *testConfigurer) Name() string { return p.name }

func (p *testConfigurer) UpdateConfig(cfg config.Config) {
	p.calls++
	cfg["touched_by"] = p.name
}

type testController struct {
	ResourceControllerBase
	shown int
}

func (*testController) Name() string { return "test_controller" }

func (c *testController) BeforeShow(types.DataDict) { c.shown++ }

func init() {
	Register("test_configurer", func() Plugin { return &testConfigurer{name: "test_configurer"} })
	Register("test_controller", func() Plugin { return &testController{} })
}

func TestManager_loadIsSingleton(t *testing.T) {
	require := require.New(t)

	m := NewManager()
	require.NoError(m.Load("test_configurer", "test_controller", "test_configurer"))
	require.Len(m.Plugins(), 2)

	p, ok := m.Get("test_configurer")
	require.True(ok)

	cfg := config.Config{}
	m.UpdateConfig(cfg)
	m.UpdateConfig(cfg)
	require.Equal(2, p.(*testConfigurer).calls)
	require.Equal("test_configurer", cfg["touched_by"])
}

func TestManager_unknownPlugin(t *testing.T) {
	require := require.New(t)

	err := NewManager().Load("does_not_exist")
	var nf *NotFoundError
	require.ErrorAs(err, &nf)
	require.Equal("does_not_exist", nf.Name)
}

func TestImplementing(t *testing.T) {
	require := require.New(t)

	m := NewManager()
	require.NoError(m.Load("test_controller", "test_configurer"))

	controllers := Implementing[IResourceController](m)
	require.Len(controllers, 1)
	controllers[0].BeforeShow(types.DataDict{})

	p, _ := m.Get("test_controller")
	require.Equal(1, p.(*testController).shown)

	require.Len(Implementing[IConfigurer](m), 1)
	require.Empty(Implementing[IResourceView](m))

	require.Equal([]string{"IResourceController"}, Interfaces(p))
}

func TestRegister_duplicatePanics(t *testing.T) {
	require.Panics(t, func() {
		Register("test_controller", func() Plugin { return &testController{} })
	})
	require.Contains(t, Registered(), "test_controller")
}

func TestTemplateDirectories(t *testing.T) {
	require := require.New(t)

	cfg := config.Config{}
	require.Empty(TemplateDirectories(cfg))

	AddTemplateDirectory(cfg, fstest.MapFS{"a.html": {Data: []byte("a")}})
	AddTemplateDirectory(cfg, fstest.MapFS{"b.html": {Data: []byte("b")}})
	require.Len(TemplateDirectories(cfg), 2)
}
