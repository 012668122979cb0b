package logic

import (
	"path/filepath"
	"strings"
	"testing"

	"ckan-go/internal/models"
	"ckan-go/internal/plugins"
	"ckan-go/internal/repository"
	"ckan-go/internal/types"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type denyGroups struct{ name string }

func (p *denyGroups) Name() string { return p.name }

func (p *denyGroups) GetAuthFunctions() map[string]types.AuthFunction {
	return map[string]types.AuthFunction{
		"group_create": func(*types.Context, types.DataDict) types.AuthResult {
			return types.Deny("groups are closed")
		},
	}
}

type clashingValidators struct{}

func (clashingValidators) Name() string { return "logic_test_clashing_validators" }

func (clashingValidators) GetValidators() map[string]types.Validator {
	return map[string]types.Validator{"not_empty": func(v any) (any, error) { return v, nil }}
}

type hookCounter struct {
	plugins.ResourceControllerBase
	calls map[string]int
}

func (*hookCounter) Name() string { return "logic_test_hooks" }

func (h *hookCounter) BeforeCreate(*types.Context, types.DataDict) { h.calls["before_create"]++ }
func (h *hookCounter) AfterCreate(*types.Context, types.DataDict) { h.calls["after_create"]++ }
func (h *hookCounter) BeforeShow(types.DataDict) { h.calls["before_show"]++ }

type csvView struct{}

func (csvView) Name() string { return "logic_test_csv_view" }

func (csvView) Info() plugins.ViewInfo {
	return plugins.ViewInfo{Name: "csv_view", Title: "CSV", Schema: types.Schema{}}
}

func (csvView) CanView(data types.DataDict) bool {
	res, _ := data["resource"].(types.DataDict)
	format, _ := res["format"].(string)
	return strings.ToLower(format) == "csv"
}

func (csvView) ViewTemplate(*types.Context, types.DataDict) string { return "csv_view.html" }
func (csvView) FormTemplate(*types.Context, types.DataDict) string { return "csv_form.html" }

func init() {
	plugins.Register("logic_test_deny_groups", func() plugins.Plugin { return &denyGroups{name: "logic_test_deny_groups"} })
	plugins.Register("logic_test_deny_groups_too", func() plugins.Plugin { return &denyGroups{name: "logic_test_deny_groups_too"} })
	plugins.Register("logic_test_clashing_validators", func() plugins.Plugin { return clashingValidators{} })
	plugins.Register("logic_test_hooks", func() plugins.Plugin { return &hookCounter{calls: map[string]int{}} })
	plugins.Register("logic_test_csv_view", func() plugins.Plugin { return csvView{} })
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.Open("sqlite:///" + filepath.Join(t.TempDir(), "ckan.db"))
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	m := plugins.NewManager()
	require.NoError(t, m.Load(names...))
	r, err := NewRegistry(newTestDB(t), m, Options{SiteURL: "http://test.ckan.net"})
	require.NoError(t, err)
	return r
}

func newUser(t *testing.T, r *Registry, name string, sysadmin bool) *types.Context {
	t.Helper()
	user := &models.User{Name: name, PasswordHash: "x", Sysadmin: sysadmin}
	require.NoError(t, repository.NewUserRepository(r.DB()).Create(user))
	ctx := r.NewContext()
	ctx.User = name
	return ctx
}

func TestRegistry_authOverride(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t, "logic_test_deny_groups")
	ctx := newUser(t, r, "alice", false)

	_, err := r.Call("group_create", ctx, types.DataDict{"name": "transport"})
	var na *NotAuthorized
	require.ErrorAs(err, &na)
	require.Equal("groups are closed", na.Msg)
	require.Equal([]string{"group_create"}, ctx.AuthAudit())

	// 系统管理员不受权限函数限制
	admin := newUser(t, r, "root", true)
	out, err := r.Call("group_create", admin, types.DataDict{"name": "transport"})
	require.NoError(err)
	require.Equal("transport", out.(types.DataDict)["name"])
}

func TestRegistry_duplicateAuthFunctionAmongPlugins(t *testing.T) {
	m := plugins.NewManager()
	require.NoError(t, m.Load("logic_test_deny_groups", "logic_test_deny_groups_too"))
	_, err := NewRegistry(newTestDB(t), m, Options{})
	require.ErrorContains(t, err, `"group_create" is already implemented`)
}

func TestRegistry_validatorConflict(t *testing.T) {
	m := plugins.NewManager()
	require.NoError(t, m.Load("logic_test_clashing_validators"))
	_, err := NewRegistry(newTestDB(t), m, Options{})
	require.ErrorContains(t, err, `The validator "not_empty" is already defined`)
}

func TestRegistry_unknownNames(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)

	_, err := r.Call("no_such_action", nil, nil)
	var anf *ActionNotFound
	require.ErrorAs(err, &anf)

	require.Error(r.CheckAccess("no_such_auth", r.NewContext(), nil))

	_, err = r.GetValidator("equals_fortytwo")
	require.Error(err)
	_, err = r.GetValidator("unicode_safe")
	require.NoError(err)
}

func TestPackageLifecycle(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t, "logic_test_hooks")
	owner := newUser(t, r, "owner", false)

	_, err := r.Call("package_create", r.NewContext(), types.DataDict{"name": "anon-data"})
	require.ErrorAs(err, new(*NotAuthorized))

	_, err = r.Call("package_create", owner, types.DataDict{"name": "Bad Name"})
	var ve *ValidationError
	require.ErrorAs(err, &ve)
	require.Contains(ve.Errors, "name")

	out, err := r.Call("package_create", owner, types.DataDict{"name": "bus-stops", "title": "Bus stops"})
	require.NoError(err)
	pkg := out.(types.DataDict)
	require.Equal("bus-stops", pkg["name"])
	require.EqualValues(0, pkg["ratings_count"])

	_, err = r.Call("package_create", owner, types.DataDict{"name": "bus-stops"})
	require.ErrorAs(err, &ve)

	out, err = r.Call("resource_create", owner, types.DataDict{"package_id": "bus-stops", "format": "CSV", "size": "42"})
	require.NoError(err)
	res := out.(types.DataDict)
	require.EqualValues(42, res["size"])

	shown, err := r.Call("package_show", r.NewContext(), types.DataDict{"id": "bus-stops"})
	require.NoError(err)
	require.Equal(1, shown.(types.DataDict)["num_resources"])

	p, _ := r.Manager().Get("logic_test_hooks")
	calls := p.(*hookCounter).calls
	require.Equal(1, calls["before_create"])
	require.Equal(1, calls["after_create"])
	require.Equal(1, calls["before_show"])

	// 非创建者不能修改
	other := newUser(t, r, "other", false)
	_, err = r.Call("package_update", other, types.DataDict{"id": "bus-stops", "title": "x"})
	require.ErrorAs(err, new(*NotAuthorized))

	out, err = r.Call("package_update", owner, types.DataDict{"id": "bus-stops", "title": "Stops"})
	require.NoError(err)
	require.Equal("Stops", out.(types.DataDict)["title"])
	require.Equal("bus-stops", out.(types.DataDict)["name"])

	names, err := r.Call("package_list", nil, nil)
	require.NoError(err)
	require.Equal([]string{"bus-stops"}, names)

	_, err = r.Call("package_delete", owner, types.DataDict{"id": "bus-stops"})
	require.NoError(err)
	names, err = r.Call("package_list", nil, nil)
	require.NoError(err)
	require.Empty(names)

	_, err = r.Call("dataset_purge", owner, types.DataDict{"id": "bus-stops"})
	require.ErrorAs(err, new(*NotAuthorized))
	admin := newUser(t, r, "admin", true)
	_, err = r.Call("dataset_purge", admin, types.DataDict{"id": "bus-stops"})
	require.NoError(err)
	_, err = r.Call("package_show", admin, types.DataDict{"id": "bus-stops"})
	require.ErrorAs(err, new(*NotFound))
}

func TestRatingCreate(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)
	owner := newUser(t, r, "owner", false)
	_, err := r.Call("package_create", owner, types.DataDict{"name": "parks"})
	require.NoError(err)

	var ve *ValidationError
	_, err = r.Call("rating_create", owner, types.DataDict{"package": "parks", "rating": 7})
	require.ErrorAs(err, &ve)
	require.Equal([]string{"Rating must be between 1 and 5."}, ve.Errors["rating"])

	_, err = r.Call("rating_create", owner, types.DataDict{"package": "parks"})
	require.ErrorAs(err, &ve)

	_, err = r.Call("rating_create", owner, types.DataDict{"package": "missing", "rating": 3})
	require.ErrorAs(err, new(*NotFound))

	out, err := r.Call("rating_create", owner, types.DataDict{"package": "parks", "rating": "4"})
	require.NoError(err)
	require.EqualValues(1, out.(types.DataDict)["rating count"])

	_, err = r.Call("rating_create", owner, types.DataDict{"package": "parks", "rating": 2})
	require.ErrorAs(err, &ve)

	anon := r.NewContext()
	anon.IPAddress = "192.168.1.10"
	out, err = r.Call("rating_create", anon, types.DataDict{"package": "parks", "rating": 2})
	require.NoError(err)
	require.InDelta(3.0, out.(types.DataDict)["rating average"], 1e-9)

	out, err = r.Call("package_show", anon, types.DataDict{"id": "parks"})
	require.NoError(err)
	require.EqualValues(2, out.(types.DataDict)["ratings_count"])
}

func TestResourceViews(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t, "logic_test_csv_view")
	owner := newUser(t, r, "owner", false)
	_, err := r.Call("package_create", owner, types.DataDict{"name": "budget"})
	require.NoError(err)

	out, err := r.Call("resource_create", owner, types.DataDict{"package_id": "budget", "format": "CSV"})
	require.NoError(err)
	csvID := out.(types.DataDict)["id"].(string)
	out, err = r.Call("resource_create", owner, types.DataDict{"package_id": "budget", "format": "PDF"})
	require.NoError(err)
	pdfID := out.(types.DataDict)["id"].(string)

	all, err := r.Call("resource_view_type_list", owner, nil)
	require.NoError(err)
	require.Len(all, 1)

	forPDF, err := r.Call("resource_view_type_list", owner, types.DataDict{"id": pdfID})
	require.NoError(err)
	require.Empty(forPDF)

	_, err = r.Call("resource_view_create", owner, types.DataDict{"resource_id": csvID, "view_type": "map_view", "title": "Map"})
	var ve *ValidationError
	require.ErrorAs(err, &ve)
	require.Contains(ve.Errors, "view_type")

	out, err = r.Call("resource_view_create", owner, types.DataDict{"resource_id": csvID, "view_type": "csv_view", "title": "Table"})
	require.NoError(err)
	viewID := out.(types.DataDict)["id"].(string)

	views, err := r.Call("resource_view_list", owner, types.DataDict{"id": csvID})
	require.NoError(err)
	require.Len(views, 1)

	plugin, data, err := r.ViewData(owner, viewID)
	require.NoError(err)
	require.Equal("csv_view.html", plugin.ViewTemplate(owner, data))
	require.Equal("budget", data["package"].(types.DataDict)["name"])
}

func TestStatusShow(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t, "logic_test_csv_view")

	out, err := r.Call("status_show", nil, nil)
	require.NoError(err)
	status := out.(types.DataDict)
	require.Equal(Version, status["ckan_version"])
	require.Equal("http://test.ckan.net", status["site_url"])
	require.Equal([]string{"logic_test_csv_view"}, status["extensions"])
}

func TestUserCreateAndShow(t *testing.T) {
	require := require.New(t)
	r := newTestRegistry(t)

	_, err := r.Call("user_create", nil, types.DataDict{"name": "carol", "password": "short"})
	var ve *ValidationError
	require.ErrorAs(err, &ve)
	require.Contains(ve.Errors, "password")

	out, err := r.Call("user_create", nil, types.DataDict{"name": "carol", "password": "long-enough", "email": "c@example.org"})
	require.NoError(err)
	require.Equal("c@example.org", out.(types.DataDict)["email"])

	_, err = r.Call("user_create", nil, types.DataDict{"name": "carol", "password": "long-enough"})
	require.ErrorAs(err, &ve)

	shown, err := r.Call("user_show", nil, types.DataDict{"id": "carol"})
	require.NoError(err)
	require.NotContains(shown.(types.DataDict), "email")
}
