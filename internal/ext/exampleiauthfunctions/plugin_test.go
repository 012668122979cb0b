package exampleiauthfunctions

import (
	"path/filepath"
	"testing"

	"ckan-go/internal/logic"
	"ckan-go/internal/models"
	"ckan-go/internal/plugins"
	"ckan-go/internal/repository"
	"ckan-go/internal/types"

	"github.com/stretchr/testify/require"
)

func TestGroupCreateDenied(t *testing.T) {
	require := require.New(t)

	result := (&Plugin{}).GetAuthFunctions()["group_create"](&types.Context{User: "alice"}, nil)
	require.False(result.Success)
	require.Equal("No one is allowed to create groups", result.Msg)

	db, err := models.Open("sqlite:///" + filepath.Join(t.TempDir(), "ckan.db"))
	require.NoError(err)
	require.NoError(models.AutoMigrate(db))
	require.NoError(repository.NewUserRepository(db).Create(&models.User{Name: "alice", PasswordHash: "x"}))

	m := plugins.NewManager()
	require.NoError(m.Load(PluginName))
	registry, err := logic.NewRegistry(db, m, logic.Options{})
	require.NoError(err)

	ctx := registry.NewContext()
	ctx.User = "alice"
	_, err = registry.Call("group_create", ctx, types.DataDict{"name": "friends"})
	var na *logic.NotAuthorized
	require.ErrorAs(err, &na)
	require.Equal("No one is allowed to create groups", na.Msg)
}
