package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"ckan-go/internal/config"
	"ckan-go/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		"sqlalchemy.url":              "sqlite:///" + filepath.Join(t.TempDir(), "ckan.db"),
		"api_token.jwt.encode.secret": "test-secret",
		"ckan.site_url":               "http://localhost:5000",
		"ckan.plugins":                "audio_view example_iauthfunctions_v2 example_iresourcecontroller",
	}
	a, err := MakeApp(cfg)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(a.DB))
	t.Cleanup(func() { a.Close() })
	return a
}

type envelope struct {
	Help    string                 `json:"help"`
	Success bool                   `json:"success"`
	Result  json.RawMessage        `json:"result"`
	Error   map[string]interface{} `json:"error"`
}

func do(t *testing.T, a *App, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func login(t *testing.T, a *App, name string) string {
	t.Helper()
	w := do(t, a, http.MethodPost, "/api/register", "", map[string]string{"name": name, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, a, http.MethodPost, "/api/login", "", map[string]string{"name": name, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

func TestMakeApp_loadsPlugins(t *testing.T) {
	require := require.New(t)
	a := newTestApp(t)

	require.Len(a.Plugins.Plugins(), 3)
	_, ok := a.Plugins.Get("audio_view")
	require.True(ok)

	w := do(t, a, http.MethodGet, "/", "", nil)
	require.Equal(http.StatusOK, w.Code)

	w = do(t, a, http.MethodGet, "/api/3/action/status_show", "", nil)
	require.Equal(http.StatusOK, w.Code)
	env := decode(t, w)
	require.True(env.Success)
	require.Equal("http://localhost:5000/api/3/action/help_show?name=status_show", env.Help)
	require.Contains(string(env.Result), "audio_view")
}

func TestMakeApp_unknownPlugin(t *testing.T) {
	cfg := config.Config{
		"sqlalchemy.url":              "sqlite:///" + filepath.Join(t.TempDir(), "ckan.db"),
		"api_token.jwt.encode.secret": "test-secret",
		"ckan.plugins":                "no_such_plugin",
	}
	_, err := MakeApp(cfg)
	require.ErrorContains(t, err, "no_such_plugin")
}

func TestActionAPI_errors(t *testing.T) {
	require := require.New(t)
	a := newTestApp(t)
	token := login(t, a, "alice")

	w := do(t, a, http.MethodPost, "/api/3/action/no_such_action", token, map[string]string{})
	require.Equal(http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.False(env.Success)
	require.Equal("Bad request - Action name not known: no_such_action", env.Error["message"])

	w = do(t, a, http.MethodPost, "/api/3/action/group_create", token, map[string]string{"name": "g1"})
	require.Equal(http.StatusForbidden, w.Code)
	env = decode(t, w)
	require.Equal("Authorization Error", env.Error["__type"])
	require.Equal("Access denied: No one is allowed to create groups", env.Error["message"])

	w = do(t, a, http.MethodPost, "/api/3/action/package_create", token, map[string]string{"name": "X"})
	require.Equal(http.StatusConflict, w.Code)
	env = decode(t, w)
	require.Equal("Validation Error", env.Error["__type"])
	require.Contains(env.Error, "name")

	w = do(t, a, http.MethodGet, "/api/3/action/package_show?id=nope", "", nil)
	require.Equal(http.StatusNotFound, w.Code)
	require.Equal("Not Found Error", decode(t, w).Error["__type"])

	w = do(t, a, http.MethodPost, "/api/3/action/package_create", "not-a-token", map[string]string{"name": "x1"})
	require.Equal(http.StatusUnauthorized, w.Code)
}

func TestActionAPI_datasetWithAudioView(t *testing.T) {
	require := require.New(t)
	a := newTestApp(t)
	token := login(t, a, "bob")

	w := do(t, a, http.MethodPost, "/api/3/action/package_create", token, map[string]interface{}{"name": "podcasts", "title": "Podcasts"})
	require.Equal(http.StatusOK, w.Code, w.Body.String())

	w = do(t, a, http.MethodPost, "/api/3/action/resource_create", token, map[string]interface{}{
		"package_id": "podcasts",
		"url":        "http://example.com/ep1.mp3",
		"format":     "MP3",
	})
	require.Equal(http.StatusOK, w.Code, w.Body.String())
	var res map[string]interface{}
	require.NoError(json.Unmarshal(decode(t, w).Result, &res))
	resID := res["id"].(string)

	w = do(t, a, http.MethodGet, "/api/3/action/resource_view_type_list?id="+resID, "", nil)
	require.Equal(http.StatusOK, w.Code)
	require.Contains(string(decode(t, w).Result), `"audio_view"`)

	w = do(t, a, http.MethodPost, "/api/3/action/resource_view_create", token, map[string]interface{}{
		"resource_id": resID,
		"view_type":   "audio_view",
		"title":       "Listen",
	})
	require.Equal(http.StatusOK, w.Code, w.Body.String())
	var view map[string]interface{}
	require.NoError(json.Unmarshal(decode(t, w).Result, &view))

	w = do(t, a, http.MethodGet, "/dataset/podcasts/resource/"+resID+"/view/"+view["id"].(string), "", nil)
	require.Equal(http.StatusOK, w.Code, w.Body.String())
	require.Contains(w.Body.String(), `<audio controls`)
	require.Contains(w.Body.String(), `src="http://example.com/ep1.mp3"`)

	w = do(t, a, http.MethodGet, "/dataset/other/resource/"+resID+"/view/"+view["id"].(string), "", nil)
	require.Equal(http.StatusNotFound, w.Code)
}

func TestActionAPI_anonymousRatingByForm(t *testing.T) {
	require := require.New(t)
	a := newTestApp(t)
	token := login(t, a, "carol")

	w := do(t, a, http.MethodPost, "/api/3/action/package_create", token, map[string]interface{}{"name": "trees"})
	require.Equal(http.StatusOK, w.Code, w.Body.String())

	rate := func() *httptest.ResponseRecorder {
		form := url.Values{"package": {"trees"}, "rating": {"4"}}
		req := httptest.NewRequest(http.MethodPost, "/api/3/action/rating_create", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "10.1.1.1:5555"
		w := httptest.NewRecorder()
		a.ServeHTTP(w, req)
		return w
	}

	w = rate()
	require.Equal(http.StatusOK, w.Code, w.Body.String())
	require.Contains(string(decode(t, w).Result), `"rating count":1`)

	w = rate()
	require.Equal(http.StatusConflict, w.Code)
}

func TestAccountAPI(t *testing.T) {
	require := require.New(t)
	a := newTestApp(t)

	w := do(t, a, http.MethodPost, "/api/register", "", map[string]string{
		"name": "dave", "password": "password123", "email": "dave@example.com",
	})
	require.Equal(http.StatusOK, w.Code, w.Body.String())
	require.Contains(w.Body.String(), "dave@example.com")

	w = do(t, a, http.MethodPost, "/api/register", "", map[string]string{"name": "dave", "password": "password456"})
	require.Equal(http.StatusConflict, w.Code)
	require.Contains(w.Body.String(), "That login name is not available.")

	w = do(t, a, http.MethodPost, "/api/login", "", map[string]string{"name": "dave", "password": "wrong-pass"})
	require.Equal(http.StatusUnauthorized, w.Code)

	w = do(t, a, http.MethodPost, "/api/login", "", map[string]string{"name": "dave", "password": "password123"})
	require.Equal(http.StatusOK, w.Code)
	var login struct {
		Data struct {
			Token       string `json:"token"`
			AccessToken string `json:"access_token"`
			ExpiresAt   string `json:"expires_at"`
		} `json:"data"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(login.Data.Token)
	require.Equal(login.Data.Token, login.Data.AccessToken)
	require.NotEmpty(login.Data.ExpiresAt)

	// 不带 Bearer 前缀的 Token 同样有效
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", login.Data.Token)
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code, rec.Body.String())
	var me struct {
		Data struct {
			User struct {
				Name     string `json:"name"`
				Email    string `json:"email"`
				Sysadmin bool   `json:"sysadmin"`
			} `json:"user"`
			Capacity string `json:"capacity"`
		} `json:"data"`
	}
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal("dave", me.Data.User.Name)
	require.Equal("dave@example.com", me.Data.User.Email)
	require.False(me.Data.User.Sysadmin)
	require.Equal("user", me.Data.Capacity)

	w = do(t, a, http.MethodGet, "/api/me", "", nil)
	require.Equal(http.StatusUnauthorized, w.Code)
}

func TestActionAPI_ratingRejectsNaN(t *testing.T) {
	require := require.New(t)
	a := newTestApp(t)
	token := login(t, a, "erin")

	w := do(t, a, http.MethodPost, "/api/3/action/package_create", token, map[string]string{"name": "tides"})
	require.Equal(http.StatusOK, w.Code, w.Body.String())

	w = do(t, a, http.MethodPost, "/api/3/action/rating_create", token, map[string]string{"package": "tides", "rating": "NaN"})
	require.Equal(http.StatusConflict, w.Code)
	env := decode(t, w)
	require.Equal("Validation Error", env.Error["__type"])
	require.Contains(env.Error, "rating")

	n, err := a.Registry.Call("rating_show", nil, map[string]any{"package": "tides"})
	require.NoError(err)
	require.EqualValues(0, n.(map[string]any)["rating count"])
}
