package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagepass/cache"
	"stagepass/config"
	"stagepass/session"
	"stagepass/store"
)

func newTestAPI(t *testing.T) (*API, *httprouter.Router) {
	t.Helper()
	mem := store.NewMemory(store.SampleShows())
	c := cache.New(config.Redis{Addr: "127.0.0.1:1"})
	api := NewAPI(mem, session.NewRegistry(c, time.Hour))

	router := httprouter.New()
	router.POST("/api/auth/register", api.Register)
	router.POST("/api/auth/login", api.Login)
	router.POST("/api/auth/logout", api.Logout)
	router.GET("/api/auth/verify-session", api.VerifySession)
	return api, router
}

func do(t *testing.T, router *httprouter.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	_, router := newTestAPI(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@x.com", "name": "Alice", "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// duplicate registration
	w = do(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@x.com", "name": "Alice", "password": "hunter2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// wrong password
	w = do(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// unknown user
	w = do(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ghost@x.com", "password": "hunter2",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// correct credentials
	w = do(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@x.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@x.com", resp.User.Email)
	assert.Equal(t, "Alice", resp.User.Name)
}

func TestRegisterValidation(t *testing.T) {
	_, router := newTestAPI(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "NoEmail", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	_, router := newTestAPI(t)

	do(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "bob@x.com", "name": "Bob", "password": "secret",
	})
	w := do(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@x.com", "password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// session resolves
	w = do(t, router, http.MethodGet, "/api/auth/verify-session", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var verify struct {
		Valid   bool   `json:"valid"`
		Session string `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verify))
	assert.True(t, verify.Valid)
	assert.Equal(t, "bob@x.com", verify.Session)

	// logout revokes it
	w = do(t, router, http.MethodPost, "/api/auth/logout", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/auth/verify-session", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verify))
	assert.False(t, verify.Valid)
}
