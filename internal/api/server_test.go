package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	v1 "github.com/vietanh2810/medal-board-api/internal/api/handler/v1"
	"github.com/vietanh2810/medal-board-api/internal/config"
	"github.com/vietanh2810/medal-board-api/internal/metrics"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		Config: &config.AppConfig{
			API: &config.APIConfig{
				BaseURL:       "localhost:8080",
				JWTSigningKey: "0123456789abcdef0123456789abcdef",
			},
		},
		Router:  gin.New(),
		metrics: metrics.New(),
	}
	s.MountMiddlewares()
	s.MountHandlers(Handlers{
		Auth:       v1.NewAuthHandler(s.Config.API, nil),
		Settings:   v1.NewSettingsHandler(nil),
		Roster:     v1.NewRosterHandler(nil),
		Ledger:     v1.NewLedgerHandler(nil, nil),
		Scoreboard: v1.NewScoreboardHandler(nil),
		Live:       v1.NewLiveHandler(nil, nil),
	})
	return s
}

func TestMutatingRoutesRequireToken(t *testing.T) {
	s := newTestServer()

	guarded := 0
	for _, route := range s.Router.Routes() {
		if route.Method == http.MethodGet || !strings.HasPrefix(route.Path, basePath) || route.Path == basePath+"/auth/login" {
			continue
		}
		guarded++

		path := strings.NewReplacer(":id", "1").Replace(route.Path)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, httptest.NewRequest(route.Method, path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.Method, route.Path)
	}
	assert.Equal(t, 13, guarded)
}

func TestHealthcheckAndMetrics(t *testing.T) {
	s := newTestServer()

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	s.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "medalboard_http_requests_total")
}
