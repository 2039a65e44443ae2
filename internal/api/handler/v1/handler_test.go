package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/medal-board-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/medal-board-api/internal/config"
	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/pkg/jwthelper"
	"github.com/vietanh2810/medal-board-api/internal/service"
)

const signingKey = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) response.Err {
	t.Helper()
	var body response.Err
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleLogin(t *testing.T) {
	svc := &mockAuth{}
	h := NewAuthHandler(&config.APIConfig{JWTSigningKey: signingKey, JWTTTL: time.Hour}, svc)
	r := gin.New()
	r.POST("/auth/login", h.HandleLogin)

	svc.On("Login", mock.Anything, "admin", "medals2026").Return("admin", nil)
	svc.On("Login", mock.Anything, "admin", "nope").Return("", service.ErrWrongCredentials)

	w := do(r, http.MethodPost, "/auth/login", `{"username":"admin","password":"medals2026"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login response.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	claims, err := jwthelper.ParseToken([]byte(signingKey), login.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)

	w = do(r, http.MethodPost, "/auth/login", `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/auth/login", `{"password":"medals2026"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNumberOfCalls(t, "Login", 2)
}

func TestHandleUpdateSettings(t *testing.T) {
	svc := &mockSettings{}
	h := NewSettingsHandler(svc)
	r := gin.New()
	r.PUT("/score-settings", h.HandleUpdateSettings)

	svc.On("Update", mock.Anything, mock.MatchedBy(func(p domain.SettingsPatch) bool {
		return p.SilverPoints != nil && *p.SilverPoints == 8 && p.GoldPoints == nil
	})).Return(domain.ScoreSettings{GoldPoints: 10, SilverPoints: 8}, nil).Once()
	svc.On("Update", mock.Anything, mock.MatchedBy(func(p domain.SettingsPatch) bool {
		return p.NoEntryPoints != nil
	})).Return(domain.ScoreSettings{}, domain.Validation("noEntryPoints", "is fixed at 0")).Once()

	w := do(r, http.MethodPut, "/score-settings", `{"silverPoints":8}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"silverPoints":8`)

	w = do(r, http.MethodPut, "/score-settings", `{"noEntryPoints":3}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "noEntryPoints", decodeErr(t, w).Field)

	w = do(r, http.MethodPut, "/score-settings", `{"goldPoints":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/score-settings", `{"goldPoints":"ten"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestRosterHandlers(t *testing.T) {
	svc := &mockRoster{}
	h := NewRosterHandler(svc)
	r := gin.New()
	r.POST("/teams", h.HandleCreateTeam)
	r.GET("/teams/:id", h.HandleGetTeam)
	r.DELETE("/teams/:id", h.HandleDeleteTeam)
	r.POST("/events", h.HandleCreateEvent)
	r.POST("/events/:id", h.HandleSetEventStatus)

	exists := domain.Conflict("name", "team name %q already exists", "Red").Because(service.ErrTeamExists)
	svc.On("CreateTeam", mock.Anything, domain.Team{Name: "Red", Color: "#FF0000"}).Return(domain.Team{}, exists)
	svc.On("GetTeam", mock.Anything, uint(9)).Return(domain.Team{}, domain.NotFound("teamId", "team 9 not found"))
	svc.On("DeleteTeam", mock.Anything, uint(2)).Return(nil)
	svc.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Name == "100m" && e.CategoryID == 1 && e.EventDate != nil && e.EventDate.Day() == 1
	})).Return(domain.Event{ID: 4, Name: "100m", CategoryID: 1, Status: domain.EventPending}, nil)
	svc.On("SetEventStatus", mock.Anything, uint(4), domain.EventCompleted).
		Return(domain.Event{ID: 4, Status: domain.EventCompleted}, nil)

	w := do(r, http.MethodPost, "/teams", `{"name":"Red","color":"#FF0000"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeErr(t, w)
	assert.Equal(t, "name", body.Field)
	assert.Equal(t, "Conflict", body.StatusText)

	w = do(r, http.MethodPost, "/teams", `{"name":"Red","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/teams/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/teams/0", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/teams/9", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/teams/2", "").Code)

	w = do(r, http.MethodPost, "/events", `{"name":"100m","categoryId":1,"eventDate":"2026-06-01"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/events", `{"name":"100m","categoryId":1,"eventDate":"June 1st"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/events/4", `{"status":"COMPLETED"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"COMPLETED"`)

	w = do(r, http.MethodPost, "/events/4", `{"status":"DONE"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status", decodeErr(t, w).Field)

	svc.AssertNumberOfCalls(t, "SetEventStatus", 1)
	svc.AssertNumberOfCalls(t, "CreateTeam", 1)
}

func TestLedgerHandlers(t *testing.T) {
	ledger := &mockLedger{}
	h := NewLedgerHandler(ledger, &mockSubmission{})
	r := gin.New()
	r.GET("/medals", h.HandleListMedals)
	r.POST("/medals", h.HandleCreateMedal)
	r.DELETE("/medals/:id", h.HandleDeleteMedal)

	ledger.On("Record", mock.Anything, service.MedalRequest{EventID: 3, TeamID: 1, MedalType: domain.MedalGold}).
		Return(domain.Medal{ID: 7, EventID: 3, TeamID: 1, MedalType: domain.MedalGold, Points: 10}, nil)
	ledger.On("List", mock.Anything, mock.MatchedBy(func(f domain.MedalFilter) bool {
		return f.EventID != nil && *f.EventID == 3 && f.TeamID == nil
	})).Return([]domain.Medal{{ID: 7}}, nil)
	ledger.On("Delete", mock.Anything, uint(7)).Return(domain.NotFound("id", "medal 7 not found"))
	ledger.On("Delete", mock.Anything, uint(8)).Return(domain.Storage(errors.New("dial tcp: connection refused")))

	w := do(r, http.MethodPost, "/medals", `{"eventId":3,"teamId":1,"medalType":"GOLD"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"points":10`)

	w = do(r, http.MethodPost, "/medals", `{"eventId":3,"teamId":1,"medalType":"GOLD","points":-2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/medals?eventId=3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/medals?teamId=x", "").Code)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/medals/7", "").Code)

	w = do(r, http.MethodDelete, "/medals/8", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestHandleSubmitResults(t *testing.T) {
	sub := &mockSubmission{}
	h := NewLedgerHandler(&mockLedger{}, sub)
	r := gin.New()
	r.POST("/events/:id/results", h.HandleSubmitResults)

	gold := uint(1)
	sub.On("Submit", mock.Anything, domain.ResultSubmission{
		EventID:    5,
		GoldTeamID: &gold,
		NonWinners: map[uint]int{1: 2},
	}).Return(service.SubmissionResult{
		Event:  domain.Event{ID: 5, Status: domain.EventCompleted},
		Medals: []domain.Medal{{ID: 1}, {ID: 2}, {ID: 3}},
	}, nil)

	rejected := domain.Reject(6, domain.NewItemError("goldTeamId", 1, domain.Conflict("medalType", "event 6 already has a GOLD medal (team 2)")))
	sub.On("Submit", mock.Anything, mock.MatchedBy(func(s domain.ResultSubmission) bool { return s.EventID == 6 })).
		Return(service.SubmissionResult{}, rejected)

	w := do(r, http.MethodPost, "/events/5/results", `{"goldTeamId":1,"nonWinners":{"1":2}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"COMPLETED"`)

	w = do(r, http.MethodPost, "/events/6/results", `{"goldTeamId":1}`)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeErr(t, w)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "goldTeamId", body.Items[0].Field)
	assert.Equal(t, uint(1), body.Items[0].TeamID)

	w = do(r, http.MethodPost, "/events/5/results", `{"nonWinners":{"abc":2}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sub.AssertNumberOfCalls(t, "Submit", 2)
}

func TestScoreboardHandlers(t *testing.T) {
	svc := &mockScoreboard{}
	h := NewScoreboardHandler(svc)
	r := gin.New()
	r.GET("/scoreboard", h.HandleGetScoreboard)
	r.GET("/events/:id/result", h.HandleGetEventResult)

	svc.On("Standings", mock.Anything).Return([]domain.Standing{
		{Rank: 1, TeamID: 1, TeamName: "A", TotalPoints: 12},
		{Rank: 2, TeamID: 2, TeamName: "B", TotalPoints: 7},
	}, nil)
	svc.On("EventResult", mock.Anything, uint(3)).Return(domain.EventResult{ID: 3, GoldTeam: &domain.TeamRef{ID: 1, Name: "A"}}, nil)

	w := do(r, http.MethodGet, "/scoreboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	var standings []domain.Standing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &standings))
	require.Len(t, standings, 2)
	assert.Equal(t, 12, standings[0].TotalPoints)

	w = do(r, http.MethodGet, "/events/3/result", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"goldTeam":{"id":1,"name":"A"}`)
}
