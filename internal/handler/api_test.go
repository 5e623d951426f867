package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/config"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/handler"
	"github.com/damoang/angple-wiki/internal/migration"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/damoang/angple-wiki/internal/routes"
	"github.com/damoang/angple-wiki/internal/service"
	"github.com/damoang/angple-wiki/internal/ws"
	"github.com/damoang/angple-wiki/pkg/cache"
	"github.com/damoang/angple-wiki/pkg/jwt"
	"github.com/damoang/angple-wiki/pkg/sealer"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const settingsKey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Meta  *common.Meta      `json:"meta"`
	Error *common.ErrorInfo `json:"error"`
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID   uint64 `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

type pageBody struct {
	ID               uint64 `json:"id"`
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	IsPublished      bool   `json:"is_published"`
	RequiresApproval bool   `json:"requires_approval"`
}

// APISuite drives the full HTTP stack against an in-memory database
type APISuite struct {
	suite.Suite
	router *gin.Engine
	hub    *ws.Hub
	admin  string
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() { _ = sqlDB.Close() })
	s.Require().NoError(migration.Run(db))

	seal, err := sealer.New(settingsKey)
	s.Require().NoError(err)

	users := repository.NewUserRepository(db)
	pages := repository.NewPageRepository(db)
	revisions := repository.NewRevisionRepository(db)
	edits := repository.NewPendingEditRepository(db)

	settingsSvc := service.NewSettingsService(repository.NewSettingRepository(db), seal, cache.NewMemoryService(time.Minute))
	pageSvc := service.NewPageService(db, pages, revisions, edits, repository.NewRejectionRepository(db), service.NewApprovalGate(settingsSvc))
	editSvc := service.NewPendingEditService(db, pageSvc, pages, revisions, edits)
	invSvc := service.NewInvitationService(db, repository.NewInvitationRepository(db), users, service.NewNotifier(settingsSvc), "http://wiki.test", time.Second)
	jwtManager := jwt.NewManager("handler-test-secret-handler-test-secret", time.Hour)

	s.hub = ws.NewHub(nil)
	go s.hub.Run()
	s.T().Cleanup(s.hub.Stop)
	pageSvc.SetEventPublisher(s.hub)
	editSvc.SetEventPublisher(s.hub)

	cfg := config.Default()
	cfg.RateLimit.Enabled = false

	s.router = gin.New()
	routes.Setup(s.router, routes.Handlers{
		Auth:        handler.NewAuthHandler(service.NewAuthService(db, users, invSvc, jwtManager)),
		Page:        handler.NewPageHandler(pageSvc),
		PendingEdit: handler.NewPendingEditHandler(editSvc),
		Invitation:  handler.NewInvitationHandler(invSvc),
		Settings:    handler.NewSettingsHandler(settingsSvc),
		User:        handler.NewUserHandler(service.NewUserService(db, users)),
		Search:      handler.NewSearchHandler(service.NewSearchService(repository.NewSearchRepository(db))),
		WS:          handler.NewWSHandler(s.hub, ""),
	}, jwtManager, nil, cfg)

	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "root", "email": "root@example.com", "password": "rootpass",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var auth authBody
	s.decode(w, &auth)
	s.Require().Equal("admin", auth.User.Role)
	s.admin = auth.Token
}

func (s *APISuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// decode unwraps the data envelope into dest and returns the meta block
func (s *APISuite) decode(w *httptest.ResponseRecorder, dest interface{}) *common.Meta {
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dest != nil {
		s.Require().NoError(json.Unmarshal(env.Data, dest), w.Body.String())
	}
	return env.Meta
}

func (s *APISuite) errorCode(w *httptest.ResponseRecorder) string {
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	s.Require().NotNil(env.Error, w.Body.String())
	return env.Error.Code
}

// user creates an account with role through the admin API and logs it in
func (s *APISuite) user(name, role string) string {
	w := s.do(http.MethodPost, "/api/users", s.admin, map[string]string{
		"username": name, "email": name + "@example.com", "password": "secret123", "role": role,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": name, "password": "secret123"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var auth authBody
	s.decode(w, &auth)
	return auth.Token
}

func (s *APISuite) setWorkflow(on bool) {
	w := s.do(http.MethodPut, "/api/settings/approval_workflow_enabled", s.admin, map[string]string{"value": strconv.FormatBool(on)})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *APISuite) createPage(token, title, slug string, public bool) (*httptest.ResponseRecorder, pageBody) {
	w := s.do(http.MethodPost, "/api/pages", token, map[string]interface{}{
		"title": title, "slug": slug, "content": "about " + title, "is_public": public,
	})
	var p pageBody
	if w.Code == http.StatusCreated {
		s.decode(w, &p)
	}
	return w, p
}

func (s *APISuite) TestAuth() {
	w := s.do(http.MethodGet, "/api/auth/me", s.admin, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/auth/me", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "root", "password": "wrong"})
	s.Equal(http.StatusUnauthorized, w.Code)

	// after the first account an invitation is required
	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "second", "email": "second@example.com", "password": "secret123",
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "root"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestWorkflowOff_EditorPublishesDirectly() {
	editor := s.user("ed", "editor")

	w, page := s.createPage(editor, "Guide", "guide", true)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.True(page.IsPublished)
	s.False(page.RequiresApproval)

	w = s.do(http.MethodGet, "/api/pending-edits", s.admin, nil)
	var edits []json.RawMessage
	meta := s.decode(w, &edits)
	s.Empty(edits)
	s.Equal(int64(0), meta.Total)
}

func (s *APISuite) TestWorkflowOn_PageNeedsPublish() {
	s.setWorkflow(true)
	editor := s.user("ed", "editor")

	w, page := s.createPage(editor, "Draft", "draft", true)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.False(page.IsPublished)
	s.True(page.RequiresApproval)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/pages/draft", "", nil).Code)

	w = s.do(http.MethodGet, "/api/pages/unpublished/list", s.admin, nil)
	var pending []pageBody
	s.decode(w, &pending)
	s.Require().Len(pending, 1)
	s.Equal("draft", pending[0].Slug)

	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/api/pages/draft/publish", editor, nil).Code)

	w = s.do(http.MethodPost, "/api/pages/draft/publish", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &page)
	s.True(page.IsPublished)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/pages/draft", "", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/pages/draft/publish", s.admin, nil).Code)
}

func (s *APISuite) TestWorkflowOn_EditQueuedThenApproved() {
	_, _ = s.createPage(s.admin, "Handbook", "handbook", true)
	s.setWorkflow(true)
	editor := s.user("ed", "editor")

	w := s.do(http.MethodPut, "/api/pages/handbook", editor, map[string]interface{}{
		"title": "Handbook v2", "content": "new body", "is_public": true,
	})
	s.Require().Equal(http.StatusAccepted, w.Code, w.Body.String())
	var queued struct {
		PendingEdit struct {
			ID uint64 `json:"id"`
		} `json:"pending_edit"`
		RequiresApproval bool `json:"requires_approval"`
	}
	s.decode(w, &queued)
	s.True(queued.RequiresApproval)
	s.NotZero(queued.PendingEdit.ID)

	var page pageBody
	s.decode(s.do(http.MethodGet, "/api/pages/handbook", "", nil), &page)
	s.Equal("Handbook", page.Title)

	editPath := "/api/pending-edits/" + strconv.FormatUint(queued.PendingEdit.ID, 10)
	s.Equal(http.StatusOK, s.do(http.MethodGet, editPath, editor, nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, editPath+"/approve", editor, nil).Code)

	w = s.do(http.MethodPost, editPath+"/approve", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	s.decode(s.do(http.MethodGet, "/api/pages/handbook", "", nil), &page)
	s.Equal("Handbook v2", page.Title)

	var revs []json.RawMessage
	s.decode(s.do(http.MethodGet, "/api/pages/handbook/revisions", "", nil), &revs)
	s.Len(revs, 1)

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, editPath+"/approve", s.admin, nil).Code)
}

func (s *APISuite) TestRejectPage() {
	s.setWorkflow(true)
	editor := s.user("ed", "editor")
	_, _ = s.createPage(editor, "Spam", "spam", false)

	// the reason is optional; an empty body is accepted
	_, _ = s.createPage(editor, "Junk", "junk", false)
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/pages/junk/reject", s.admin, nil).Code)

	w := s.do(http.MethodPost, "/api/pages/spam/reject", s.admin, map[string]string{"reason": "off topic"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Slug   string  `json:"slug"`
		Reason *string `json:"reason"`
	}
	s.decode(w, &result)
	s.Equal("spam", result.Slug)
	s.Require().NotNil(result.Reason)
	s.Equal("off topic", *result.Reason)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/pages/spam", s.admin, nil).Code)

	var rejections []struct {
		PageSlug string `json:"page_slug"`
	}
	meta := s.decode(s.do(http.MethodGet, "/api/pages/rejections?limit=10", s.admin, nil), &rejections)
	s.Equal(int64(2), meta.Total)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/api/pages/rejections", editor, nil).Code)
}

func (s *APISuite) TestRoleEnforcement() {
	viewer := s.user("vi", "viewer")
	editor := s.user("ed", "editor")
	_, _ = s.createPage(s.admin, "Home", "home", true)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
		code   string
	}{
		{"anonymous create", http.MethodPost, "/api/pages", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"viewer create", http.MethodPost, "/api/pages", viewer, http.StatusForbidden, "FORBIDDEN"},
		{"editor delete", http.MethodDelete, "/api/pages/home", editor, http.StatusForbidden, "FORBIDDEN"},
		{"editor reorder", http.MethodPut, "/api/pages/order/home", editor, http.StatusForbidden, "FORBIDDEN"},
		{"editor lists users", http.MethodGet, "/api/users", editor, http.StatusForbidden, "FORBIDDEN"},
		{"editor reads settings", http.MethodGet, "/api/settings", editor, http.StatusForbidden, "FORBIDDEN"},
		{"viewer pending edits", http.MethodGet, "/api/pending-edits", viewer, http.StatusForbidden, "FORBIDDEN"},
		{"viewer review stream", http.MethodGet, "/api/ws/reviews", viewer, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(tt.method, tt.path, tt.token, map[string]interface{}{"title": "x", "content": "y", "display_order": 1})
			s.Equal(tt.want, w.Code)
			s.Equal(tt.code, s.errorCode(w))
		})
	}
}

func (s *APISuite) TestVisibilityAndSort() {
	_, _ = s.createPage(s.admin, "Beta", "beta", true)
	_, _ = s.createPage(s.admin, "Alpha", "alpha", false)
	viewer := s.user("vi", "viewer")

	var pages []pageBody
	meta := s.decode(s.do(http.MethodGet, "/api/pages?sort=alphabetical", "", nil), &pages)
	s.Require().Len(pages, 1)
	s.Equal("beta", pages[0].Slug)
	s.Equal("alphabetical", meta.Sort)

	s.decode(s.do(http.MethodGet, "/api/pages?sort=alphabetical", viewer, nil), &pages)
	s.Require().Len(pages, 2)
	s.Equal("alpha", pages[0].Slug)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/pages/alpha", "", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/pages/alpha", viewer, nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/pages?sort=random", "", nil).Code)

	w := s.do(http.MethodPut, "/api/pages/order/alpha", s.admin, map[string]int{"display_order": -1})
	s.Equal(http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPut, "/api/pages/order/alpha", s.admin, map[string]int{"display_order": 3})
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestCreateConflictsAndValidation() {
	w, _ := s.createPage(s.admin, "Home", "home", true)
	s.Require().Equal(http.StatusCreated, w.Code)

	w, _ = s.createPage(s.admin, "Home again", "home", true)
	s.Equal(http.StatusConflict, w.Code)

	w, _ = s.createPage(s.admin, "Reserved", "rejections", true)
	s.Equal(http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/pages", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+s.admin)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestInvitationRegistration() {
	w := s.do(http.MethodPost, "/api/invitations", s.admin, map[string]string{"email": "New@Example.com", "role": "editor"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Invitation struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
			Token string `json:"token"`
		} `json:"invitation"`
		InvitationLink string `json:"invitation_link"`
	}
	s.decode(w, &created)
	s.Equal("new@example.com", created.Invitation.Email)
	s.Contains(created.InvitationLink, created.Invitation.Token)

	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/invitations", s.admin, map[string]string{"email": "new@example.com"}).Code)

	w = s.do(http.MethodGet, "/api/invitations/validate/"+created.Invitation.Token, "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var check struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	s.decode(w, &check)
	s.Equal("editor", check.Role)

	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "newbie", "email": "new@example.com", "password": "secret123", "token": created.Invitation.Token,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var auth authBody
	s.decode(w, &auth)
	s.Equal("editor", auth.User.Role)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/invitations/validate/"+created.Invitation.Token, "", nil).Code)

	path := "/api/invitations/" + strconv.FormatUint(created.Invitation.ID, 10)
	s.Equal(http.StatusOK, s.do(http.MethodDelete, path, s.admin, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, path, s.admin, nil).Code)
}

func (s *APISuite) TestUserManagementGuards() {
	var me authBody
	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "root", "password": "rootpass"})
	s.decode(w, &me)
	self := "/api/users/" + strconv.FormatUint(me.User.ID, 10)

	s.Equal(http.StatusForbidden, s.do(http.MethodPut, self+"/role", s.admin, map[string]string{"role": "viewer"}).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, self, s.admin, nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, "/api/users/abc/role", s.admin, map[string]string{"role": "viewer"}).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/users/999", s.admin, nil).Code)

	w = s.do(http.MethodPost, "/api/users", s.admin, map[string]string{
		"username": "ed", "email": "ed@example.com", "password": "secret123", "role": "owner",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestSettings() {
	var public struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	w := s.do(http.MethodGet, "/api/settings/public/default_sort_order", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &public)
	s.Equal("alphabetical", public.Value)

	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/api/settings/public/smtp_pass", "", nil).Code)

	w = s.do(http.MethodPut, "/api/settings/smtp_pass", s.admin, map[string]interface{}{"value": "hunter2"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var view struct {
		Value     *string `json:"value"`
		Encrypted bool    `json:"encrypted"`
	}
	s.decode(w, &view)
	s.True(view.Encrypted)
	s.Require().NotNil(view.Value)
	s.Equal("hunter2", *view.Value)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, "/api/settings/smtp_port", s.admin, map[string]string{"value": "http"}).Code)

	w = s.do(http.MethodPost, "/api/settings/test-webhook", s.admin, map[string]string{"url": "http://127.0.0.1:9/hook"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/settings/test-webhook", s.admin, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestSearch() {
	_, _ = s.createPage(s.admin, "Deploy guide", "deploy", true)
	_, _ = s.createPage(s.admin, "Internal deploy notes", "internal", false)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/search?q=+", "", nil).Code)

	var hits []struct {
		Slug    string `json:"slug"`
		Excerpt string `json:"excerpt"`
	}
	meta := s.decode(s.do(http.MethodGet, "/api/search?q=deploy", "", nil), &hits)
	s.Require().Len(hits, 1)
	s.Equal("deploy", hits[0].Slug)
	s.Equal("deploy", meta.Query)

	s.decode(s.do(http.MethodGet, "/api/search?q=deploy", s.admin, nil), &hits)
	s.Len(hits, 2)
}

func (s *APISuite) TestPendingEditSubmitAndWithdraw() {
	_, _ = s.createPage(s.admin, "Rules", "rules", true)
	s.setWorkflow(true)
	editor := s.user("ed", "editor")
	other := s.user("ot", "editor")

	w := s.do(http.MethodPost, "/api/pending-edits", editor, map[string]interface{}{
		"page_slug": "rules", "title": "Rules", "content": "stricter",
	})
	s.Require().Equal(http.StatusAccepted, w.Code, w.Body.String())
	var queued struct {
		PendingEdit struct {
			ID uint64 `json:"id"`
		} `json:"pending_edit"`
	}
	s.decode(w, &queued)
	path := "/api/pending-edits/" + strconv.FormatUint(queued.PendingEdit.ID, 10)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/pending-edits", editor, map[string]string{"title": "no slug"}).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, path, other, nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, path, other, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodDelete, path, editor, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, s.admin, nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/pending-edits/0", s.admin, nil).Code)
}

func (s *APISuite) TestReviewStream() {
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/reviews?token=" + s.admin
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer conn.Close()
	s.Equal(http.StatusSwitchingProtocols, resp.StatusCode)
	s.Eventually(func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	s.setWorkflow(true)
	editor := s.user("ed", "editor")
	_, _ = s.createPage(editor, "Draft", "draft", true)

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var ev domain.ReviewEvent
	s.Require().NoError(conn.ReadJSON(&ev))
	s.Equal(domain.EventPagePending, ev.Type)
	s.Equal("draft", ev.Slug)

	// query tokens are only honoured on upgrade requests
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/ws/reviews?token="+s.admin, "", nil).Code)
}
