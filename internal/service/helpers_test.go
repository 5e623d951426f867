package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/migration"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/damoang/angple-wiki/pkg/cache"
	"github.com/damoang/angple-wiki/pkg/jwt"
	"github.com/damoang/angple-wiki/pkg/mailer"
	"github.com/damoang/angple-wiki/pkg/sealer"
	"github.com/damoang/angple-wiki/pkg/webhook"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testKey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

type testEnv struct {
	db *gorm.DB

	users       repository.UserRepository
	pages       repository.PageRepository
	revisions   repository.RevisionRepository
	edits       repository.PendingEditRepository
	invitations repository.InvitationRepository

	settings *SettingsService
	gate     *ApprovalGate
	pageSvc  *PageService
	editSvc  *PendingEditService
	invSvc   *InvitationService
	userSvc  UserService
	authSvc  AuthService
	search   *SearchService

	notifier *mockNotifier
	events   *recordingPublisher
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// each connection to ":memory:" is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.Run(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	s, err := sealer.New(testKey)
	require.NoError(t, err)

	e := &testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		pages:       repository.NewPageRepository(db),
		revisions:   repository.NewRevisionRepository(db),
		edits:       repository.NewPendingEditRepository(db),
		invitations: repository.NewInvitationRepository(db),
		notifier:    new(mockNotifier),
		events:      &recordingPublisher{},
	}

	e.settings = NewSettingsService(repository.NewSettingRepository(db), s, cache.NewMemoryService(time.Minute))
	e.gate = NewApprovalGate(e.settings)

	e.pageSvc = NewPageService(db, e.pages, e.revisions, e.edits, repository.NewRejectionRepository(db), e.gate)
	e.pageSvc.SetEventPublisher(e.events)
	e.editSvc = NewPendingEditService(db, e.pageSvc, e.pages, e.revisions, e.edits)
	e.editSvc.SetEventPublisher(e.events)

	e.invSvc = NewInvitationService(db, e.invitations, e.users, e.notifier, "http://wiki.test/", time.Second)
	e.invSvc.SetEventPublisher(e.events)

	e.userSvc = NewUserService(db, e.users)
	e.authSvc = NewAuthService(db, e.users, e.invSvc, jwt.NewManager("test-secret-test-secret-test-secret", time.Hour))
	e.search = NewSearchService(repository.NewSearchRepository(db))
	return e
}

// addUser inserts a user directly and returns it as a requester
func (e *testEnv) addUser(t *testing.T, username string, role domain.Role) domain.Requester {
	t.Helper()
	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		Role:         role,
	}
	require.NoError(t, e.users.Create(u))
	return domain.RequesterFromUser(u)
}

func (e *testEnv) setWorkflow(t *testing.T, on bool) {
	t.Helper()
	v := fmt.Sprintf("%t", on)
	_, err := e.settings.Upsert(context.Background(), SettingApprovalWorkflow, domain.UpsertSettingRequest{Value: &v}, 1)
	require.NoError(t, err)
}

// createPage creates a page as req and requires success
func (e *testEnv) createPage(t *testing.T, req domain.Requester, title, pageSlug string, public bool) *domain.PageMutation {
	t.Helper()
	res, err := e.pageSvc.CreatePage(context.Background(), req, domain.PageInput{
		Title:    title,
		Slug:     pageSlug,
		Content:  "content of " + title,
		IsPublic: &public,
	})
	require.NoError(t, err)
	return res
}

func boolPtr(b bool) *bool { return &b }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ReviewEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.ReviewEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, method domain.NotifyMethod, inv *domain.Invitation, link string) error {
	args := m.Called(method, inv.Email, link)
	if fn, ok := args.Get(0).(func(context.Context) error); ok {
		return fn(ctx)
	}
	return args.Error(0)
}

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) Post(ctx context.Context, rawURL string, headers map[string]string, payload interface{}) (*webhook.Result, error) {
	args := m.Called(rawURL, headers)
	var res *webhook.Result
	if r := args.Get(0); r != nil {
		res = r.(*webhook.Result)
	}
	return res, args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Verify(ctx context.Context, cfg mailer.Config) error {
	return m.Called(cfg).Error(0)
}

func (m *mockMailer) Send(ctx context.Context, cfg mailer.Config, msg mailer.Message) error {
	return m.Called(cfg, msg.To).Error(0)
}
