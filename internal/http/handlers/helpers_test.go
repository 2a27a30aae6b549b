package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/campus-hub/internal/capability"
	"github.com/tbourn/campus-hub/internal/http/middleware"
	"github.com/tbourn/campus-hub/internal/moderation"
	"github.com/tbourn/campus-hub/internal/policy"
	"github.com/tbourn/campus-hub/internal/repo"
	"github.com/tbourn/campus-hub/internal/services"
)

// ---------- test plumbing ----------

const (
	testSecret  = "0123456789abcdef0123456789abcdef"
	testSession = "sess_handlertest01"
	validText   = "I secretly love the 8am lectures"
)

// tuesday is a posting day; wednesday is not.
var (
	tuesday   = time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	wednesday = time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// testApp bundles a router wired to real services on an in-memory DB.
type testApp struct {
	db   *gorm.DB
	conf *services.ConfessionService
	bans *services.BanService
	r    *gin.Engine
}

// newTestApp wires every handler the way the router does, minus rate
// limiting and admin auth. The clock is fixed at now under an enforced
// Tuesday/Friday posting policy.
func newTestApp(t *testing.T, now time.Time) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	owners, err := capability.New(testSecret, 24*time.Hour)
	if err != nil {
		t.Fatalf("capability.New: %v", err)
	}
	bans := services.NewBanService(db, 16, time.Minute)
	bans.Now = func() time.Time { return now }
	conf := services.NewConfessionService(db,
		policy.New(nil, true, time.UTC),
		moderation.NewFilter(moderation.DefaultTerms),
		bans, owners, nil,
	)
	conf.Now = func() time.Time { return now }

	h := New(conf, services.NewEngagementService(db, nil), services.NewModerationService(db, nil), bans)

	store, err := middleware.NewSessionStore(middleware.SessionOptions{Secret: testSecret, MaxAge: time.Hour})
	if err != nil {
		t.Fatalf("session store: %v", err)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.DeviceSession(store, ""),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))

	api := r.Group("/api/v1")
	api.GET("/confessions", h.ListConfessions)
	api.POST("/confessions", h.SubmitConfession)
	api.GET("/confessions/top", h.TopConfession)
	api.GET("/confessions/stats", h.ConfessionStats)
	api.GET("/confessions/posting-window", h.PostingWindow)
	api.GET("/confessions/:id", h.GetConfession)
	api.PUT("/confessions/:id", h.EditConfession)
	api.DELETE("/confessions/:id", h.DeleteConfession)
	api.POST("/confessions/:id/like", h.LikeConfession)
	api.DELETE("/confessions/:id/like", h.UnlikeConfession)
	api.POST("/confessions/:id/replies", h.SubmitReply)
	api.POST("/confessions/:id/flag", h.FlagConfession)
	api.GET("/session", h.Session)

	admin := api.Group("/admin")
	admin.GET("/confessions", h.ListModeration)
	admin.PUT("/confessions/:id/status", h.SetConfessionStatus)
	admin.PUT("/confessions/:id/top", h.SetTopConfession)
	admin.GET("/bans", h.ListBans)
	admin.POST("/bans", h.CreateBan)
	admin.DELETE("/bans/:id", h.LiftBan)

	return &testApp{db: db, conf: conf, bans: bans, r: r}
}

// do sends a request from testSession. body is JSON-encoded unless nil.
func (a *testApp) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderSessionID, testSession)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

// submit posts a valid confession and returns the decoded response.
func (a *testApp) submit(t *testing.T, text string) SubmitConfessionResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/confessions", SubmitConfessionRequest{Text: text})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: status=%d body=%s", w.Code, w.Body.String())
	}
	var out SubmitConfessionResponse
	decode(t, w, &out)
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e ErrorResponse
	decode(t, w, &e)
	return e.Code
}
