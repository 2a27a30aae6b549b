package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/campus-hub/internal/capability"
	"github.com/tbourn/campus-hub/internal/domain"
	"github.com/tbourn/campus-hub/internal/moderation"
	"github.com/tbourn/campus-hub/internal/policy"
	"github.com/tbourn/campus-hub/internal/repo"
)

// tuesday is a posting day in week 10 of 2025.
var tuesday = time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)

const validText = "I secretly love the 8am lectures"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

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

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(eventType string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) count(eventType string) int {
	n := 0
	for _, e := range r.types() {
		if e == eventType {
			n++
		}
	}
	return n
}

func newOwners(t *testing.T) *capability.Tokens {
	t.Helper()
	tk, err := capability.New("0123456789abcdef0123456789abcdef", time.Hour*24)
	if err != nil {
		t.Fatalf("capability.New: %v", err)
	}
	return tk
}

// newConfessionSvc wires a ConfessionService on db with a fixed clock at
// tuesday, an enforced Tue/Fri policy and the default denylist.
func newConfessionSvc(t *testing.T, db *gorm.DB) (*ConfessionService, *BanService, *recorder) {
	t.Helper()
	rec := &recorder{}
	bans := NewBanService(db, 16, time.Minute)
	bans.Now = func() time.Time { return tuesday }
	s := NewConfessionService(db,
		policy.New(nil, true, time.UTC),
		moderation.NewFilter(moderation.DefaultTerms),
		bans,
		newOwners(t),
		rec,
	)
	s.Now = func() time.Time { return tuesday }
	return s, bans, rec
}

func seedConfession(t *testing.T, db *gorm.DB, likes int, createdAt time.Time, status string) *domain.Confession {
	t.Helper()
	year, week := policy.New(nil, false, time.UTC).Week(createdAt)
	c := &domain.Confession{
		ID:         uuid.NewString(),
		Text:       "seeded confession text",
		AnonID:     "Anon #1234",
		Likes:      likes,
		Status:     status,
		Year:       year,
		WeekNumber: week,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed confession: %v", err)
	}
	return c
}

// failOn registers a GORM callback that fails every statement of kind
// ("create", "query", "update", "delete").
func failOn(t *testing.T, db *gorm.DB, kind string) {
	t.Helper()
	boom := func(tx *gorm.DB) { tx.AddError(errors.New("boom")) }
	var err error
	switch kind {
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register("test:fail", boom)
	case "query":
		err = db.Callback().Query().Before("gorm:query").Register("test:fail", boom)
	case "update":
		err = db.Callback().Update().Before("gorm:update").Register("test:fail", boom)
	case "delete":
		err = db.Callback().Delete().Before("gorm:delete").Register("test:fail", boom)
	}
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}
