package repo

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/campus-hub/internal/domain"
)

// newTestDB opens a private in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newBareDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newBareDB opens a private in-memory database without any tables.
func newBareDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: utcNow,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

// seedConfession inserts an approved confession with the given likes and
// creation time and returns it.
func seedConfession(t *testing.T, db *gorm.DB, likes int, createdAt time.Time) *domain.Confession {
	t.Helper()
	c := &domain.Confession{
		ID:         uuid.NewString(),
		Text:       "seeded confession text",
		AnonID:     "Anon #4242",
		Likes:      likes,
		Status:     domain.StatusApproved,
		Year:       createdAt.Year(),
		WeekNumber: 10,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed confession: %v", err)
	}
	return c
}

func seedReply(t *testing.T, db *gorm.DB, confessionID string, at time.Time) *domain.Reply {
	t.Helper()
	r := &domain.Reply{
		ID:           "reply_" + uuid.NewString()[:12],
		ConfessionID: confessionID,
		Text:         "a reply",
		AnonID:       "Anon #5151",
		CreatedAt:    at,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("seed reply: %v", err)
	}
	return r
}
