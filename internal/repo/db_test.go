package repo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tbourn/campus-hub/internal/domain"
)

func openFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("sqlite://" + filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestOpen(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		wantErr func(error) bool
	}{
		{"unknown scheme", "mysql://root@localhost/hub", func(err error) bool { return errors.Is(err, ErrUnsupportedURL) }},
		{"empty", "", func(err error) bool { return errors.Is(err, ErrUnsupportedURL) }},
		{"missing sqlite dir", "sqlite://" + filepath.Join(os.TempDir(), "campushub-missing-dir", "x", "hub.db"),
			func(err error) bool { return errors.Is(err, os.ErrNotExist) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, err := Open(tc.url)
			if db != nil || !tc.wantErr(err) {
				t.Fatalf("Open(%q) = %v, %v", tc.url, db, err)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := sqliteDSN("/var/lib/hub.db")
	want := "/var/lib/hub.db?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if got != want {
		t.Fatalf("sqliteDSN = %q", got)
	}
	if got := sqliteDSN("hub.db?cache=shared"); !strings.HasPrefix(got, "hub.db?cache=shared&_pragma=") {
		t.Fatalf("existing query not extended: %q", got)
	}
}

func TestOpenSQLite_PragmasOnEveryConnection(t *testing.T) {
	db := openFileDB(t)
	if db.Dialector.Name() != "sqlite" {
		t.Fatalf("dialector = %q", db.Dialector.Name())
	}
	sqlDB, _ := db.DB()
	if got := sqlDB.Stats().MaxOpenConnections; got != sqlitePool.maxOpen {
		t.Fatalf("MaxOpenConnections = %d", got)
	}

	// Hold one connection so the next queries are forced onto another.
	ctx := context.Background()
	held, err := sqlDB.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer held.Close()

	pragmas := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"foreign_keys": "1",
		"busy_timeout": "5000",
	}
	for name, want := range pragmas {
		var got string
		if err := held.QueryRowContext(ctx, "PRAGMA "+name).Scan(&got); err != nil {
			t.Fatalf("held PRAGMA %s: %v", name, err)
		}
		if strings.ToLower(got) != want {
			t.Errorf("held conn %s = %q; want %q", name, got, want)
		}
		if err := db.Raw("PRAGMA " + name).Row().Scan(&got); err != nil {
			t.Fatalf("pool PRAGMA %s: %v", name, err)
		}
		if strings.ToLower(got) != want {
			t.Errorf("pooled conn %s = %q; want %q", name, got, want)
		}
	}
}

func TestAutoMigrate_SchemaEnforcesRelations(t *testing.T) {
	db := openFileDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("second AutoMigrate: %v", err)
	}
	for _, m := range []any{&domain.Confession{}, &domain.Reply{}, &domain.ConfessionLike{}, &domain.Ban{}, &domain.Idempotency{}} {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("no table for %T", m)
		}
	}

	now := time.Now().UTC()
	conf := &domain.Confession{ID: "c1", Text: "hello campus", AnonID: "Anon #1111", Status: domain.StatusApproved, CreatedAt: now, UpdatedAt: now}
	if err := db.Create(conf).Error; err != nil {
		t.Fatalf("insert confession: %v", err)
	}
	if err := db.Create(&domain.Reply{ID: "reply_1", ConfessionID: "c1", Text: "same", AnonID: "Anon #2222", CreatedAt: now}).Error; err != nil {
		t.Fatalf("insert reply: %v", err)
	}

	orphan := &domain.Reply{ID: "reply_2", ConfessionID: "missing", Text: "x", AnonID: "Anon #3333", CreatedAt: now}
	if err := db.Create(orphan).Error; err == nil {
		t.Fatalf("orphan reply accepted")
	}
	if err := db.Create(conf).Error; !isUniqueViolation(err) {
		t.Fatalf("duplicate id: %v; want unique violation", err)
	}
}

func TestEnableTracing(t *testing.T) {
	db := newTestDB(t)
	if err := EnableTracing(db); err != nil {
		t.Fatalf("EnableTracing: %v", err)
	}
	if len(db.Config.Plugins) != 1 {
		t.Fatalf("plugins = %v", db.Config.Plugins)
	}
	if _, err := ListConfessions(context.Background(), db, ListQuery{Sort: SortLatest}); err != nil {
		t.Fatalf("query with tracing: %v", err)
	}
}

func TestLogger_Trace(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	sqlText := "INSERT INTO confessions (text) VALUES ('my secret crush')"
	fc := func() (string, int64) { return sqlText, 1 }
	old := time.Now().Add(-time.Second)

	cases := []struct {
		name  string
		level gormlogger.LogLevel
		begin time.Time
		err   error
		want  string
	}{
		{"failure", gormlogger.Warn, time.Now(), errors.New("disk I/O error"), `"level":"error"`},
		{"not found is quiet", gormlogger.Warn, time.Now(), gormlogger.ErrRecordNotFound, ""},
		{"slow", gormlogger.Warn, old, nil, `"level":"warn"`},
		{"fast", gormlogger.Warn, time.Now(), nil, ""},
		{"silent", gormlogger.Silent, old, errors.New("boom"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			lg := zerolog.New(&buf)
			ctx := lg.WithContext(context.Background())

			NewLogger(slowQueryThreshold).LogMode(tc.level).Trace(ctx, tc.begin, fc, tc.err)

			out := buf.String()
			if tc.want == "" {
				if out != "" {
					t.Fatalf("unexpected log: %s", out)
				}
				return
			}
			if !strings.Contains(out, tc.want) || !strings.Contains(out, `"rows":1`) {
				t.Fatalf("log = %s; want %s", out, tc.want)
			}
			if strings.Contains(out, "secret crush") {
				t.Fatalf("statement text logged above debug: %s", out)
			}
		})
	}
}
