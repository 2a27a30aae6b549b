package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
)

// CreateBan inserts b. The caller assigns ID and BannedAt.
func CreateBan(ctx context.Context, db *gorm.DB, b *domain.Ban) error {
	return db.WithContext(ctx).Create(b).Error
}

// ListBans returns bans newest first. With activeOnly, lifted bans are
// skipped (expired but still active rows are included; see Ban.AppliesAt).
func ListBans(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Ban, error) {
	q := db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	out := []domain.Ban{}
	err := q.Order("banned_at DESC, id DESC").Find(&out).Error
	return out, err
}

// LiftBan deactivates a ban. Unknown ids yield ErrNotFound.
func LiftBan(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Ban{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindActiveBan returns a ban in force at now that matches ip or sessionID,
// or ErrNotFound. Empty identity values never match, so a ban recorded with
// an empty ip cannot catch every request without a known address.
func FindActiveBan(ctx context.Context, db *gorm.DB, ip, sessionID string, now time.Time) (*domain.Ban, error) {
	if ip == "" && sessionID == "" {
		return nil, ErrNotFound
	}
	q := db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now.UTC())

	switch {
	case ip != "" && sessionID != "":
		q = q.Where(db.Where("ip = ?", ip).Or("session_id = ?", sessionID))
	case ip != "":
		q = q.Where("ip = ?", ip)
	default:
		q = q.Where("session_id = ?", sessionID)
	}

	var out []domain.Ban
	if err := q.Order("banned_at DESC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}
