package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
)

// ErrDuplicate is returned when a unique index rejects an insert: a second
// record for one (session, scope, key) or a second like from one session.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns the live record for (sessionID, scope, key) at now,
// or ErrNotFound. Expired records are ignored even before they are purged.
func GetIdempotency(ctx context.Context, db *gorm.DB, sessionID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if key == "" || strings.TrimSpace(scope) == "" {
		return nil, ErrNotFound
	}
	rec := new(domain.Idempotency)
	err := db.WithContext(ctx).
		Where(&domain.Idempotency{SessionID: sessionID, Scope: scope, Key: key}).
		Where("expires_at > ?", now.UTC()).
		Take(rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return rec, nil
}

// CreateIdempotency remembers that key produced resourceID with status, for
// ttl. A concurrent retry that lost the race gets ErrDuplicate.
func CreateIdempotency(ctx context.Context, db *gorm.DB, sessionID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Scope:      scope,
		Key:        key,
		ResourceID: resourceID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	err := db.WithContext(ctx).Create(rec).Error
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes records expired at now and reports how
// many went.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// uniqueMarkers are driver messages for unique index violations, for
// connections opened without error translation.
var uniqueMarkers = []string{
	"unique constraint",
	"constraint failed: unique",
	"constraint failed: primary key",
	"duplicate key",
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range uniqueMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
