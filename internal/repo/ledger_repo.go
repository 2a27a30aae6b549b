// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the per-device like ledger: one row per
// (confession, session) pair. The composite primary key is what makes a like
// an atomic check-and-set; callers pair InsertLike/DeleteLike with the
// matching counter update inside one transaction.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
)

// InsertLike records that sessionID liked confessionID. It returns
// ErrDuplicate when the pair already exists.
func InsertLike(ctx context.Context, db *gorm.DB, confessionID, sessionID string) error {
	row := &domain.ConfessionLike{
		ConfessionID: confessionID,
		SessionID:    sessionID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteLike removes the ledger row for the pair, or returns ErrNotFound when
// the session never liked the confession.
func DeleteLike(ctx context.Context, db *gorm.DB, confessionID, sessionID string) error {
	res := db.WithContext(ctx).
		Where("confession_id = ? AND session_id = ?", confessionID, sessionID).
		Delete(&domain.ConfessionLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LikedConfessionIDs returns the subset of ids that sessionID has liked. With
// no ids it returns every confession the session liked, newest first.
func LikedConfessionIDs(ctx context.Context, db *gorm.DB, sessionID string, ids []string) ([]string, error) {
	q := db.WithContext(ctx).
		Model(&domain.ConfessionLike{}).
		Where("session_id = ?", sessionID)
	if len(ids) > 0 {
		q = q.Where("confession_id IN ?", ids)
	}
	out := []string{}
	err := q.Order("created_at DESC").Pluck("confession_id", &out).Error
	return out, err
}
