// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides aggregate queries: the public board
// statistics and the lightweight feed fingerprint used for ETag generation in
// the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
)

// BoardStats aggregates approved confessions.
type BoardStats struct {
	Total        int64 `json:"total"`
	ThisWeek     int64 `json:"this_week"`
	TotalLikes   int64 `json:"total_likes"`
	TotalReplies int64 `json:"total_replies"`
}

// ConfessionStats returns counts over approved confessions; ThisWeek counts
// those in the given year/week.
func ConfessionStats(ctx context.Context, db *gorm.DB, year, week int) (BoardStats, error) {
	var st BoardStats
	approved := db.WithContext(ctx).
		Model(&domain.Confession{}).
		Where("status = ?", domain.StatusApproved)

	var row struct {
		Total      int64
		TotalLikes int64
	}
	if err := approved.Session(&gorm.Session{}).
		Select("COUNT(*) AS total, COALESCE(SUM(likes), 0) AS total_likes").
		Scan(&row).Error; err != nil {
		return st, err
	}
	st.Total, st.TotalLikes = row.Total, row.TotalLikes

	if err := approved.Session(&gorm.Session{}).
		Where("year = ? AND week_number = ?", year, week).
		Count(&st.ThisWeek).Error; err != nil {
		return st, err
	}

	err := db.WithContext(ctx).
		Model(&domain.Reply{}).
		Joins("JOIN confessions ON confessions.id = replies.confession_id").
		Where("confessions.status = ?", domain.StatusApproved).
		Count(&st.TotalReplies).Error
	return st, err
}

// FeedStats returns a fingerprint of the public feed: the number of approved
// confessions, the total number of replies, and the greatest UpdatedAt among
// approved confessions (nil when there are none). Any like, edit, reply,
// moderation change or delete changes at least one of the three.
func FeedStats(ctx context.Context, db *gorm.DB) (count, replies int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Confession{}).Where("status = ?", domain.StatusApproved)

	if err = q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, 0, nil, err
	}
	if err = db.WithContext(ctx).Model(&domain.Reply{}).Count(&replies).Error; err != nil {
		return 0, 0, nil, err
	}
	if count == 0 {
		return 0, replies, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Session(&gorm.Session{}).Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, nil, err
	}
	return count, replies, &row.UpdatedAt, nil
}
