// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Confession
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They hold no business rules: validation,
// status visibility and ownership checks live in the services package.
//
// Error semantics:
//   - Missing rows yield ErrNotFound (an alias of gorm.ErrRecordNotFound).
//   - Other DB errors are propagated unchanged.
//
// Counters (likes, flag_count) are only ever modified with single-statement
// SQL expressions so concurrent writers cannot lose updates.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// SortOrder selects the ordering of confession lists.
type SortOrder string

// Supported list orderings.
const (
	SortLatest   SortOrder = "latest"   // created_at desc
	SortPopular  SortOrder = "popular"  // likes desc
	SortTrending SortOrder = "trending" // likes desc, then created_at desc
)

// orderClause maps a SortOrder to SQL. The trailing id keeps pages stable
// when the primary keys tie.
func (s SortOrder) orderClause() (string, bool) {
	switch s {
	case SortLatest:
		return "confessions.created_at DESC, confessions.id DESC", true
	case SortPopular:
		return "confessions.likes DESC, confessions.id DESC", true
	case SortTrending:
		return "confessions.likes DESC, confessions.created_at DESC, confessions.id DESC", true
	}
	return "", false
}

// Valid reports whether s is a known ordering.
func (s SortOrder) Valid() bool {
	_, ok := s.orderClause()
	return ok
}

// ListQuery narrows ListConfessions. An empty Status returns every status.
type ListQuery struct {
	Status string
	Sort   SortOrder
	Limit  int
}

const replyCountColumn = "(SELECT COUNT(*) FROM replies WHERE replies.confession_id = confessions.id) AS reply_count"

// CreateConfession inserts c as-is. The caller assigns ID and timestamps.
func CreateConfession(ctx context.Context, db *gorm.DB, c *domain.Confession) error {
	return db.WithContext(ctx).Omit("Replies").Create(c).Error
}

// GetConfession fetches a confession by id regardless of status. When
// withReplies is set, replies are loaded in insertion order (empty, not nil,
// when there are none).
func GetConfession(ctx context.Context, db *gorm.DB, id string, withReplies bool) (*domain.Confession, error) {
	var c domain.Confession
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	if withReplies {
		replies, err := ListReplies(ctx, db, id)
		if err != nil {
			return nil, err
		}
		c.Replies = replies
	}
	return &c, nil
}

// ListConfessions returns summaries (with reply counts) ordered and limited
// per q. An unknown sort falls back to latest.
func ListConfessions(ctx context.Context, db *gorm.DB, q ListQuery) ([]domain.ConfessionSummary, error) {
	order, ok := q.Sort.orderClause()
	if !ok {
		order, _ = SortLatest.orderClause()
	}
	tx := db.WithContext(ctx).
		Model(&domain.Confession{}).
		Select("confessions.*, " + replyCountColumn)
	if q.Status != "" {
		tx = tx.Where("confessions.status = ?", q.Status)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	out := []domain.ConfessionSummary{}
	err := tx.Order(order).Find(&out).Error
	return out, err
}

// TopConfessionOfWeek returns the approved confession with the most likes in
// the given week, newest first on ties, or ErrNotFound when the week is empty.
func TopConfessionOfWeek(ctx context.Context, db *gorm.DB, year, week int) (*domain.ConfessionSummary, error) {
	var out []domain.ConfessionSummary
	err := db.WithContext(ctx).
		Model(&domain.Confession{}).
		Select("confessions.*, "+replyCountColumn).
		Where("confessions.status = ? AND confessions.year = ? AND confessions.week_number = ?", domain.StatusApproved, year, week).
		Order("confessions.likes DESC, confessions.created_at DESC").
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// UpdateConfessionText replaces the text of a confession. Nothing else
// changes except updated_at.
func UpdateConfessionText(ctx context.Context, db *gorm.DB, id, text string) error {
	return updateOne(ctx, db, id, map[string]any{"text": text})
}

// SetConfessionStatus moves a confession to status.
func SetConfessionStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	return updateOne(ctx, db, id, map[string]any{"status": status})
}

// SetTopConfession sets or clears the top-confession marker.
func SetTopConfession(ctx context.Context, db *gorm.DB, id string, top bool) error {
	return updateOne(ctx, db, id, map[string]any{"is_top_confession": top})
}

// IncrementLikes adds one like.
func IncrementLikes(ctx context.Context, db *gorm.DB, id string) error {
	return updateOne(ctx, db, id, map[string]any{"likes": gorm.Expr("likes + 1")})
}

// DecrementLikes removes one like without going below zero.
func DecrementLikes(ctx context.Context, db *gorm.DB, id string) error {
	return updateOne(ctx, db, id, map[string]any{
		"likes": gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END"),
	})
}

// FlagConfession increments flag_count and, in the same statement, moves an
// approved confession to flagged once the new count reaches threshold. The
// updated row is returned.
func FlagConfession(ctx context.Context, db *gorm.DB, id string, threshold int) (*domain.Confession, error) {
	err := updateOne(ctx, db, id, map[string]any{
		"flag_count": gorm.Expr("flag_count + 1"),
		"status": gorm.Expr("CASE WHEN status = ? AND flag_count + 1 >= ? THEN ? ELSE status END",
			domain.StatusApproved, threshold, domain.StatusFlagged),
	})
	if err != nil {
		return nil, err
	}
	return GetConfession(ctx, db, id, false)
}

// DeleteConfession removes a confession together with its replies and like
// ledger rows. The explicit child deletes keep SQLite connections without
// foreign_keys=ON consistent.
func DeleteConfession(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("confession_id = ?", id).Delete(&domain.ConfessionLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("confession_id = ?", id).Delete(&domain.Reply{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Confession{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// updateOne applies fields to the confession id and reports ErrNotFound when
// no row matched.
func updateOne(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Confession{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
