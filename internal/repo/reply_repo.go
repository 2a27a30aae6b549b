package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
)

// AppendReply inserts r. Replies are never updated after creation.
func AppendReply(ctx context.Context, db *gorm.DB, r *domain.Reply) error {
	return db.WithContext(ctx).Create(r).Error
}

// GetReply fetches a reply by id within its confession. A reply that exists
// under another confession is reported as ErrNotFound.
func GetReply(ctx context.Context, db *gorm.DB, confessionID, replyID string) (*domain.Reply, error) {
	var r domain.Reply
	err := db.WithContext(ctx).
		Where("id = ? AND confession_id = ?", replyID, confessionID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReplies returns the replies of a confession in insertion order.
func ListReplies(ctx context.Context, db *gorm.DB, confessionID string) ([]domain.Reply, error) {
	out := []domain.Reply{}
	err := db.WithContext(ctx).
		Where("confession_id = ?", confessionID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
