// Package services – EngagementService
//
// This file implements the per-device engagement ledger. A like is one row
// in confession_likes plus one counter increment, committed together; the
// ledger's primary key is what rejects a second like from the same session,
// even when two requests race.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
	"github.com/tbourn/campus-hub/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxLikedLookup caps the ids accepted by LikedIDs.
const maxLikedLookup = 100

// EngagementService records likes per device session.
type EngagementService struct {
	DB     *gorm.DB
	Events Publisher
}

// NewEngagementService wires an EngagementService. A nil publisher drops
// events.
func NewEngagementService(db *gorm.DB, events Publisher) *EngagementService {
	if events == nil {
		events = noopPublisher{}
	}
	return &EngagementService{DB: db, Events: events}
}

// Like adds the session's like to an approved confession and returns the new
// like count. A second like from the same session yields ErrAlreadyLiked and
// leaves the counter unchanged.
func (s *EngagementService) Like(ctx context.Context, sessionID, confessionID string) (int, error) {
	tr := otel.Tracer("services/EngagementService")
	ctx, span := tr.Start(ctx, "Like",
		trace.WithAttributes(
			attribute.String("confession.id", confessionID),
			attribute.String("session.id", sessionID),
		),
	)
	defer span.End()

	return s.apply(ctx, sessionID, confessionID, "like", func(tx *gorm.DB) error {
		if err := repo.InsertLike(ctx, tx, confessionID, sessionID); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrAlreadyLiked
			}
			return err
		}
		return repo.IncrementLikes(ctx, tx, confessionID)
	})
}

// Unlike removes the session's like and returns the new like count. The
// count never drops below zero.
func (s *EngagementService) Unlike(ctx context.Context, sessionID, confessionID string) (int, error) {
	tr := otel.Tracer("services/EngagementService")
	ctx, span := tr.Start(ctx, "Unlike",
		trace.WithAttributes(
			attribute.String("confession.id", confessionID),
			attribute.String("session.id", sessionID),
		),
	)
	defer span.End()

	return s.apply(ctx, sessionID, confessionID, "unlike", func(tx *gorm.DB) error {
		if err := repo.DeleteLike(ctx, tx, confessionID, sessionID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNotLiked
			}
			return err
		}
		return repo.DecrementLikes(ctx, tx, confessionID)
	})
}

// apply runs change inside a transaction after checking the confession is
// visible, then reloads the like count.
func (s *EngagementService) apply(ctx context.Context, sessionID, confessionID, op string, change func(tx *gorm.DB) error) (int, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, ErrMissingSession
	}
	var likes int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.GetConfession(ctx, tx, confessionID, false)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrConfessionNotFound
			}
			return err
		}
		if c.Status != domain.StatusApproved {
			return ErrConfessionNotFound
		}
		if err := change(tx); err != nil {
			return err
		}
		after, err := repo.GetConfession(ctx, tx, confessionID, false)
		if err != nil {
			return err
		}
		likes = after.Likes
		return nil
	})
	if err != nil {
		if IsConflict(err) || IsNotFound(err) {
			return 0, err
		}
		return 0, fmt.Errorf("%s confession: %w", op, err)
	}

	confessionLikes.WithLabelValues(op).Inc()
	s.Events.Publish(EventConfessionLiked, LikeEvent{ID: confessionID, Likes: likes})
	return likes, nil
}

// LikedIDs returns which of ids the session has liked. With no ids it
// returns the session's most recent likes, up to maxLikedLookup.
func (s *EngagementService) LikedIDs(ctx context.Context, sessionID string, ids []string) ([]string, error) {
	tr := otel.Tracer("services/EngagementService")
	ctx, span := tr.Start(ctx, "LikedIDs",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.Int("ids", len(ids)),
		),
	)
	defer span.End()

	if strings.TrimSpace(sessionID) == "" {
		return []string{}, nil
	}
	if len(ids) > maxLikedLookup {
		ids = ids[:maxLikedLookup]
	}
	out, err := repo.LikedConfessionIDs(ctx, s.DB, sessionID, ids)
	if err != nil {
		return nil, fmt.Errorf("liked ids: %w", err)
	}
	if len(ids) == 0 && len(out) > maxLikedLookup {
		out = out[:maxLikedLookup]
	}
	return out, nil
}
