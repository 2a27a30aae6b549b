// Package services – ModerationService
//
// This file implements the administrative moderation queue: listing
// confessions of any status with their metadata, and explicit status and
// top-confession changes.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
	"github.com/tbourn/campus-hub/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ModerationService backs the admin surface.
type ModerationService struct {
	DB     *gorm.DB
	Events Publisher
}

// NewModerationService wires a ModerationService.
func NewModerationService(db *gorm.DB, events Publisher) *ModerationService {
	if events == nil {
		events = noopPublisher{}
	}
	return &ModerationService{DB: db, Events: events}
}

// AdminConfession exposes the submission metadata hidden from public views.
type AdminConfession struct {
	domain.ConfessionSummary
	Metadata domain.Metadata `json:"metadata"`
}

// ListForModeration returns confessions newest first, optionally narrowed
// to one status.
func (s *ModerationService) ListForModeration(ctx context.Context, status string, limit int) ([]AdminConfession, error) {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, "ListForModeration",
		trace.WithAttributes(
			attribute.String("status", status),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !domain.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	items, err := repo.ListConfessions(ctx, s.DB, repo.ListQuery{
		Status: status,
		Sort:   repo.SortLatest,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list confessions: %w", err)
	}
	out := make([]AdminConfession, 0, len(items))
	for _, it := range items {
		out = append(out, AdminConfession{ConfessionSummary: it, Metadata: it.Metadata})
	}
	return out, nil
}

// SetStatus moves a confession to status. Leaving approved removes it from
// the live feed.
func (s *ModerationService) SetStatus(ctx context.Context, id, status string) (*domain.Confession, error) {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, "SetStatus",
		trace.WithAttributes(
			attribute.String("confession.id", id),
			attribute.String("status", status),
		),
	)
	defer span.End()

	status = strings.ToLower(strings.TrimSpace(status))
	if !domain.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if err := repo.SetConfessionStatus(ctx, s.DB, id, status); err != nil {
		return nil, notFoundOr(err, "set status")
	}
	c, err := repo.GetConfession(ctx, s.DB, id, false)
	if err != nil {
		return nil, notFoundOr(err, "get confession")
	}

	zerolog.Ctx(ctx).Info().
		Str("confession_id", id).
		Str("status", status).
		Msg("confession status changed")
	if status != domain.StatusApproved {
		s.Events.Publish(EventConfessionDeleted, DeleteEvent{ID: id})
	}
	return c, nil
}

// SetTop sets or clears the top-confession marker.
func (s *ModerationService) SetTop(ctx context.Context, id string, top bool) (*domain.Confession, error) {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, "SetTop",
		trace.WithAttributes(
			attribute.String("confession.id", id),
			attribute.Bool("top", top),
		),
	)
	defer span.End()

	if err := repo.SetTopConfession(ctx, s.DB, id, top); err != nil {
		return nil, notFoundOr(err, "set top")
	}
	c, err := repo.GetConfession(ctx, s.DB, id, false)
	if err != nil {
		return nil, notFoundOr(err, "get confession")
	}
	return c, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrConfessionNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
