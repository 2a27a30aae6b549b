// Package services – BanService
//
// This file implements the ban registry: the submission-time check and the
// administrative create, list and lift operations. Identities known to be
// unbanned are remembered in a bounded, expiring LRU so a burst of
// submissions does not turn into a burst of ban queries. Matches are never
// cached. Changes made through this service purge the cache; changes made by
// another process (the ban CLI) are seen once the entry expires.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
	"github.com/tbourn/campus-hub/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Ban cache defaults.
const (
	DefaultBanCacheSize = 4096
	DefaultBanCacheTTL  = time.Minute
)

// BanInput describes a new ban. At least one of IP and SessionID is
// required, as is Reason. A nil ExpiresAt bans indefinitely.
type BanInput struct {
	IP        string     `json:"ip"`
	SessionID string     `json:"session_id"`
	Reason    string     `json:"reason"`
	BannedBy  string     `json:"banned_by"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// BanService checks and administers bans.
type BanService struct {
	DB    *gorm.DB
	clear *expirable.LRU[string, struct{}]

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewBanService returns a BanService with a lookup cache of size entries
// kept for ttl. Non-positive values use the defaults.
func NewBanService(db *gorm.DB, size int, ttl time.Duration) *BanService {
	if size <= 0 {
		size = DefaultBanCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultBanCacheTTL
	}
	return &BanService{
		DB:    db,
		clear: expirable.NewLRU[string, struct{}](size, nil, ttl),
	}
}

func (s *BanService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func cacheKey(ip, sessionID string) string {
	return ip + "|" + sessionID
}

// IsBanned reports whether an active, unexpired ban matches ip or
// sessionID at now. Empty values never match.
func (s *BanService) IsBanned(ctx context.Context, ip, sessionID string, now time.Time) (bool, error) {
	tr := otel.Tracer("services/BanService")
	ctx, span := tr.Start(ctx, "IsBanned",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	ip, sessionID = strings.TrimSpace(ip), strings.TrimSpace(sessionID)
	if ip == "" && sessionID == "" {
		return false, nil
	}

	key := cacheKey(ip, sessionID)
	if _, ok := s.clear.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return false, nil
	}

	b, err := repo.FindActiveBan(ctx, s.DB, ip, sessionID, now)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		s.clear.Add(key, struct{}{})
		return false, nil
	case err != nil:
		return false, fmt.Errorf("find ban: %w", err)
	}
	return b.AppliesAt(now), nil
}

// Create records a ban and purges the lookup cache.
func (s *BanService) Create(ctx context.Context, in BanInput) (*domain.Ban, error) {
	tr := otel.Tracer("services/BanService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	in.IP = strings.TrimSpace(in.IP)
	in.SessionID = strings.TrimSpace(in.SessionID)
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" || (in.IP == "" && in.SessionID == "") {
		return nil, ErrInvalidBan
	}
	now := s.now()
	if in.ExpiresAt != nil {
		if !in.ExpiresAt.After(now) {
			return nil, ErrInvalidBan
		}
		// SQLite compares stored times as text, so every instant is written in UTC.
		exp := in.ExpiresAt.UTC()
		in.ExpiresAt = &exp
	}

	b := &domain.Ban{
		ID:        uuid.NewString(),
		IP:        in.IP,
		SessionID: in.SessionID,
		Reason:    in.Reason,
		BannedAt:  now,
		BannedBy:  strings.TrimSpace(in.BannedBy),
		ExpiresAt: in.ExpiresAt,
		IsActive:  true,
	}
	if err := repo.CreateBan(ctx, s.DB, b); err != nil {
		return nil, fmt.Errorf("create ban: %w", err)
	}
	s.clear.Purge()

	zerolog.Ctx(ctx).Info().
		Str("ban_id", b.ID).
		Str("banned_by", b.BannedBy).
		Msg("ban created")
	return b, nil
}

// List returns bans newest first; activeOnly skips lifted bans.
func (s *BanService) List(ctx context.Context, activeOnly bool) ([]domain.Ban, error) {
	tr := otel.Tracer("services/BanService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.Bool("active_only", activeOnly)),
	)
	defer span.End()

	out, err := repo.ListBans(ctx, s.DB, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	return out, nil
}

// Lift deactivates a ban and purges the lookup cache.
func (s *BanService) Lift(ctx context.Context, id string) error {
	tr := otel.Tracer("services/BanService")
	ctx, span := tr.Start(ctx, "Lift",
		trace.WithAttributes(attribute.String("ban.id", id)),
	)
	defer span.End()

	if err := repo.LiftBan(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrBanNotFound
		}
		return fmt.Errorf("lift ban: %w", err)
	}
	s.clear.Purge()
	zerolog.Ctx(ctx).Info().Str("ban_id", id).Msg("ban lifted")
	return nil
}
