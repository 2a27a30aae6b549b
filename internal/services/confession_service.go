// Package services – ConfessionService
//
// This file implements ConfessionService, which owns the lifecycle of
// confessions and their replies: submission (length, content filter, posting
// window and ban checks, in that order), public listing and lookup, the
// confession of the week, board statistics, owner-gated edit and delete, and
// community flagging.
//
// Observability: all public methods are OpenTelemetry-instrumented; rejected
// submissions are counted by reason and logged through the request logger.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/capability"
	"github.com/tbourn/campus-hub/internal/domain"
	"github.com/tbourn/campus-hub/internal/identity"
	"github.com/tbourn/campus-hub/internal/moderation"
	"github.com/tbourn/campus-hub/internal/policy"
	"github.com/tbourn/campus-hub/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Text bounds, counted in user-perceived characters (grapheme clusters).
const (
	MinConfessionLen = 10
	MaxConfessionLen = 500
	MinReplyLen      = 1
	MaxReplyLen      = 300
)

// List bounds.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// DefaultFlagThreshold is the flag count at which an approved confession is
// hidden.
const DefaultFlagThreshold = 5

var mobileUA = regexp.MustCompile(`(?i)Mobile|Android|iPhone`)

// DeviceType classifies a user agent as "Mobile" or "Desktop".
func DeviceType(userAgent string) string {
	if mobileUA.MatchString(userAgent) {
		return "Mobile"
	}
	return "Desktop"
}

// TextLength returns the length of s in grapheme clusters.
func TextLength(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// ConfessionService coordinates confession persistence and the rules around
// it.
type ConfessionService struct {
	DB     *gorm.DB
	Policy policy.Policy
	Filter moderation.Checker
	Bans   BanChecker
	Owners capability.Owner
	Events Publisher

	// FlagThreshold hides an approved confession once its flag count
	// reaches it.
	FlagThreshold int

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewConfessionService wires a ConfessionService. A nil filter falls back to
// the default denylist; a nil publisher drops events.
func NewConfessionService(db *gorm.DB, pol policy.Policy, filter moderation.Checker, bans BanChecker, owners capability.Owner, events Publisher) *ConfessionService {
	if filter == nil {
		filter = moderation.NewFilter(moderation.DefaultTerms)
	}
	if events == nil {
		events = noopPublisher{}
	}
	return &ConfessionService{
		DB:            db,
		Policy:        pol,
		Filter:        filter,
		Bans:          bans,
		Owners:        owners,
		Events:        events,
		FlagThreshold: DefaultFlagThreshold,
	}
}

func (s *ConfessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ConfessionService) publish(eventType string, data any) {
	if s.Events != nil {
		s.Events.Publish(eventType, data)
	}
}

// Submit validates and stores a new confession and returns it together with
// an owner token for later edits and deletes.
func (s *ConfessionService) Submit(ctx context.Context, text string, meta SubmitMeta) (*domain.Confession, string, error) {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.String("session.id", meta.SessionID)),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if n := TextLength(text); n < MinConfessionLen || n > MaxConfessionLen {
		reject(reasonLength)
		return nil, "", ErrTextLength
	}
	if err := s.screen(ctx, text); err != nil {
		return nil, "", err
	}

	now := s.now()
	if !s.Policy.IsPostingDay(now) {
		reject(reasonPostingClosed)
		return nil, "", &PostingClosedError{Next: s.Policy.NextPostingDate(now)}
	}
	if err := s.checkBan(ctx, meta, now); err != nil {
		return nil, "", err
	}

	year, week := s.Policy.Week(now)
	c := &domain.Confession{
		ID:         uuid.NewString(),
		Text:       text,
		AnonID:     identity.GenerateAnonID(),
		Status:     domain.StatusApproved,
		WeekNumber: week,
		Year:       year,
		CreatedAt:  now,
		UpdatedAt:  now,
		Metadata:   metadataFor(meta),
	}

	token, err := s.Owners.Issue(c.ID, now)
	if err != nil {
		return nil, "", fmt.Errorf("issue owner token: %w", err)
	}
	if err := repo.CreateConfession(ctx, s.DB, c); err != nil {
		return nil, "", fmt.Errorf("create confession: %w", err)
	}
	c.Replies = []domain.Reply{}

	confessionsSubmitted.Inc()
	s.publish(EventConfessionCreated, domain.ConfessionSummary{Confession: *c})
	return c, token, nil
}

// List returns approved confessions in the given order. An empty sort means
// latest; limit is clamped to [1, MaxListLimit] with DefaultListLimit for
// non-positive values.
func (s *ConfessionService) List(ctx context.Context, sort string, limit int) ([]domain.ConfessionSummary, error) {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("sort", sort),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	order := repo.SortOrder(strings.ToLower(strings.TrimSpace(sort)))
	if order == "" {
		order = repo.SortLatest
	}
	if !order.Valid() {
		return nil, ErrInvalidSort
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	items, err := repo.ListConfessions(ctx, s.DB, repo.ListQuery{
		Status: domain.StatusApproved,
		Sort:   order,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list confessions: %w", err)
	}
	return items, nil
}

// Get returns an approved confession with its replies in insertion order.
func (s *ConfessionService) Get(ctx context.Context, id string) (*domain.Confession, error) {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("confession.id", id)),
	)
	defer span.End()

	c, err := repo.GetConfession(ctx, s.DB, id, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConfessionNotFound
		}
		return nil, fmt.Errorf("get confession: %w", err)
	}
	if c.Status != domain.StatusApproved {
		return nil, ErrConfessionNotFound
	}
	if c.Replies == nil {
		c.Replies = []domain.Reply{}
	}
	return c, nil
}

// TopOfWeek returns the most liked approved confession of the current week,
// or nil when there is none.
func (s *ConfessionService) TopOfWeek(ctx context.Context) (*domain.ConfessionSummary, error) {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "TopOfWeek")
	defer span.End()

	year, week := s.Policy.Week(s.now())
	span.SetAttributes(attribute.Int("year", year), attribute.Int("week", week))

	top, err := repo.TopConfessionOfWeek(ctx, s.DB, year, week)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("top confession: %w", err)
	}
	return top, nil
}

// Stats returns board statistics over approved confessions.
func (s *ConfessionService) Stats(ctx context.Context) (repo.BoardStats, error) {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	year, week := s.Policy.Week(s.now())
	st, err := repo.ConfessionStats(ctx, s.DB, year, week)
	if err != nil {
		return st, fmt.Errorf("confession stats: %w", err)
	}
	return st, nil
}

// Window reports the posting window right now.
func (s *ConfessionService) Window() policy.Window {
	return s.Policy.Window(s.now())
}

// Edit replaces the text of a confession owned by the token holder. Only
// the text changes.
func (s *ConfessionService) Edit(ctx context.Context, id, text, ownerToken string) (*domain.Confession, error) {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "Edit",
		trace.WithAttributes(attribute.String("confession.id", id)),
	)
	defer span.End()

	if err := s.Owners.Verify(ownerToken, id, s.now()); err != nil {
		return nil, ErrNotOwner
	}
	text = strings.TrimSpace(text)
	if n := TextLength(text); n < MinConfessionLen || n > MaxConfessionLen {
		reject(reasonLength)
		return nil, ErrTextLength
	}
	if err := s.screen(ctx, text); err != nil {
		return nil, err
	}

	if err := repo.UpdateConfessionText(ctx, s.DB, id, text); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConfessionNotFound
		}
		return nil, fmt.Errorf("update confession: %w", err)
	}
	c, err := repo.GetConfession(ctx, s.DB, id, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConfessionNotFound
		}
		return nil, fmt.Errorf("get confession: %w", err)
	}
	return c, nil
}

// Delete removes a confession owned by the token holder, together with its
// replies and likes.
func (s *ConfessionService) Delete(ctx context.Context, id, ownerToken string) error {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("confession.id", id)),
	)
	defer span.End()

	if err := s.Owners.Verify(ownerToken, id, s.now()); err != nil {
		return ErrNotOwner
	}
	if err := repo.DeleteConfession(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrConfessionNotFound
		}
		return fmt.Errorf("delete confession: %w", err)
	}
	s.publish(EventConfessionDeleted, DeleteEvent{ID: id})
	return nil
}

// Flag raises the flag count of a visible confession by one. When the count
// reaches FlagThreshold the confession is moved to flagged in the same
// statement and disappears from public views.
func (s *ConfessionService) Flag(ctx context.Context, id string) (*domain.Confession, error) {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "Flag",
		trace.WithAttributes(attribute.String("confession.id", id)),
	)
	defer span.End()

	prior, err := repo.GetConfession(ctx, s.DB, id, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConfessionNotFound
		}
		return nil, fmt.Errorf("get confession: %w", err)
	}
	if prior.Status != domain.StatusApproved {
		return nil, ErrConfessionNotFound
	}

	threshold := s.FlagThreshold
	if threshold <= 0 {
		threshold = DefaultFlagThreshold
	}
	c, err := repo.FlagConfession(ctx, s.DB, id, threshold)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConfessionNotFound
		}
		return nil, fmt.Errorf("flag confession: %w", err)
	}

	confessionFlags.Inc()
	if c.Status == domain.StatusFlagged {
		confessionsAutoFlagged.Inc()
		zerolog.Ctx(ctx).Warn().
			Str("confession_id", id).
			Int("flag_count", c.FlagCount).
			Msg("confession hidden by flag threshold")
		s.publish(EventConfessionFlagged, FlagEvent{ID: id, FlagCount: c.FlagCount, Status: c.Status})
	}
	return c, nil
}

// SubmitReply appends a reply to an approved confession. A non-empty
// parentReplyID must name a reply of the same confession.
func (s *ConfessionService) SubmitReply(ctx context.Context, confessionID, text, parentReplyID string, meta SubmitMeta) (*domain.Reply, error) {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "SubmitReply",
		trace.WithAttributes(
			attribute.String("confession.id", confessionID),
			attribute.String("session.id", meta.SessionID),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if n := TextLength(text); n < MinReplyLen || n > MaxReplyLen {
		reject(reasonLength)
		return nil, ErrReplyLength
	}
	if err := s.screen(ctx, text); err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.checkBan(ctx, meta, now); err != nil {
		return nil, err
	}

	c, err := repo.GetConfession(ctx, s.DB, confessionID, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConfessionNotFound
		}
		return nil, fmt.Errorf("get confession: %w", err)
	}
	if c.Status != domain.StatusApproved {
		return nil, ErrConfessionNotFound
	}

	var parent *string
	if p := strings.TrimSpace(parentReplyID); p != "" {
		if _, err := repo.GetReply(ctx, s.DB, confessionID, p); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrParentReplyNotFound
			}
			return nil, fmt.Errorf("get parent reply: %w", err)
		}
		parent = &p
	}

	r := &domain.Reply{
		ID:            identity.NewReplyID(),
		ConfessionID:  confessionID,
		Text:          text,
		AnonID:        identity.GenerateAnonID(),
		ParentReplyID: parent,
		CreatedAt:     now,
		Metadata:      metadataFor(meta),
	}
	if err := repo.AppendReply(ctx, s.DB, r); err != nil {
		return nil, fmt.Errorf("append reply: %w", err)
	}
	s.publish(EventReplyCreated, r)
	return r, nil
}

// Reissue returns a stored confession of any status with a fresh owner
// token. It serves idempotent replays of a submission, where the original
// token is not stored.
func (s *ConfessionService) Reissue(ctx context.Context, id string) (*domain.Confession, string, error) {
	tr := otel.Tracer("services/ConfessionService")
	ctx, span := tr.Start(ctx, "Reissue",
		trace.WithAttributes(attribute.String("confession.id", id)),
	)
	defer span.End()

	c, err := repo.GetConfession(ctx, s.DB, id, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrConfessionNotFound
		}
		return nil, "", fmt.Errorf("get confession: %w", err)
	}
	if c.Replies == nil {
		c.Replies = []domain.Reply{}
	}
	token, err := s.Owners.Issue(c.ID, s.now())
	if err != nil {
		return nil, "", fmt.Errorf("issue owner token: %w", err)
	}
	return c, token, nil
}

// GetReply returns one reply of a confession.
func (s *ConfessionService) GetReply(ctx context.Context, confessionID, replyID string) (*domain.Reply, error) {
	r, err := repo.GetReply(ctx, s.DB, confessionID, replyID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConfessionNotFound
		}
		return nil, fmt.Errorf("get reply: %w", err)
	}
	return r, nil
}

// screen applies the content filter. The matched term is logged, never
// returned.
func (s *ConfessionService) screen(ctx context.Context, text string) error {
	if s.Filter == nil {
		return nil
	}
	if term, bad := s.Filter.Match(text); bad {
		reject(reasonContentPolicy)
		zerolog.Ctx(ctx).Info().Str("term", term).Msg("text rejected by content filter")
		return ErrContentPolicy
	}
	return nil
}

func (s *ConfessionService) checkBan(ctx context.Context, meta SubmitMeta, now time.Time) error {
	if s.Bans == nil {
		return nil
	}
	banned, err := s.Bans.IsBanned(ctx, meta.IP, meta.SessionID, now)
	if err != nil {
		return fmt.Errorf("check ban: %w", err)
	}
	if banned {
		reject(reasonBanned)
		zerolog.Ctx(ctx).Info().Str("session_id", meta.SessionID).Msg("submission from banned identity")
		return ErrBanned
	}
	return nil
}

const maxLocationRunes = 128

func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

func metadataFor(meta SubmitMeta) domain.Metadata {
	return domain.Metadata{
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		SessionID:  meta.SessionID,
		Location:   clip(strings.TrimSpace(meta.Location), maxLocationRunes),
		DeviceType: DeviceType(meta.UserAgent),
	}
}
