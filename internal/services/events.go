package services

import (
	"context"
	"time"
)

// Live-feed event types.
const (
	EventConfessionCreated = "confession.created"
	EventConfessionDeleted = "confession.deleted"
	EventConfessionLiked   = "confession.liked"
	EventConfessionFlagged = "confession.flagged"
	EventReplyCreated      = "reply.created"
)

// Publisher receives live-feed events. Publish must not block.
type Publisher interface {
	Publish(eventType string, data any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, any) {}

// BanChecker answers whether an ip or session is banned at now.
type BanChecker interface {
	IsBanned(ctx context.Context, ip, sessionID string, now time.Time) (bool, error)
}

// SubmitMeta is the caller context recorded with a confession or reply.
type SubmitMeta struct {
	IP        string
	UserAgent string
	SessionID string
	Location  string
}

// LikeEvent is the payload of confession.liked.
type LikeEvent struct {
	ID    string `json:"id"`
	Likes int    `json:"likes"`
}

// DeleteEvent is the payload of confession.deleted.
type DeleteEvent struct {
	ID string `json:"id"`
}

// FlagEvent is the payload of confession.flagged.
type FlagEvent struct {
	ID        string `json:"id"`
	FlagCount int    `json:"flag_count"`
	Status    string `json:"status"`
}
