// Package domain defines the persistence models for anonymous confessions,
// their replies, the per-device like ledger, and the ban registry. These types
// are mapped with GORM and form the core data layer of the campus hub.
package domain

import "time"

// Moderation states of a confession.
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
	StatusFlagged  = "flagged"
)

// ValidStatus reports whether s is one of the known moderation states.
func ValidStatus(s string) bool {
	switch s {
	case StatusApproved, StatusPending, StatusRejected, StatusFlagged:
		return true
	}
	return false
}

// Metadata is captured once at submission time and never updated. It is only
// ever serialized by administrative views.
//
// Fields:
//   - IP: client address as seen by the server (empty when unknown).
//   - UserAgent: raw User-Agent header.
//   - SessionID: the submitting device session.
//   - Location: free-form, client supplied.
//   - DeviceType: "Mobile" or "Desktop", derived from UserAgent.
type Metadata struct {
	IP         string `json:"ip"          gorm:"type:varchar(64);index"`
	UserAgent  string `json:"user_agent"  gorm:"type:text"`
	SessionID  string `json:"session_id"  gorm:"type:varchar(64);index"`
	Location   string `json:"location"    gorm:"type:varchar(128)"`
	DeviceType string `json:"device_type" gorm:"type:varchar(16)"`
}

// Confession is a single anonymous post.
//
// Likes and FlagCount only ever change through single-statement increments in
// the repository, never through read-modify-write. Status starts as approved
// and only moves to flagged through the flag threshold or through an explicit
// administrative action.
type Confession struct {
	ID              string    `json:"id"                gorm:"type:char(36);primaryKey"`
	Text            string    `json:"text"              gorm:"type:text;not null"`
	AnonID          string    `json:"anon_id"           gorm:"type:varchar(16);not null"`
	Likes           int       `json:"likes"             gorm:"not null;index"`
	FlagCount       int       `json:"flag_count"        gorm:"not null"`
	Status          string    `json:"status"            gorm:"type:varchar(16);not null;index;check:status IN ('approved','pending','rejected','flagged')"`
	WeekNumber      int       `json:"week_number"       gorm:"not null;index:idx_confession_week,priority:2"`
	Year            int       `json:"year"              gorm:"not null;index:idx_confession_week,priority:1"`
	IsTopConfession bool      `json:"is_top_confession" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"        gorm:"index"`
	UpdatedAt       time.Time `json:"updated_at"`

	Metadata Metadata `json:"-" gorm:"embedded;embeddedPrefix:meta_"`

	// Replies are kept in insertion order. They are cascade-deleted with
	// their confession.
	Replies []Reply `json:"replies,omitempty" gorm:"foreignKey:ConfessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Confession.
func (Confession) TableName() string { return "confessions" }

// ConfessionSummary is the list view of a confession: no reply bodies, only
// their count.
type ConfessionSummary struct {
	Confession
	ReplyCount int64 `json:"reply_count"`
}

// Reply is an append-only comment on a confession. ParentReplyID, when set,
// refers to another reply of the same confession.
type Reply struct {
	ID            string    `json:"id"                        gorm:"type:varchar(40);primaryKey"`
	ConfessionID  string    `json:"confession_id"             gorm:"type:char(36);not null;index:idx_confession_replies,priority:1"`
	Text          string    `json:"text"                      gorm:"type:text;not null"`
	AnonID        string    `json:"anon_id"                   gorm:"type:varchar(16);not null"`
	Likes         int       `json:"likes"                     gorm:"not null"`
	ParentReplyID *string   `json:"parent_reply_id,omitempty" gorm:"type:varchar(40);index"`
	CreatedAt     time.Time `json:"timestamp"                 gorm:"index:idx_confession_replies,priority:2"`

	Metadata Metadata `json:"-" gorm:"embedded;embeddedPrefix:meta_"`
}

// TableName returns the database table name for Reply.
func (Reply) TableName() string { return "replies" }

// ConfessionLike records that a device session liked a confession. The
// composite primary key makes "like at most once" an atomic insert.
type ConfessionLike struct {
	ConfessionID string    `gorm:"type:char(36);primaryKey"`
	SessionID    string    `gorm:"type:varchar(64);primaryKey;index"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the database table name for ConfessionLike.
func (ConfessionLike) TableName() string { return "confession_likes" }

// Ban blocks submissions from an IP address, a device session, or both.
// A ban applies while IsActive is set and ExpiresAt is nil or in the future.
type Ban struct {
	ID        string     `json:"id"                   gorm:"type:char(36);primaryKey"`
	IP        string     `json:"ip,omitempty"         gorm:"type:varchar(64);index"`
	SessionID string     `json:"session_id,omitempty" gorm:"type:varchar(64);index"`
	Reason    string     `json:"reason"               gorm:"type:text;not null"`
	BannedAt  time.Time  `json:"banned_at"            gorm:"not null"`
	BannedBy  string     `json:"banned_by,omitempty"  gorm:"type:varchar(64)"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"index"`
	IsActive  bool       `json:"is_active"            gorm:"not null;index"`
}

// TableName returns the database table name for Ban.
func (Ban) TableName() string { return "bans" }

// AppliesAt reports whether the ban is in force at now.
func (b Ban) AppliesAt(now time.Time) bool {
	return b.IsActive && (b.ExpiresAt == nil || b.ExpiresAt.After(now))
}
