// Package services defines the business logic for confessions, replies, the
// engagement ledger, bans and moderation. This file centralizes service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors.
var (
	// ErrTextLength is returned when a confession is shorter than 10 or
	// longer than 500 characters after trimming.
	ErrTextLength = fmt.Errorf("confession must be between %d and %d characters", MinConfessionLen, MaxConfessionLen)

	// ErrReplyLength is returned when a reply is empty or longer than 300
	// characters after trimming.
	ErrReplyLength = fmt.Errorf("reply must be between %d and %d characters", MinReplyLen, MaxReplyLen)

	// ErrInvalidSort is returned for an unknown list ordering.
	ErrInvalidSort = errors.New("sort must be one of latest, popular, trending")

	// ErrInvalidStatus is returned for an unknown moderation status.
	ErrInvalidStatus = errors.New("status must be one of approved, pending, rejected, flagged")

	// ErrParentReplyNotFound is returned when a reply names a parent that is
	// not a reply of the same confession.
	ErrParentReplyNotFound = errors.New("parent reply does not belong to this confession")

	// ErrInvalidBan is returned when a ban has no reason or no identity.
	ErrInvalidBan = errors.New("ban needs a reason and an ip or session id")

	// ErrMissingSession is returned when an engagement action has no device
	// session to record it against.
	ErrMissingSession = errors.New("session id is required")
)

// Policy errors.
var (
	// ErrContentPolicy is returned when text contains a denylisted term.
	ErrContentPolicy = errors.New("your text contains inappropriate language")

	// ErrPostingClosed is returned outside the posting window. Callers get a
	// *PostingClosedError carrying the next posting date.
	ErrPostingClosed = errors.New("confessions can only be posted on posting days")

	// ErrBanned is returned when the caller's ip or session is banned.
	ErrBanned = errors.New("you are not allowed to post")

	// ErrNotOwner is returned when an edit or delete is attempted without a
	// valid owner token for the confession.
	ErrNotOwner = errors.New("you can only change your own confessions")
)

// Lookup and conflict errors.
var (
	// ErrConfessionNotFound indicates that the confession does not exist or
	// is not publicly visible.
	ErrConfessionNotFound = errors.New("confession not found")

	// ErrBanNotFound indicates an unknown ban id.
	ErrBanNotFound = errors.New("ban not found")

	// ErrAlreadyLiked is returned when the session already liked the
	// confession.
	ErrAlreadyLiked = errors.New("you already liked this confession")

	// ErrNotLiked is returned when unliking a confession the session never
	// liked.
	ErrNotLiked = errors.New("you have not liked this confession")
)

// PostingClosedError reports when posting reopens.
type PostingClosedError struct {
	Next time.Time
}

func (e *PostingClosedError) Error() string {
	return ErrPostingClosed.Error() + "; next posting date " + e.Next.Format("2006-01-02")
}

// Unwrap lets errors.Is match ErrPostingClosed.
func (e *PostingClosedError) Unwrap() error { return ErrPostingClosed }

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrTextLength, ErrReplyLength, ErrInvalidSort, ErrInvalidStatus,
		ErrParentReplyNotFound, ErrInvalidBan, ErrMissingSession,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means the target does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrConfessionNotFound) || errors.Is(err, ErrBanNotFound)
}

// IsConflict reports whether err is a duplicate engagement action.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyLiked) || errors.Is(err, ErrNotLiked)
}
