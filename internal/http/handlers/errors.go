// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants and the single mapping
// from service errors to HTTP responses. Codes give clients a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes (bad_request, forbidden, conflict, …) mirror HTTP status
//     semantics; domain codes (content_policy, posting_closed, banned) name
//     the rule that rejected the request.
//   - Store failures never leak detail to clients; the cause is logged.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "posting_closed",
//	  "message": "confessions can only be posted on posting days",
//	  "next_posting_date": "2025-03-07"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-hub/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeContentPolicy = "content_policy"
	ErrCodePostingClosed = "posting_closed"
	ErrCodeBanned        = "banned"
)

// msgStoreFailure is the only message clients see for unexpected errors.
const msgStoreFailure = "operation failed, try again"

// failErr maps a service error to the matching status, code and message.
func failErr(c *gin.Context, err error) {
	var closed *services.PostingClosedError
	switch {
	case errors.As(err, &closed):
		failWith(c, http.StatusForbidden, ErrorResponse{
			Code:            ErrCodePostingClosed,
			Message:         services.ErrPostingClosed.Error(),
			NextPostingDate: closed.Next.Format("2006-01-02"),
		})
	case services.IsValidation(err):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrContentPolicy):
		fail(c, http.StatusUnprocessableEntity, ErrCodeContentPolicy, err.Error())
	case errors.Is(err, services.ErrBanned):
		fail(c, http.StatusForbidden, ErrCodeBanned, err.Error())
	case errors.Is(err, services.ErrNotOwner):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case services.IsNotFound(err):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case services.IsConflict(err):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		// The cause reaches the access log, never the client.
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, msgStoreFailure)
	}
}
