// Engagement HTTP handlers.
//
// This file exposes REST endpoints for community interaction:
//   - POST   /confessions/{id}/replies  (reply, Idempotency-Key support)
//   - POST   /confessions/{id}/like     (like once per device session)
//   - DELETE /confessions/{id}/like     (take the like back)
//   - POST   /confessions/{id}/flag     (report a confession)
//   - GET    /session                   (device session and its likes)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-hub/internal/domain"
	"github.com/tbourn/campus-hub/internal/http/middleware"
	"github.com/tbourn/campus-hub/internal/utils"
)

// maxSessionIDs caps the ids accepted by GET /session.
const maxSessionIDs = 100

// SubmitReplyRequest is the JSON payload for a reply.
type SubmitReplyRequest struct {
	// Text is 1 to 300 characters after trimming.
	Text string `json:"text" binding:"required" example:"Same here, you are not alone."`
	// ParentReplyID nests the reply under another reply of the same confession.
	ParentReplyID string `json:"parent_reply_id,omitempty" example:"r_1741089600000_k3j9x2a7q"`
	// Location is an optional, client-reported coarse location.
	Location string `json:"location,omitempty"`
}

// ReplyResponse wraps a created reply.
type ReplyResponse struct {
	Reply *domain.Reply `json:"reply"`
}

// LikeResponse reports the like count after a like or unlike.
type LikeResponse struct {
	ID    string `json:"id"`
	Likes int    `json:"likes" example:"12"`
}

// FlagResponse reports the flag count after a flag. Hidden is true once the
// confession has left the public feed.
type FlagResponse struct {
	ID        string `json:"id"`
	FlagCount int    `json:"flag_count" example:"3"`
	Hidden    bool   `json:"hidden"`
}

// SessionResponse describes the caller's device session.
type SessionResponse struct {
	SessionID string   `json:"session_id" example:"sess_1741089600000_k3j9x2a7q"`
	LikedIDs  []string `json:"liked_ids"`
}

// SubmitReply godoc
// @ID          submitReply
// @Summary     Reply to a confession
// @Description Appends a reply to an approved confession. Replies may nest under
// @Description another reply of the same confession via parent_reply_id.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Replies
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       id               path    string  true  "Confession ID"  format(uuid)
// @Param       body             body    handlers.SubmitReplyRequest  true  "Reply payload"
// @Success     201  {object}  handlers.ReplyResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse "Banned"
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     422  {object}  handlers.ErrorResponse "Inappropriate language"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions/{id}/replies [post]
func (h *Handlers) SubmitReply(c *gin.Context) {
	ctx := c.Request.Context()
	id, valid := confessionID(c)
	if !valid {
		return
	}

	var req SubmitReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}

	idemKey, prior := h.priorResource(c)
	if prior != "" {
		if r, err := h.confSvc.GetReply(ctx, id, prior); err == nil {
			replayed(c, ReplyResponse{Reply: r})
			return
		}
	}

	r, err := h.confSvc.SubmitReply(ctx, id, sanitizeText(req.Text), req.ParentReplyID, submitMeta(c, req.Location))
	if err != nil {
		failErr(c, err)
		return
	}

	h.rememberResource(c, idemKey, r.ID, http.StatusCreated)
	ok(c, http.StatusCreated, ReplyResponse{Reply: r})
}

// LikeConfession godoc
// @ID          likeConfession
// @Summary     Like a confession
// @Description Records one like for the caller's device session.
// @Tags        Engagement
// @Produce     json
// @Param       id   path  string  true  "Confession ID"  format(uuid)
// @Success     200  {object}  handlers.LikeResponse
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     409  {object}  handlers.ErrorResponse "Already liked"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions/{id}/like [post]
func (h *Handlers) LikeConfession(c *gin.Context) {
	id, valid := confessionID(c)
	if !valid {
		return
	}
	likes, err := h.engSvc.Like(c.Request.Context(), middleware.SessionIDFrom(c), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, LikeResponse{ID: id, Likes: likes})
}

// UnlikeConfession godoc
// @ID          unlikeConfession
// @Summary     Remove a like
// @Tags        Engagement
// @Produce     json
// @Param       id   path  string  true  "Confession ID"  format(uuid)
// @Success     200  {object}  handlers.LikeResponse
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     409  {object}  handlers.ErrorResponse "Not liked"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions/{id}/like [delete]
func (h *Handlers) UnlikeConfession(c *gin.Context) {
	id, valid := confessionID(c)
	if !valid {
		return
	}
	likes, err := h.engSvc.Unlike(c.Request.Context(), middleware.SessionIDFrom(c), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, LikeResponse{ID: id, Likes: likes})
}

// FlagConfession godoc
// @ID          flagConfession
// @Summary     Flag a confession
// @Description Reports a confession. Once enough flags accumulate it is hidden
// @Description from the feed pending moderation.
// @Tags        Engagement
// @Produce     json
// @Param       id   path  string  true  "Confession ID"  format(uuid)
// @Success     200  {object}  handlers.FlagResponse
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions/{id}/flag [post]
func (h *Handlers) FlagConfession(c *gin.Context) {
	id, valid := confessionID(c)
	if !valid {
		return
	}
	conf, err := h.confSvc.Flag(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, FlagResponse{
		ID:        conf.ID,
		FlagCount: conf.FlagCount,
		Hidden:    conf.Status != domain.StatusApproved,
	})
}

// Session godoc
// @ID          getSession
// @Summary     Device session
// @Description Returns the caller's device session id and which of the given
// @Description confessions it has liked. Without ids, its most recent likes.
// @Tags        Engagement
// @Produce     json
// @Param       ids  query  string  false "Comma-separated confession ids (max 100)"
// @Success     200  {object}  handlers.SessionResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /session [get]
func (h *Handlers) Session(c *gin.Context) {
	sid := middleware.SessionIDFrom(c)
	liked, err := h.engSvc.LikedIDs(c.Request.Context(), sid, utils.SplitIDs(c.Query("ids"), maxSessionIDs))
	if err != nil {
		failErr(c, err)
		return
	}
	if liked == nil {
		liked = []string{}
	}
	ok(c, http.StatusOK, SessionResponse{SessionID: sid, LikedIDs: liked})
}
