// Confession HTTP handlers.
//
// This file exposes REST endpoints for confessions:
//   - GET    /confessions                 (public feed, ETag support)
//   - POST   /confessions                 (submit, Idempotency-Key support)
//   - GET    /confessions/top             (confession of the week)
//   - GET    /confessions/stats           (board statistics)
//   - GET    /confessions/posting-window  (is posting open, and when next)
//   - GET    /confessions/{id}            (one confession with its replies)
//   - PUT    /confessions/{id}            (owner edit, X-Owner-Token)
//   - DELETE /confessions/{id}            (owner delete, X-Owner-Token)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/campus-hub/internal/domain"
	"github.com/tbourn/campus-hub/internal/http/middleware"
	"github.com/tbourn/campus-hub/internal/policy"
	"github.com/tbourn/campus-hub/internal/repo"
	"github.com/tbourn/campus-hub/internal/services"
	"github.com/tbourn/campus-hub/internal/utils"
)

//
// Service contracts (context-aware)
//

// ConfessionService defines the confession and reply operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ConfessionService interface {
	// Submit stores a new confession and returns it with its owner token.
	Submit(ctx context.Context, text string, meta services.SubmitMeta) (*domain.Confession, string, error)
	// List returns approved confessions in the given order.
	List(ctx context.Context, sort string, limit int) ([]domain.ConfessionSummary, error)
	// Get returns one approved confession with its replies.
	Get(ctx context.Context, id string) (*domain.Confession, error)
	// TopOfWeek returns the confession of the current week, or nil.
	TopOfWeek(ctx context.Context) (*domain.ConfessionSummary, error)
	// Stats returns board statistics.
	Stats(ctx context.Context) (repo.BoardStats, error)
	// Window reports the current posting window.
	Window() policy.Window
	// Edit replaces the text of a confession held by ownerToken.
	Edit(ctx context.Context, id, text, ownerToken string) (*domain.Confession, error)
	// Delete removes a confession held by ownerToken.
	Delete(ctx context.Context, id, ownerToken string) error
	// Flag records one community flag.
	Flag(ctx context.Context, id string) (*domain.Confession, error)
	// SubmitReply appends a reply, optionally nested under parentReplyID.
	SubmitReply(ctx context.Context, confessionID, text, parentReplyID string, meta services.SubmitMeta) (*domain.Reply, error)
	// Reissue loads a confession regardless of status with a fresh owner token.
	Reissue(ctx context.Context, id string) (*domain.Confession, string, error)
	// GetReply loads one reply of a confession.
	GetReply(ctx context.Context, confessionID, replyID string) (*domain.Reply, error)
}

// EngagementService defines the per-session like ledger.
type EngagementService interface {
	Like(ctx context.Context, sessionID, confessionID string) (int, error)
	Unlike(ctx context.Context, sessionID, confessionID string) (int, error)
	LikedIDs(ctx context.Context, sessionID string, ids []string) ([]string, error)
}

// ModerationService defines the admin moderation queue.
type ModerationService interface {
	ListForModeration(ctx context.Context, status string, limit int) ([]services.AdminConfession, error)
	SetStatus(ctx context.Context, id, status string) (*domain.Confession, error)
	SetTop(ctx context.Context, id string, top bool) (*domain.Confession, error)
}

// BanService defines ban administration.
type BanService interface {
	Create(ctx context.Context, in services.BanInput) (*domain.Ban, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Ban, error)
	Lift(ctx context.Context, id string) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for confessions, engagement and moderation.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	confSvc ConfessionService
	engSvc  EngagementService
	modSvc  ModerationService
	banSvc  BanService

	// IdempotencyTTL is how long an Idempotency-Key replays; zero means 24h.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(confSvc ConfessionService, engSvc EngagementService, modSvc ModerationService, banSvc BanService) *Handlers {
	return &Handlers{confSvc: confSvc, engSvc: engSvc, modSvc: modSvc, banSvc: banSvc}
}

//
// DTOs
//

// SubmitConfessionRequest is the JSON payload for a new confession.
type SubmitConfessionRequest struct {
	// Text is 10 to 500 characters after trimming.
	Text string `json:"text" binding:"required" example:"I have been pretending to understand linear algebra all semester."`
	// Location is an optional, client-reported coarse location.
	Location string `json:"location,omitempty" example:"Library"`
}

// SubmitConfessionResponse carries the created confession and the owner
// token required to edit or delete it later. The token is shown only once.
type SubmitConfessionResponse struct {
	Confession *domain.Confession `json:"confession"`
	OwnerToken string             `json:"owner_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ListConfessionsResponse is a page of the public feed.
type ListConfessionsResponse struct {
	Confessions []domain.ConfessionSummary `json:"confessions"`
}

// EditConfessionRequest replaces the text of a confession.
type EditConfessionRequest struct {
	Text string `json:"text" binding:"required" example:"Edited: I finally understand eigenvectors."`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeText normalizes user text for consistent downstream behavior:
// CRLF and CR become LF, runs of blank lines collapse to one, and surrounding
// whitespace is trimmed.
func sanitizeText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// submitMeta collects the request metadata stored with a submission.
func submitMeta(c *gin.Context, location string) services.SubmitMeta {
	return services.SubmitMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		SessionID: middleware.SessionIDFrom(c),
		Location:  strings.TrimSpace(location),
	}
}

// confessionID returns the path id, answering 404 for anything that is not a
// UUID since no such confession can exist.
func confessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		failErr(c, services.ErrConfessionNotFound)
		return "", false
	}
	return id, true
}

// ownerToken reads the capability token presented for owner-only actions.
func ownerToken(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(middleware.HeaderOwnerToken))
}

// db exposes the store behind the concrete ConfessionService for ETags and
// idempotency records. Stubs return nil and skip both.
func (h *Handlers) db() *gorm.DB {
	if svc, ok := h.confSvc.(*services.ConfessionService); ok {
		return svc.DB
	}
	return nil
}

func (h *Handlers) idempotencyTTL() time.Duration {
	if h.IdempotencyTTL > 0 {
		return h.IdempotencyTTL
	}
	return 24 * time.Hour
}

// priorResource returns the validated Idempotency-Key of the request and the
// resource id recorded for it by an earlier success, if any.
func (h *Handlers) priorResource(c *gin.Context) (key, resourceID string) {
	key, _ = middleware.GetIdempotencyKey(c)
	db := h.db()
	if key == "" || db == nil {
		return key, ""
	}
	rec, err := repo.GetIdempotency(c.Request.Context(), db, middleware.SessionIDFrom(c),
		middleware.IdempotencyScope(c), key, time.Now().UTC())
	if err != nil || rec == nil {
		return key, ""
	}
	return key, rec.ResourceID
}

// rememberResource records a successful result for key (best effort).
func (h *Handlers) rememberResource(c *gin.Context, key, resourceID string, status int) {
	db := h.db()
	if key == "" || db == nil {
		return
	}
	if _, err := repo.CreateIdempotency(c.Request.Context(), db, middleware.SessionIDFrom(c),
		middleware.IdempotencyScope(c), key, resourceID, status, h.idempotencyTTL()); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency record")
	}
}

//
// Handlers
//

// ListConfessions godoc
// @ID          listConfessions
// @Summary     List confessions
// @Description Returns approved confessions with their reply counts.
// @Description Supports conditional GET via ETag / If-None-Match.
// @Tags        Confessions
// @Produce     json
//
// @Param       sort   query  string  false "Ordering"        Enums(latest, popular, trending) default(latest)
// @Param       limit  query  int     false "Maximum items"   minimum(1) maximum(100) default(50)
//
// @Success     200  {object}  handlers.ListConfessionsResponse
// @Success     304  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions [get]
func (h *Handlers) ListConfessions(c *gin.Context) {
	ctx := c.Request.Context()
	sort := strings.ToLower(strings.TrimSpace(c.Query("sort")))
	limit := utils.ClampInt(utils.AtoiDefault(c.Query("limit"), services.DefaultListLimit),
		services.DefaultListLimit, 1, services.MaxListLimit)

	// ETag pre-check (best effort).
	if db := h.db(); db != nil {
		count, replies, maxTS, err := repo.FeedStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"confessions:%s:%d:%d:%d:%d"`, sort, limit, count, replies, ts)
			if notModified(c, etag) {
				return
			}
		}
	}

	items, err := h.confSvc.List(ctx, sort, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []domain.ConfessionSummary{}
	}
	ok(c, http.StatusOK, ListConfessionsResponse{Confessions: items})
}

// SubmitConfession godoc
// @ID          submitConfession
// @Summary     Submit a confession
// @Description Stores a new anonymous confession. The response carries an owner
// @Description token that is required to edit or delete it; it is not shown again.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Confessions
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       body             body    handlers.SubmitConfessionRequest  true  "Confession payload"
//
// @Success     201  {object}  handlers.SubmitConfessionResponse
// @Failure     400  {object}  handlers.ErrorResponse "Text too short or too long"
// @Failure     403  {object}  handlers.ErrorResponse "Banned, or posting closed (see next_posting_date)"
// @Failure     422  {object}  handlers.ErrorResponse "Inappropriate language"
// @Failure     429  {object}  handlers.ErrorResponse "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions [post]
func (h *Handlers) SubmitConfession(c *gin.Context) {
	ctx := c.Request.Context()

	var req SubmitConfessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}

	// Idempotency (replay path). The original token is never stored, so the
	// replay carries a fresh one for the same confession.
	idemKey, prior := h.priorResource(c)
	if prior != "" {
		if conf, token, err := h.confSvc.Reissue(ctx, prior); err == nil {
			replayed(c, SubmitConfessionResponse{Confession: conf, OwnerToken: token})
			return
		}
	}

	conf, token, err := h.confSvc.Submit(ctx, sanitizeText(req.Text), submitMeta(c, req.Location))
	if err != nil {
		failErr(c, err)
		return
	}

	h.rememberResource(c, idemKey, conf.ID, http.StatusCreated)
	ok(c, http.StatusCreated, SubmitConfessionResponse{Confession: conf, OwnerToken: token})
}

// GetConfession godoc
// @ID          getConfession
// @Summary     Get a confession
// @Description Returns one approved confession with its replies in posting order.
// @Tags        Confessions
// @Produce     json
// @Param       id   path  string  true  "Confession ID"  format(uuid)
// @Success     200  {object}  domain.Confession
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions/{id} [get]
func (h *Handlers) GetConfession(c *gin.Context) {
	id, valid := confessionID(c)
	if !valid {
		return
	}
	conf, err := h.confSvc.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, conf)
}

// TopConfession godoc
// @ID          topConfession
// @Summary     Confession of the week
// @Description Returns the most liked approved confession of the current week,
// @Description or 204 when nothing has been posted this week.
// @Tags        Confessions
// @Produce     json
// @Success     200  {object}  domain.ConfessionSummary
// @Success     204  "No confession this week"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions/top [get]
func (h *Handlers) TopConfession(c *gin.Context) {
	top, err := h.confSvc.TopOfWeek(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if top == nil {
		noContent(c)
		return
	}
	ok(c, http.StatusOK, top)
}

// ConfessionStats godoc
// @ID          confessionStats
// @Summary     Board statistics
// @Tags        Confessions
// @Produce     json
// @Success     200  {object}  repo.BoardStats
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions/stats [get]
func (h *Handlers) ConfessionStats(c *gin.Context) {
	st, err := h.confSvc.Stats(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// PostingWindow godoc
// @ID          postingWindow
// @Summary     Posting window
// @Description Reports whether confessions can be posted now and the next posting date.
// @Tags        Confessions
// @Produce     json
// @Success     200  {object}  policy.Window
// @Router      /confessions/posting-window [get]
func (h *Handlers) PostingWindow(c *gin.Context) {
	ok(c, http.StatusOK, h.confSvc.Window())
}

// EditConfession godoc
// @ID          editConfession
// @Summary     Edit a confession
// @Description Replaces the text of a confession. Requires the owner token
// @Description returned at submission; the same text rules apply.
// @Tags        Confessions
// @Accept      json
// @Produce     json
// @Param       X-Owner-Token  header  string  true  "Owner token"
// @Param       id             path    string  true  "Confession ID"  format(uuid)
// @Param       body           body    handlers.EditConfessionRequest  true  "New text"
// @Success     200  {object}  domain.Confession
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     422  {object}  handlers.ErrorResponse "Inappropriate language"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions/{id} [put]
func (h *Handlers) EditConfession(c *gin.Context) {
	id, valid := confessionID(c)
	if !valid {
		return
	}
	var req EditConfessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}
	conf, err := h.confSvc.Edit(c.Request.Context(), id, sanitizeText(req.Text), ownerToken(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, conf)
}

// DeleteConfession godoc
// @ID          deleteConfession
// @Summary     Delete a confession
// @Description Removes a confession and its replies. Requires the owner token.
// @Tags        Confessions
// @Param       X-Owner-Token  header  string  true  "Owner token"
// @Param       id             path    string  true  "Confession ID"  format(uuid)
// @Success     204  "Deleted"
// @Failure     403  {object}  handlers.ErrorResponse "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /confessions/{id} [delete]
func (h *Handlers) DeleteConfession(c *gin.Context) {
	id, valid := confessionID(c)
	if !valid {
		return
	}
	if err := h.confSvc.Delete(c.Request.Context(), id, ownerToken(c)); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
