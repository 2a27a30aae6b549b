// Admin HTTP handlers.
//
// This file exposes the moderation surface, mounted behind RequireAdmin:
//   - GET    /admin/confessions               (queue, any status, with metadata)
//   - PUT    /admin/confessions/{id}/status   (approve, reject, hold, flag)
//   - PUT    /admin/confessions/{id}/top      (mark or clear top confession)
//   - GET    /admin/bans                      (list bans)
//   - POST   /admin/bans                      (ban an ip or device session)
//   - DELETE /admin/bans/{id}                 (lift a ban)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/campus-hub/internal/domain"
	"github.com/tbourn/campus-hub/internal/services"
	"github.com/tbourn/campus-hub/internal/sysutil"
	"github.com/tbourn/campus-hub/internal/utils"
)

// ModerationListResponse is a page of the moderation queue.
type ModerationListResponse struct {
	Confessions []services.AdminConfession `json:"confessions"`
}

// SetStatusRequest moves a confession to another moderation status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required" example:"approved" enums:"approved,pending,rejected,flagged"`
}

// SetTopRequest sets or clears the top-confession marker.
type SetTopRequest struct {
	Top *bool `json:"top" binding:"required" example:"true"`
}

// BansResponse lists bans.
type BansResponse struct {
	Bans []domain.Ban `json:"bans"`
}

// ListModeration godoc
// @ID          listModeration
// @Summary     Moderation queue
// @Description Returns confessions newest first with their submission metadata,
// @Description optionally narrowed to one status.
// @Tags        Admin
// @Produce     json
// @Security    AdminToken
// @Param       status  query  string  false "Status filter"  Enums(approved, pending, rejected, flagged)
// @Param       limit   query  int     false "Maximum items"  minimum(1) maximum(100) default(50)
// @Success     200  {object}  handlers.ModerationListResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Admin token required"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/confessions [get]
func (h *Handlers) ListModeration(c *gin.Context) {
	limit := utils.ClampInt(utils.AtoiDefault(c.Query("limit"), services.DefaultListLimit),
		services.DefaultListLimit, 1, services.MaxListLimit)
	items, err := h.modSvc.ListForModeration(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []services.AdminConfession{}
	}
	ok(c, http.StatusOK, ModerationListResponse{Confessions: items})
}

// SetConfessionStatus godoc
// @ID          setConfessionStatus
// @Summary     Set moderation status
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    AdminToken
// @Param       id    path  string  true  "Confession ID"  format(uuid)
// @Param       body  body  handlers.SetStatusRequest  true  "New status"
// @Success     200  {object}  domain.Confession
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Admin token required"
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/confessions/{id}/status [put]
func (h *Handlers) SetConfessionStatus(c *gin.Context) {
	id, valid := confessionID(c)
	if !valid {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}
	conf, err := h.modSvc.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, conf)
}

// SetTopConfession godoc
// @ID          setTopConfession
// @Summary     Mark top confession
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    AdminToken
// @Param       id    path  string  true  "Confession ID"  format(uuid)
// @Param       body  body  handlers.SetTopRequest  true  "Marker"
// @Success     200  {object}  domain.Confession
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Admin token required"
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/confessions/{id}/top [put]
func (h *Handlers) SetTopConfession(c *gin.Context) {
	id, valid := confessionID(c)
	if !valid {
		return
	}
	var req SetTopRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Top == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "top required")
		return
	}
	conf, err := h.modSvc.SetTop(c.Request.Context(), id, *req.Top)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, conf)
}

// ListBans godoc
// @ID          listBans
// @Summary     List bans
// @Tags        Admin
// @Produce     json
// @Security    AdminToken
// @Param       active  query  bool  false "Only active bans"  default(true)
// @Success     200  {object}  handlers.BansResponse
// @Failure     401  {object}  handlers.ErrorResponse "Admin token required"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/bans [get]
func (h *Handlers) ListBans(c *gin.Context) {
	activeOnly := sysutil.ParseBool(c.Query("active"), true)
	bans, err := h.banSvc.List(c.Request.Context(), activeOnly)
	if err != nil {
		failErr(c, err)
		return
	}
	if bans == nil {
		bans = []domain.Ban{}
	}
	ok(c, http.StatusOK, BansResponse{Bans: bans})
}

// CreateBan godoc
// @ID          createBan
// @Summary     Ban an ip or device session
// @Description Bans block new confessions and replies. A missing expires_at
// @Description bans indefinitely.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    AdminToken
// @Param       body  body  services.BanInput  true  "Ban"
// @Success     201  {object}  domain.Ban
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Admin token required"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/bans [post]
func (h *Handlers) CreateBan(c *gin.Context) {
	var in services.BanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid ban payload")
		return
	}
	if strings.TrimSpace(in.BannedBy) == "" {
		in.BannedBy = "admin"
	}
	b, err := h.banSvc.Create(c.Request.Context(), in)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, b)
}

// LiftBan godoc
// @ID          liftBan
// @Summary     Lift a ban
// @Tags        Admin
// @Security    AdminToken
// @Param       id  path  string  true  "Ban ID"  format(uuid)
// @Success     204  "Lifted"
// @Failure     401  {object}  handlers.ErrorResponse "Admin token required"
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/bans/{id} [delete]
func (h *Handlers) LiftBan(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		failErr(c, services.ErrBanNotFound)
		return
	}
	if err := h.banSvc.Lift(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
