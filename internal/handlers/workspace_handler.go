package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskly/internal/services"
)

type WorkspaceHandler struct {
	service services.WorkspaceService
}

func NewWorkspaceHandler(service services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{service: service}
}

// GET /workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	ws, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// POST /workspaces/:id/invites { "email": "..." }
// The response carries email_sent so a delivery failure is visible
// without failing the invite itself.
func (h *WorkspaceHandler) CreateInvite(c *gin.Context) {
	caller := getCaller(c)
	workspaceID := c.Param("id")

	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.CreateInvite(c.Request.Context(), caller, workspaceID, req.Email)
	if err != nil {
		log.Printf("[workspace][invite][err] ws=%s by userID=%d: %v", workspaceID, caller.ID, err)
		respondError(c, err)
		return
	}
	log.Printf("[workspace][invite][ok] ws=%s email_sent=%v", workspaceID, res.EmailSent)
	c.JSON(http.StatusCreated, res)
}

// POST /workspaces/:id/invites/link
func (h *WorkspaceHandler) CreateLinkInvite(c *gin.Context) {
	caller := getCaller(c)
	workspaceID := c.Param("id")

	inv, err := h.service.CreateLinkInvite(c.Request.Context(), caller, workspaceID)
	if err != nil {
		log.Printf("[workspace][invite-link][err] ws=%s by userID=%d: %v", workspaceID, caller.ID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// POST /invites/accept { "token": "..." }
func (h *WorkspaceHandler) AcceptInvite(c *gin.Context) {
	caller := getCaller(c)

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, err := h.service.AcceptInvite(c.Request.Context(), caller.ID, req.Token)
	if err != nil {
		log.Printf("[workspace][accept][err] userID=%d: %v", caller.ID, err)
		respondError(c, err)
		return
	}
	log.Printf("[workspace][accept][ok] userID=%d ws=%s", caller.ID, ws.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Joined workspace", "workspace": ws})
}

// POST /workspaces/leave
func (h *WorkspaceHandler) Leave(c *gin.Context) {
	caller := getCaller(c)
	if err := h.service.LeaveWorkspace(c.Request.Context(), caller.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left workspace"})
}

// GET /workspaces/:id/members
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	caller := getCaller(c)
	members, err := h.service.ListMembers(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// GET /workspaces/:id/invites
func (h *WorkspaceHandler) ListInvites(c *gin.Context) {
	caller := getCaller(c)
	invites, err := h.service.ListInvites(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}

// DELETE /workspaces/:id
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	caller := getCaller(c)
	workspaceID := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), caller, workspaceID); err != nil {
		log.Printf("[workspace][delete][err] ws=%s by userID=%d: %v", workspaceID, caller.ID, err)
		respondError(c, err)
		return
	}
	log.Printf("[workspace][delete][ok] ws=%s", workspaceID)
	c.Status(http.StatusNoContent)
}
