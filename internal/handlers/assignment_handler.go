package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskly/internal/services"
)

type AssignmentHandler struct {
	service services.AssignmentService
}

func NewAssignmentHandler(service services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// POST /tasks/:id/assignments { "user_ids": [1,2,3] }
// An empty list is a successful no-op.
func (h *AssignmentHandler) Assign(c *gin.Context) {
	caller := getCaller(c)
	taskID, ok := paramID(c)
	if !ok {
		return
	}

	var req struct {
		UserIDs []int64 `json:"user_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[assign] task=%d users=%v by userID=%d", taskID, req.UserIDs, caller.ID)

	assigned, err := h.service.AssignUsers(c.Request.Context(), caller, taskID, req.UserIDs)
	if err != nil {
		log.Printf("[assign][err] task=%d: %v", taskID, err)
		respondError(c, err)
		return
	}
	log.Printf("[assign][ok] task=%d count=%d", taskID, len(assigned))
	c.JSON(http.StatusOK, gin.H{"assigned": assigned})
}

// DELETE /tasks/:id/assignments/:userID
func (h *AssignmentHandler) Remove(c *gin.Context) {
	caller := getCaller(c)
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.service.RemoveAssignment(c.Request.Context(), caller, taskID, userID); err != nil {
		log.Printf("[assign][remove][err] task=%d user=%d: %v", taskID, userID, err)
		respondError(c, err)
		return
	}
	log.Printf("[assign][remove][ok] task=%d user=%d", taskID, userID)
	c.Status(http.StatusNoContent)
}

// GET /tasks/:id/assignments
func (h *AssignmentHandler) ListAssignees(c *gin.Context) {
	caller := getCaller(c)
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	users, err := h.service.ListAssignees(c.Request.Context(), caller, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
