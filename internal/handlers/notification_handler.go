package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskly/internal/services"
)

type NotificationHandler struct {
	service services.NotificationService
}

func NewNotificationHandler(service services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GET /notifications?page=1&per_page=5
// Newest first, paginated.
func (h *NotificationHandler) List(c *gin.Context) {
	caller := getCaller(c)
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 5)

	result, err := h.service.List(c.Request.Context(), caller.ID, page, perPage)
	if err != nil {
		log.Printf("[notification][list][err] userID=%d: %v", caller.ID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /notifications { "message": "..." }
func (h *NotificationHandler) Create(c *gin.Context) {
	caller := getCaller(c)

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Notify(c.Request.Context(), caller.ID, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Notification created"})
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	caller := getCaller(c)
	if err := h.service.MarkAllRead(c.Request.Context(), caller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
