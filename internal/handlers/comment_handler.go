package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskly/internal/services"
)

type CommentHandler struct {
	service services.CommentService
}

func NewCommentHandler(service services.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// POST /tasks/:id/comments { "content": "..." }
func (h *CommentHandler) Create(c *gin.Context) {
	caller := getCaller(c)
	taskID, ok := paramID(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.service.Create(c.Request.Context(), caller, taskID, req.Content)
	if err != nil {
		log.Printf("[comment][create][err] task=%d by userID=%d: %v", taskID, caller.ID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GET /tasks/:id/comments
func (h *CommentHandler) ListByTask(c *gin.Context) {
	caller := getCaller(c)
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	comments, err := h.service.ListByTask(c.Request.Context(), caller, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// PUT /comments/:id { "content": "..." }
func (h *CommentHandler) Update(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.service.Update(c.Request.Context(), caller, id, req.Content)
	if err != nil {
		log.Printf("[comment][update][err] id=%d by userID=%d: %v", id, caller.ID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DELETE /comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		log.Printf("[comment][delete][err] id=%d by userID=%d: %v", id, caller.ID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
