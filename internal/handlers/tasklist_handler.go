package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskly/internal/pdf"
	"taskly/internal/services"
)

type TaskListHandler struct {
	service services.TaskListService
	pdfGen  pdf.Generator
}

func NewTaskListHandler(service services.TaskListService, pdfGen pdf.Generator) *TaskListHandler {
	return &TaskListHandler{service: service, pdfGen: pdfGen}
}

// POST /tasklists { "name": "...", "template_id": 3 }
// template_id is optional; when present the new list is seeded with
// the template's tasks reset to medium/todo.
func (h *TaskListHandler) Create(c *gin.Context) {
	caller := getCaller(c)

	var req struct {
		Name       string `json:"name" binding:"required"`
		TemplateID *int64 `json:"template_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[tasklist][create] name=%q template=%v by userID=%d", req.Name, req.TemplateID, caller.ID)

	list, err := h.service.Create(c.Request.Context(), caller, req.Name, req.TemplateID)
	if err != nil {
		log.Printf("[tasklist][create][err] name=%q: %v", req.Name, err)
		respondError(c, err)
		return
	}
	log.Printf("[tasklist][create][ok] id=%d", list.ID)
	c.JSON(http.StatusCreated, list)
}

// GET /tasklists/:id
func (h *TaskListHandler) Get(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	list, tasks, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasklist": list, "tasks": tasks})
}

// GET /tasklists
func (h *TaskListHandler) ListMine(c *gin.Context) {
	caller := getCaller(c)
	lists, err := h.service.ListMine(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

// GET /tasklists/templates
func (h *TaskListHandler) ListTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// PUT /tasklists/:id { "name": "..." }
func (h *TaskListHandler) Rename(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Rename(c.Request.Context(), caller, id, req.Name); err != nil {
		log.Printf("[tasklist][rename][err] id=%d: %v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task list updated"})
}

// DELETE /tasklists/:id
func (h *TaskListHandler) Delete(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		log.Printf("[tasklist][delete][err] id=%d: %v", id, err)
		respondError(c, err)
		return
	}
	log.Printf("[tasklist][delete][ok] id=%d", id)
	c.Status(http.StatusNoContent)
}

// GET /tasklists/:id/export
// Streams the list as a PDF table.
func (h *TaskListHandler) Export(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	list, tasks, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=tasklist_%d.pdf", list.ID))
	if err := h.pdfGen.ExportTaskList(c.Writer, list, tasks); err != nil {
		log.Printf("[tasklist][export][err] id=%d: %v", id, err)
		// headers are already out; nothing sensible left to send
		c.Abort()
	}
}
