package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskly/internal/models"
	"taskly/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// POST /tasklists/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	caller := getCaller(c)
	listID, ok := paramID(c)
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[task][create] list=%d title=%q by userID=%d", listID, req.Title, caller.ID)

	task, err := h.service.Create(c.Request.Context(), caller, listID, req)
	if err != nil {
		log.Printf("[task][create][err] list=%d: %v", listID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][create][ok] id=%d", task.ID)
	c.JSON(http.StatusCreated, task)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	var filter models.TaskFilter
	if v, ok := c.GetQuery("tasklist_id"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.TaskListID = &id
		} else {
			log.Printf("[task][list][warn] bad tasklist_id=%q: %v", v, err)
		}
	}
	if v, ok := c.GetQuery("priority"); ok {
		p := models.TaskPriority(v)
		filter.Priority = &p
	}
	if v, ok := c.GetQuery("status"); ok {
		st := models.TaskStatus(v)
		filter.Status = &st
	}
	if v, ok := c.GetQuery("due_date"); ok {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DueDate = &t
		} else {
			log.Printf("[task][list][warn] bad due_date=%q: %v", v, err)
		}
	}

	tasks, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		log.Printf("[task][list][err] %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// PATCH /tasks/:id
// Assignees get status-only edits; other fields in their payload are
// ignored, not rejected.
func (h *TaskHandler) Update(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		log.Printf("[task][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.Update(c.Request.Context(), caller, id, patch)
	if err != nil {
		log.Printf("[task][update][err] id=%d by userID=%d: %v", id, caller.ID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][update][ok] id=%d", id)
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		log.Printf("[task][delete][err] id=%d by userID=%d: %v", id, caller.ID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][delete][ok] id=%d", id)
	c.Status(http.StatusNoContent)
}

// GET /tasks/featured
// Public landing-page data: newest task per priority tier.
func (h *TaskHandler) Featured(c *gin.Context) {
	tasks, err := h.service.Featured(c.Request.Context())
	if err != nil {
		log.Printf("[task][featured][err] %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/stats
func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /tasks/upcoming?limit=5
func (h *TaskHandler) Upcoming(c *gin.Context) {
	tasks, err := h.service.Upcoming(c.Request.Context(), queryInt(c, "limit", 5))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
