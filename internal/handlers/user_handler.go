package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskly/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	caller := getCaller(c)
	user, err := h.service.GetByID(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /users
// Visible to admins and to users who own at least one task list.
func (h *UserHandler) List(c *gin.Context) {
	caller := getCaller(c)
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	users, err := h.service.List(c.Request.Context(), caller, limit, offset)
	if err != nil {
		log.Printf("[user][list][deny] userID=%d: %v", caller.ID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	var patch services.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), caller, id, patch)
	if err != nil {
		log.Printf("[user][update][err] id=%d by userID=%d: %v", id, caller.ID, err)
		respondError(c, err)
		return
	}
	log.Printf("[user][update][ok] id=%d", id)
	c.JSON(http.StatusOK, user)
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	caller := getCaller(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		log.Printf("[user][delete][err] id=%d by userID=%d: %v", id, caller.ID, err)
		respondError(c, err)
		return
	}
	log.Printf("[user][delete][ok] id=%d", id)
	c.Status(http.StatusNoContent)
}
