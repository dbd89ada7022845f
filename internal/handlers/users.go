package handlers

import (
	"net/http"

	"afisha/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateUser - POST /admin/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req models.NewUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	user, err := h.services.Users.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers - GET /admin/users
func (h *Handlers) ListUsers(c *gin.Context) {
	ids, ok := queryIDs(c, "ids")
	if !ok {
		h.respondBadRequest(c, "ids must be integers")
		return
	}
	from, size, ok := pagination(c)
	if !ok {
		h.respondBadRequest(c, "invalid pagination parameters")
		return
	}

	users, err := h.services.Users.List(c.Request.Context(), ids, from, size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// DeleteUser - DELETE /admin/users/{userId}
func (h *Handlers) DeleteUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}

	if err := h.services.Users.Delete(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
