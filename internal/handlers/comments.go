package handlers

import (
	"net/http"

	"afisha/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateComment - POST /users/{userId}/events/{eventId}/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}
	eventID, ok := pathID(c, "eventId")
	if !ok {
		h.respondBadRequest(c, "eventId must be a positive integer")
		return
	}

	var req models.NewCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	comment, err := h.services.Comments.Create(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// UpdateComment - PATCH /users/{userId}/events/{eventId}/comments/{commentId}
func (h *Handlers) UpdateComment(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}
	eventID, ok := pathID(c, "eventId")
	if !ok {
		h.respondBadRequest(c, "eventId must be a positive integer")
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		h.respondBadRequest(c, "commentId must be a positive integer")
		return
	}

	var req models.NewCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	comment, err := h.services.Comments.UpdateOwn(c.Request.Context(), userID, eventID, commentID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment - DELETE /users/{userId}/events/{eventId}/comments/{commentId}
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}
	eventID, ok := pathID(c, "eventId")
	if !ok {
		h.respondBadRequest(c, "eventId must be a positive integer")
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		h.respondBadRequest(c, "commentId must be a positive integer")
		return
	}

	if err := h.services.Comments.DeleteOwn(c.Request.Context(), userID, eventID, commentID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListOwnComments - GET /users/{userId}/comments
func (h *Handlers) ListOwnComments(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}
	from, size, ok := pagination(c)
	if !ok {
		h.respondBadRequest(c, "invalid pagination parameters")
		return
	}

	comments, err := h.services.Comments.ListByAuthor(c.Request.Context(), userID, from, size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// ModerateComment - PATCH /admin/comments/{commentId}
func (h *Handlers) ModerateComment(c *gin.Context) {
	commentID, ok := pathID(c, "commentId")
	if !ok {
		h.respondBadRequest(c, "commentId must be a positive integer")
		return
	}

	var req models.UpdateCommentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	comment, err := h.services.Comments.Moderate(c.Request.Context(), commentID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteCommentAdmin - DELETE /admin/comments/{commentId}
func (h *Handlers) DeleteCommentAdmin(c *gin.Context) {
	commentID, ok := pathID(c, "commentId")
	if !ok {
		h.respondBadRequest(c, "commentId must be a positive integer")
		return
	}

	if err := h.services.Comments.DeleteByAdmin(c.Request.Context(), commentID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListEventComments - GET /events/{eventId}/comments
func (h *Handlers) ListEventComments(c *gin.Context) {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		h.respondBadRequest(c, "eventId must be a positive integer")
		return
	}
	from, size, ok := pagination(c)
	if !ok {
		h.respondBadRequest(c, "invalid pagination parameters")
		return
	}

	comments, err := h.services.Comments.ListPublished(c.Request.Context(), eventID, from, size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}
