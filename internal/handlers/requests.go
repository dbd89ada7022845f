package handlers

import (
	"net/http"
	"strconv"

	"afisha/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateRequest - POST /users/{userId}/requests?eventId=N
func (h *Handlers) CreateRequest(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}

	eventID, err := strconv.ParseInt(c.Query("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		h.respondBadRequest(c, "eventId must be a positive integer")
		return
	}

	request, err := h.services.Requests.Create(c.Request.Context(), userID, eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// CancelRequest - PATCH /users/{userId}/requests/{requestId}/cancel
func (h *Handlers) CancelRequest(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}
	requestID, ok := pathID(c, "requestId")
	if !ok {
		h.respondBadRequest(c, "requestId must be a positive integer")
		return
	}

	request, err := h.services.Requests.Cancel(c.Request.Context(), userID, requestID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// ListOwnRequests - GET /users/{userId}/requests
func (h *Handlers) ListOwnRequests(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}

	requests, err := h.services.Requests.ListOwn(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// ListEventRequests - GET /users/{userId}/events/{eventId}/requests
func (h *Handlers) ListEventRequests(c *gin.Context) {
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

	requests, err := h.services.Requests.ListForEvent(c.Request.Context(), userID, eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// UpdateRequestStatuses - PATCH /users/{userId}/events/{eventId}/requests
func (h *Handlers) UpdateRequestStatuses(c *gin.Context) {
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

	var req models.RequestStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	result, err := h.services.Requests.UpdateStatuses(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
