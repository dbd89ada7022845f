package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Subscribe - PUT /users/{userId}/subscriptions/{targetId}
func (h *Handlers) Subscribe(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}
	targetID, ok := pathID(c, "targetId")
	if !ok {
		h.respondBadRequest(c, "targetId must be a positive integer")
		return
	}

	subscription, err := h.services.Subscriptions.Subscribe(c.Request.Context(), userID, targetID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subscription)
}

// Unsubscribe - DELETE /users/{userId}/subscriptions/{targetId}
func (h *Handlers) Unsubscribe(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}
	targetID, ok := pathID(c, "targetId")
	if !ok {
		h.respondBadRequest(c, "targetId must be a positive integer")
		return
	}

	if err := h.services.Subscriptions.Unsubscribe(c.Request.Context(), userID, targetID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSubscriptions - GET /users/{userId}/subscriptions
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}

	subscriptions, err := h.services.Subscriptions.List(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscriptions)
}
