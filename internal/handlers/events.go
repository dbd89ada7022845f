package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"afisha/internal/logger"
	"afisha/internal/models"

	"github.com/gin-gonic/gin"
)

// FindEventsAdmin - GET /admin/events
func (h *Handlers) FindEventsAdmin(c *gin.Context) {
	filter, ok := h.adminFilter(c)
	if !ok {
		return
	}

	events, err := h.services.Events.FindAdmin(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// UpdateEventAdmin - PATCH /admin/events/{eventId}
func (h *Handlers) UpdateEventAdmin(c *gin.Context) {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		h.respondBadRequest(c, "eventId must be a positive integer")
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	event, err := h.services.Events.UpdateByAdmin(c.Request.Context(), eventID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// CreateEvent - POST /users/{userId}/events
func (h *Handlers) CreateEvent(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		h.respondBadRequest(c, "userId must be a positive integer")
		return
	}

	var req models.NewEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	event, err := h.services.Events.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// ListOwnEvents - GET /users/{userId}/events
func (h *Handlers) ListOwnEvents(c *gin.Context) {
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

	events, err := h.services.Events.GetOwn(c.Request.Context(), userID, from, size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetOwnEvent - GET /users/{userId}/events/{eventId}
func (h *Handlers) GetOwnEvent(c *gin.Context) {
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

	event, err := h.services.Events.GetOwnByID(c.Request.Context(), userID, eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// UpdateOwnEvent - PATCH /users/{userId}/events/{eventId}
func (h *Handlers) UpdateOwnEvent(c *gin.Context) {
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

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	event, err := h.services.Events.UpdateByOwner(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// FindEventsPublic - GET /events
func (h *Handlers) FindEventsPublic(c *gin.Context) {
	filter, ok := h.publicFilter(c)
	if !ok {
		return
	}

	// Unfiltered pages are served from cache when it is available.
	cacheable := h.cacheClient != nil && filter.Text == "" && filter.Paid == nil &&
		!filter.OnlyAvailable && len(filter.CategoryIDs) == 0 &&
		filter.RangeStart == nil && filter.RangeEnd == nil

	if cacheable {
		if raw, err := h.cacheClient.GetEventsListRaw(c.Request.Context(), filter.From, filter.Size); err == nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	events, err := h.services.Events.FindPublic(c.Request.Context(), filter,
		c.Request.URL.Path, c.ClientIP())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if cacheable {
		if err := h.cacheClient.SetEventsList(c.Request.Context(), filter.From, filter.Size, events); err != nil {
			logger.WithContext(c.Request.Context()).Error("Failed to cache events list", "error", err)
		}
	}

	c.JSON(http.StatusOK, events)
}

// GetEventPublic - GET /events/{eventId}
func (h *Handlers) GetEventPublic(c *gin.Context) {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		h.respondBadRequest(c, "eventId must be a positive integer")
		return
	}

	event, err := h.services.Events.GetPublicByID(c.Request.Context(), eventID,
		c.Request.URL.Path, c.ClientIP())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// EventFeed - GET /users/{userId}/subscriptions/events
func (h *Handlers) EventFeed(c *gin.Context) {
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

	events, err := h.services.Events.Feed(c.Request.Context(), userID, from, size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *Handlers) adminFilter(c *gin.Context) (models.AdminEventFilter, bool) {
	var filter models.AdminEventFilter

	base, ok := h.baseFilter(c)
	if !ok {
		return filter, false
	}
	filter.EventFilter = base

	userIDs, ok := queryIDs(c, "users")
	if !ok {
		h.respondBadRequest(c, "users must be integers")
		return filter, false
	}
	filter.UserIDs = userIDs

	for _, raw := range c.QueryArray("states") {
		for _, part := range strings.Split(raw, ",") {
			if part == "" {
				continue
			}
			state := models.EventState(part)
			switch state {
			case models.EventStatePending, models.EventStatePublished, models.EventStateCanceled:
				filter.States = append(filter.States, state)
			default:
				h.respondBadRequest(c, "unknown event state: "+part)
				return filter, false
			}
		}
	}

	return filter, true
}

func (h *Handlers) publicFilter(c *gin.Context) (models.PublicEventFilter, bool) {
	var filter models.PublicEventFilter

	base, ok := h.baseFilter(c)
	if !ok {
		return filter, false
	}
	filter.EventFilter = base
	filter.Text = c.Query("text")
	filter.OnlyAvailable = c.Query("onlyAvailable") == "true"

	if raw := c.Query("paid"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondBadRequest(c, "paid must be a boolean")
			return filter, false
		}
		filter.Paid = &paid
	}

	return filter, true
}

func (h *Handlers) baseFilter(c *gin.Context) (models.EventFilter, bool) {
	var base models.EventFilter

	from, size, ok := pagination(c)
	if !ok {
		h.respondBadRequest(c, "invalid pagination parameters")
		return base, false
	}
	base.From = from
	base.Size = size

	categoryIDs, ok := queryIDs(c, "categories")
	if !ok {
		h.respondBadRequest(c, "categories must be integers")
		return base, false
	}
	base.CategoryIDs = categoryIDs

	start, ok := queryTime(c, "rangeStart")
	if !ok {
		h.respondBadRequest(c, "rangeStart must match "+models.DateTimeLayout)
		return base, false
	}
	base.RangeStart = start

	end, ok := queryTime(c, "rangeEnd")
	if !ok {
		h.respondBadRequest(c, "rangeEnd must match "+models.DateTimeLayout)
		return base, false
	}
	base.RangeEnd = end

	return base, true
}
