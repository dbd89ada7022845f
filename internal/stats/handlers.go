package stats

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"afisha/internal/apperr"
	"afisha/internal/logger"
	"afisha/internal/models"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RecordHit - POST /hit
func (h *Handlers) RecordHit(c *gin.Context) {
	var hit models.EndpointHit
	if err := c.ShouldBindJSON(&hit); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	if err := h.service.RecordHit(c.Request.Context(), &hit); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, true)
}

// GetStats - GET /stats
func (h *Handlers) GetStats(c *gin.Context) {
	start, err := time.Parse(models.DateTimeLayout, c.Query("start"))
	if err != nil {
		h.respondBadRequest(c, "start must match "+models.DateTimeLayout)
		return
	}
	end, err := time.Parse(models.DateTimeLayout, c.Query("end"))
	if err != nil {
		h.respondBadRequest(c, "end must match "+models.DateTimeLayout)
		return
	}

	var uris []string
	for _, raw := range c.QueryArray("uris") {
		for _, uri := range strings.Split(raw, ",") {
			if uri != "" {
				uris = append(uris, uri)
			}
		}
	}

	unique := false
	if raw := c.Query("unique"); raw != "" {
		unique, err = strconv.ParseBool(raw)
		if err != nil {
			h.respondBadRequest(c, "unique must be a boolean")
			return
		}
	}

	stats, err := h.service.GetStats(c.Request.Context(), start, end, uris, unique)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		c.JSON(appErr.Status(), models.ErrorResponse{
			Message:   appErr.Message,
			Reason:    appErr.Reason,
			Status:    appErr.Status(),
			Timestamp: models.NewDateTime(time.Now()),
		})
		return
	}

	logger.WithContext(c.Request.Context()).Error("Request failed",
		"error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Message:   "internal server error",
		Reason:    "INTERNAL_ERROR",
		Status:    http.StatusInternalServerError,
		Timestamp: models.NewDateTime(time.Now()),
	})
}

func (h *Handlers) respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Message:   message,
		Reason:    apperr.ReasonInvalidFilter,
		Status:    http.StatusBadRequest,
		Timestamp: models.NewDateTime(time.Now()),
	})
}
