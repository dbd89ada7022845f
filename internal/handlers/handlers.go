package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"afisha/internal/apperr"
	"afisha/internal/cache"
	"afisha/internal/logger"
	"afisha/internal/models"
	"afisha/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services    *service.Services
	cacheClient *cache.Client
}

func NewHandlers(services *service.Services, cacheClient *cache.Client) *Handlers {
	return &Handlers{
		services:    services,
		cacheClient: cacheClient,
	}
}

// respondError maps business errors to their HTTP status. Anything that is
// not an apperr is a 500.
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

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pagination reads the from/size query pair with the API defaults.
func pagination(c *gin.Context) (int, int, bool) {
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil || from < 0 {
		return 0, 0, false
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 {
		return 0, 0, false
	}
	return from, size, true
}

func queryIDs(c *gin.Context, name string) ([]int64, bool) {
	var ids []int64
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, false
			}
			ids = append(ids, id)
		}
	}
	return ids, true
}

func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(models.DateTimeLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
