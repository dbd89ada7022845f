package handlers

import (
	"net/http"
	"strconv"

	"afisha/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateCompilation - POST /admin/compilations
func (h *Handlers) CreateCompilation(c *gin.Context) {
	var req models.NewCompilationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	compilation, err := h.services.Compilations.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, compilation)
}

// UpdateCompilation - PATCH /admin/compilations/{compId}
func (h *Handlers) UpdateCompilation(c *gin.Context) {
	compID, ok := pathID(c, "compId")
	if !ok {
		h.respondBadRequest(c, "compId must be a positive integer")
		return
	}

	var req models.UpdateCompilationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	compilation, err := h.services.Compilations.Update(c.Request.Context(), compID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, compilation)
}

// DeleteCompilation - DELETE /admin/compilations/{compId}
func (h *Handlers) DeleteCompilation(c *gin.Context) {
	compID, ok := pathID(c, "compId")
	if !ok {
		h.respondBadRequest(c, "compId must be a positive integer")
		return
	}

	if err := h.services.Compilations.Delete(c.Request.Context(), compID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCompilations - GET /compilations
func (h *Handlers) ListCompilations(c *gin.Context) {
	from, size, ok := pagination(c)
	if !ok {
		h.respondBadRequest(c, "invalid pagination parameters")
		return
	}

	var pinned *bool
	if raw := c.Query("pinned"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondBadRequest(c, "pinned must be a boolean")
			return
		}
		pinned = &value
	}

	compilations, err := h.services.Compilations.List(c.Request.Context(), pinned, from, size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, compilations)
}

// GetCompilation - GET /compilations/{compId}
func (h *Handlers) GetCompilation(c *gin.Context) {
	compID, ok := pathID(c, "compId")
	if !ok {
		h.respondBadRequest(c, "compId must be a positive integer")
		return
	}

	compilation, err := h.services.Compilations.GetByID(c.Request.Context(), compID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, compilation)
}
