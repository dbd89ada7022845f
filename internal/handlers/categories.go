package handlers

import (
	"net/http"

	"afisha/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateCategory - POST /admin/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	var req models.NewCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	category, err := h.services.Categories.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory - PATCH /admin/categories/{catId}
func (h *Handlers) UpdateCategory(c *gin.Context) {
	catID, ok := pathID(c, "catId")
	if !ok {
		h.respondBadRequest(c, "catId must be a positive integer")
		return
	}

	var req models.NewCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err.Error())
		return
	}

	category, err := h.services.Categories.Update(c.Request.Context(), catID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory - DELETE /admin/categories/{catId}
func (h *Handlers) DeleteCategory(c *gin.Context) {
	catID, ok := pathID(c, "catId")
	if !ok {
		h.respondBadRequest(c, "catId must be a positive integer")
		return
	}

	if err := h.services.Categories.Delete(c.Request.Context(), catID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCategories - GET /categories
func (h *Handlers) ListCategories(c *gin.Context) {
	from, size, ok := pagination(c)
	if !ok {
		h.respondBadRequest(c, "invalid pagination parameters")
		return
	}

	categories, err := h.services.Categories.List(c.Request.Context(), from, size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory - GET /categories/{catId}
func (h *Handlers) GetCategory(c *gin.Context) {
	catID, ok := pathID(c, "catId")
	if !ok {
		h.respondBadRequest(c, "catId must be a positive integer")
		return
	}

	category, err := h.services.Categories.GetByID(c.Request.Context(), catID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}
