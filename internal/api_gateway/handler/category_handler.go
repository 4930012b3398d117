package handler

import (
	"log/slog"

	"github.com/finance-tracker-ledger/internal/api_gateway/service"
	"github.com/finance-tracker-ledger/internal/domain/category"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *slog.Logger
}

func NewCategoryHandler(logger *slog.Logger, categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WarnContext(c.Request.Context(), "Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cat, err := h.categoryService.CreateCategory(c.Request.Context(), userID, service.CreateCategoryInput{
		Name:  req.Name,
		Type:  category.Type(req.Type),
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to create category")
		return
	}

	RespondCreated(c, mapCategoryToResponse(cat))
}

func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list categories")
		return
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		response = append(response, mapCategoryToResponse(cat))
	}
	RespondOK(c, response)
}

// Delete removes a category; categories still referenced by transactions answer 409
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "category")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, h.logger, err, "Failed to delete category")
		return
	}

	RespondNoContent(c)
}
