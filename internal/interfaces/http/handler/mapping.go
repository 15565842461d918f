package handler

import (
	"github.com/gin-gonic/gin"

	appmapping "github.com/salesiq/backend/internal/application/mapping"
	"github.com/salesiq/backend/internal/interfaces/http/middleware"
)

// MappingHandler serves the persisted mapping sets: load, wholesale save,
// auto-map, and lint.
type MappingHandler struct {
	BaseHandler
	service *appmapping.MappingServiceImpl
	automap *appmapping.AutoMapServiceImpl
}

// NewMappingHandler creates a new MappingHandler
func NewMappingHandler(service *appmapping.MappingServiceImpl, automap *appmapping.AutoMapServiceImpl) *MappingHandler {
	return &MappingHandler{service: service, automap: automap}
}

// RegisterRoutes registers mapping set routes
func (h *MappingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mappings := rg.Group("/mappings/:system/:entity")
	{
		mappings.GET("", h.Get)
		mappings.PUT("", h.Save)
		mappings.POST("/automap", h.AutoMap)
		mappings.POST("/lint", h.Lint)
	}
}

// Get returns the persisted mapping set for a pair. A pair that was never
// saved yields an empty entry list.
func (h *MappingHandler) Get(c *gin.Context) {
	set, err := h.service.GetMappingSet(c.Request.Context(), c.Param("system"), c.Param("entity"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, set)
}

// Save replaces the pair's mapping set with the request body. The whole
// save is rejected if any entry fails validation.
func (h *MappingHandler) Save(c *gin.Context) {
	var req appmapping.SaveMappingSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	set, err := h.service.SaveMappingSet(c.Request.Context(), c.Param("system"), c.Param("entity"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, set)
}

// AutoMap bulk-populates the pair's mapping set from AI suggestions,
// falling back to the built-in default table.
func (h *MappingHandler) AutoMap(c *gin.Context) {
	result, err := h.automap.AutoMap(c.Request.Context(), c.Param("system"), c.Param("entity"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Lint reports advisory warnings for the persisted set
func (h *MappingHandler) Lint(c *gin.Context) {
	warnings, err := h.service.LintMappingSet(c.Request.Context(), c.Param("system"), c.Param("entity"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"warnings": warnings})
}
