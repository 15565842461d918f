package handler

import (
	"github.com/gin-gonic/gin"

	appmapping "github.com/salesiq/backend/internal/application/mapping"
	"github.com/salesiq/backend/internal/interfaces/http/middleware"
)

// CatalogHandler serves the static catalogs: connected systems, the
// transform list, and the schemas a pair maps between.
type CatalogHandler struct {
	BaseHandler
	service *appmapping.MappingServiceImpl
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service *appmapping.MappingServiceImpl) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/systems", h.ListSystems)
	rg.GET("/systems/:system/entities/:entity/schema", h.GetSourceSchema)
	rg.GET("/entities/:entity/canonical-schema", h.GetCanonicalSchema)
	rg.GET("/transforms", h.ListTransforms)
}

// ListSystems returns every connected system with its supported entity types
func (h *CatalogHandler) ListSystems(c *gin.Context) {
	h.Success(c, h.service.ListSystems())
}

// ListTransforms returns the closed transform catalog
func (h *CatalogHandler) ListTransforms(c *gin.Context) {
	h.Success(c, h.service.ListTransforms())
}

// GetSourceSchema returns the source field schema for a (system, entity) pair
func (h *CatalogHandler) GetSourceSchema(c *gin.Context) {
	schema, err := h.service.GetSourceSchema(c.Request.Context(), c.Param("system"), c.Param("entity"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schema)
}

// canonicalSchemaQuery binds the query string for GetCanonicalSchema
type canonicalSchemaQuery struct {
	System string `form:"system" binding:"required"`
}

// GetCanonicalSchema returns the canonical schema for an entity type. The
// system query parameter scopes validation to a supported pair.
func (h *CatalogHandler) GetCanonicalSchema(c *gin.Context) {
	var query canonicalSchemaQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	schema, err := h.service.GetCanonicalSchema(c.Request.Context(), c.Param("entity"), query.System)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schema)
}
