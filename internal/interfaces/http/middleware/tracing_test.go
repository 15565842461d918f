package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTracing_DisabledPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Tracing("salesiq-backend", false))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracing_EnabledServesRequests(t *testing.T) {
	// Without a registered tracer provider otelgin falls back to the global
	// no-op tracer; requests must still be served.
	r := gin.New()
	r.Use(RequestID())
	r.Use(Tracing("salesiq-backend", true))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
