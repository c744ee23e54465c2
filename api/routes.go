package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the catch-all handler. Every path is dispatched
// by the handler itself; methods other than GET and HEAD get 405.
func SetupRoutes(r *gin.Engine, h *Handlers) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(h.MethodNotAllowed)

	r.GET("/*path", h.Serve)
	r.HEAD("/*path", h.Serve)
}
