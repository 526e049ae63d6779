package util

import (
	"context"

	"github.com/gin-gonic/gin"
)

// GinContextKey is the key the gin context is stored under in the request
// context, so code holding only a context.Context can reach gin state.
const GinContextKey = "util.gin-context"

// GinContextFromContext retrieves the gin context stored via middleware,
// or returns ctx itself when it already is one. Returns nil when absent.
func GinContextFromContext(ctx context.Context) *gin.Context {
	if gc, ok := ctx.(*gin.Context); ok {
		return gc
	}

	gc, _ := ctx.Value(GinContextKey).(*gin.Context)
	return gc
}
