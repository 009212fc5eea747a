package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext unwraps the request context, falling back to Background for
// handler tests that build a bare gin context.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}
