// Package middleware provides HTTP middleware for the governance service.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/adlytics/govern/internal/httputil"
)

// respondError delegates to the shared httputil.RespondError helper.
func respondError(c *gin.Context, code int, errCode, message string) {
	httputil.RespondError(c, code, errCode, message)
}
