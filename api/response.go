package api

import "github.com/gin-gonic/gin"

// Error payloads follow the platform shape {success:false, message}.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// serverError hides the internal error behind a generic message; the
// original error is logged by the caller.
func serverError(c *gin.Context) {
	fail(c, 500, "une erreur interne est survenue")
}
