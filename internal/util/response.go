package util

import "github.com/gin-gonic/gin"

// Error writes the error envelope the frontend expects: {"message": "..."}.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"message": msg})
}
