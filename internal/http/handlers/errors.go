package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/backend/internal/domain/ledger"
)

// writeError maps the model's error taxonomy onto status codes:
// missing entities are 404, rejected input and integrity violations are
// 400, anything else is a storage fault.
func writeError(c *gin.Context, err error) {
	switch {
	case ledger.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case ledger.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_failed"})
	}
}
