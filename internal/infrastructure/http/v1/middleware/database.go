package middleware

import (
	"github.com/gin-gonic/gin"

	"mfgplan/internal/core/tx"
	"mfgplan/internal/infrastructure/storage/postgres"
)

// Database middleware injects the transaction manager into the request context.
// Repositories obtain it from there, so this middleware MUST run before any
// database operation.
func Database(txManager *postgres.TxManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := tx.WithManager(c.Request.Context(), txManager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
