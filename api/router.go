// Package api serves the ledger over a JSON HTTP interface built on gin.
package api

import (
	"log/slog"
	"slices"
	"time"

	"retail-ledger/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NewRouter wires the ledger routes. CORS is only enabled when allowedOrigins
// is non-empty; "*" allows any origin.
func NewRouter(logger *slog.Logger, h *Handlers, allowedOrigins []string) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			logger.Error("registering request validators failed", "error", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	if len(allowedOrigins) > 0 {
		r.Use(corsMiddleware(allowedOrigins))
	}

	r.GET("/healthz", h.health)

	api := r.Group("/api")
	api.POST("/customers", h.createCustomer)
	api.GET("/customers", h.listCustomers)
	api.POST("/transfers", h.transferMoney)

	customer := api.Group("/customers/:customerId")
	customer.GET("", h.getCustomer)
	customer.POST("/verify", h.verifyCustomer)
	customer.POST("/accounts", h.createAccount)
	customer.GET("/accounts", h.getCustomerAccounts)
	customer.GET("/transactions", h.getCustomerTransactions)

	account := customer.Group("/accounts/:accountNumber")
	account.GET("", h.getAccount)
	account.DELETE("", h.closeAccount)
	account.POST("/transactions", h.postTransaction)
	account.GET("/transactions", h.getAccountTransactions)
	account.POST("/interest", h.applyInterest)
	account.POST("/charges", h.applyCharge)
	account.POST("/deactivate", h.deactivateAccount)
	account.POST("/activate", h.activateAccount)

	admin := api.Group("/admin")
	admin.GET("/limits", h.getLimits)
	admin.PUT("/limits", h.updateLimits)
	admin.GET("/stats", h.getStats)

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}
