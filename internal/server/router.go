package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/backend/internal/auth"
	"github.com/ledgerbook/backend/internal/config"
	"github.com/ledgerbook/backend/internal/http/handlers"
	"github.com/ledgerbook/backend/internal/http/middleware"
	"github.com/ledgerbook/backend/internal/version"
	"github.com/ledgerbook/backend/internal/ws"
)

type Dependencies struct {
	Pinger          handlers.Pinger
	AuthHandler     *handlers.AuthHandler
	BorrowerHandler *handlers.BorrowerHandler
	LoanHandler     *handlers.LoanHandler
	SummaryHandler  *handlers.SummaryHandler
	WSHandler       *ws.Handler
	JWTManager      *auth.JWTManager
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})
	r.Use(middleware.RequestBodyLimit(cfg.MaxBodyBytes))

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/api/meta", meta.GetMeta)

	r.POST("/api/login", deps.AuthHandler.Login)
	r.POST("/api/logout", deps.AuthHandler.Logout)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth(deps.JWTManager))

	api.GET("/borrowers", deps.BorrowerHandler.List)
	api.POST("/borrowers", deps.BorrowerHandler.Add)
	api.DELETE("/borrowers/:borrowerId", deps.BorrowerHandler.Delete)

	api.GET("/loans", deps.LoanHandler.List)
	api.POST("/loans", deps.LoanHandler.Create)
	api.DELETE("/loans/:loanId", deps.LoanHandler.Delete)
	api.PATCH("/loans/:loanId/toggle-repaid", deps.LoanHandler.ToggleRepaid)
	api.GET("/loans/:loanId/repayments", deps.LoanHandler.ListRepayments)
	api.POST("/loans/:loanId/partial-repayment", deps.LoanHandler.RecordRepayment)
	api.DELETE("/loans/:loanId/repayments/:repaymentId", deps.LoanHandler.RemoveRepayment)

	api.GET("/summary", deps.SummaryHandler.Get)

	if deps.WSHandler != nil {
		r.GET("/ws", deps.WSHandler.HandleWebSocket)
	}

	static := http.FileServer(http.Dir(cfg.PublicDir))
	r.NoRoute(func(c *gin.Context) {
		if cfg.PublicDir != "" && c.Request.Method == http.MethodGet && !strings.HasPrefix(c.Request.URL.Path, "/api") {
			static.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
